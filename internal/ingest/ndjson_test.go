package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestReadRecords(t *testing.T) {
	input := strings.Join([]string{
		`{"bookmaker":"bet365","home_team":"Olympiacos","away_team":"PAOK","league":"Super League","kickoff_time":"2026-03-07T19:00:00Z","odds_home":2.1,"odds_draw":3.4,"odds_away":3.8}`,
		``,
		`{"home_team":"AEK Athens","away_team":"Aris","kickoff_time":"2026-03-07T21:00:00+02:00","odds_home":2.5,"odds_draw":null,"odds_away":3.1}`,
		`not json at all`,
		`{"bookmaker":"bet365","home_team":"Panathinaikos","away_team":"OFI","kickoff_time":"07/03/2026 19:00"}`,
	}, "\n")

	records, report := ReadRecords(strings.NewReader(input), "betsson")

	if report.Lines != 4 || report.Parsed != 2 || report.Malformed != 2 {
		t.Errorf("report = %+v, want 4 lines / 2 parsed / 2 malformed", report)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Bookmaker != "bet365" || first.HomeTeam != "Olympiacos" || first.League != "Super League" {
		t.Errorf("first record wrong: %+v", first)
	}
	if first.OddsDraw == nil || *first.OddsDraw != 3.4 {
		t.Errorf("odds_draw = %v, want 3.4", first.OddsDraw)
	}

	second := records[1]
	if second.Bookmaker != "betsson" {
		t.Errorf("omitted bookmaker should fall back to the default, got %q", second.Bookmaker)
	}
	if second.OddsDraw != nil {
		t.Errorf("null odds leg must stay nil, got %v", *second.OddsDraw)
	}
	wantKickoff := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	if !second.KickoffTime.Equal(wantKickoff) {
		t.Errorf("offset kickoff = %v, want instant %v", second.KickoffTime, wantKickoff)
	}
}

func TestReadRecords_Empty(t *testing.T) {
	records, report := ReadRecords(strings.NewReader(""), "bet365")
	if len(records) != 0 || report.Lines != 0 {
		t.Errorf("empty input should yield nothing, got %d records / %+v", len(records), report)
	}
}

func TestLoadFile_StemNamesBookmaker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stoiximan.ndjson")
	line := `{"home_team":"Olympiacos","away_team":"PAOK","kickoff_time":"2026-03-07T19:00:00Z","odds_home":2.1,"odds_draw":3.4,"odds_away":3.8}` + "\n"
	if err := os.WriteFile(path, []byte(line), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	records, report, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if report.Parsed != 1 || len(records) != 1 {
		t.Fatalf("report = %+v, records = %d", report, len(records))
	}
	if records[0].Bookmaker != "stoiximan" {
		t.Errorf("bookmaker = %q, want file stem", records[0].Bookmaker)
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	line := `{"home_team":"Olympiacos","away_team":"PAOK","kickoff_time":"2026-03-07T19:00:00Z","odds_home":2.1,"odds_draw":3.4,"odds_away":3.8}` + "\n"
	for _, name := range []string{"bet365.ndjson", "betsson.ndjson"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(line), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	// non-ndjson files are ignored
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write notes.txt: %v", err)
	}

	byBookmaker, total, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}
	if len(byBookmaker) != 2 || total.Parsed != 2 {
		t.Errorf("got %d bookmakers / %+v, want 2 / 2 parsed", len(byBookmaker), total)
	}
	if len(byBookmaker["bet365"]) != 1 || len(byBookmaker["betsson"]) != 1 {
		t.Errorf("records keyed wrong: %+v", byBookmaker)
	}
}

func TestLoadDir_NoFiles(t *testing.T) {
	if _, _, err := LoadDir(t.TempDir()); err == nil {
		t.Errorf("expected error for a directory without ndjson files")
	}
}
