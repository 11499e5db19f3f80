// Package ingest parses newline-delimited JSON odds records scraped from
// bookmakers. Malformed lines are counted and logged here; they never reach
// the matching core.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

// Report summarizes one ingestion pass.
type Report struct {
	Lines     int `json:"lines"`
	Parsed    int `json:"parsed"`
	Malformed int `json:"malformed"`
}

// rawLine mirrors the wire format: ISO-8601 kickoff with offset, nullable
// odds legs.
type rawLine struct {
	Bookmaker   string   `json:"bookmaker"`
	HomeTeam    string   `json:"home_team"`
	AwayTeam    string   `json:"away_team"`
	League      string   `json:"league"`
	KickoffTime string   `json:"kickoff_time"`
	OddsHome    *float64 `json:"odds_home"`
	OddsDraw    *float64 `json:"odds_draw"`
	OddsAway    *float64 `json:"odds_away"`
}

// ReadRecords parses one record per line. Lines that are not valid JSON or
// carry an unparseable kickoff are skipped and counted. defaultBookmaker
// fills records whose line omits the bookmaker field (per-bookmaker files
// usually name the source in the filename, not on every line).
func ReadRecords(r io.Reader, defaultBookmaker string) ([]models.RawOddsRecord, Report) {
	var records []models.RawOddsRecord
	var report Report

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lineNum++
		report.Lines++

		var raw rawLine
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			report.Malformed++
			slog.Warn("ingest: skipping invalid JSON line", "line", lineNum, "error", err)
			continue
		}

		kickoff, err := parseKickoff(raw.KickoffTime)
		if err != nil {
			report.Malformed++
			slog.Warn("ingest: skipping record with bad kickoff time",
				"line", lineNum, "kickoff_time", raw.KickoffTime, "error", err)
			continue
		}

		bookmaker := strings.TrimSpace(raw.Bookmaker)
		if bookmaker == "" {
			bookmaker = defaultBookmaker
		}

		records = append(records, models.RawOddsRecord{
			Bookmaker:   bookmaker,
			HomeTeam:    raw.HomeTeam,
			AwayTeam:    raw.AwayTeam,
			League:      raw.League,
			KickoffTime: kickoff,
			OddsHome:    raw.OddsHome,
			OddsDraw:    raw.OddsDraw,
			OddsAway:    raw.OddsAway,
		})
		report.Parsed++
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("ingest: read stopped early", "error", err)
	}
	return records, report
}

func parseKickoff(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty kickoff time")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("kickoff time %q is not ISO-8601 with offset: %w", s, err)
	}
	return t, nil
}

// LoadFile reads one NDJSON file; the file stem names the bookmaker for
// records that omit it, matching the <bookmaker>.ndjson layout scrapers
// write.
func LoadFile(path string) ([]models.RawOddsRecord, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	records, report := ReadRecords(f, stem)
	return records, report, nil
}

// LoadDir reads every *.ndjson file under dir, keyed by bookmaker (file
// stem). Files that fail to open are logged and skipped; a raw-data
// directory with one broken file still yields the rest of the day's odds.
func LoadDir(dir string) (map[string][]models.RawOddsRecord, Report, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.ndjson"))
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, Report{}, fmt.Errorf("no .ndjson files in %s", dir)
	}

	byBookmaker := make(map[string][]models.RawOddsRecord)
	var total Report
	for _, path := range paths {
		records, report, err := LoadFile(path)
		if err != nil {
			slog.Warn("ingest: skipping unreadable file", "path", path, "error", err)
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		byBookmaker[stem] = append(byBookmaker[stem], records...)
		total.Lines += report.Lines
		total.Parsed += report.Parsed
		total.Malformed += report.Malformed
		slog.Info("ingest: loaded bookmaker file",
			"bookmaker", stem, "records", report.Parsed, "malformed", report.Malformed)
	}
	return byBookmaker, total, nil
}
