package engine

import (
	"math"
	"testing"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

func TestEngine_EndToEnd(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	aliases := NewAliasTable(map[string]string{"Olympiakos": "Olympiacos"})
	eng := New(aliases, Config{TotalStake: 1000})

	// three scrapers, three spellings, one fixture
	errs := eng.Add([]models.RawOddsRecord{
		{Bookmaker: "bet365", HomeTeam: "Olympiacos FC", AwayTeam: "PAOK", League: "Super League",
			KickoffTime: kickoff, OddsHome: fl(2.30), OddsDraw: fl(3.20), OddsAway: fl(4.10)},
		{Bookmaker: "betsson", HomeTeam: "Olympiakos", AwayTeam: "PAOK FC",
			KickoffTime: kickoff.Add(5 * time.Minute), OddsHome: fl(2.10), OddsDraw: fl(3.90), OddsAway: fl(4.00)},
		{Bookmaker: "stoiximan", HomeTeam: "Olympiacos", AwayTeam: "PAOK",
			KickoffTime: kickoff, OddsHome: fl(2.20), OddsDraw: fl(3.50), OddsAway: fl(4.50)},
	})
	if len(errs) != 0 {
		t.Fatalf("unexpected rejections: %v", errs)
	}

	matches := eng.Matches()
	if len(matches) != 1 {
		t.Fatalf("expected one merged match, got %d", len(matches))
	}
	if got := len(matches[0].Records); got != 3 {
		t.Errorf("expected 3 contributing bookmakers, got %d", got)
	}
	if !matches[0].KickoffTime.Equal(kickoff) {
		t.Errorf("kickoff = %v, want earliest seen %v", matches[0].KickoffTime, kickoff)
	}
	if matches[0].League != "Super League" {
		t.Errorf("league not backfilled from the record that had one: %q", matches[0].League)
	}

	tables := eng.Tables()
	if len(tables) != 1 || len(tables[0].Rows) != 3 {
		t.Fatalf("expected one table with 3 rows, got %+v", tables)
	}

	opps, flags := eng.Opportunities()
	if len(flags) != 0 {
		t.Errorf("unexpected evaluation flags: %+v", flags)
	}
	if len(opps) != 1 {
		t.Fatalf("expected one opportunity, got %d", len(opps))
	}

	// best book: 2.30 home (bet365), 3.90 draw (betsson), 4.50 away (stoiximan)
	opp := opps[0]
	wantM := 1/2.30 + 1/3.90 + 1/4.50
	if math.Abs(opp.TotalInverse-wantM) > 1e-9 {
		t.Errorf("TotalInverse = %.6f, want %.6f", opp.TotalInverse, wantM)
	}
	if opp.UniqueBookmakers != 3 || !opp.Executable {
		t.Errorf("expected 3-bookmaker executable opportunity, got %d/%v", opp.UniqueBookmakers, opp.Executable)
	}
}

func TestEngine_RecomputeIsIdempotent(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	eng := New(nil, Config{TotalStake: 1000})
	eng.Add([]models.RawOddsRecord{
		{Bookmaker: "bet365", HomeTeam: "Olympiacos", AwayTeam: "PAOK",
			KickoffTime: kickoff, OddsHome: fl(2.30), OddsDraw: fl(3.90), OddsAway: fl(4.50)},
	})

	first, _ := eng.Opportunities()
	second, _ := eng.Opportunities()
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one opportunity per evaluation, got %d and %d", len(first), len(second))
	}
	if first[0].TotalInverse != second[0].TotalInverse || first[0].Profit != second[0].Profit {
		t.Errorf("recompute changed the result: %+v vs %+v", first[0], second[0])
	}
	if got := len(eng.Matches()); got != 1 {
		t.Errorf("querying must not mutate the match set, got %d matches", got)
	}
}

func TestEngine_OpportunitiesSortedByProfit(t *testing.T) {
	kickoff := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	eng := New(nil, Config{TotalStake: 1000})
	eng.Add([]models.RawOddsRecord{
		// modest edge
		{Bookmaker: "bet365", HomeTeam: "Olympiacos", AwayTeam: "PAOK",
			KickoffTime: kickoff, OddsHome: fl(2.30), OddsDraw: fl(3.90), OddsAway: fl(4.50)},
		// bigger edge
		{Bookmaker: "bet365", HomeTeam: "AEK Athens", AwayTeam: "Aris",
			KickoffTime: kickoff, OddsHome: fl(2.60), OddsDraw: fl(4.00), OddsAway: fl(5.00)},
	})

	opps, _ := eng.Opportunities()
	if len(opps) != 2 {
		t.Fatalf("expected 2 opportunities, got %d", len(opps))
	}
	if opps[0].ProfitPercent < opps[1].ProfitPercent {
		t.Errorf("not sorted by profit: %.4f before %.4f", opps[0].ProfitPercent, opps[1].ProfitPercent)
	}
	if opps[0].MatchName != "AEK Athens vs Aris" {
		t.Errorf("expected the bigger edge first, got %q", opps[0].MatchName)
	}
}
