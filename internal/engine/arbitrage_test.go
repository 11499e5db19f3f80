package engine

import (
	"math"
	"testing"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

func table(rows ...models.OddsRow) models.OddsTable {
	return models.OddsTable{
		MatchID:     "olympiacos|paok|2026-03-07T19:00:00Z",
		MatchName:   "Olympiacos vs PAOK",
		KickoffTime: time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC),
		Rows:        rows,
	}
}

func TestEvaluate_BestOddsSelection(t *testing.T) {
	// per-leg maxima come from different bookmakers
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(2.10), Draw: fl(3.40), Away: fl(3.80)},
		models.OddsRow{Bookmaker: "betsson", Home: fl(2.05), Draw: fl(3.60), Away: fl(4.00)},
	)

	// best book (2.10, 3.60, 4.00) sums to M = 1.00397: no opportunity,
	// and that is an ordinary result, not an error
	opp, flags := NewCalculator(1000).Evaluate(&tbl)
	if opp != nil {
		t.Errorf("M >= 1 must yield no opportunity, got %+v", opp)
	}
	if len(flags) != 0 {
		t.Errorf("unexpected flags: %+v", flags)
	}
}

func TestEvaluate_SingleBookmakerBoundary(t *testing.T) {
	// 1/2 + 1/3 + 1/5 = 1.0333: no opportunity
	tbl := table(models.OddsRow{Bookmaker: "bet365", Home: fl(2.00), Draw: fl(3.00), Away: fl(5.00)})

	opp, _ := NewCalculator(1000).Evaluate(&tbl)
	if opp != nil {
		t.Errorf("expected no opportunity at margin 1.0333, got %+v", opp)
	}
}

func TestEvaluate_ProfitableBook(t *testing.T) {
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(2.30), Draw: fl(3.20), Away: fl(4.50)},
		models.OddsRow{Bookmaker: "betsson", Home: fl(2.10), Draw: fl(3.90), Away: fl(4.10)},
	)

	opp, flags := NewCalculator(1000).Evaluate(&tbl)
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}
	if len(flags) != 0 {
		t.Errorf("unexpected flags: %+v", flags)
	}

	wantM := 1/2.30 + 1/3.90 + 1/4.50
	if math.Abs(opp.TotalInverse-wantM) > 1e-9 {
		t.Errorf("TotalInverse = %.6f, want %.6f", opp.TotalInverse, wantM)
	}
	if opp.Bets[0].Bookmaker != "bet365" || opp.Bets[1].Bookmaker != "betsson" || opp.Bets[2].Bookmaker != "bet365" {
		t.Errorf("wrong attribution: %+v", opp.Bets)
	}
	if opp.UniqueBookmakers != 2 || !opp.Executable {
		t.Errorf("expected 2 unique bookmakers and executable, got %d/%v", opp.UniqueBookmakers, opp.Executable)
	}

	wantProfit := (1/wantM - 1) * 100
	if math.Abs(opp.ProfitPercent-wantProfit) > 1e-9 {
		t.Errorf("ProfitPercent = %.4f, want %.4f", opp.ProfitPercent, wantProfit)
	}
}

func TestEvaluate_StakeSplitLocksEqualPayout(t *testing.T) {
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(2.30), Draw: fl(3.90), Away: fl(4.50)},
	)

	const totalStake = 500.0
	opp, _ := NewCalculator(totalStake).Evaluate(&tbl)
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}

	fracSum := 0.0
	stakeSum := 0.0
	payout := totalStake / opp.TotalInverse
	for _, bet := range opp.Bets {
		fracSum += bet.StakeFrac
		stakeSum += bet.Stake
		if math.Abs(bet.Stake*bet.Odd-payout) > 1e-6 {
			t.Errorf("outcome %s payout %.6f, want %.6f for every leg", bet.Outcome, bet.Stake*bet.Odd, payout)
		}
	}
	if math.Abs(fracSum-1.0) > 1e-9 {
		t.Errorf("stake fractions sum to %.9f, want 1.0", fracSum)
	}
	if math.Abs(stakeSum-totalStake) > 1e-6 {
		t.Errorf("stakes sum to %.6f, want %.1f", stakeSum, totalStake)
	}
	wantProfit := payout - totalStake
	if math.Abs(opp.Profit-wantProfit) > 1e-6 {
		t.Errorf("Profit = %.6f, want %.6f", opp.Profit, wantProfit)
	}

	// all legs at one bookmaker: valid math, flagged as not executable
	if opp.UniqueBookmakers != 1 || opp.Executable {
		t.Errorf("expected single-bookmaker non-executable opportunity, got %d/%v", opp.UniqueBookmakers, opp.Executable)
	}
}

func TestEvaluate_InvalidOddExcludedPerLeg(t *testing.T) {
	// home leg of bet365 is sub-1.0: excluded from home selection with a
	// flag, while its draw and away legs stay usable
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(0.95), Draw: fl(3.90), Away: fl(4.50)},
		models.OddsRow{Bookmaker: "betsson", Home: fl(2.50)},
	)

	opp, flags := NewCalculator(1000).Evaluate(&tbl)
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}
	if opp.Bets[0].Bookmaker != "betsson" || opp.Bets[0].Odd != 2.50 {
		t.Errorf("home leg should come from betsson at 2.50, got %+v", opp.Bets[0])
	}
	if opp.Bets[1].Bookmaker != "bet365" || opp.Bets[2].Bookmaker != "bet365" {
		t.Errorf("draw/away legs of the flagged row must stay usable, got %+v", opp.Bets)
	}

	if len(flags) != 1 || flags[0].Kind != FlagInvalidOdds || flags[0].Bookmaker != "bet365" {
		t.Errorf("expected one invalid_odds flag for bet365, got %+v", flags)
	}
}

func TestEvaluate_MissingLegMeansNoEvaluation(t *testing.T) {
	// nobody offers the away leg: nothing to evaluate
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(2.30), Draw: fl(3.90)},
		models.OddsRow{Bookmaker: "betsson", Home: fl(2.50), Draw: fl(3.60)},
	)

	opp, _ := NewCalculator(1000).Evaluate(&tbl)
	if opp != nil {
		t.Errorf("expected no opportunity without a usable away leg, got %+v", opp)
	}
}

func TestEvaluate_TieBrokenByFirstSeenRow(t *testing.T) {
	tbl := table(
		models.OddsRow{Bookmaker: "bet365", Home: fl(2.30), Draw: fl(3.90), Away: fl(4.50)},
		models.OddsRow{Bookmaker: "betsson", Home: fl(2.30), Draw: fl(3.90), Away: fl(4.50)},
	)

	opp, _ := NewCalculator(1000).Evaluate(&tbl)
	if opp == nil {
		t.Fatalf("expected an opportunity")
	}
	for _, bet := range opp.Bets {
		if bet.Bookmaker != "bet365" {
			t.Errorf("tied odds must resolve to the first-seen row, got %q for %s", bet.Bookmaker, bet.Outcome)
		}
	}
}

func TestEvaluate_EmptyTable(t *testing.T) {
	tbl := table()
	opp, flags := NewCalculator(1000).Evaluate(&tbl)
	if opp != nil || len(flags) != 0 {
		t.Errorf("empty table should yield nothing, got %+v / %+v", opp, flags)
	}
}
