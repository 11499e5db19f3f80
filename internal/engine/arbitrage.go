package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/akratos/surebet/internal/pkg/models"
)

const DefaultTotalStake = 1000

// minValidOdd guards the margin math: decimal odds below 1.0 imply a
// probability above 100% and would corrupt the total inverse.
const minValidOdd = 1.0

// Calculator evaluates odds tables for 1X2 arbitrage.
type Calculator struct {
	// TotalStake is the notional bankroll the stake split is computed for.
	TotalStake float64
}

// NewCalculator builds a calculator; a non-positive stake falls back to the
// default of 1000.
func NewCalculator(totalStake float64) *Calculator {
	if totalStake <= 0 {
		totalStake = DefaultTotalStake
	}
	return &Calculator{TotalStake: totalStake}
}

// Evaluate picks the best available odds per outcome across the table and
// computes the arbitrage margin M = 1/O1 + 1/OX + 1/O2. M >= 1 is the
// ordinary no-opportunity result, not an error. Sub-1.0 legs are excluded
// from selection and flagged; valid legs of the same row stay usable.
func (c *Calculator) Evaluate(table *models.OddsTable) (*models.Opportunity, []Flag) {
	var flags []Flag
	var bets [3]models.Bet

	for i, outcome := range models.Outcomes {
		best := 0.0
		bestBookmaker := ""
		for r := range table.Rows {
			row := &table.Rows[r]
			leg := row.Leg(outcome)
			if leg == nil {
				continue // partial row: missing leg excluded, row retained
			}
			odd := *leg
			if !validOdd(odd) {
				flags = append(flags, Flag{
					Kind:      FlagInvalidOdds,
					MatchID:   table.MatchID,
					Bookmaker: row.Bookmaker,
					Detail:    fmt.Sprintf("outcome %s odd %.4f below 1.0, excluded from selection", outcome, odd),
					FlaggedAt: time.Now(),
				})
				continue
			}
			// ties broken by first-seen row order: stake math does not
			// depend on which tied bookmaker gets recorded
			if odd > best {
				best = odd
				bestBookmaker = row.Bookmaker
			}
		}
		if best == 0 {
			return nil, flags // a leg with no usable odds: nothing to evaluate
		}
		bets[i] = models.Bet{Outcome: outcome, Bookmaker: bestBookmaker, Odd: best}
	}

	totalInverse := 1/bets[0].Odd + 1/bets[1].Odd + 1/bets[2].Odd
	if totalInverse >= 1 {
		return nil, flags
	}

	unique := make(map[string]bool, 3)
	payout := c.TotalStake / totalInverse
	for i := range bets {
		bets[i].StakeFrac = (1 / bets[i].Odd) / totalInverse
		bets[i].Stake = bets[i].StakeFrac * c.TotalStake
		bets[i].Return = payout
		unique[bets[i].Bookmaker] = true
	}

	return &models.Opportunity{
		ID:               uuid.NewString(),
		MatchID:          table.MatchID,
		MatchName:        table.MatchName,
		League:           table.League,
		KickoffTime:      table.KickoffTime,
		TotalInverse:     totalInverse,
		ProfitPercent:    (1/totalInverse - 1) * 100,
		TotalStake:       c.TotalStake,
		Profit:           payout - c.TotalStake,
		Bets:             bets,
		UniqueBookmakers: len(unique),
		Executable:       len(unique) >= 2,
		FoundAt:          time.Now(),
	}, flags
}

func validOdd(v float64) bool {
	return v >= minValidOdd && !math.IsInf(v, 0) && !math.IsNaN(v)
}
