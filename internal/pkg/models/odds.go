package models

import (
	"time"
)

// OddsRow is one bookmaker's 1X2 odds for a match. A nil leg means the
// bookmaker does not offer that outcome; such rows stay in the table for
// audit but the missing legs never enter arbitrage math.
type OddsRow struct {
	Bookmaker string   `json:"bookmaker"`
	Home      *float64 `json:"home"`
	Draw      *float64 `json:"draw"`
	Away      *float64 `json:"away"`
}

// Leg returns the row's odds for the given outcome, or nil if not offered.
func (r *OddsRow) Leg(o Outcome) *float64 {
	switch o {
	case OutcomeHome:
		return r.Home
	case OutcomeDraw:
		return r.Draw
	case OutcomeAway:
		return r.Away
	}
	return nil
}

// Complete reports whether all three legs are present.
func (r *OddsRow) Complete() bool {
	return r.Home != nil && r.Draw != nil && r.Away != nil
}

// OddsTable maps every contributing bookmaker of one match to its odds
// triple. Rows keep the first-seen bookmaker order so downstream tie-breaks
// stay deterministic.
type OddsTable struct {
	MatchID     string    `json:"match_id"`
	MatchName   string    `json:"match_name"`
	League      string    `json:"league"`
	KickoffTime time.Time `json:"kickoff_time"`
	Rows        []OddsRow `json:"rows"`
}

// Bet is one leg of an arbitrage opportunity: the outcome to back, where,
// at what odds, and how much of the total stake to put on it.
type Bet struct {
	Outcome   Outcome `json:"outcome"`
	Bookmaker string  `json:"bookmaker"`
	Odd       float64 `json:"odd"`
	Stake     float64 `json:"stake"`          // absolute stake for the configured total
	StakeFrac float64 `json:"stake_fraction"` // (1/odd) / total_inverse
	Return    float64 `json:"return"`         // payout if this outcome wins
}

// Opportunity is a detected arbitrage: the best available odds per outcome
// (possibly from different bookmakers) summed to an inverse below 1.
type Opportunity struct {
	ID          string    `json:"id"`
	MatchID     string    `json:"match_id"`
	MatchName   string    `json:"match_name"`
	League      string    `json:"league"`
	KickoffTime time.Time `json:"kickoff_time"`

	TotalInverse  float64 `json:"total_inverse"`  // M = 1/O1 + 1/OX + 1/O2
	ProfitPercent float64 `json:"profit_percent"` // (1/M - 1) * 100
	TotalStake    float64 `json:"total_stake"`
	Profit        float64 `json:"profit"` // guaranteed: TotalStake * (1/M - 1)

	Bets [3]Bet `json:"bets"` // home, draw, away order

	// UniqueBookmakers counts distinct books across the three legs. A value
	// of 1 is mathematically valid but cannot be executed at a real book,
	// so Executable is informational, not a filter.
	UniqueBookmakers int  `json:"unique_bookmakers"`
	Executable       bool `json:"executable"`

	FoundAt time.Time `json:"found_at"`
}
