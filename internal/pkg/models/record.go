package models

import (
	"time"
)

// Outcome identifies one leg of the 1X2 market.
type Outcome string

const (
	OutcomeHome Outcome = "1"
	OutcomeDraw Outcome = "X"
	OutcomeAway Outcome = "2"
)

// Outcomes lists the three 1X2 legs in canonical order.
var Outcomes = [3]Outcome{OutcomeHome, OutcomeDraw, OutcomeAway}

// RawOddsRecord is one bookmaker's view of one match, exactly as scraped.
// Odds are nil when the bookmaker does not offer that leg.
// Records are immutable once ingested.
type RawOddsRecord struct {
	Bookmaker   string    `json:"bookmaker"`
	HomeTeam    string    `json:"home_team"`
	AwayTeam    string    `json:"away_team"`
	League      string    `json:"league"`
	KickoffTime time.Time `json:"kickoff_time"`
	OddsHome    *float64  `json:"odds_home"`
	OddsDraw    *float64  `json:"odds_draw"`
	OddsAway    *float64  `json:"odds_away"`
}

// Odds returns the record's odds for the given outcome, or nil if not offered.
func (r *RawOddsRecord) Odds(o Outcome) *float64 {
	switch o {
	case OutcomeHome:
		return r.OddsHome
	case OutcomeDraw:
		return r.OddsDraw
	case OutcomeAway:
		return r.OddsAway
	}
	return nil
}
