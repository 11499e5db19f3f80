package models

import (
	"strings"
	"time"
)

// Match is the canonical representation of one real-world fixture, built from
// one or more bookmaker records believed to describe the same event.
// The ID is derived from the first-seen normalized key and stays stable for
// the lifetime of a run. KickoffTime is the earliest seen across sources.
type Match struct {
	ID          string          `json:"id"`
	HomeTeam    string          `json:"home_team"` // original name from the first contributing record
	AwayTeam    string          `json:"away_team"`
	League      string          `json:"league"`
	KickoffTime time.Time       `json:"kickoff_time"`
	Records     []RawOddsRecord `json:"records"`
}

// Name returns a human-readable "Home vs Away" label.
func (m *Match) Name() string {
	return strings.TrimSpace(m.HomeTeam) + " vs " + strings.TrimSpace(m.AwayTeam)
}

// Bookmakers returns the contributing bookmakers in first-seen order.
func (m *Match) Bookmakers() []string {
	out := make([]string, 0, len(m.Records))
	for i := range m.Records {
		out = append(out, m.Records[i].Bookmaker)
	}
	return out
}

// HasBookmaker reports whether the bookmaker already contributed a record.
// Every Match holds at most one record per bookmaker.
func (m *Match) HasBookmaker(bookmaker string) bool {
	bk := strings.ToLower(strings.TrimSpace(bookmaker))
	for i := range m.Records {
		if strings.ToLower(strings.TrimSpace(m.Records[i].Bookmaker)) == bk {
			return true
		}
	}
	return false
}

// RecordFor returns the record contributed by the given bookmaker, if any.
func (m *Match) RecordFor(bookmaker string) *RawOddsRecord {
	bk := strings.ToLower(strings.TrimSpace(bookmaker))
	for i := range m.Records {
		if strings.ToLower(strings.TrimSpace(m.Records[i].Bookmaker)) == bk {
			return &m.Records[i]
		}
	}
	return nil
}
