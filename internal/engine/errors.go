package engine

import (
	"fmt"
	"time"
)

// MalformedRecordError marks a record that cannot enter matching: missing a
// team name or lacking a parseable kickoff time. Such records are rejected
// with this error and never silently dropped.
type MalformedRecordError struct {
	Bookmaker string
	Reason    string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record from %q: %s", e.Bookmaker, e.Reason)
}

// FlagKind classifies a non-fatal data-quality finding. None of these abort
// a run; they are surfaced for human review.
type FlagKind string

const (
	// FlagDuplicateBookmaker: a bookmaker contributed a second record for a
	// match it is already in. The record is reported, not merged.
	FlagDuplicateBookmaker FlagKind = "duplicate_bookmaker"
	// FlagAmbiguousMatch: a record was near-equally compatible with more
	// than one match group; the tie-break decided, but a human should look.
	FlagAmbiguousMatch FlagKind = "ambiguous_match"
	// FlagInvalidOdds: a sub-1.0 odds value was excluded from arbitrage
	// math. The row stays in the odds table for audit.
	FlagInvalidOdds FlagKind = "invalid_odds"
)

// Flag is one data-quality finding attached to a match and bookmaker.
type Flag struct {
	Kind      FlagKind  `json:"kind"`
	MatchID   string    `json:"match_id"`
	Bookmaker string    `json:"bookmaker"`
	Detail    string    `json:"detail"`
	FlaggedAt time.Time `json:"flagged_at"`
}
