package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

const DefaultSimilarityThreshold = 0.85

// MatcherConfig tunes the identity-resolution rules.
type MatcherConfig struct {
	// SimilarityThreshold is the minimum token-sort similarity for the fuzzy
	// name fallback when exact canonical equality fails. Default 0.85.
	SimilarityThreshold float64
	// RequireLeagueMatch additionally requires canonical league equality
	// before two records may join, when both records carry a league. Guards
	// against merging a friendly with a cup tie between the same teams.
	RequireLeagueMatch bool
}

// Matcher groups per-bookmaker records into canonical Match identities using
// normalized names plus kickoff proximity. It owns the only mutable index of
// the run (canonical pair -> match groups) and is re-entrant: Add may be
// called once with the whole day's batch or repeatedly as each scraper
// finishes, against existing state, under a single mutex.
type Matcher struct {
	norm *Normalizer
	cfg  MatcherConfig

	mu      sync.Mutex
	entries []*matchEntry
	index   map[string][]*matchEntry
	flags   []Flag
}

// matchEntry pairs a match group with its first-seen normalized key, which
// anchors the group's identity for all later comparisons.
type matchEntry struct {
	match *models.Match
	key   Key
	seq   int
}

// NewMatcher builds a matcher over the given normalizer.
func NewMatcher(norm *Normalizer, cfg MatcherConfig) *Matcher {
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = DefaultSimilarityThreshold
	}
	return &Matcher{
		norm:  norm,
		cfg:   cfg,
		index: make(map[string][]*matchEntry),
	}
}

// Add feeds a batch of records into the match set. Malformed records are
// returned as errors and excluded from matching; every other record either
// joins an existing match, starts a new one, or is flagged as a likely
// duplicate scrape. No record ever aborts the batch.
func (m *Matcher) Add(records []models.RawOddsRecord) []error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var rejected []error
	for i := range records {
		rec := records[i]
		key, err := m.norm.Normalize(&rec)
		if err != nil {
			slog.Warn("Matcher: rejecting malformed record", "bookmaker", rec.Bookmaker, "error", err)
			rejected = append(rejected, err)
			continue
		}
		m.place(rec, key)
	}
	return rejected
}

// place routes one normalized record. Caller holds the lock.
func (m *Matcher) place(rec models.RawOddsRecord, key Key) {
	candidates := m.candidatesFor(key)
	if len(candidates) == 0 {
		m.newMatch(rec, key)
		return
	}

	m.rankCandidates(candidates, rec.KickoffTime)
	if len(candidates) > 1 {
		m.flags = append(m.flags, Flag{
			Kind:      FlagAmbiguousMatch,
			MatchID:   candidates[0].match.ID,
			Bookmaker: rec.Bookmaker,
			Detail:    fmt.Sprintf("record also compatible with %s; tie-break chose closer kickoff", candidates[1].match.ID),
			FlaggedAt: time.Now(),
		})
		slog.Warn("Matcher: ambiguous record resolved by tie-break",
			"bookmaker", rec.Bookmaker,
			"chosen", candidates[0].match.ID,
			"runner_up", candidates[1].match.ID)
	}

	// A bookmaker already present in a candidate blocks it. If every
	// compatible group is blocked, this is a repeat scrape of the same
	// fixture: report it, never merge, never fork a phantom match.
	for _, c := range candidates {
		if !c.match.HasBookmaker(rec.Bookmaker) {
			m.join(c, rec, key)
			return
		}
	}
	m.flags = append(m.flags, Flag{
		Kind:      FlagDuplicateBookmaker,
		MatchID:   candidates[0].match.ID,
		Bookmaker: rec.Bookmaker,
		Detail:    fmt.Sprintf("second record from %q for %s", rec.Bookmaker, candidates[0].match.Name()),
		FlaggedAt: time.Now(),
	})
	slog.Warn("Matcher: duplicate record from bookmaker",
		"bookmaker", rec.Bookmaker, "match_id", candidates[0].match.ID)
}

// candidatesFor collects every existing group the key is compatible with.
// Exact canonical equality tolerates equal-or-adjacent kickoff buckets; the
// fuzzy name fallback requires the buckets to be identical, trading tighter
// time tolerance for looser name tolerance to avoid false merges.
func (m *Matcher) candidatesFor(key Key) []*matchEntry {
	var out []*matchEntry
	seen := make(map[*matchEntry]bool)

	for _, e := range m.index[key.PairKey()] {
		if !m.leagueCompatible(key, e.key) {
			continue
		}
		if bucketDistance(key.Bucket, e.key.Bucket) <= m.norm.Bucket() {
			out = append(out, e)
			seen[e] = true
		}
	}

	thr := m.cfg.SimilarityThreshold
	for _, e := range m.entries {
		if seen[e] {
			continue
		}
		if !key.Bucket.Equal(e.key.Bucket) {
			continue
		}
		if !m.leagueCompatible(key, e.key) {
			continue
		}
		if Similarity(key.Home, e.key.Home) >= thr && Similarity(key.Away, e.key.Away) >= thr {
			out = append(out, e)
		}
	}
	return out
}

func (m *Matcher) leagueCompatible(a, b Key) bool {
	if !m.cfg.RequireLeagueMatch {
		return true
	}
	if a.League == "" || b.League == "" {
		return true
	}
	return a.League == b.League
}

// rankCandidates orders by closer kickoff, then more contributing
// bookmakers, then first-seen. The sort is stable over insertion order, so
// grouping is deterministic for any input permutation.
func (m *Matcher) rankCandidates(candidates []*matchEntry, kickoff time.Time) {
	sort.SliceStable(candidates, func(i, j int) bool {
		di := absDuration(kickoff.Sub(candidates[i].match.KickoffTime))
		dj := absDuration(kickoff.Sub(candidates[j].match.KickoffTime))
		if di != dj {
			return di < dj
		}
		ni := len(candidates[i].match.Records)
		nj := len(candidates[j].match.Records)
		if ni != nj {
			return ni > nj
		}
		return candidates[i].seq < candidates[j].seq
	})
}

func (m *Matcher) newMatch(rec models.RawOddsRecord, key Key) {
	match := &models.Match{
		ID:          key.String(),
		HomeTeam:    rec.HomeTeam,
		AwayTeam:    rec.AwayTeam,
		League:      rec.League,
		KickoffTime: rec.KickoffTime,
		Records:     []models.RawOddsRecord{rec},
	}
	e := &matchEntry{match: match, key: key, seq: len(m.entries)}
	m.entries = append(m.entries, e)
	m.index[key.PairKey()] = append(m.index[key.PairKey()], e)
}

func (m *Matcher) join(e *matchEntry, rec models.RawOddsRecord, key Key) {
	e.match.Records = append(e.match.Records, rec)
	// authoritative kickoff is the earliest seen across sources
	if rec.KickoffTime.Before(e.match.KickoffTime) {
		e.match.KickoffTime = rec.KickoffTime
	}
	if e.match.League == "" && rec.League != "" {
		e.match.League = rec.League
	}
	// index the joined spelling too, so the next record with this variant
	// takes the exact path instead of the fuzzy scan
	if pk := key.PairKey(); pk != e.key.PairKey() {
		for _, existing := range m.index[pk] {
			if existing == e {
				return
			}
		}
		m.index[pk] = append(m.index[pk], e)
	}
}

// Matches returns a snapshot of all match groups, ordered by kickoff then ID
// so output is stable across runs.
func (m *Matcher) Matches() []models.Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Match, 0, len(m.entries))
	for _, e := range m.entries {
		cp := *e.match
		cp.Records = append([]models.RawOddsRecord(nil), e.match.Records...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].KickoffTime.Equal(out[j].KickoffTime) {
			return out[i].KickoffTime.Before(out[j].KickoffTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Flags returns the data-quality findings accumulated so far.
func (m *Matcher) Flags() []Flag {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Flag(nil), m.flags...)
}

func bucketDistance(a, b time.Time) time.Duration {
	return absDuration(a.Sub(b))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
