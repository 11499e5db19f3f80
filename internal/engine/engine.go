package engine

import (
	"sort"
	"time"

	"github.com/akratos/surebet/internal/pkg/models"
)

// Config collects the engine knobs in one place.
type Config struct {
	KickoffBucket       time.Duration
	SimilarityThreshold float64
	RequireLeagueMatch  bool
	ReferenceLocation   *time.Location
	TotalStake          float64
}

// Engine wires normalizer, matcher and calculator into one pipeline:
// raw records in, matches / odds tables / opportunities out. Derived state
// (tables, opportunities) is cheap, so it is recomputed on every query
// instead of incrementally patched.
type Engine struct {
	matcher *Matcher
	calc    *Calculator
}

// New builds an engine. The alias table may be nil.
func New(aliases *AliasTable, cfg Config) *Engine {
	norm := NewNormalizer(aliases, cfg.KickoffBucket, cfg.ReferenceLocation)
	return &Engine{
		matcher: NewMatcher(norm, MatcherConfig{
			SimilarityThreshold: cfg.SimilarityThreshold,
			RequireLeagueMatch:  cfg.RequireLeagueMatch,
		}),
		calc: NewCalculator(cfg.TotalStake),
	}
}

// Add feeds a batch of records into the match set; safe to call once per
// bookmaker as scrapers finish. Malformed records come back as errors.
func (e *Engine) Add(records []models.RawOddsRecord) []error {
	return e.matcher.Add(records)
}

// Matches returns the current canonical match set.
func (e *Engine) Matches() []models.Match {
	return e.matcher.Matches()
}

// Tables rebuilds the odds table of every match.
func (e *Engine) Tables() []models.OddsTable {
	matches := e.matcher.Matches()
	tables := make([]models.OddsTable, 0, len(matches))
	for i := range matches {
		tables = append(tables, BuildOddsTable(&matches[i]))
	}
	return tables
}

// Opportunities evaluates every match and returns the arbitrable subset,
// highest profit first, along with any invalid-odds flags raised while
// evaluating.
func (e *Engine) Opportunities() ([]models.Opportunity, []Flag) {
	var opps []models.Opportunity
	var flags []Flag
	for _, table := range e.Tables() {
		opp, evalFlags := e.calc.Evaluate(&table)
		flags = append(flags, evalFlags...)
		if opp != nil {
			opps = append(opps, *opp)
		}
	}
	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ProfitPercent > opps[j].ProfitPercent
	})
	return opps, flags
}

// Flags returns the matcher's accumulated data-quality findings.
func (e *Engine) Flags() []Flag {
	return e.matcher.Flags()
}
