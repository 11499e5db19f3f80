package engine

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/akratos/surebet/internal/pkg/models"
)

const DefaultKickoffBucket = 15 * time.Minute

// Key is the normalized identity of a raw record: canonical team names, a
// canonical league, and the kickoff rounded to a coarse bucket that absorbs
// cross-site clock and timezone skew. Keys are derived, never stored.
type Key struct {
	Home   string
	Away   string
	League string
	Bucket time.Time
}

// PairKey returns the index key for the team pair.
func (k Key) PairKey() string {
	return k.Home + "|" + k.Away
}

// String renders the key the way match IDs are built: home|away|bucket.
func (k Key) String() string {
	return k.Home + "|" + k.Away + "|" + k.Bucket.UTC().Format(time.RFC3339)
}

// Normalizer canonicalizes team names, league names and kickoff timestamps
// into comparable forms. Pure and deterministic: same record, same key.
type Normalizer struct {
	aliases *AliasTable
	bucket  time.Duration
	loc     *time.Location
}

// NewNormalizer builds a normalizer. A nil alias table means no aliasing;
// a zero bucket falls back to 15 minutes; a nil location means UTC.
func NewNormalizer(aliases *AliasTable, bucket time.Duration, loc *time.Location) *Normalizer {
	if bucket <= 0 {
		bucket = DefaultKickoffBucket
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{aliases: aliases, bucket: bucket, loc: loc}
}

// Normalize derives the record's normalized key. Records missing a team name
// or a kickoff time are rejected with MalformedRecordError so the caller can
// report them instead of silently dropping them.
func (n *Normalizer) Normalize(rec *models.RawOddsRecord) (Key, error) {
	home := n.CanonicalTeam(rec.HomeTeam)
	away := n.CanonicalTeam(rec.AwayTeam)
	if home == "" {
		return Key{}, &MalformedRecordError{Bookmaker: rec.Bookmaker, Reason: "empty home team"}
	}
	if away == "" {
		return Key{}, &MalformedRecordError{Bookmaker: rec.Bookmaker, Reason: "empty away team"}
	}
	if rec.KickoffTime.IsZero() {
		return Key{}, &MalformedRecordError{Bookmaker: rec.Bookmaker, Reason: "missing kickoff time"}
	}
	return Key{
		Home:   home,
		Away:   away,
		League: normalizeName(rec.League),
		Bucket: n.BucketTime(rec.KickoffTime),
	}, nil
}

// CanonicalTeam normalizes a team name and resolves it through the alias
// table. Unknown names pass through normalized but unaliased.
func (n *Normalizer) CanonicalTeam(name string) string {
	return n.aliases.Canonical(normalizeName(name))
}

// BucketTime rounds a kickoff to the nearest bucket in the reference
// location. 19:05 and 19:10 land in the same 15-minute bucket; 19:00 and
// 19:08 land in adjacent ones, which the matcher tolerates.
func (n *Normalizer) BucketTime(t time.Time) time.Time {
	return t.In(n.loc).Round(n.bucket)
}

// Bucket returns the configured bucket width.
func (n *Normalizer) Bucket() time.Duration {
	return n.bucket
}

// teamSuffixes are stripped only at the END of a name, following the rule
// that "FC Barcelona" keeps its prefix but "Liverpool FC" drops the suffix.
// Age groups (U19, U21), B teams and (W) markers are deliberately kept:
// those are different teams, not spelling variants.
var teamSuffixes = []string{" fc", " cf", " sc", " ac"}

// normalizeName canonicalizes a single name: lowercase, diacritics stripped,
// punctuation collapsed to spaces, trailing club abbreviations removed.
func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = stripDiacritics(s)

	// dots vanish so "F.C." collapses to "fc" before suffix stripping;
	// all other punctuation becomes a space
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '.':
		default:
			b.WriteRune(' ')
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")

	for _, suf := range teamSuffixes {
		if strings.HasSuffix(s, suf) {
			trimmed := strings.TrimSpace(strings.TrimSuffix(s, suf))
			if trimmed != "" {
				s = trimmed
			}
			break
		}
	}
	return s
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return out
}
