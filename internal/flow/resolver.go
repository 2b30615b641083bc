package flow

import (
	"log/slog"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// DefaultFuzzyThreshold is the minimum 0-100 similarity score for a roster
// entry to be considered a candidate. Empirically chosen; tunable per
// deployment via WithResolverThreshold.
const DefaultFuzzyThreshold = 60

// ResolverResult is the outcome of resolving a host query against the roster:
// no candidate, exactly one, or an ordered disambiguation list.
type ResolverResult struct {
	Match   *models.EmployeeCandidate
	Matches []models.EmployeeCandidate
}

// None reports that no roster entry scored above the threshold.
func (r ResolverResult) None() bool { return r.Match == nil && len(r.Matches) == 0 }

// One reports that exactly one candidate was found.
func (r ResolverResult) One() bool { return r.Match != nil }

// Many reports that multiple candidates need disambiguation.
func (r ResolverResult) Many() bool { return len(r.Matches) > 1 }

// Candidates returns the candidate list regardless of cardinality, suitable
// for rendering a selection list.
func (r ResolverResult) Candidates() []models.EmployeeCandidate {
	if r.Match != nil {
		return []models.EmployeeCandidate{*r.Match}
	}
	return r.Matches
}

// Resolver matches a free-text host name against a directory roster, exact
// match first, fuzzy scoring second.
type Resolver struct {
	threshold int
}

// NewResolver creates a resolver with the given fuzzy score threshold.
// Values outside (0,100] fall back to the default.
func NewResolver(threshold int) *Resolver {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultFuzzyThreshold
	}
	return &Resolver{threshold: threshold}
}

type scoredCandidate struct {
	candidate models.EmployeeCandidate
	score     int
}

// Resolve runs the two-pass match. An exact case-insensitive display-name
// match short-circuits fuzzy scoring entirely. Roster entries missing either a
// display name or an email address are never considered.
func (r *Resolver) Resolve(query string, roster []models.EmployeeCandidate) ResolverResult {
	search := strings.ToLower(strings.TrimSpace(query))
	if search == "" {
		return ResolverResult{}
	}

	for _, entry := range roster {
		if entry.DisplayName == "" || entry.Email == "" {
			continue
		}
		if strings.ToLower(strings.TrimSpace(entry.DisplayName)) == search {
			slog.Debug("Resolver exact match", "query", query, "match", entry.DisplayName)
			e := entry
			return ResolverResult{Match: &e}
		}
	}

	var scored []scoredCandidate
	for _, entry := range roster {
		if entry.DisplayName == "" || entry.Email == "" {
			continue
		}
		score := bestScore(search, strings.ToLower(entry.DisplayName))
		if score >= r.threshold {
			scored = append(scored, scoredCandidate{candidate: entry, score: score})
		}
	}

	if len(scored) == 0 {
		slog.Debug("Resolver found no matches", "query", query)
		return ResolverResult{}
	}
	if len(scored) == 1 {
		slog.Debug("Resolver found single fuzzy match", "query", query, "match", scored[0].candidate.DisplayName, "score", scored[0].score)
		return ResolverResult{Match: &scored[0].candidate}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	matches := make([]models.EmployeeCandidate, len(scored))
	for i, s := range scored {
		matches[i] = s.candidate
	}
	slog.Debug("Resolver found multiple matches", "query", query, "count", len(matches))
	return ResolverResult{Matches: matches}
}

// bestScore computes the entry's similarity as the maximum of four methods:
// whole-string ratio, partial ratio, token-sort ratio, and the best ratio
// against any single name token.
func bestScore(search, name string) int {
	best := fuzzy.Ratio(search, name)
	if s := fuzzy.PartialRatio(search, name); s > best {
		best = s
	}
	if s := fuzzy.TokenSortRatio(search, name); s > best {
		best = s
	}
	for _, part := range strings.Fields(name) {
		if s := fuzzy.Ratio(search, part); s > best {
			best = s
		}
	}
	return best
}
