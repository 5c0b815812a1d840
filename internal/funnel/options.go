// Package funnel implements the matching funnel of spec.md §4.9–§4.12: the
// eligibility gate, semantic scorer, practical scorer, and orchestrator
// that together produce ranked MatchScores.
package funnel

// Options configures a generateMatches call (spec.md §6.2).
type Options struct {
	IncludeExpired bool
	MinimumScore   int

	// NonEnrichedPenalty implements the SPEC_FULL.md supplement #2 /
	// spec.md §9 open question: when true, a program with no IAP scored
	// against an organization that has rich semantic data loses 15 points
	// of its semantic domain-relevance component (floored at 0). Off by
	// default, per spec.md §9's
	// direction that v6 omits this unless flagged back in.
	NonEnrichedPenalty bool
}

// DefaultMinimumScore is spec.md §6.2's default minimumScore.
const DefaultMinimumScore = 55

// WithDefaults fills in the documented defaults for zero-value fields.
func (o Options) WithDefaults() Options {
	if o.MinimumScore == 0 {
		o.MinimumScore = DefaultMinimumScore
	}
	return o
}
