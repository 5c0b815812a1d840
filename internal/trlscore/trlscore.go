// Package trlscore implements the graduated TRL compatibility scorer of
// spec.md §4.4.
package trlscore

import "github.com/joelkehle/kmatch/internal/matchmodel"

const (
	ReasonNotProvided  = "TRL_NOT_PROVIDED"
	ReasonNoRequirement = "TRL_NO_REQUIREMENT"
	ReasonPerfectMatch  = "TRL_PERFECT_MATCH"
	ReasonBelowRange    = "TRL_BELOW_RANGE"
	ReasonAboveRange    = "TRL_ABOVE_RANGE"
)

// Result is the scorer's output: a score in [0,20], a reason code, and the
// unsigned distance to the nearest range edge (0 when inside the range;
// Reason tells below from above).
type Result struct {
	Score      float64
	Reason     string
	Difference int
}

// Score implements spec.md §4.4's rule table. orgTRL is nil when the
// organization's (matching) TRL is unknown.
func Score(orgTRL *int, trlRange matchmodel.TRLRange) Result {
	if orgTRL == nil {
		return Result{Score: 5, Reason: ReasonNotProvided}
	}
	if !trlRange.HasRequirement() {
		return Result{Score: 15, Reason: ReasonNoRequirement}
	}
	if trlRange.Contains(*orgTRL) {
		return Result{Score: 20, Reason: ReasonPerfectMatch}
	}

	trl := *orgTRL
	var distance int
	below := trlRange.Min != nil && trl < *trlRange.Min
	if below {
		distance = *trlRange.Min - trl
	} else {
		distance = trl - *trlRange.Max
	}

	reason := ReasonAboveRange
	if below {
		reason = ReasonBelowRange
	}

	return Result{Score: scoreForDistance(distance, below), Reason: reason, Difference: distance}
}

// scoreForDistance implements the graduated table: overqualified (above
// range) scores strictly higher than underqualified at the same distance
// for distances 1 to 3; beyond that both score 0 (spec.md §4.4
// "Over-qualified scores higher than under-qualified").
func scoreForDistance(d int, below bool) float64 {
	switch {
	case d == 1:
		if below {
			return 12
		}
		return 15
	case d == 2:
		if below {
			return 6
		}
		return 10
	case d == 3:
		if below {
			return 3
		}
		return 5
	default:
		return 0
	}
}
