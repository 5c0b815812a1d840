package funnel

import "github.com/joelkehle/kmatch/internal/matchmodel"

// BuildV4Breakdown reconstructs the legacy v4 field shape directly from
// the v6 components (spec.md §4.12). Per spec.md §9, the two are not
// required to reconcile exactly through the float/int rounding boundary —
// this is a presentation convenience for legacy consumers, not a
// parallel scoring path.
func BuildV4Breakdown(semantic matchmodel.SemanticBreakdown, practical matchmodel.PracticalBreakdown) matchmodel.V4Breakdown {
	return matchmodel.V4Breakdown{
		KeywordScore:  semantic.DomainRelevance,
		IndustryScore: semantic.CapabilityFit + semantic.IntentAlignment,
		TRLScore:      practical.TRLAlignment,
		TypeScore:     practical.ScaleFit,
		RDScore:       practical.RDTrack,
		DeadlineScore: practical.DeadlineUrgency,
	}
}
