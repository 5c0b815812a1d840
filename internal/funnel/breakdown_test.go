package funnel

import (
	"testing"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func TestBuildV4BreakdownMapsComponents(t *testing.T) {
	semantic := matchmodel.SemanticBreakdown{DomainRelevance: 20, CapabilityFit: 10, IntentAlignment: 8}
	practical := matchmodel.PracticalBreakdown{TRLAlignment: 6, ScaleFit: 4, RDTrack: 3, DeadlineUrgency: 7}

	got := BuildV4Breakdown(semantic, practical)

	if got.KeywordScore != 20 {
		t.Errorf("KeywordScore = %v, want 20", got.KeywordScore)
	}
	if got.IndustryScore != 18 {
		t.Errorf("IndustryScore = %v, want 18 (capabilityFit + intentAlignment)", got.IndustryScore)
	}
	if got.TRLScore != 6 {
		t.Errorf("TRLScore = %v, want 6", got.TRLScore)
	}
	if got.TypeScore != 4 {
		t.Errorf("TypeScore = %v, want 4", got.TypeScore)
	}
	if got.RDScore != 3 {
		t.Errorf("RDScore = %v, want 3", got.RDScore)
	}
	if got.DeadlineScore != 7 {
		t.Errorf("DeadlineScore = %v, want 7", got.DeadlineScore)
	}
}
