package funnel

import (
	"testing"
	"time"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func TestScoreSemanticWithinBounds(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1", Sector: "ICT", KeyTechnologies: []string{"인공지능"}}
	prog := matchmodel.FundingProgram{ID: "prog-1", Title: "인공지능 기술개발 지원사업", Keywords: []string{"인공지능"}}
	classified := classifier.Classify(prog.Title, prog.Title, prog.Ministry)

	got := ScoreSemantic(org, prog, classified, time.Now(), Options{})
	if got.Score < semanticMin || got.Score > semanticMax {
		t.Errorf("Score = %v, want within [%v, %v]", got.Score, semanticMin, semanticMax)
	}
}

func TestScoreSemanticNoIAPUsesKeywordOverlapFallback(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1", Sector: "ICT", KeyTechnologies: []string{"빅데이터", "클라우드"}}
	progMatch := matchmodel.FundingProgram{ID: "p1", Title: "빅데이터 클라우드 플랫폼 지원사업", Keywords: []string{"빅데이터", "클라우드"}}
	progNoMatch := matchmodel.FundingProgram{ID: "p2", Title: "전통 공예 지원사업", Keywords: []string{"공예"}}

	classified := classifier.Classify(progMatch.Title, progMatch.Title, progMatch.Ministry)
	withMatch := ScoreSemantic(org, progMatch, classified, time.Now(), Options{})

	classifiedNo := classifier.Classify(progNoMatch.Title, progNoMatch.Title, progNoMatch.Ministry)
	withoutMatch := ScoreSemantic(org, progNoMatch, classifiedNo, time.Now(), Options{})

	if withMatch.CapabilityFit <= withoutMatch.CapabilityFit {
		t.Errorf("expected keyword-overlapping program to score higher capability fit: %v vs %v", withMatch.CapabilityFit, withoutMatch.CapabilityFit)
	}
}

func TestScoreSemanticNonEnrichedPenaltyReducesDomainRelevance(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1", Sector: "ICT", KeyTechnologies: []string{"인공지능"}}
	prog := matchmodel.FundingProgram{ID: "prog-1", Title: "인공지능 지원사업"}
	classified := classifier.Classify(prog.Title, prog.Title, prog.Ministry)

	withoutPenalty := ScoreSemantic(org, prog, classified, time.Now(), Options{NonEnrichedPenalty: false})
	withPenalty := ScoreSemantic(org, prog, classified, time.Now(), Options{NonEnrichedPenalty: true})

	if withPenalty.DomainRelevance >= withoutPenalty.DomainRelevance {
		t.Errorf("expected NonEnrichedPenalty to reduce DomainRelevance: with=%v without=%v", withPenalty.DomainRelevance, withoutPenalty.DomainRelevance)
	}
}

func TestScoreIntentAlignmentMissingTRLReturnsDefault(t *testing.T) {
	got := scoreIntentAlignment(matchmodel.IntentAppliedResearch, nil)
	if got != 4.0 {
		t.Errorf("scoreIntentAlignment(nil TRL) = %v, want 4.0", got)
	}
}

func TestScoreIntentAlignmentCommercializationRewardsHighTRL(t *testing.T) {
	high := 8
	low := 2
	gotHigh := scoreIntentAlignment(matchmodel.IntentCommercialization, &high)
	gotLow := scoreIntentAlignment(matchmodel.IntentCommercialization, &low)
	if gotHigh <= gotLow {
		t.Errorf("expected commercialization intent to favor high TRL: high=%v low=%v", gotHigh, gotLow)
	}
}

func TestNegativeSignalsForReturnsFiredSignals(t *testing.T) {
	org := matchmodel.Organization{Sector: "BIO"}
	prog := matchmodel.FundingProgram{Title: "해양수산 기술개발 지원사업"}
	classified := classifier.Classify(prog.Title, prog.Title, prog.Ministry)

	got := NegativeSignalsFor(org, prog, classified)
	for _, s := range got {
		if s.Penalty > 0 {
			t.Errorf("NegativeSignal %+v has a positive penalty, want <= 0", s)
		}
	}
}
