package iap

import (
	"context"
	"testing"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

// fakeCompleter is a hand-written Completer stand-in, grounded on the
// queueCaller pattern used elsewhere in this module for LLM boundary tests.
type fakeCompleter struct {
	responses []string
	calls     int
	usage     Usage
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userMessage string, opts CompleteOptions) (CompleteResult, error) {
	if f.calls >= len(f.responses) {
		return CompleteResult{}, context.DeadlineExceeded
	}
	resp := f.responses[f.calls]
	f.calls++
	return CompleteResult{Text: resp, Usage: f.usage}, nil
}

const validTier2JSON = `{"programStage":"APPLIED_RESEARCH","subDomains":["AI"],"expectedCapabilities":["머신러닝"],"desiredOutcomes":["상용화"],"collaborationExpectation":"","idealTrlCenter":5,"financialRequiresMatchingFund":false}`

func TestGenerateRuleOnlyWhenUseLLMFalse(t *testing.T) {
	g := NewGenerator(&fakeCompleter{responses: []string{validTier2JSON}}, DefaultCostRates)
	prog := matchmodel.FundingProgram{Title: "시제품 개발 지원사업", Description: "시제품 개발을 지원하는 사업입니다. 참여 기업은 기술 검증을 수행합니다."}

	result := g.Generate(context.Background(), prog, false)
	if result.UsedLLM {
		t.Fatal("expected UsedLLM = false when useLLM is false")
	}
	if result.CostKRW != 0 {
		t.Fatalf("CostKRW = %v, want 0 for a rule-only generation", result.CostKRW)
	}
	if result.Profile == nil {
		t.Fatal("expected a non-nil profile even in rule-only mode")
	}
}

func TestGenerateHybridMergesTier2(t *testing.T) {
	completer := &fakeCompleter{responses: []string{validTier2JSON}, usage: Usage{InputTokens: 500, OutputTokens: 100}}
	g := NewGenerator(completer, DefaultCostRates)
	prog := matchmodel.FundingProgram{
		Title:       "인공지능 기반 신약개발 플랫폼 지원사업",
		Description: "인공지능을 활용한 신약개발 플랫폼 구축을 지원하는 사업으로, 참여기업은 임상 단계 진입을 목표로 한다.",
	}

	result := g.Generate(context.Background(), prog, true)
	if !result.UsedLLM {
		t.Fatal("expected UsedLLM = true")
	}
	if result.CostKRW <= 0 {
		t.Fatalf("CostKRW = %v, want > 0 after a billed LLM call", result.CostKRW)
	}
	if len(result.Profile.SubDomains) == 0 || result.Profile.SubDomains[0] != "AI" {
		t.Errorf("SubDomains = %v, want tier-2 merge to set [AI]", result.Profile.SubDomains)
	}
}

func TestGenerateFallsBackOnTier2Failure(t *testing.T) {
	completer := &fakeCompleter{responses: []string{"not json"}}
	g := NewGenerator(completer, DefaultCostRates)
	prog := matchmodel.FundingProgram{
		Title:       "바이오 헬스케어 진단 기술 개발",
		Description: "체외진단 분야의 신규 바이오마커 발굴을 지원하는 연구개발 사업입니다. 임상 검증을 포함합니다.",
	}

	result := g.Generate(context.Background(), prog, true)
	if result.UsedLLM {
		t.Fatal("expected UsedLLM = false after exhausting tier-2 retries on invalid JSON")
	}
	if result.Profile == nil {
		t.Fatal("expected a rule-only profile fallback, not nil")
	}
}

func TestGenerateSkipsTier2WhenSourceTextTooShort(t *testing.T) {
	completer := &fakeCompleter{responses: []string{validTier2JSON}}
	g := NewGenerator(completer, DefaultCostRates)
	prog := matchmodel.FundingProgram{Title: "짧은 제목"}

	result := g.Generate(context.Background(), prog, true)
	if result.UsedLLM {
		t.Fatal("expected UsedLLM = false when the source text is below the minimum length")
	}
	if completer.calls != 0 {
		t.Fatalf("expected the completer not to be called, got %d calls", completer.calls)
	}
}

func TestFinalizeConfidenceFloorsAtPointOne(t *testing.T) {
	p := matchmodel.NewIdealApplicantProfile()
	finalizeConfidence(p)
	if p.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1 for a profile with no set dimensions", p.Confidence)
	}
	if p.GeneratedBy != matchmodel.GeneratedByRule {
		t.Errorf("GeneratedBy = %v, want RULE", p.GeneratedBy)
	}
}

func TestFinalizeConfidenceCapsAtOne(t *testing.T) {
	p := matchmodel.NewIdealApplicantProfile()
	dims := []string{
		matchmodel.DimOrganizationTypes, matchmodel.DimPreferredScales, matchmodel.DimAcceptableScales,
		matchmodel.DimBusinessAge, matchmodel.DimTRLRange, matchmodel.DimProgramStage,
		matchmodel.DimFinancialProfile, matchmodel.DimRequiredCertifications, matchmodel.DimPreferredCertifications,
		matchmodel.DimRegionRequirement, matchmodel.DimCollaborationExpectation, matchmodel.DimRequiresResearchInstitute,
		matchmodel.DimPrimaryDomain, matchmodel.DimSubDomains, matchmodel.DimTechnologyKeywords,
	}
	for _, d := range dims {
		p.SetConfidence(d, matchmodel.ConfidenceHigh)
	}
	finalizeConfidence(p)
	if p.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want capped at 1.0", p.Confidence)
	}
}
