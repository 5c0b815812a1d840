package iap

import (
	"testing"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func intp(v int) *int { return &v }

func TestGenerateRuleProfileTRLRange(t *testing.T) {
	prog := matchmodel.FundingProgram{
		Title: "시제품 개발 지원사업",
		TRL:   matchmodel.TRLRange{Min: intp(3), Max: intp(5)},
	}
	p := GenerateRuleProfile(prog)

	if p.TRLRange == nil || p.TRLRange.IdealCenter == nil {
		t.Fatal("expected a TRLRange with an IdealCenter derived from min/max")
	}
	if *p.TRLRange.IdealCenter != 4 {
		t.Errorf("IdealCenter = %v, want 4", *p.TRLRange.IdealCenter)
	}
	if p.DimensionConfidence[matchmodel.DimTRLRange] != matchmodel.ConfidenceHigh {
		t.Errorf("expected HIGH confidence for an explicit TRL range")
	}
}

func TestGenerateRuleProfileStageInferredFromTRL(t *testing.T) {
	prog := matchmodel.FundingProgram{TRL: matchmodel.TRLRange{Min: intp(1), Max: intp(3)}}
	p := GenerateRuleProfile(prog)

	if p.ProgramStage != matchmodel.IntentBasicResearch {
		t.Errorf("ProgramStage = %v, want %v", p.ProgramStage, matchmodel.IntentBasicResearch)
	}
	if p.DimensionConfidence[matchmodel.DimProgramStage] != matchmodel.ConfidenceInferred {
		t.Errorf("expected INFERRED confidence when the stage is derived from the TRL midpoint")
	}
}

func TestGenerateRuleProfileExplicitStageOverridesInference(t *testing.T) {
	prog := matchmodel.FundingProgram{
		TRL:           matchmodel.TRLRange{Min: intp(1), Max: intp(3)},
		ProgramIntent: matchmodel.IntentCommercialization,
	}
	p := GenerateRuleProfile(prog)
	if p.ProgramStage != matchmodel.IntentCommercialization {
		t.Errorf("ProgramStage = %v, want explicit intent to win", p.ProgramStage)
	}
	if p.DimensionConfidence[matchmodel.DimProgramStage] != matchmodel.ConfidenceHigh {
		t.Errorf("expected HIGH confidence for an explicit program intent")
	}
}

func TestGenerateRuleProfileSMECodes(t *testing.T) {
	prog := matchmodel.FundingProgram{IsSME: true, SMEScaleCode: "CC10", SMEStageCode: "LC01"}
	p := GenerateRuleProfile(prog)

	if len(p.PreferredScales) != 1 || p.PreferredScales[0] != matchmodel.ScaleSmallMedium {
		t.Errorf("PreferredScales = %v, want [SMALL_MEDIUM]", p.PreferredScales)
	}
	if p.CollaborationExpectation != "STARTUP_FOCUSED" {
		t.Errorf("CollaborationExpectation = %q, want STARTUP_FOCUSED", p.CollaborationExpectation)
	}
}

func TestGenerateRuleProfileRegionInference(t *testing.T) {
	nonMetro := GenerateRuleProfile(matchmodel.FundingProgram{Title: "비수도권 중소기업 지원사업"})
	if nonMetro.RegionRequirement != matchmodel.RegionNonMetropolitan {
		t.Errorf("RegionRequirement = %v, want NON_METROPOLITAN", nonMetro.RegionRequirement)
	}

	specific := GenerateRuleProfile(matchmodel.FundingProgram{Title: "부산 지역 스타트업 지원"})
	if specific.RegionRequirement != matchmodel.RegionSpecific {
		t.Errorf("RegionRequirement = %v, want SPECIFIC_REGIONS", specific.RegionRequirement)
	}
	if len(specific.SpecificRegions) == 0 {
		t.Error("expected at least one specific region name extracted")
	}

	nationwide := GenerateRuleProfile(matchmodel.FundingProgram{Title: "전국 지원사업"})
	if nationwide.RegionRequirement != matchmodel.RegionNationwide {
		t.Errorf("RegionRequirement = %v, want NATIONWIDE", nationwide.RegionRequirement)
	}
}

func TestGenerateRuleProfilePrimaryDomain(t *testing.T) {
	p := GenerateRuleProfile(matchmodel.FundingProgram{Title: "인공지능 기술개발 지원사업", Ministry: "과학기술정보통신부"})
	if p.PrimaryDomain != "ICT" {
		t.Errorf("PrimaryDomain = %q, want ICT", p.PrimaryDomain)
	}
	if p.DimensionConfidence[matchmodel.DimPrimaryDomain] != matchmodel.ConfidenceHigh {
		t.Errorf("expected HIGH confidence for a ministry-based classification")
	}
}
