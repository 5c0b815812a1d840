package classifier

import (
	"testing"

	"github.com/joelkehle/kmatch/internal/taxonomy"
)

func TestClassifyMinistryPrior(t *testing.T) {
	got := Classify("사업 공고", "", "과학기술정보통신부")
	if got.Industry != taxonomy.SectorICT {
		t.Errorf("Industry = %v, want %v", got.Industry, taxonomy.SectorICT)
	}
	if !got.MinistryBased {
		t.Error("expected MinistryBased = true for a known ministry")
	}
}

func TestClassifyKeywordScan(t *testing.T) {
	got := Classify("스마트공장 고도화 지원사업", "", "")
	if got.Industry != taxonomy.SectorManufacturing {
		t.Errorf("Industry = %v, want %v", got.Industry, taxonomy.SectorManufacturing)
	}
	if got.MinistryBased {
		t.Error("expected MinistryBased = false without a known ministry")
	}
}

func TestClassifyNoSignal(t *testing.T) {
	got := Classify("", "", "")
	if got.Industry != taxonomy.SectorGeneral {
		t.Errorf("Industry = %v, want %v (general fallback)", got.Industry, taxonomy.SectorGeneral)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}
}

func TestClassifyConfidenceCapped(t *testing.T) {
	// Ministry prior (10) plus many keyword hits should still cap at 1.0.
	got := Classify("인공지능 빅데이터 클라우드 AI 인공지능 머신러닝 딥러닝", "", "과학기술정보통신부")
	if got.Confidence > 1.0 {
		t.Errorf("Confidence = %v, want <= 1.0", got.Confidence)
	}
}

func TestClassifyExtendedRegionalFilter(t *testing.T) {
	got := ClassifyExtended("지역혁신 기업 지원", "", "", "비수도권 중소기업 대상")
	if !got.RequiresRegionalFilter {
		t.Error("expected RequiresRegionalFilter = true")
	}
	if len(got.MatchedRegionalKeywords) == 0 {
		t.Error("expected at least one matched regional keyword")
	}

	none := ClassifyExtended("전국 대상 지원사업", "", "", "")
	if none.RequiresRegionalFilter {
		t.Error("expected RequiresRegionalFilter = false with no regional keywords")
	}
}

func TestNormalizeOrgSector(t *testing.T) {
	cases := map[string]taxonomy.Sector{
		"bio":     taxonomy.SectorBioHealth,
		"BioHealth": taxonomy.SectorBioHealth,
		"health":  taxonomy.SectorBioHealth,
		"ict":     taxonomy.SectorICT,
		"it":      taxonomy.SectorICT,
	}
	for in, want := range cases {
		if got := NormalizeOrgSector(in); got != want {
			t.Errorf("NormalizeOrgSector(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestGetIndustryRelevanceExactMatch(t *testing.T) {
	if got := GetIndustryRelevance("ICT", taxonomy.SectorICT); got != 1.0 {
		t.Errorf("GetIndustryRelevance exact match = %v, want 1.0", got)
	}
}

func TestGetIndustryRelevanceDefault(t *testing.T) {
	got := GetIndustryRelevance("DEFENSE", taxonomy.SectorAgriculture)
	if got != 0.2 {
		t.Errorf("GetIndustryRelevance default = %v, want 0.2", got)
	}
}

func TestGetIndustryRelevanceCrossCell(t *testing.T) {
	got := GetIndustryRelevance("ICT", taxonomy.SectorManufacturing)
	if got != 0.35 {
		t.Errorf("GetIndustryRelevance cross cell = %v, want 0.35", got)
	}
}
