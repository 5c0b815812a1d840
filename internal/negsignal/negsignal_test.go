package negsignal

import (
	"testing"

	"github.com/joelkehle/kmatch/internal/taxonomy"
)

func TestDetectBioMismatch(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorBioHealth, "신약 개발 임상시험 지원사업", false)
	if !hasCode(signals, "DOMAIN_MISMATCH_BIO") {
		t.Fatalf("expected DOMAIN_MISMATCH_BIO to fire, got %+v", signals)
	}
}

func TestDetectMarineMismatch(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorMarine, "조선 기자재 국산화", false)
	if !hasCode(signals, "DOMAIN_MISMATCH_MARINE") {
		t.Fatalf("expected DOMAIN_MISMATCH_MARINE to fire, got %+v", signals)
	}
}

func TestDetectAgricultureSmartFarmExemption(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorAgriculture, "스마트팜 데이터 플랫폼 구축", false)
	if hasCode(signals, "DOMAIN_MISMATCH_AGRICULTURE") {
		t.Fatalf("expected the smart-farm exemption to suppress DOMAIN_MISMATCH_AGRICULTURE, got %+v", signals)
	}
}

func TestDetectAgricultureMismatchWithoutExemption(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorAgriculture, "농산물 유통 지원사업", false)
	if !hasCode(signals, "DOMAIN_MISMATCH_AGRICULTURE") {
		t.Fatalf("expected DOMAIN_MISMATCH_AGRICULTURE to fire, got %+v", signals)
	}
}

func TestDetectDefenseCyberExemption(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorDefense, "사이버보안 기술 고도화", false)
	if hasCode(signals, "DOMAIN_MISMATCH_DEFENSE") {
		t.Fatalf("expected the cyber-defense exemption to suppress DOMAIN_MISMATCH_DEFENSE, got %+v", signals)
	}
}

func TestDetectStartupLargeScaleDemo(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorICT, "대규모 실증사업 지원", true)
	if !hasCode(signals, ScaleStartupLargeScaleDemoCode) {
		t.Fatalf("expected %s to fire, got %+v", ScaleStartupLargeScaleDemoCode, signals)
	}

	notStartup := Detect(taxonomy.SectorICT, taxonomy.SectorICT, "대규모 실증사업 지원", false)
	if hasCode(notStartup, ScaleStartupLargeScaleDemoCode) {
		t.Fatalf("expected %s not to fire for a non-startup scale, got %+v", ScaleStartupLargeScaleDemoCode, notStartup)
	}
}

func TestDetectSameSectorNoMismatch(t *testing.T) {
	signals := Detect(taxonomy.SectorICT, taxonomy.SectorICT, "AI 플랫폼 고도화 지원사업", false)
	if len(signals) != 0 {
		t.Fatalf("expected no signals for a matching sector pair, got %+v", signals)
	}
}

func TestClampedTotal(t *testing.T) {
	cases := []struct {
		penalties []float64
		want      float64
	}{
		{[]float64{-3, -4}, -7},
		{[]float64{-8, -8}, -10},
		{nil, 0},
		{[]float64{5, 5}, 0},
	}
	for _, tc := range cases {
		if got := ClampedTotal(tc.penalties); got != tc.want {
			t.Errorf("ClampedTotal(%v) = %v, want %v", tc.penalties, got, tc.want)
		}
	}
}

func hasCode(signals []Signal, code string) bool {
	for _, s := range signals {
		if s.Code == code {
			return true
		}
	}
	return false
}
