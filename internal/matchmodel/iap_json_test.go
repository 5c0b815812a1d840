package matchmodel

import (
	"testing"
)

func TestMarshalUnmarshalIAPRoundTrip(t *testing.T) {
	center := 5.5
	minYears := 2
	profile := &IdealApplicantProfile{
		Version:           IAPSchemaVersion,
		OrganizationTypes: []OrganizationType{OrgTypeCompany},
		PreferredScales:   []CompanyScale{ScaleStartup, ScaleSmall},
		BusinessAge:       &BusinessAge{MinYears: &minYears, PreferredStage: "GROWTH"},
		TRLRange:          &IdealTRLRange{IdealCenter: &center},
		ProgramStage:      IntentAppliedResearch,
		SubDomains:        []string{"AI", "반도체"},
		Confidence:        0.7,
		GeneratedBy:       GeneratedByHybrid,
		DimensionConfidence: map[string]DimensionConfidence{
			DimSubDomains: ConfidenceMedium,
		},
	}

	data, err := MarshalIAP(profile)
	if err != nil {
		t.Fatalf("MarshalIAP: %v", err)
	}

	got, err := UnmarshalIAP(data)
	if err != nil {
		t.Fatalf("UnmarshalIAP: %v", err)
	}

	if got.Version != profile.Version {
		t.Errorf("Version = %q, want %q", got.Version, profile.Version)
	}
	if got.ProgramStage != profile.ProgramStage {
		t.Errorf("ProgramStage = %q, want %q", got.ProgramStage, profile.ProgramStage)
	}
	if len(got.SubDomains) != 2 || got.SubDomains[1] != "반도체" {
		t.Errorf("SubDomains = %v, want preserved unicode entries", got.SubDomains)
	}
	if got.TRLRange == nil || got.TRLRange.IdealCenter == nil || *got.TRLRange.IdealCenter != 5.5 {
		t.Errorf("TRLRange.IdealCenter not preserved through round trip")
	}
	if got.DimensionConfidence[DimSubDomains] != ConfidenceMedium {
		t.Errorf("DimensionConfidence not preserved through round trip")
	}
}

func TestMarshalIAPNil(t *testing.T) {
	if _, err := MarshalIAP(nil); err == nil {
		t.Fatal("expected an error marshaling a nil profile")
	}
}

func TestIAPSchemaVersionOf(t *testing.T) {
	data, err := MarshalIAP(NewIdealApplicantProfile())
	if err != nil {
		t.Fatalf("MarshalIAP: %v", err)
	}
	if got := IAPSchemaVersionOf(data); got != IAPSchemaVersion {
		t.Errorf("IAPSchemaVersionOf = %q, want %q", got, IAPSchemaVersion)
	}
	if got := IAPSchemaVersionOf([]byte(`{}`)); got != "" {
		t.Errorf("IAPSchemaVersionOf of a document with no version = %q, want empty", got)
	}
}

func TestCountConfidenceLevels(t *testing.T) {
	p := NewIdealApplicantProfile()
	p.SetConfidence(DimSubDomains, ConfidenceHigh)
	p.SetConfidence(DimPrimaryDomain, ConfidenceMedium)
	p.SetConfidence(DimRegionRequirement, ConfidenceLow)

	high, medium := p.CountConfidenceLevels()
	if high != 1 || medium != 1 {
		t.Errorf("CountConfidenceLevels = (%d, %d), want (1, 1)", high, medium)
	}
}
