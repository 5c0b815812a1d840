package matchmodel

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// iapWire is the on-the-wire JSON shape of IdealApplicantProfile (spec.md
// §6.4). Field names match the document schema, not the Go struct names.
type iapWire struct {
	Version string `json:"version"`

	OrganizationTypes       []OrganizationType  `json:"organizationTypes,omitempty"`
	PreferredScales         []CompanyScale      `json:"preferredScales,omitempty"`
	AcceptableScales        []CompanyScale      `json:"acceptableScales,omitempty"`
	BusinessAge             *BusinessAge        `json:"businessAge,omitempty"`
	TRLRange                *IdealTRLRange      `json:"trlRange,omitempty"`
	ProgramStage            ProgramIntent       `json:"programStage,omitempty"`
	FinancialProfile        *FinancialProfile   `json:"financialProfile,omitempty"`
	RequiredCertifications  []string            `json:"requiredCertifications,omitempty"`
	PreferredCertifications []string            `json:"preferredCertifications,omitempty"`
	RegionRequirement       RegionRequirement    `json:"regionRequirement,omitempty"`
	SpecificRegions         []string            `json:"specificRegions,omitempty"`
	CollaborationExpectation string             `json:"collaborationExpectation,omitempty"`
	RequiresResearchInstitute bool              `json:"requiresResearchInstitute,omitempty"`

	PrimaryDomain        string   `json:"primaryDomain,omitempty"`
	SubDomains           []string `json:"subDomains,omitempty"`
	TechnologyKeywords   []string `json:"technologyKeywords,omitempty"`
	ExpectedCapabilities []string `json:"expectedCapabilities,omitempty"`
	DesiredOutcomes      []string `json:"desiredOutcomes,omitempty"`
	SupportPurpose       string   `json:"supportPurpose,omitempty"`

	Confidence          float64                        `json:"confidence"`
	GeneratedBy         GeneratedBy                     `json:"generatedBy"`
	DimensionConfidence map[string]DimensionConfidence `json:"dimensionConfidence,omitempty"`
	SourceTextLength    int                             `json:"sourceTextLength,omitempty"`
}

func toWire(p *IdealApplicantProfile) iapWire {
	return iapWire{
		Version:                   p.Version,
		OrganizationTypes:         p.OrganizationTypes,
		PreferredScales:           p.PreferredScales,
		AcceptableScales:          p.AcceptableScales,
		BusinessAge:               p.BusinessAge,
		TRLRange:                  p.TRLRange,
		ProgramStage:              p.ProgramStage,
		FinancialProfile:          p.FinancialProfile,
		RequiredCertifications:    p.RequiredCertifications,
		PreferredCertifications:  p.PreferredCertifications,
		RegionRequirement:        p.RegionRequirement,
		SpecificRegions:          p.SpecificRegions,
		CollaborationExpectation: p.CollaborationExpectation,
		RequiresResearchInstitute: p.RequiresResearchInstitute,
		PrimaryDomain:            p.PrimaryDomain,
		SubDomains:               p.SubDomains,
		TechnologyKeywords:       p.TechnologyKeywords,
		ExpectedCapabilities:     p.ExpectedCapabilities,
		DesiredOutcomes:          p.DesiredOutcomes,
		SupportPurpose:           p.SupportPurpose,
		Confidence:               p.Confidence,
		GeneratedBy:               p.GeneratedBy,
		DimensionConfidence:       p.DimensionConfidence,
		SourceTextLength:          p.SourceTextLength,
	}
}

func fromWire(w iapWire) *IdealApplicantProfile {
	return &IdealApplicantProfile{
		Version:                   w.Version,
		OrganizationTypes:         w.OrganizationTypes,
		PreferredScales:           w.PreferredScales,
		AcceptableScales:          w.AcceptableScales,
		BusinessAge:               w.BusinessAge,
		TRLRange:                  w.TRLRange,
		ProgramStage:              w.ProgramStage,
		FinancialProfile:          w.FinancialProfile,
		RequiredCertifications:    w.RequiredCertifications,
		PreferredCertifications:  w.PreferredCertifications,
		RegionRequirement:        w.RegionRequirement,
		SpecificRegions:          w.SpecificRegions,
		CollaborationExpectation: w.CollaborationExpectation,
		RequiresResearchInstitute: w.RequiresResearchInstitute,
		PrimaryDomain:            w.PrimaryDomain,
		SubDomains:               w.SubDomains,
		TechnologyKeywords:       w.TechnologyKeywords,
		ExpectedCapabilities:     w.ExpectedCapabilities,
		DesiredOutcomes:          w.DesiredOutcomes,
		SupportPurpose:           w.SupportPurpose,
		Confidence:               w.Confidence,
		GeneratedBy:               w.GeneratedBy,
		DimensionConfidence:       w.DimensionConfidence,
		SourceTextLength:          w.SourceTextLength,
	}
}

// MarshalIAP renders the profile to its persisted JSON shape.
func MarshalIAP(p *IdealApplicantProfile) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("matchmodel: cannot marshal nil IdealApplicantProfile")
	}
	return json.Marshal(toWire(p))
}

// UnmarshalIAP parses a persisted IAP document. Per spec.md §6.4, unknown
// fields are ignored rather than rejected — encoding/json already does
// this by default, so no extra tolerance logic is needed here.
func UnmarshalIAP(data []byte) (*IdealApplicantProfile, error) {
	var w iapWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("matchmodel: unmarshal IAP document: %w", err)
	}
	return fromWire(w), nil
}

// IAPSchemaVersionOf reads just the "version" field out of a raw persisted
// document without fully decoding it. The store's row scanner calls this
// ahead of UnmarshalIAP so a catalog full of stale-schema profiles (about
// to be regenerated per FundingProgram.NeedsIAPRegeneration) never pays
// the full struct-decode cost on load (spec.md §6.4).
func IAPSchemaVersionOf(data []byte) string {
	return gjson.GetBytes(data, "version").String()
}
