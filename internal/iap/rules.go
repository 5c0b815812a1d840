package iap

import (
	"regexp"
	"strings"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/matchmodel"
)

// smeScaleCodeTable translates SME-program scale codes to the closed
// CompanyScale set (spec.md §4.5: "e.g., CC10→SMALL_MEDIUM").
var smeScaleCodeTable = map[string]matchmodel.CompanyScale{
	"CC10": matchmodel.ScaleSmallMedium,
	"CC20": matchmodel.ScaleSmall,
	"CC30": matchmodel.ScaleMedium,
	"CC90": matchmodel.ScaleMicro,
}

// smeStageCodeTable translates SME-program lifecycle codes to a
// collaboration-expectation label (spec.md §4.5: "LC01→STARTUP_FOCUSED").
var smeStageCodeTable = map[string]string{
	"LC01": "STARTUP_FOCUSED",
	"LC02": "GROWTH_FOCUSED",
	"LC03": "SCALE_UP_FOCUSED",
}

var regionPrefixPattern = regexp.MustCompile(`(수도권|비수도권|지방|지역)`)

var specificRegionNames = []string{
	"서울", "부산", "인천", "대구", "대전", "광주", "울산", "강원", "충청", "전라", "경상", "제주",
}

// GenerateRuleProfile implements the Tier 1 rule extractor of spec.md
// §4.5: maps structured program fields directly onto the IAP, tagging
// every dimension it sets with a confidence level.
func GenerateRuleProfile(prog matchmodel.FundingProgram) *matchmodel.IdealApplicantProfile {
	p := matchmodel.NewIdealApplicantProfile()

	if len(prog.AllowedOrgTypes) > 0 {
		p.OrganizationTypes = prog.AllowedOrgTypes
		p.SetConfidence(matchmodel.DimOrganizationTypes, matchmodel.ConfidenceHigh)
	}

	applyTRLAndStage(p, prog)
	applySMECodes(p, prog)

	if len(prog.RequiredCertifications) > 0 {
		p.RequiredCertifications = prog.RequiredCertifications
		p.SetConfidence(matchmodel.DimRequiredCertifications, matchmodel.ConfidenceHigh)
	}
	if len(prog.PreferredCertifications) > 0 {
		p.PreferredCertifications = prog.PreferredCertifications
		p.SetConfidence(matchmodel.DimPreferredCertifications, matchmodel.ConfidenceHigh)
	}

	applyFinancial(p, prog)
	applyBusinessAge(p, prog)
	applyRegion(p, prog)

	p.RequiresResearchInstitute = prog.RequiresResearchInstitute
	if prog.RequiresResearchInstitute {
		p.SetConfidence(matchmodel.DimRequiresResearchInstitute, matchmodel.ConfidenceHigh)
	}

	applyPrimaryDomain(p, prog)

	return p
}

func applyTRLAndStage(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	if prog.TRL.HasRequirement() {
		p.TRLRange = &matchmodel.IdealTRLRange{Min: prog.TRL.Min, Max: prog.TRL.Max}
		if prog.TRL.Min != nil && prog.TRL.Max != nil {
			center := (float64(*prog.TRL.Min) + float64(*prog.TRL.Max)) / 2
			p.TRLRange.IdealCenter = &center
		}
		p.SetConfidence(matchmodel.DimTRLRange, matchmodel.ConfidenceHigh)
	}

	if prog.ProgramIntent != "" {
		p.ProgramStage = prog.ProgramIntent
		p.SetConfidence(matchmodel.DimProgramStage, matchmodel.ConfidenceHigh)
		return
	}

	if p.TRLRange != nil && p.TRLRange.IdealCenter != nil {
		p.ProgramStage = stageFromTRLMidpoint(*p.TRLRange.IdealCenter)
		p.SetConfidence(matchmodel.DimProgramStage, matchmodel.ConfidenceInferred)
	}
}

// stageFromTRLMidpoint implements spec.md §4.5's programStage inference:
// ≤3 BASIC_RESEARCH, ≤6 APPLIED_RESEARCH, else COMMERCIALIZATION.
func stageFromTRLMidpoint(mid float64) matchmodel.ProgramIntent {
	switch {
	case mid <= 3:
		return matchmodel.IntentBasicResearch
	case mid <= 6:
		return matchmodel.IntentAppliedResearch
	default:
		return matchmodel.IntentCommercialization
	}
}

func applySMECodes(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	if prog.SMEScaleCode != "" {
		if scale, ok := smeScaleCodeTable[prog.SMEScaleCode]; ok {
			p.PreferredScales = append(p.PreferredScales, scale)
			p.SetConfidence(matchmodel.DimPreferredScales, matchmodel.ConfidenceHigh)
		}
	}
	if prog.SMEStageCode != "" {
		if label, ok := smeStageCodeTable[prog.SMEStageCode]; ok {
			p.CollaborationExpectation = label
			p.SetConfidence(matchmodel.DimCollaborationExpectation, matchmodel.ConfidenceHigh)
		}
	}
}

func applyFinancial(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	if prog.RequiredMinRevenueEok == nil && prog.RequiredInvestmentAmount == nil {
		return
	}
	fp := &matchmodel.FinancialProfile{}
	if prog.RequiredMinRevenueEok != nil {
		fp.MinRevenueEok = prog.RequiredMinRevenueEok
	}
	if prog.RequiredInvestmentAmount != nil {
		expects := true
		fp.ExpectsPriorInvestment = &expects
	}
	p.FinancialProfile = fp
	p.SetConfidence(matchmodel.DimFinancialProfile, matchmodel.ConfidenceHigh)
}

func applyBusinessAge(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	if prog.RequiredOperatingYears == nil && prog.MaxOperatingYears == nil {
		return
	}
	p.BusinessAge = &matchmodel.BusinessAge{
		MinYears: prog.RequiredOperatingYears,
		MaxYears: prog.MaxOperatingYears,
	}
	p.SetConfidence(matchmodel.DimBusinessAge, matchmodel.ConfidenceHigh)
}

// applyRegion infers regionRequirement from a title prefix pattern scan
// (spec.md §4.5 "region prefix-pattern inference from title").
func applyRegion(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	match := regionPrefixPattern.FindString(prog.Title)
	switch match {
	case "비수도권", "지방", "지역":
		p.RegionRequirement = matchmodel.RegionNonMetropolitan
		p.SetConfidence(matchmodel.DimRegionRequirement, matchmodel.ConfidenceInferred)
	case "수도권":
		p.RegionRequirement = matchmodel.RegionMetropolitan
		p.SetConfidence(matchmodel.DimRegionRequirement, matchmodel.ConfidenceInferred)
	default:
		p.RegionRequirement = matchmodel.RegionNationwide
	}

	var specific []string
	for _, region := range specificRegionNames {
		if strings.Contains(prog.Title, region) {
			specific = append(specific, region)
		}
	}
	if len(specific) > 0 {
		p.RegionRequirement = matchmodel.RegionSpecific
		p.SpecificRegions = specific
		p.SetConfidence(matchmodel.DimRegionRequirement, matchmodel.ConfidenceInferred)
	}
}

func applyPrimaryDomain(p *matchmodel.IdealApplicantProfile, prog matchmodel.FundingProgram) {
	result := classifier.Classify(prog.Title, prog.Title, prog.Ministry)
	if result.Industry == "" {
		return
	}
	p.PrimaryDomain = string(result.Industry)
	if result.MinistryBased {
		p.SetConfidence(matchmodel.DimPrimaryDomain, matchmodel.ConfidenceHigh)
	} else {
		p.SetConfidence(matchmodel.DimPrimaryDomain, matchmodel.ConfidenceMedium)
	}
}
