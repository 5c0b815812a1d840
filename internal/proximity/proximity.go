// Package proximity implements the v5 seven-dimension organization-vs-IAP
// distance scorer of spec.md §4.6, in the pure-function, no-side-effect
// style of internal/marketanalysis/rnpv.go's scenario math.
package proximity

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/taxonomy"
)

// AlgorithmVersion is stamped on every Result (spec.md §4.6).
const AlgorithmVersion = "v5"

// Weight constants per dimension, summing to 100.
const (
	WeightDomainFit       = 30.0
	WeightTechnologyFit   = 20.0
	WeightOrganizationFit = 15.0
	WeightCapabilityFit   = 15.0
	WeightComplianceFit   = 10.0
	WeightFinancialFit    = 5.0
	WeightDeadlineUrgency = 5.0
)

// partialCreditFactor is applied to a dimension's sub-weight when the IAP
// leaves that requirement unset, so an unconstrained program is not
// penalized the way a program with an unmet requirement would be (spec.md
// §4.6 "missing IAP requirements earn partial credit rather than zero").
const partialCreditFactor = 0.7

// roundingConvention: this module rounds (never floors) at every
// dimension boundary, via math.Round (SPEC_FULL.md open-question
// decision). A floor-based implementation may differ by ±1 point per
// dimension; that is expected, not a bug.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Result is the scorer's full output (spec.md §4.6).
type Result struct {
	DomainFit       float64
	TechnologyFit   float64
	OrganizationFit float64
	CapabilityFit   float64
	ComplianceFit   float64
	FinancialFit    float64
	DeadlineUrgency float64

	TotalScore float64

	Explanations map[string]string
	Summary      string
	Gaps         []matchmodel.Gap

	AlgorithmVersion string
}

// Score computes the full v5 proximity score of org against iap, given the
// program's deadline (nil if none) as of asOf.
func Score(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile, deadline *time.Time, asOf time.Time) Result {
	domainFit, domainExpl := scoreDomainFit(org, iap)
	techFit, techExpl := scoreTechnologyFit(org, iap)
	orgFit, orgExpl, orgGaps := scoreOrganizationFit(org, iap, asOf)
	capFit, capExpl := scoreCapabilityFit(org, iap)
	compFit, compExpl, compGaps := scoreComplianceFit(org, iap)
	finFit, finExpl := scoreFinancialFit(org, iap)
	urgency, urgencyExpl := scoreDeadlineUrgency(deadline, asOf)

	total := domainFit + techFit + orgFit + capFit + compFit + finFit + urgency

	gaps := append([]matchmodel.Gap{}, compGaps...)
	gaps = append(gaps, orgGaps...)
	gaps = append(gaps, softGapsBelowThreshold(map[string]struct {
		score, weight float64
	}{
		"domainFit":       {domainFit, WeightDomainFit},
		"technologyFit":   {techFit, WeightTechnologyFit},
		"organizationFit": {orgFit, WeightOrganizationFit},
		"capabilityFit":   {capFit, WeightCapabilityFit},
		"complianceFit":   {compFit, WeightComplianceFit},
		"financialFit":    {finFit, WeightFinancialFit},
	})...)

	summary := fmt.Sprintf("총 근접도 %.1f/100 (도메인 %.1f, 기술 %.1f, 조직 %.1f, 역량 %.1f, 준수 %.1f, 재무 %.1f, 마감 %.1f)",
		round1(total), domainFit, techFit, orgFit, capFit, compFit, finFit, urgency)

	return Result{
		DomainFit:       domainFit,
		TechnologyFit:   techFit,
		OrganizationFit: orgFit,
		CapabilityFit:   capFit,
		ComplianceFit:   compFit,
		FinancialFit:    finFit,
		DeadlineUrgency: urgency,
		TotalScore:      round1(total),
		Explanations: map[string]string{
			"domainFit":       domainExpl,
			"technologyFit":   techExpl,
			"organizationFit": orgExpl,
			"capabilityFit":   capExpl,
			"complianceFit":   compExpl,
			"financialFit":    finExpl,
			"deadlineUrgency": urgencyExpl,
		},
		Summary:          summary,
		Gaps:             gaps,
		AlgorithmVersion: AlgorithmVersion,
	}
}

func softGapsBelowThreshold(dims map[string]struct{ score, weight float64 }) []matchmodel.Gap {
	var gaps []matchmodel.Gap
	for dim, v := range dims {
		if v.score < v.weight*0.3 {
			gaps = append(gaps, matchmodel.Gap{
				Dimension:   dim,
				Severity:    matchmodel.GapSeverityLow,
				IsBlocker:   false,
				Description: fmt.Sprintf("%s scored below 30%% of its weight (%.1f/%.1f)", dim, v.score, v.weight),
			})
		}
	}
	return gaps
}

func containsEitherWay(haystack, needle string) bool {
	a := strings.ToLower(strings.TrimSpace(haystack))
	b := strings.ToLower(strings.TrimSpace(needle))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func fractionMatched(candidates []string, pool []string) float64 {
	if len(candidates) == 0 {
		return -1 // sentinel: caller treats as "unset", applies partial credit
	}
	hit := 0
	for _, c := range candidates {
		for _, p := range pool {
			if containsEitherWay(c, p) {
				hit++
				break
			}
		}
	}
	return float64(hit) / float64(len(candidates))
}

// scoreDomainFit implements spec.md §4.6's domainFit dimension (max 30).
func scoreDomainFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile) (float64, string) {
	var relevancePart, subDomainPart, keywordPart float64

	if iap.PrimaryDomain == "" {
		relevancePart = 15 * partialCreditFactor
	} else {
		orgSector := classifier.NormalizeOrgSector(org.Sector)
		rel := taxonomy.CalculateIndustryRelevance(orgSector, taxonomy.Sector(taxonomy.Normalize(iap.PrimaryDomain)))
		relevancePart = rel * 15
	}

	orgDomainPool := append(append([]string{}, org.KeyTechnologies...), org.TechnologySubDomains...)
	if f := fractionMatched(iap.SubDomains, orgDomainPool); f < 0 {
		subDomainPart = 10 * partialCreditFactor
	} else {
		subDomainPart = f * 10
	}

	if f := fractionMatched(iap.TechnologyKeywords, org.KeyTechnologies); f < 0 {
		keywordPart = 5 * partialCreditFactor
	} else {
		keywordPart = f * 5
	}

	total := round1(relevancePart + subDomainPart + keywordPart)
	expl := fmt.Sprintf("도메인 적합도: 산업연관성 %.1f/15, 하위도메인 %.1f/10, 키워드 %.1f/5", relevancePart, subDomainPart, keywordPart)
	return total, expl
}

// scoreTechnologyFit implements spec.md §4.6's technologyFit dimension (max 20).
func scoreTechnologyFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile) (float64, string) {
	var base float64 = 4 // no ideal center: treat as mild baseline, not zero
	var centerNote string = "목표 TRL 중심값 없음"

	if iap.TRLRange != nil && iap.TRLRange.IdealCenter != nil {
		center := *iap.TRLRange.IdealCenter
		if trl := org.MatchingTRL(); trl != nil {
			dist := math.Abs(float64(*trl) - center)
			switch {
			case dist == 0:
				base = 12
			case dist <= 1:
				base = 10
			case dist <= 2:
				base = 7
			case dist <= 3:
				base = 4
			default:
				base = 1
			}
			centerNote = fmt.Sprintf("TRL 거리 %.1f", dist)
		}
	}

	var bonus float64
	if iap.TRLRange != nil && iap.TRLRange.IdealCenter != nil && org.TargetResearchTRL != nil {
		if math.Abs(float64(*org.TargetResearchTRL)-*iap.TRLRange.IdealCenter) <= 1 {
			bonus += 2
		}
	}
	isResearchStage := iap.ProgramStage == matchmodel.IntentBasicResearch || iap.ProgramStage == matchmodel.IntentAppliedResearch
	if org.RDExperience && isResearchStage {
		bonus += 4
	}

	var keywordBonus float64
	if f := fractionMatched(iap.TechnologyKeywords, org.KeyTechnologies); f >= 0 {
		keywordBonus = f * 4
	} else {
		keywordBonus = 4 * partialCreditFactor
	}

	total := round1(math.Min(WeightTechnologyFit, base+bonus+keywordBonus))
	expl := fmt.Sprintf("기술 적합도: %s, 기본점수 %.1f, 보너스 %.1f, 키워드 %.1f/4", centerNote, base, bonus, keywordBonus)
	return total, expl
}

// scoreOrganizationFit implements spec.md §4.6's organizationFit dimension (max 15).
func scoreOrganizationFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile, asOf time.Time) (float64, string, []matchmodel.Gap) {
	var scalePart float64
	switch {
	case containsScale(iap.PreferredScales, org.Scale):
		scalePart = 6
	case containsScale(iap.AcceptableScales, org.Scale):
		scalePart = 4
	default:
		scalePart = scaleLadderProximity(org.Scale, iap) * 3
	}

	var agePart float64 = 5 * partialCreditFactor
	if iap.BusinessAge != nil {
		years, ok := org.OperatingYears(asOf)
		if ok {
			agePart = scoreBusinessAge(years, iap.BusinessAge)
		}
	}

	var typePart float64
	var gaps []matchmodel.Gap
	if len(iap.OrganizationTypes) == 0 {
		typePart = 4 * partialCreditFactor
	} else if containsOrgType(iap.OrganizationTypes, org.Type) {
		typePart = 4
	} else {
		typePart = 0
		gaps = append(gaps, matchmodel.Gap{
			Dimension:   "organizationFit",
			Severity:    matchmodel.GapSeverityMedium,
			IsBlocker:   false,
			Description: "organization type not among the IAP's allowed types",
		})
	}

	total := round1(scalePart + agePart + typePart)
	expl := fmt.Sprintf("조직 적합도: 규모 %.1f/6, 업력 %.1f/5, 유형 %.1f/4", scalePart, agePart, typePart)
	return total, expl, gaps
}

func containsScale(scales []matchmodel.CompanyScale, s matchmodel.CompanyScale) bool {
	for _, v := range scales {
		if v == s {
			return true
		}
	}
	return false
}

func containsOrgType(types []matchmodel.OrganizationType, t matchmodel.OrganizationType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}

// scaleLadderProximity implements spec.md §8 scenario 7:
// proximity(x, y) = 1 - |idx(x) - idx(y)| / (N-1), against the first
// preferred scale, else the first acceptable scale (other listed scales are
// not considered), if any are set; else the IAP has no scale
// opinion and this dimension is not truly evaluable — in that case we
// fall back to the single most-common center point (SMALL_MEDIUM) to give
// a deterministic, non-zero answer when no preferred scale is set.
func scaleLadderProximity(orgScale matchmodel.CompanyScale, iap matchmodel.IdealApplicantProfile) float64 {
	target := matchmodel.ScaleSmallMedium
	if len(iap.PreferredScales) > 0 {
		target = iap.PreferredScales[0]
	} else if len(iap.AcceptableScales) > 0 {
		target = iap.AcceptableScales[0]
	}
	n := len(matchmodel.ScaleLadder)
	oi, ti := matchmodel.ScaleIndex(orgScale), matchmodel.ScaleIndex(target)
	if oi < 0 || ti < 0 || n <= 1 {
		return 0.5
	}
	diff := oi - ti
	if diff < 0 {
		diff = -diff
	}
	return 1 - float64(diff)/float64(n-1)
}

func scoreBusinessAge(years int, age *matchmodel.BusinessAge) float64 {
	min, max := 0, years
	hasMin, hasMax := age.MinYears != nil, age.MaxYears != nil
	if hasMin {
		min = *age.MinYears
	}
	if hasMax {
		max = *age.MaxYears
	}
	if (!hasMin || years >= min) && (!hasMax || years <= max) {
		return 5
	}
	var overshoot int
	if hasMin && years < min {
		overshoot = min - years
	} else if hasMax && years > max {
		overshoot = years - max
	}
	decayed := 5 - float64(overshoot)
	if decayed < 0 {
		return 0
	}
	return decayed
}

// scoreCapabilityFit implements spec.md §4.6's capabilityFit dimension (max 15).
func scoreCapabilityFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile) (float64, string) {
	if len(iap.ExpectedCapabilities) == 0 {
		part := round1(15 * partialCreditFactor)
		return part, fmt.Sprintf("역량 적합도: 요구 역량 없음, 부분점수 %.1f/15", part)
	}
	pool := org.CapabilityText()
	f := fractionMatched(iap.ExpectedCapabilities, pool)
	if f < 0 {
		f = 0
	}
	total := round1(f * 15)
	return total, fmt.Sprintf("역량 적합도: %.0f%% 일치, %.1f/15", f*100, total)
}

// scoreComplianceFit implements spec.md §4.6's complianceFit dimension (max 10).
func scoreComplianceFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile) (float64, string, []matchmodel.Gap) {
	score := 10.0
	var gaps []matchmodel.Gap

	missing := missingCertifications(iap.RequiredCertifications, org.Certifications)
	if len(missing) > 0 {
		score -= 5
		for _, c := range missing {
			gaps = append(gaps, matchmodel.Gap{
				Dimension:   "complianceFit",
				Severity:    matchmodel.GapSeverityHigh,
				IsBlocker:   true,
				Description: fmt.Sprintf("missing required certification: %s", c),
			})
		}
	}

	if iap.RequiresResearchInstitute && !org.HasResearchInstitute {
		score -= 3
	}

	if len(iap.OrganizationTypes) > 0 && !containsOrgType(iap.OrganizationTypes, org.Type) {
		score -= 2
	}

	if score < 0 {
		score = 0
	}

	expl := fmt.Sprintf("준수 적합도: %.1f/10 (누락 인증 %d건)", score, len(missing))
	return round1(score), expl, gaps
}

func missingCertifications(required, held []string) []string {
	heldSet := make(map[string]bool, len(held))
	for _, h := range held {
		heldSet[h] = true
	}
	var missing []string
	for _, r := range required {
		if !heldSet[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// scoreFinancialFit implements spec.md §4.6's financialFit dimension (max 5).
func scoreFinancialFit(org matchmodel.Organization, iap matchmodel.IdealApplicantProfile) (float64, string) {
	var revenuePart float64
	if iap.FinancialProfile == nil || iap.FinancialProfile.MinRevenueEok == nil {
		revenuePart = 3 * partialCreditFactor
	} else {
		upper := matchmodel.RevenueRangeUpperBoundEok[org.RevenueRange]
		if upper >= *iap.FinancialProfile.MinRevenueEok {
			revenuePart = 3
		}
	}

	var matchingFundPart float64
	if iap.FinancialProfile == nil || iap.FinancialProfile.RequiresMatchingFund == nil {
		matchingFundPart = 2 * partialCreditFactor
	} else if *iap.FinancialProfile.RequiresMatchingFund {
		if org.RevenueRange != matchmodel.RevenueRangeNone && org.RevenueRange != "" {
			matchingFundPart = 2
		}
	} else {
		matchingFundPart = 2
	}

	total := round1(revenuePart + matchingFundPart)
	return total, fmt.Sprintf("재무 적합도: 매출 %.1f/3, 매칭펀드 %.1f/2", revenuePart, matchingFundPart)
}

// scoreDeadlineUrgency implements spec.md §4.6's deadlineUrgency dimension (max 5).
func scoreDeadlineUrgency(deadline *time.Time, asOf time.Time) (float64, string) {
	if deadline == nil {
		return 2, "마감 긴급도: 마감일 없음, 2/5"
	}
	days := int(deadline.Sub(asOf).Hours() / 24)
	switch {
	case days < 0:
		return 0, "마감 긴급도: 마감 경과, 0/5"
	case days <= 7:
		return 5, fmt.Sprintf("마감 긴급도: D-%d, 5/5", days)
	case days <= 14:
		return 4, fmt.Sprintf("마감 긴급도: D-%d, 4/5", days)
	case days <= 30:
		return 3, fmt.Sprintf("마감 긴급도: D-%d, 3/5", days)
	case days <= 60:
		return 2, fmt.Sprintf("마감 긴급도: D-%d, 2/5", days)
	default:
		return 1, fmt.Sprintf("마감 긴급도: D-%d, 1/5", days)
	}
}
