package funnel

import (
	"regexp"
	"strings"
	"time"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/eligibility"
	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/programtype"
	"github.com/joelkehle/kmatch/internal/taxonomy"
)

const (
	BlockStatusInactive            = "STATUS_INACTIVE"
	BlockDeadlinePassed            = "DEADLINE_PASSED"
	BlockConsolidatedAnnouncement  = "CONSOLIDATED_ANNOUNCEMENT"
	BlockDesignatedProject         = "DESIGNATED_PROJECT"
	BlockDemandSurvey              = "DEMAND_SURVEY"
	BlockInstitutionalOnly         = "INSTITUTIONAL_ONLY"
	BlockTrainingProgram           = "TRAINING_PROGRAM"
	BlockOrgTypeMismatch           = "ORG_TYPE_MISMATCH"
	BlockBusinessStructureMismatch = "BUSINESS_STRUCTURE_MISMATCH"
	BlockBusinessStructureUnknown  = "BUSINESS_STRUCTURE_UNKNOWN"
	BlockTRLOutOfRange             = "TRL_OUT_OF_RANGE"
	BlockHospitalOnly              = "HOSPITAL_ONLY"
	BlockHardRequirementFailed     = "HARD_REQUIREMENT_FAILED"
	BlockSMEScale                  = "SME_SCALE_BLOCK"
	BlockSMEStartupOnly            = "SME_STARTUP_ONLY"
	BlockSMERegionNonMetroOnly     = "SME_REGION_NON_METRO_ONLY"
	BlockSMERegionMismatch         = "SME_REGION_MISMATCH"
	BlockExcludedDomain            = "EXCLUDED_DOMAIN"
	BlockIndustryMismatch          = "INDUSTRY_MISMATCH"
	BlockCrossIndustryNoKeyword    = "CROSS_INDUSTRY_NO_KEYWORD"
	BlockUnknownSector             = "UNKNOWN_SECTOR"
)

const smeMinistry = "중소벤처기업부"

var trainingTitlePattern = regexp.MustCompile(`교육과정|양성과정|연수\s*프로그램|인재양성`)
var strongRDKeywords = []string{"R&D", "연구개발", "기술개발", "핵심기술"}
var physicianScientistKeywords = []string{"의사과학자", "상급종합병원", "M.D.-Ph.D.", "의료법"}
var smeStartupOnlyKeywords = []string{"창업성장", "TIPS", "팁스", "디딤돌"}
var regionalInnovationKeywords = []string{"지역혁신", "지역특화"}

var regionKeywordMap = map[string][]string{
	"강원": {"GANGWON"},
	"충청": {"CHUNGCHEONG"},
	"전라": {"JEOLLA"},
	"경상": {"GYEONGSANG"},
	"제주": {"JEJU"},
}

var stopWords = map[string]bool{
	"개발": true, "지원": true, "사업": true, "연구": true, "기술": true,
	"플랫폼": true, "서비스": true, "센터": true, "산업": true, "정책": true,
}

// gateContext bundles the once-computed facts every block predicate reads.
type gateContext struct {
	org  matchmodel.Organization
	prog matchmodel.FundingProgram
	asOf time.Time
	opts Options

	orgSector     taxonomy.Sector
	programSector taxonomy.Sector
	classified    classifier.Result
	programType   programtype.Type
	consolidated  bool
	eligResult    eligibility.Result
	relaxedTRL    bool
}

func newGateContext(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time, opts Options) *gateContext {
	classified := classifier.Classify(prog.Title, prog.Title, prog.Ministry)
	return &gateContext{
		org:           org,
		prog:          prog,
		asOf:          asOf,
		opts:          opts,
		orgSector:     classifier.NormalizeOrgSector(org.Sector),
		programSector: classified.Industry,
		classified:    classified,
		programType:   programtype.Detect(prog.Title + " " + prog.Description),
		consolidated:  programtype.IsConsolidated(prog.Deadline != nil, prog.ApplicationStart != nil, prog.BudgetAmount != nil),
		eligResult:    eligibility.Check(org, prog, asOf),
		relaxedTRL:    opts.IncludeExpired,
	}
}

// blockPredicate evaluates one gate rule (spec.md §9 "control flow
// inversion"): a pure function returning zero or more block reason codes.
type blockPredicate func(gc *gateContext) []string

var blockPredicates = []blockPredicate{
	statusAndDeadlinePredicate,
	programShapePredicate,
	institutionalOnlyPredicate,
	trainingProgramPredicate,
	orgTypePredicate,
	businessStructurePredicate,
	trlPredicate,
	hospitalOnlyPredicate,
	hardRequirementPredicate,
	smePredicates,
	excludedDomainPredicate,
	industryRelevancePredicate,
}

// Result is the gate's output (spec.md §4.9).
type Result struct {
	Passed          bool
	BlockReasons    []string
	ApplicationType string
	Eligibility     eligibility.Result
}

// Evaluate runs every block predicate and aggregates their reasons.
func Evaluate(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time, opts Options) Result {
	gc := newGateContext(org, prog, asOf, opts)

	var reasons []string
	for _, pred := range blockPredicates {
		reasons = append(reasons, pred(gc)...)
	}

	return Result{
		Passed:          len(reasons) == 0,
		BlockReasons:    reasons,
		ApplicationType: string(gc.programType),
		Eligibility:     gc.eligResult,
	}
}

func one(cond bool, code string) []string {
	if cond {
		return []string{code}
	}
	return nil
}

func statusAndDeadlinePredicate(gc *gateContext) []string {
	var reasons []string
	if gc.prog.Status != matchmodel.StatusActive {
		reasons = append(reasons, BlockStatusInactive)
	}
	if gc.prog.IsExpired(gc.asOf) && !gc.opts.IncludeExpired {
		reasons = append(reasons, BlockDeadlinePassed)
	}
	return reasons
}

func programShapePredicate(gc *gateContext) []string {
	var reasons []string
	if gc.consolidated {
		reasons = append(reasons, BlockConsolidatedAnnouncement)
	}
	switch gc.programType {
	case programtype.Designated:
		reasons = append(reasons, BlockDesignatedProject)
	case programtype.DemandSurvey:
		reasons = append(reasons, BlockDemandSurvey)
	}
	return reasons
}

func institutionalOnlyPredicate(gc *gateContext) []string {
	if gc.programType == programtype.InstitutionalOnly && gc.org.Type != matchmodel.OrgTypeResearchInstitute {
		return []string{BlockInstitutionalOnly}
	}
	return nil
}

func trainingProgramPredicate(gc *gateContext) []string {
	titleAndDesc := gc.prog.Title + " " + gc.prog.Description
	if !trainingTitlePattern.MatchString(titleAndDesc) {
		return nil
	}
	for _, kw := range strongRDKeywords {
		if strings.Contains(titleAndDesc, kw) {
			return nil
		}
	}
	if gc.org.Type == matchmodel.OrgTypeCompany {
		return []string{BlockTrainingProgram}
	}
	return nil
}

func orgTypePredicate(gc *gateContext) []string {
	return one(!gc.prog.HasTargetType(gc.org.Type), BlockOrgTypeMismatch)
}

func businessStructurePredicate(gc *gateContext) []string {
	if len(gc.prog.AllowedBusinessStructures) == 0 {
		return nil
	}
	if gc.org.BusinessStructure == "" {
		return []string{BlockBusinessStructureUnknown}
	}
	for _, s := range gc.prog.AllowedBusinessStructures {
		if s == gc.org.BusinessStructure {
			return nil
		}
	}
	return []string{BlockBusinessStructureMismatch}
}

func trlPredicate(gc *gateContext) []string {
	if !gc.prog.TRL.HasRequirement() {
		return nil
	}
	trl := gc.org.MatchingTRL()
	if trl == nil {
		return nil
	}

	effectiveRange := gc.prog.TRL
	if gc.relaxedTRL {
		effectiveRange = relaxRange(effectiveRange, 3)
	}
	if !effectiveRange.Contains(*trl) {
		return []string{BlockTRLOutOfRange}
	}
	return nil
}

func relaxRange(r matchmodel.TRLRange, by int) matchmodel.TRLRange {
	var out matchmodel.TRLRange
	if r.Min != nil {
		v := *r.Min - by
		out.Min = &v
	}
	if r.Max != nil {
		v := *r.Max + by
		out.Max = &v
	}
	return out
}

func hospitalOnlyPredicate(gc *gateContext) []string {
	titleAndDesc := gc.prog.Title + " " + gc.prog.Description
	for _, kw := range physicianScientistKeywords {
		if strings.Contains(titleAndDesc, kw) {
			if gc.org.Type != matchmodel.OrgTypeResearchInstitute {
				return []string{BlockHospitalOnly}
			}
			return nil
		}
	}
	return nil
}

func hardRequirementPredicate(gc *gateContext) []string {
	return one(!gc.eligResult.HardRequirementsMet, BlockHardRequirementFailed)
}

// smePredicates implements every 중소벤처기업부-only block rule of
// spec.md §4.9 in one predicate: they all share the ministry gate.
func smePredicates(gc *gateContext) []string {
	if gc.prog.Ministry != smeMinistry {
		return nil
	}

	var reasons []string
	title := gc.prog.Title

	if gc.org.Scale == matchmodel.ScaleLarge {
		reasons = append(reasons, BlockSMEScale)
	}

	if containsAny(title, smeStartupOnlyKeywords) && (gc.org.Scale == matchmodel.ScaleMedium || gc.org.Scale == matchmodel.ScaleLarge) {
		reasons = append(reasons, BlockSMEStartupOnly)
	}

	if containsAny(title, regionalInnovationKeywords) {
		if !gc.org.HasNonMetropolitanLocation() {
			reasons = append(reasons, BlockSMERegionNonMetroOnly)
		}
	}

	for kw, regions := range regionKeywordMap {
		if strings.Contains(title, kw) {
			if !locationsIntersect(gc.org.Locations, regions) {
				reasons = append(reasons, BlockSMERegionMismatch)
			}
			break
		}
	}

	return reasons
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func locationsIntersect(locations, regions []string) bool {
	set := make(map[string]bool, len(regions))
	for _, r := range regions {
		set[r] = true
	}
	for _, l := range locations {
		if set[l] {
			return true
		}
	}
	return false
}

// industryFilterBypassed implements spec.md §4.9's "if the SME program has
// an industry-specific classification... the industry filter is NOT
// bypassed; otherwise it is" rule.
func (gc *gateContext) industryFilterBypassed() bool {
	if gc.prog.Ministry != smeMinistry {
		return false
	}
	return gc.programSector == taxonomy.SectorGeneral || !gc.classified.MinistryBased && gc.classified.Confidence == 0
}

func excludedDomainPredicate(gc *gateContext) []string {
	for _, d := range gc.org.ExcludedDomains {
		if taxonomy.Sector(taxonomy.Normalize(d)) == gc.programSector {
			return []string{BlockExcludedDomain}
		}
	}
	return nil
}

// industryRelevancePredicate implements INDUSTRY_MISMATCH and
// CROSS_INDUSTRY_NO_KEYWORD and UNKNOWN_SECTOR from spec.md §4.9, each
// gated to active-only evaluation and respecting the SME industry-filter
// bypass rule.
func industryRelevancePredicate(gc *gateContext) []string {
	if gc.prog.Status != matchmodel.StatusActive {
		return nil
	}
	if gc.industryFilterBypassed() {
		return nil
	}

	if gc.orgSector == "" || gc.programSector == "" {
		return []string{BlockUnknownSector}
	}

	relevance := taxonomy.CalculateIndustryRelevance(gc.orgSector, gc.programSector)
	if relevance < 0.45 {
		return []string{BlockIndustryMismatch}
	}
	if relevance < 1.0 {
		if hasKeywordData(gc.org) && !keywordOverlap(gc.org, gc.prog) {
			return []string{BlockCrossIndustryNoKeyword}
		}
	}
	return nil
}

func hasKeywordData(org matchmodel.Organization) bool {
	return len(org.KeyTechnologies) > 0 || len(org.TechnologySubDomains) > 0 || len(org.ResearchFocusAreas) > 0
}

func keywordOverlap(org matchmodel.Organization, prog matchmodel.FundingProgram) bool {
	orgWords := make(map[string]bool)
	for _, w := range org.KeyTechnologies {
		orgWords[taxonomy.Normalize(w)] = true
	}
	for _, w := range org.TechnologySubDomains {
		orgWords[taxonomy.Normalize(w)] = true
	}
	for _, w := range org.ResearchFocusAreas {
		orgWords[taxonomy.Normalize(w)] = true
	}

	candidates := append([]string{}, prog.Keywords...)
	candidates = append(candidates, tokenize(prog.Title)...)

	for _, c := range candidates {
		norm := taxonomy.Normalize(c)
		if len([]rune(norm)) < 2 || stopWords[c] {
			continue
		}
		if orgWords[norm] {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.Fields(s)
}
