package matchmodel

type EligibilityLevel string

const (
	EligibilityFullyEligible        EligibilityLevel = "FULLY_ELIGIBLE"
	EligibilityConditionallyEligible EligibilityLevel = "CONDITIONALLY_ELIGIBLE"
	EligibilityIneligible           EligibilityLevel = "INELIGIBLE"
)

type GapSeverity string

const (
	GapSeverityHigh   GapSeverity = "HIGH"
	GapSeverityMedium GapSeverity = "MEDIUM"
	GapSeverityLow    GapSeverity = "LOW"
)

// Gap is a shortfall between the organization and the ideal applicant
// along one dimension (spec.md §3.4).
type Gap struct {
	Dimension   string
	Severity    GapSeverity
	IsBlocker   bool
	Description string
}

// NegativeSignal is a fired penalty rule from the negative-signal
// catalog (spec.md §4.7).
type NegativeSignal struct {
	Code    string
	Penalty float64
	Detail  string
}

// EligibilityDetail carries the Eligibility Checker's three-tier result
// plus its reason trail (spec.md §4.3).
type EligibilityDetail struct {
	Level             EligibilityLevel
	HardRequirementsMet bool
	SoftRequirementsMet bool
	NeedsManualReview bool
	ReasonCodes       []string
}

// SemanticBreakdown is the Semantic Scorer's component output (spec.md §4.10).
type SemanticBreakdown struct {
	DomainRelevance  float64
	CapabilityFit    float64
	IntentAlignment  float64
	NegativeSignals  float64
	ConfidenceBonus  float64
	Score            float64
}

// PracticalBreakdown is the Practical Scorer's component output (spec.md §4.11).
type PracticalBreakdown struct {
	TRLAlignment       float64
	ScaleFit           float64
	RDTrack            float64
	DeadlineUrgency    float64
	CertificationBonus float64
	Score              float64
}

// V4Breakdown reconstructs the legacy v4 field shape directly from the v6
// components (spec.md §4.12, §9 — the two shapes are not required to
// reconcile exactly through the float/int rounding boundary).
type V4Breakdown struct {
	KeywordScore  float64
	IndustryScore float64
	TRLScore      float64
	TypeScore     float64
	RDScore       float64
	DeadlineScore float64
}

// GateResult is the Eligibility Gate's output (spec.md §4.9).
type GateResult struct {
	Passed            bool
	BlockReasons      []string
	ApplicationType   string
	Eligibility       EligibilityDetail
}

// MatchScore is the per (organization, program) output record (spec.md §3.4).
type MatchScore struct {
	OrganizationID string
	ProgramID      string

	TotalScore float64

	Gate       GateResult
	Semantic   SemanticBreakdown
	Practical  PracticalBreakdown
	V4         V4Breakdown

	Eligibility EligibilityLevel
	ReasonCodes []string
	Gaps        []Gap
	NegativeSignals []NegativeSignal

	NeedsManualReview bool
}
