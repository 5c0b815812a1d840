package matchmodel

import "time"

type ProgramIntent string

const (
	IntentBasicResearch    ProgramIntent = "BASIC_RESEARCH"
	IntentAppliedResearch  ProgramIntent = "APPLIED_RESEARCH"
	IntentCommercialization ProgramIntent = "COMMERCIALIZATION"
	IntentInfrastructure   ProgramIntent = "INFRASTRUCTURE"
	IntentPolicySupport    ProgramIntent = "POLICY_SUPPORT"
)

type ProgramStatus string

const (
	StatusActive  ProgramStatus = "ACTIVE"
	StatusExpired ProgramStatus = "EXPIRED"
	StatusDraft   ProgramStatus = "DRAFT"
	StatusClosed  ProgramStatus = "CLOSED"
)

// TRLRange is a closed [min,max] bound; either side may be absent meaning
// "no requirement on that side".
type TRLRange struct {
	Min *int
	Max *int
}

func (r TRLRange) HasRequirement() bool {
	return r.Min != nil || r.Max != nil
}

// Contains reports whether trl falls within the range, treating an absent
// bound as unconstrained on that side.
func (r TRLRange) Contains(trl int) bool {
	if r.Min != nil && trl < *r.Min {
		return false
	}
	if r.Max != nil && trl > *r.Max {
		return false
	}
	return true
}

// FundingProgram is a catalogue record, shaped per spec.md §3.2. It models
// both the R&D-program and SME-program variants of the source taxonomy as
// one sum type (spec.md §9 "polymorphism over programs") distinguished by
// IsSME and the capability-set helper methods below, rather than by a
// type hierarchy.
type FundingProgram struct {
	ID              string
	AgencyID        string
	Title           string
	AnnouncementURL string
	ContentHash     string
	ScrapedAt       time.Time

	IndustryCategory string
	Keywords         []string
	Ministry         string
	Agency           string
	ProgramIntent    ProgramIntent
	Description      string
	EligibilityCriteria string

	AllowedOrgTypes           []OrganizationType
	AllowedBusinessStructures []string
	TRL                       TRLRange
	RequiredCertifications    []string
	PreferredCertifications   []string
	RequiredOperatingYears    *int
	MaxOperatingYears         *int
	RequiredMinEmployees      *int
	RequiredMaxEmployees      *int
	RequiredMinRevenueEok     *int
	RequiredMaxRevenueEok     *int
	RequiredInvestmentAmount  *int64
	RequiresResearchInstitute bool

	Status            ProgramStatus
	ApplicationStart  *time.Time
	Deadline          *time.Time
	PublishedAt       *time.Time
	BudgetAmount      *int64

	IdealApplicantProfile   *IdealApplicantProfile
	IdealProfileGeneratedAt *time.Time
	IdealProfileVersion     string

	SemanticSubDomain map[string]string

	// IsSME marks the SME-program variant of the sum type (distinct
	// lifecycle/region code taxonomy per the GLOSSARY). R&D-only fields
	// above are simply left zero for SME programs and vice versa.
	IsSME bool

	// SMEScaleCode and SMEStageCode are the SME-program-only scale/lifecycle
	// codes (e.g. "CC10", "LC01") the IAP Generator's tier-1 rule extractor
	// translates via a fixed table (spec.md §4.5).
	SMEScaleCode string
	SMEStageCode string
}

// HasIAP reports whether a semantic enrichment document is attached.
func (p FundingProgram) HasIAP() bool {
	return p.IdealApplicantProfile != nil
}

// HasMinistry reports whether the program declares an announcing ministry.
func (p FundingProgram) HasMinistry() bool {
	return p.Ministry != ""
}

// HasTargetType reports whether allowedOrgTypes names the given type, or
// is unconstrained (empty means "no restriction").
func (p FundingProgram) HasTargetType(t OrganizationType) bool {
	if len(p.AllowedOrgTypes) == 0 {
		return true
	}
	for _, v := range p.AllowedOrgTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsConsolidatedByAbsence reports the structural signal for a consolidated
// announcement per the GLOSSARY: simultaneous absence of deadline,
// application-start and budget.
func (p FundingProgram) IsConsolidatedByAbsence() bool {
	return p.Deadline == nil && p.ApplicationStart == nil && p.BudgetAmount == nil
}

// IsExpired reports whether deadline has passed as of asOf.
func (p FundingProgram) IsExpired(asOf time.Time) bool {
	return p.Deadline != nil && p.Deadline.Before(asOf)
}

// DaysUntilDeadline returns whole days until deadline, or (0, false) if
// there is no deadline.
func (p FundingProgram) DaysUntilDeadline(asOf time.Time) (int, bool) {
	if p.Deadline == nil {
		return 0, false
	}
	d := p.Deadline.Sub(asOf).Hours() / 24
	return int(d), true
}

// NeedsIAPRegeneration reports whether the persisted profile is missing or
// stamped with a schema version older than currentVersion (SPEC_FULL.md
// supplement #3: a version mismatch is treated identically to "missing").
func (p FundingProgram) NeedsIAPRegeneration(currentVersion string) bool {
	if p.IdealApplicantProfile == nil {
		return true
	}
	return p.IdealProfileVersion != currentVersion
}
