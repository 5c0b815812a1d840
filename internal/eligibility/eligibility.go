// Package eligibility implements the three-tier hard/soft requirement
// evaluation of spec.md §4.3.
package eligibility

import (
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

type Level string

const (
	LevelIneligible           Level = "INELIGIBLE"
	LevelFullyEligible        Level = "FULLY_ELIGIBLE"
	LevelConditionallyEligible Level = "CONDITIONALLY_ELIGIBLE"
)

// Result is the checker's output, folded into matchmodel.EligibilityDetail
// by the funnel.
type Result struct {
	Level               Level
	HardRequirementsMet bool
	SoftRequirementsMet bool
	NeedsManualReview   bool
	ReasonCodes         []string
}

// hardFailure is what a single hard-requirement predicate reports: whether
// it fired, the reason string to record, and whether it additionally
// demands manual review (missing data, per spec.md §4.3).
type hardFailure struct {
	Failed            bool
	Reason            string
	NeedsManualReview bool
}

// hardPredicate evaluates one hard requirement. Per spec.md §9 "control
// flow inversion", the checker holds a list of these rather than an
// if/else chain, and aggregates whatever each one reports.
type hardPredicate func(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time) hardFailure

var hardPredicates = []hardPredicate{
	requiredCertificationsPredicate,
	investmentPredicate,
	employeeCountPredicate,
	revenuePredicate,
	operatingYearsPredicate,
}

// Check runs the three-tier evaluation for one (organization, program)
// pair as of asOf.
func Check(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time) Result {
	var reasons []string
	hardMet := true
	needsReview := false

	for _, pred := range hardPredicates {
		f := pred(org, prog, asOf)
		if f.Reason != "" {
			reasons = append(reasons, f.Reason)
		}
		if f.Failed {
			hardMet = false
		}
		if f.NeedsManualReview {
			needsReview = true
		}
	}

	if !hardMet {
		return Result{
			Level:               LevelIneligible,
			HardRequirementsMet: false,
			NeedsManualReview:   needsReview,
			ReasonCodes:         reasons,
		}
	}

	softMet, softReasons := evaluateSoftRequirements(org, prog)
	reasons = append(reasons, softReasons...)

	level := LevelConditionallyEligible
	if softMet {
		level = LevelFullyEligible
	}

	return Result{
		Level:               level,
		HardRequirementsMet: true,
		SoftRequirementsMet: softMet,
		NeedsManualReview:   needsReview,
		ReasonCodes:         reasons,
	}
}

func isSubset(required, held []string) bool {
	heldSet := make(map[string]bool, len(held))
	for _, h := range held {
		heldSet[h] = true
	}
	for _, r := range required {
		if !heldSet[r] {
			return false
		}
	}
	return true
}

func intersects(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if set[v] {
			return true
		}
	}
	return false
}

func requiredCertificationsPredicate(org matchmodel.Organization, prog matchmodel.FundingProgram, _ time.Time) hardFailure {
	if len(prog.RequiredCertifications) == 0 {
		return hardFailure{}
	}
	if isSubset(prog.RequiredCertifications, org.Certifications) {
		return hardFailure{Reason: "required certifications satisfied"}
	}
	return hardFailure{Failed: true, Reason: "required certifications not fully held"}
}

func investmentPredicate(org matchmodel.Organization, prog matchmodel.FundingProgram, _ time.Time) hardFailure {
	if prog.RequiredInvestmentAmount == nil {
		return hardFailure{}
	}
	if len(org.InvestmentHistory) == 0 {
		return hardFailure{Failed: true, NeedsManualReview: true, Reason: "no investment history recorded for a program requiring investment"}
	}
	total := org.VerifiedInvestmentTotal()
	if total >= *prog.RequiredInvestmentAmount {
		return hardFailure{Reason: "verified investment meets requirement"}
	}
	return hardFailure{Failed: true, Reason: "verified investment below requirement"}
}

func employeeCountPredicate(org matchmodel.Organization, prog matchmodel.FundingProgram, _ time.Time) hardFailure {
	if prog.RequiredMinEmployees == nil && prog.RequiredMaxEmployees == nil {
		return hardFailure{}
	}
	mid, ok := org.EmployeeMidpoint()
	if !ok {
		return hardFailure{Failed: true, NeedsManualReview: true, Reason: "employee count missing for a program with employee requirements"}
	}
	if prog.RequiredMinEmployees != nil && mid < *prog.RequiredMinEmployees {
		return hardFailure{Failed: true, Reason: "employee count below required minimum"}
	}
	if prog.RequiredMaxEmployees != nil && mid > *prog.RequiredMaxEmployees {
		return hardFailure{Failed: true, Reason: "employee count above required maximum"}
	}
	return hardFailure{Reason: "employee count within required range"}
}

func revenuePredicate(org matchmodel.Organization, prog matchmodel.FundingProgram, _ time.Time) hardFailure {
	if prog.RequiredMinRevenueEok == nil && prog.RequiredMaxRevenueEok == nil {
		return hardFailure{}
	}
	mid, ok := org.RevenueMidpointEok()
	if !ok {
		return hardFailure{Failed: true, NeedsManualReview: true, Reason: "revenue range missing for a program with revenue requirements"}
	}
	if prog.RequiredMinRevenueEok != nil && mid < *prog.RequiredMinRevenueEok {
		return hardFailure{Failed: true, Reason: "revenue below required minimum"}
	}
	if prog.RequiredMaxRevenueEok != nil && mid > *prog.RequiredMaxRevenueEok {
		return hardFailure{Failed: true, Reason: "revenue above required maximum"}
	}
	return hardFailure{Reason: "revenue within required range"}
}

func operatingYearsPredicate(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time) hardFailure {
	if prog.RequiredOperatingYears == nil && prog.MaxOperatingYears == nil {
		return hardFailure{}
	}
	years, ok := org.OperatingYears(asOf)
	if !ok {
		return hardFailure{Failed: true, NeedsManualReview: true, Reason: "business established date missing for a program with an operating-years requirement"}
	}
	if prog.RequiredOperatingYears != nil && years < *prog.RequiredOperatingYears {
		return hardFailure{Failed: true, Reason: "operating years below requirement"}
	}
	if prog.MaxOperatingYears != nil && years > *prog.MaxOperatingYears {
		return hardFailure{Failed: true, Reason: "operating years above maximum"}
	}
	return hardFailure{Reason: "operating years within required range"}
}

// evaluateSoftRequirements implements "any satisfies softRequirementsMet"
// from spec.md §4.3.
func evaluateSoftRequirements(org matchmodel.Organization, prog matchmodel.FundingProgram) (bool, []string) {
	var reasons []string
	met := false

	if intersects(prog.PreferredCertifications, org.Certifications) {
		met = true
		reasons = append(reasons, "preferred certifications intersect organization certifications")
	}
	if org.PriorGrantWins > 0 {
		met = true
		reasons = append(reasons, "organization has prior grant wins")
	}
	if len(org.IndustryAwards) > 0 {
		met = true
		reasons = append(reasons, "organization has industry awards")
	}

	return met, reasons
}
