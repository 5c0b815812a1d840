// Package matchmodel holds the data model shared by every stage of the
// matching engine: organizations, funding programs, ideal applicant
// profiles, and match scores.
package matchmodel

import "time"

type OrganizationType string

const (
	OrgTypeCompany           OrganizationType = "COMPANY"
	OrgTypeResearchInstitute OrganizationType = "RESEARCH_INSTITUTE"
	OrgTypeUniversity        OrganizationType = "UNIVERSITY"
	OrgTypeNonProfit         OrganizationType = "NON_PROFIT"
)

type CompanyScale string

const (
	ScaleMicro       CompanyScale = "MICRO"
	ScaleStartup     CompanyScale = "STARTUP"
	ScaleSmall       CompanyScale = "SMALL"
	ScaleSmallMedium CompanyScale = "SMALL_MEDIUM"
	ScaleMedium      CompanyScale = "MEDIUM"
	ScaleLarge       CompanyScale = "LARGE"
)

// ScaleLadder is the ordered proximity ladder used by the organization-fit
// dimension of the proximity scorer (spec.md §4.6, testable property #7).
var ScaleLadder = []CompanyScale{ScaleMicro, ScaleStartup, ScaleSmall, ScaleSmallMedium, ScaleMedium, ScaleLarge}

func ScaleIndex(s CompanyScale) int {
	for i, v := range ScaleLadder {
		if v == s {
			return i
		}
	}
	return -1
}

// EmployeeRangeCode is a closed enum of employee-count buckets. Organizations
// carry the bucket, not a raw integer; the eligibility checker derives a
// midpoint from EmployeeRangeMidpoints to compare against a program's
// required min/max employees (spec.md §4.3).
type EmployeeRangeCode string

const (
	EmployeeRangeUnder10  EmployeeRangeCode = "UNDER_10"
	EmployeeRange10to49   EmployeeRangeCode = "10_49"
	EmployeeRange50to99   EmployeeRangeCode = "50_99"
	EmployeeRange100to299 EmployeeRangeCode = "100_299"
	EmployeeRange300Plus  EmployeeRangeCode = "300_PLUS"
)

var EmployeeRangeMidpoints = map[EmployeeRangeCode]int{
	EmployeeRangeUnder10:  5,
	EmployeeRange10to49:   29,
	EmployeeRange50to99:   74,
	EmployeeRange100to299: 199,
	EmployeeRange300Plus:  300,
}

// RevenueRangeCode buckets annual revenue in 억 (100,000,000 KRW) units.
// RevenueRangeNone means no recorded revenue (pre-revenue organization).
type RevenueRangeCode string

const (
	RevenueRangeNone       RevenueRangeCode = "NONE"
	RevenueRangeUnder1Eok  RevenueRangeCode = "UNDER_1EOK"
	RevenueRange1to10Eok   RevenueRangeCode = "1_10EOK"
	RevenueRange10to50Eok  RevenueRangeCode = "10_50EOK"
	RevenueRange50to100Eok RevenueRangeCode = "50_100EOK"
	RevenueRange100PlusEok RevenueRangeCode = "100EOK_PLUS"
)

// RevenueRangeMidpointsEok and RevenueRangeUpperBoundEok are both expressed
// in 억 won, matching spec.md §4.6's financialFit wording directly.
var RevenueRangeMidpointsEok = map[RevenueRangeCode]int{
	RevenueRangeNone:       0,
	RevenueRangeUnder1Eok:  0,
	RevenueRange1to10Eok:   5,
	RevenueRange10to50Eok:  30,
	RevenueRange50to100Eok: 75,
	RevenueRange100PlusEok: 150,
}

var RevenueRangeUpperBoundEok = map[RevenueRangeCode]int{
	RevenueRangeNone:       0,
	RevenueRangeUnder1Eok:  1,
	RevenueRange1to10Eok:   10,
	RevenueRange10to50Eok:  50,
	RevenueRange50to100Eok: 100,
	RevenueRange100PlusEok: 1_000_000, // effectively unbounded
}

const EokWon = 100_000_000

type Investment struct {
	Date     time.Time
	AmountKRW int64
	Source   string
	Verified bool
}

// Organization is an applicant, shaped per spec.md §3.1.
type Organization struct {
	ID   string
	Name string
	Type OrganizationType

	Scale              CompanyScale
	EmployeeRange      EmployeeRangeCode
	RevenueRange       RevenueRangeCode
	BusinessStructure  string

	Sector                string
	PrimaryBusinessDomain string
	KeyTechnologies       []string
	TechnologySubDomains  []string
	ResearchFocusAreas    []string

	CurrentTRL       *int
	TargetResearchTRL *int
	RDExperience     bool
	CollaborationCount int
	HasResearchInstitute bool

	Certifications                []string
	GovernmentCertifications       []string
	IndustryAwards                 []string
	PriorGrantWins                 int
	InvestmentHistory              []Investment
	CommercializationCapabilities  []string
	Description                    string

	Locations        []string
	ExcludedDomains  []string

	BusinessEstablishedDate *time.Time
}

// MatchingTRL returns TargetResearchTRL when set (it overrides current TRL
// for matching intent per spec.md §3.1), else CurrentTRL.
func (o Organization) MatchingTRL() *int {
	if o.TargetResearchTRL != nil {
		return o.TargetResearchTRL
	}
	return o.CurrentTRL
}

// EmployeeMidpoint returns the fixed-table midpoint, or (0, false) if the
// organization's employee range is unset/unknown.
func (o Organization) EmployeeMidpoint() (int, bool) {
	v, ok := EmployeeRangeMidpoints[o.EmployeeRange]
	return v, ok
}

// RevenueMidpointEok returns the revenue midpoint in 억 won, or (0, false)
// if unset.
func (o Organization) RevenueMidpointEok() (int, bool) {
	if o.RevenueRange == "" {
		return 0, false
	}
	v, ok := RevenueRangeMidpointsEok[o.RevenueRange]
	return v, ok
}

// OperatingYears computes whole years since BusinessEstablishedDate using
// 365.25-day years, floored, per spec.md §4.3.
func (o Organization) OperatingYears(asOf time.Time) (int, bool) {
	if o.BusinessEstablishedDate == nil {
		return 0, false
	}
	days := asOf.Sub(*o.BusinessEstablishedDate).Hours() / 24
	years := days / 365.25
	if years < 0 {
		years = 0
	}
	return int(years), true
}

// VerifiedInvestmentTotal sums verified investment amounts.
func (o Organization) VerifiedInvestmentTotal() int64 {
	var total int64
	for _, inv := range o.InvestmentHistory {
		if inv.Verified {
			total += inv.AmountKRW
		}
	}
	return total
}

// CapabilityText concatenates the fields the proximity scorer's
// capabilityFit dimension scans for substring overlap (spec.md §4.6).
func (o Organization) CapabilityText() []string {
	var out []string
	out = append(out, o.KeyTechnologies...)
	out = append(out, o.Certifications...)
	out = append(out, o.GovernmentCertifications...)
	out = append(out, o.CommercializationCapabilities...)
	out = append(out, o.TechnologySubDomains...)
	out = append(out, o.ResearchFocusAreas...)
	if o.Description != "" {
		out = append(out, o.Description)
	}
	if o.PrimaryBusinessDomain != "" {
		out = append(out, o.PrimaryBusinessDomain)
	}
	return out
}

// HasSemanticData reports whether the organization carries enough
// free-text signal for keyword-style matching to be meaningful — used by
// the semantic scorer's partial-credit fallback and the non-enriched
// program penalty supplement (SPEC_FULL.md #2).
func (o Organization) HasSemanticData() bool {
	return len(o.KeyTechnologies) > 0 || len(o.TechnologySubDomains) > 0 || len(o.ResearchFocusAreas) > 0
}

// HasNonMetropolitanLocation reports whether any of the organization's
// region codes falls outside the closed metropolitan set, used by the
// SME region gate predicates (spec.md §4.9).
func (o Organization) HasNonMetropolitanLocation() bool {
	for _, loc := range o.Locations {
		if !MetropolitanRegions[loc] {
			return true
		}
	}
	return false
}

// MetropolitanRegions is the closed set of region codes considered
// metropolitan for SME regional-innovation gating (spec.md §4.9).
var MetropolitanRegions = map[string]bool{
	"SEOUL":    true,
	"BUSAN":    true,
	"INCHEON":  true,
	"DAEGU":    true,
	"DAEJEON":  true,
	"GWANGJU":  true,
	"ULSAN":    true,
}
