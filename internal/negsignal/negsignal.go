// Package negsignal implements the closed catalog of rule-based penalties
// for active sector mismatches (spec.md §4.7), following the {code,
// category, penalty, detail} rule-catalog shape of
// other_examples/b4d4c534_nikogura-resume-tailor__pkg-scorer-rules.go.go.
package negsignal

import (
	"strings"

	"github.com/joelkehle/kmatch/internal/taxonomy"
)

// Rule is one closed-catalog penalty rule. Trigger receives the already-
// normalized inputs the detector scans and reports whether the rule fires.
type Rule struct {
	Code    string
	Penalty float64
	Detail  string
	Trigger func(orgSector taxonomy.Sector, programSector taxonomy.Sector, titleUpper string) bool
}

func anyKeyword(titleUpper string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(titleUpper, taxonomy.Normalize(kw)) {
			return true
		}
	}
	return false
}

var bioHardNegativeKeywords = []string{
	"임상", "치매", "신약", "약물", "치료제", "세포치료", "유전자치료", "백신", "항체", "의약품", "의료기기인허가", "독성시험", "동물실험",
}

var manufacturingHardNegativeKeywords = []string{
	"양산", "제조공정", "공정개선", "소재", "부품", "소부장",
}

var smartFarmExemptionKeywords = []string{"스마트팜", "스마트농업"}
var cyberDefenseExemptionKeywords = []string{"사이버보안", "사이버전", "사이버"}
var largeScaleDemoKeywords = []string{"대규모 실증", "대규모실증"}

// Rules is the closed catalog (spec.md §4.7). Order matters only for
// determinism of iteration, not for correctness — every rule is evaluated
// independently.
var Rules = []Rule{
	{
		Code:    "DOMAIN_MISMATCH_BIO",
		Penalty: -8,
		Detail:  "ICT organization against a bio-health program with clinical/therapeutic keywords",
		Trigger: func(orgSector, programSector taxonomy.Sector, titleUpper string) bool {
			return orgSector == taxonomy.SectorICT && programSector == taxonomy.SectorBioHealth && anyKeyword(titleUpper, bioHardNegativeKeywords)
		},
	},
	{
		Code:    "TECH_IRRELEVANT_MANUFACTURING",
		Penalty: -5,
		Detail:  "ICT organization against a manufacturing program with production-line keywords",
		Trigger: func(orgSector, programSector taxonomy.Sector, titleUpper string) bool {
			return orgSector == taxonomy.SectorICT && programSector == taxonomy.SectorManufacturing && anyKeyword(titleUpper, manufacturingHardNegativeKeywords)
		},
	},
	{
		Code:    "DOMAIN_MISMATCH_MARINE",
		Penalty: -5,
		Detail:  "organization outside marine sector against a marine-specific program",
		Trigger: func(orgSector, programSector taxonomy.Sector, _ string) bool {
			return orgSector != taxonomy.SectorMarine && programSector == taxonomy.SectorMarine
		},
	},
	{
		Code:    "DOMAIN_MISMATCH_AGRICULTURE",
		Penalty: -5,
		Detail:  "non-agriculture organization against an agriculture program, unless it is a smart-farm program",
		Trigger: func(orgSector, programSector taxonomy.Sector, titleUpper string) bool {
			if orgSector == taxonomy.SectorAgriculture || programSector != taxonomy.SectorAgriculture {
				return false
			}
			return !anyKeyword(titleUpper, smartFarmExemptionKeywords)
		},
	},
	{
		Code:    "DOMAIN_MISMATCH_DEFENSE",
		Penalty: -6,
		Detail:  "non-defense organization against a defense program, unless it targets cyber-defense",
		Trigger: func(orgSector, programSector taxonomy.Sector, titleUpper string) bool {
			if orgSector == taxonomy.SectorDefense || programSector != taxonomy.SectorDefense {
				return false
			}
			return !anyKeyword(titleUpper, cyberDefenseExemptionKeywords)
		},
	},
}

// ScaleStartupLargeScaleDemoCode's rule is evaluated separately from the sector-pair
// rules above because it keys off company scale rather than sector.
const ScaleStartupLargeScaleDemoCode = "SCALE_MISMATCH_STARTUP_DEMO"

// Signal is one fired negative-signal rule.
type Signal struct {
	Code    string
	Penalty float64
	Detail  string
}

// Detect runs the full catalog against one (org, program) pair and returns
// the fired signals. isStartupScale lets the caller supply the company-
// scale check without this package importing matchmodel's scale ladder.
func Detect(orgSector, programSector taxonomy.Sector, title string, isStartupScale bool) []Signal {
	titleUpper := taxonomy.Normalize(title)
	var fired []Signal

	for _, rule := range Rules {
		if rule.Trigger(orgSector, programSector, titleUpper) {
			fired = append(fired, Signal{rule.Code, rule.Penalty, rule.Detail})
		}
	}

	if isStartupScale && anyKeyword(titleUpper, largeScaleDemoKeywords) {
		fired = append(fired, Signal{ScaleStartupLargeScaleDemoCode, -4, "startup-scale organization against a large-scale demonstration program"})
	}

	return fired
}

// ClampedTotal sums penalties and clamps to [-10, 0] per spec.md §4.7.
func ClampedTotal(penalties []float64) float64 {
	var total float64
	for _, p := range penalties {
		total += p
	}
	if total < -10 {
		return -10
	}
	if total > 0 {
		return 0
	}
	return total
}
