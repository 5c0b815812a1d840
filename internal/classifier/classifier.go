// Package classifier implements the keyword classifier of spec.md §4.2:
// (title, programName, ministry) → industry + confidence, plus the regional-
// filter extended variant and the org/program industry relevance lookup.
package classifier

import (
	"strings"

	"github.com/joelkehle/kmatch/internal/taxonomy"
)

// ministryScore is the flat bonus a known ministry contributes to every
// sector it maps to (spec.md §4.2 step 1).
const ministryScore = 10

// keywordScore is the bonus a single keyword hit contributes (step 2).
const keywordScore = 5

// confidenceDivisor normalizes the winning score into [0,1] (step 4).
const confidenceDivisor = 25.0

// ministrySectors maps an announcing ministry name to every sector it is a
// strong prior for; a ministry may point to more than one sector.
var ministrySectors = map[string][]taxonomy.Sector{
	"과학기술정보통신부": {taxonomy.SectorICT},
	"보건복지부":     {taxonomy.SectorBioHealth},
	"산업통상자원부":   {taxonomy.SectorManufacturing, taxonomy.SectorEnergy, taxonomy.SectorMaterials},
	"중소벤처기업부":   {taxonomy.SectorGeneral},
	"환경부":       {taxonomy.SectorEnvironment},
	"해양수산부":     {taxonomy.SectorMarine},
	"농림축산식품부":   {taxonomy.SectorAgriculture},
	"국방부":       {taxonomy.SectorDefense},
}

// keywordIndustry maps a single keyword to the industry it signals. Built
// from the taxonomy hierarchy's own keyword lists plus a handful of
// classifier-only signal words not tied to a sub-sector.
var keywordIndustry = buildKeywordIndustry()

func buildKeywordIndustry() map[string]taxonomy.Sector {
	m := make(map[string]taxonomy.Sector)
	for _, e := range taxonomy.Hierarchy {
		for _, kw := range e.Keywords {
			m[taxonomy.Normalize(kw)] = e.Sector
		}
		for _, sub := range e.SubSectors {
			for _, kw := range sub.Keywords {
				m[taxonomy.Normalize(kw)] = e.Sector
			}
		}
	}
	return m
}

// regionalKeywords is the scan set the extended variant checks title +
// description against to decide requiresRegionalFilter.
var regionalKeywords = []string{
	"지역", "지역혁신", "지방", "비수도권", "강원", "충청", "전라", "경상", "제주",
}

// Result is the keyword classifier's output (spec.md §4.2).
type Result struct {
	Industry      taxonomy.Sector
	Confidence    float64
	MinistryBased bool
}

// ExtendedResult adds the regional-filter signal to Result.
type ExtendedResult struct {
	Result
	RequiresRegionalFilter bool
	MatchedRegionalKeywords []string
}

// Classify implements the deterministic single-pass algorithm of
// spec.md §4.2: ministry prior, keyword scan over title+programName, then
// highest-score pick with first-declared tiebreak.
func Classify(title, programName, ministry string) Result {
	scores := make(map[taxonomy.Sector]int)
	ministryBased := false

	if ministry != "" {
		if sectors, ok := ministrySectors[ministry]; ok {
			ministryBased = true
			for _, s := range sectors {
				scores[s] += ministryScore
			}
		}
	}

	combined := taxonomy.Normalize(title + programName)
	for kw, sector := range keywordIndustry {
		if kw == "" {
			continue
		}
		if strings.Contains(combined, kw) {
			scores[sector] += keywordScore
		}
	}

	best, bestScore, found := pickBest(scores)
	if !found {
		return Result{Industry: taxonomy.SectorGeneral, Confidence: 0.5, MinistryBased: false}
	}

	confidence := float64(bestScore) / confidenceDivisor
	if confidence > 1.0 {
		confidence = 1.0
	}
	return Result{Industry: best, Confidence: confidence, MinistryBased: ministryBased}
}

// pickBest returns the sector with the highest score, breaking ties by
// first-declared order in taxonomy.Hierarchy (spec.md §4.2 step 3).
func pickBest(scores map[taxonomy.Sector]int) (taxonomy.Sector, int, bool) {
	if len(scores) == 0 {
		return "", 0, false
	}
	var best taxonomy.Sector
	bestScore := -1
	for _, e := range taxonomy.Hierarchy {
		if score, ok := scores[e.Sector]; ok {
			if score > bestScore {
				best, bestScore = e.Sector, score
			}
		}
	}
	if bestScore <= 0 {
		return "", 0, false
	}
	return best, bestScore, true
}

// ClassifyExtended additionally scans title+description for regional
// keywords (spec.md §4.2 "extended variant").
func ClassifyExtended(title, programName, ministry, description string) ExtendedResult {
	base := Classify(title, programName, ministry)
	norm := taxonomy.Normalize(title + description)

	var matched []string
	for _, kw := range regionalKeywords {
		if strings.Contains(norm, taxonomy.Normalize(kw)) {
			matched = append(matched, kw)
		}
	}

	return ExtendedResult{
		Result:                  base,
		RequiresRegionalFilter:  len(matched) > 0,
		MatchedRegionalKeywords: matched,
	}
}

// sectorAliases maps loose organization-sector spellings to the closed
// taxonomy.Sector set (spec.md §4.2: "BIO, BIOHEALTH, HEALTH → BIO_HEALTH").
var sectorAliases = map[string]taxonomy.Sector{
	"BIO":           taxonomy.SectorBioHealth,
	"BIOHEALTH":     taxonomy.SectorBioHealth,
	"HEALTH":        taxonomy.SectorBioHealth,
	"BIO_HEALTH":    taxonomy.SectorBioHealth,
	"ICT":           taxonomy.SectorICT,
	"IT":            taxonomy.SectorICT,
	"SOFTWARE":      taxonomy.SectorICT,
	"MANUFACTURING": taxonomy.SectorManufacturing,
	"ENERGY":        taxonomy.SectorEnergy,
	"ENVIRONMENT":   taxonomy.SectorEnvironment,
	"MATERIALS":     taxonomy.SectorMaterials,
	"MARINE":        taxonomy.SectorMarine,
	"AGRICULTURE":   taxonomy.SectorAgriculture,
	"DEFENSE":       taxonomy.SectorDefense,
}

// NormalizeOrgSector maps a loose organization sector string onto the
// closed taxonomy.Sector set, falling back to treating it as already a
// canonical sector name.
func NormalizeOrgSector(orgSector string) taxonomy.Sector {
	norm := taxonomy.Normalize(orgSector)
	if s, ok := sectorAliases[norm]; ok {
		return s
	}
	return taxonomy.Sector(norm)
}

// GetIndustryRelevance implements getIndustryRelevance(orgSector,
// programIndustry) from spec.md §4.2: normalize the org sector first, then
// 1.0 on exact match, explicit cross-relevance cell if present (either
// direction), else 0.2 — a stricter default than taxonomy's own 0.3,
// because this path already lost information through alias normalization.
func GetIndustryRelevance(orgSector string, programIndustry taxonomy.Sector) float64 {
	normalized := NormalizeOrgSector(orgSector)
	if normalized == programIndustry {
		return 1.0
	}
	if row, ok := taxonomy.RelevanceMatrix[normalized]; ok {
		if v, ok := row[programIndustry]; ok {
			return v
		}
	}
	if row, ok := taxonomy.RelevanceMatrix[programIndustry]; ok {
		if v, ok := row[normalized]; ok {
			return v
		}
	}
	return 0.2
}
