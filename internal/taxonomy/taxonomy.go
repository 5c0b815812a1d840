// Package taxonomy holds the closed, compile-time industry hierarchy and
// cross-industry relevance matrix the rest of the matching engine builds
// on (spec.md §4.1).
package taxonomy

import "strings"

// Sector is one of the closed set of canonical industry sectors.
type Sector string

const (
	SectorICT             Sector = "ICT"
	SectorBioHealth        Sector = "BIO_HEALTH"
	SectorManufacturing    Sector = "MANUFACTURING"
	SectorEnergy           Sector = "ENERGY"
	SectorEnvironment      Sector = "ENVIRONMENT"
	SectorMaterials        Sector = "MATERIALS"
	SectorMarine           Sector = "MARINE"
	SectorAgriculture      Sector = "AGRICULTURE"
	SectorDefense          Sector = "DEFENSE"
	SectorGeneral          Sector = "GENERAL"
)

// SubSector is a node below Sector in the hierarchy, with a keyword list
// used by findIndustrySector's containment scan.
type SubSector struct {
	Name     string
	Keywords []string
}

// Entry is one sector's place in the hierarchy: its own match keywords
// plus its sub-sectors.
type Entry struct {
	Sector      Sector
	Keywords    []string
	SubSectors  []SubSector
}

// Hierarchy is the closed, process-wide industry tree. Initialized once,
// never mutated (spec.md §5 "global immutable tables").
var Hierarchy = []Entry{
	{
		Sector:   SectorICT,
		Keywords: []string{"ICT", "정보통신", "소프트웨어", "AI", "인공지능", "빅데이터", "클라우드"},
		SubSectors: []SubSector{
			{Name: "AI/ML", Keywords: []string{"인공지능", "머신러닝", "딥러닝", "AI"}},
			{Name: "DATA", Keywords: []string{"빅데이터", "데이터분석", "데이터"}},
			{Name: "CLOUD", Keywords: []string{"클라우드", "cloud"}},
		},
	},
	{
		Sector:   SectorBioHealth,
		Keywords: []string{"BIO", "BIOHEALTH", "HEALTH", "바이오", "헬스케어", "의료"},
		SubSectors: []SubSector{
			{Name: "THERAPEUTIC", Keywords: []string{"신약", "치료제", "임상"}},
			{Name: "DIAGNOSTIC", Keywords: []string{"진단", "체외진단"}},
			{Name: "MEDICAL_DEVICE", Keywords: []string{"의료기기"}},
		},
	},
	{
		Sector:   SectorManufacturing,
		Keywords: []string{"제조", "제조업", "스마트공장", "양산"},
		SubSectors: []SubSector{
			{Name: "SMART_FACTORY", Keywords: []string{"스마트공장", "스마트팩토리"}},
			{Name: "PROCESS", Keywords: []string{"공정개선", "제조공정"}},
		},
	},
	{
		Sector:   SectorEnergy,
		Keywords: []string{"에너지", "신재생", "태양광", "풍력", "수소"},
		SubSectors: []SubSector{
			{Name: "RENEWABLE", Keywords: []string{"신재생", "태양광", "풍력"}},
			{Name: "HYDROGEN", Keywords: []string{"수소"}},
		},
	},
	{
		Sector:   SectorEnvironment,
		Keywords: []string{"환경", "탄소중립", "친환경", "재활용"},
		SubSectors: []SubSector{
			{Name: "CARBON", Keywords: []string{"탄소중립", "탄소저감"}},
			{Name: "RECYCLING", Keywords: []string{"재활용", "순환경제"}},
		},
	},
	{
		Sector:   SectorMaterials,
		Keywords: []string{"소재", "부품", "소부장", "화학"},
		SubSectors: []SubSector{
			{Name: "ADVANCED_MATERIALS", Keywords: []string{"첨단소재", "나노소재"}},
		},
	},
	{
		Sector:   SectorMarine,
		Keywords: []string{"해양", "수산", "조선"},
		SubSectors: []SubSector{
			{Name: "SHIPBUILDING", Keywords: []string{"조선", "선박"}},
		},
	},
	{
		Sector:   SectorAgriculture,
		Keywords: []string{"농업", "농식품", "스마트팜"},
		SubSectors: []SubSector{
			{Name: "SMART_FARM", Keywords: []string{"스마트팜", "스마트농업"}},
		},
	},
	{
		Sector:   SectorDefense,
		Keywords: []string{"국방", "방위산업", "국방과학"},
		SubSectors: []SubSector{
			{Name: "CYBER_DEFENSE", Keywords: []string{"사이버보안", "사이버전"}},
		},
	},
	{
		Sector:   SectorGeneral,
		Keywords: []string{},
	},
}

// RelevanceMatrix is the cross-industry relevance table R[a][b] ∈ [0,1].
// Entries are one-directional; calculateIndustryRelevance falls back to
// the symmetric cell before defaulting (spec.md §4.1, §8 "relevance
// symmetry fallback").
var RelevanceMatrix = map[Sector]map[Sector]float64{
	SectorEnergy: {
		SectorEnvironment: 0.6,
	},
	SectorICT: {
		SectorManufacturing: 0.35,
		SectorBioHealth:     0.25,
	},
	SectorBioHealth: {
		SectorMaterials: 0.3,
	},
	SectorManufacturing: {
		SectorMaterials: 0.5,
	},
	SectorMarine: {
		SectorEnvironment: 0.35,
	},
	SectorAgriculture: {
		SectorICT: 0.3,
	},
}

const defaultRelevance = 0.3

// Normalize implements normalize(kw) = uppercase(remove_whitespace(kw))
// from spec.md §4.1.
func Normalize(kw string) string {
	var b strings.Builder
	for _, r := range kw {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// FindIndustrySector implements findIndustrySector(freeText) from
// spec.md §4.1: direct sector-key match, then sector-keyword containment,
// then sub-sector-keyword containment, each on normalized forms.
func FindIndustrySector(freeText string) (Sector, bool) {
	norm := Normalize(freeText)
	if norm == "" {
		return "", false
	}

	for _, e := range Hierarchy {
		if Normalize(string(e.Sector)) == norm {
			return e.Sector, true
		}
	}

	for _, e := range Hierarchy {
		for _, kw := range e.Keywords {
			if contains(norm, Normalize(kw)) {
				return e.Sector, true
			}
		}
	}

	for _, e := range Hierarchy {
		for _, sub := range e.SubSectors {
			for _, kw := range sub.Keywords {
				if contains(norm, Normalize(kw)) {
					return e.Sector, true
				}
			}
		}
	}

	return "", false
}

// CalculateIndustryRelevance implements calculateIndustryRelevance(a, b)
// from spec.md §4.1: R[a][b] if present, else symmetric R[b][a], else 0.3.
// R[x][x] = 1 always.
func CalculateIndustryRelevance(a, b Sector) float64 {
	if a == b {
		return 1.0
	}
	if row, ok := RelevanceMatrix[a]; ok {
		if v, ok := row[b]; ok {
			return v
		}
	}
	if row, ok := RelevanceMatrix[b]; ok {
		if v, ok := row[a]; ok {
			return v
		}
	}
	return defaultRelevance
}
