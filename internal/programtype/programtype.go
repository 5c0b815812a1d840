// Package programtype classifies an announcement into the program-type
// taxonomy of spec.md §4.8, following the compiled package-level regex
// style of internal/priorartsearch/search.go's cpcSubclassRe.
package programtype

import "regexp"

type Type string

const (
	OpenCompetition  Type = "OPEN_COMPETITION"
	Designated       Type = "DESIGNATED"
	DemandSurvey     Type = "DEMAND_SURVEY"
	InstitutionalOnly Type = "INSTITUTIONAL_ONLY"
	Consolidated     Type = "CONSOLIDATED"
	Unknown          Type = "UNKNOWN"
)

var (
	designatedPattern = regexp.MustCompile(`지정\s*과제|지정공모|지정연구`)
	demandSurveyPattern = regexp.MustCompile(`수요\s*조사|수요조사`)
	institutionalOnlyPattern = regexp.MustCompile(`출연\s*\(?연\)?\s*전용|정부출연연구기관\s*전용|연구기관\s*전용`)
	rdContextPattern = regexp.MustCompile(`기술개발|R&D|연구개발|과제공모|기술혁신`)
)

// Detect classifies combined title+description text. A designated-pattern
// match co-occurring with R&D context is downgraded to OPEN_COMPETITION
// (spec.md §4.8): a "지정과제"-labeled R&D solicitation is, in practice,
// open to competitive proposals despite the label.
func Detect(titleAndDescription string) Type {
	switch {
	case institutionalOnlyPattern.MatchString(titleAndDescription):
		return InstitutionalOnly
	case demandSurveyPattern.MatchString(titleAndDescription):
		return DemandSurvey
	case designatedPattern.MatchString(titleAndDescription):
		if rdContextPattern.MatchString(titleAndDescription) {
			return OpenCompetition
		}
		return Designated
	default:
		return Unknown
	}
}

// IsConsolidated reports the structural signal for a consolidated
// announcement: simultaneous absence of deadline, application-start and
// budget (spec.md §4.8, GLOSSARY). Detected independently of the regex
// classification above.
func IsConsolidated(hasDeadline, hasApplicationStart, hasBudget bool) bool {
	return !hasDeadline && !hasApplicationStart && !hasBudget
}
