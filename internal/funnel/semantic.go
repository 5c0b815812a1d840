package funnel

import (
	"math"
	"strings"
	"time"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/negsignal"
	"github.com/joelkehle/kmatch/internal/proximity"
	"github.com/joelkehle/kmatch/internal/taxonomy"
)

const (
	semanticMin = 0.0
	semanticMax = 65.0

	domainRelevanceMax = 25.0
	capabilityFitMax   = 15.0
	intentAlignmentMax = 10.0
	confidenceBonusMax = 10.0

	domainRelevanceNoSectorFallback = 8.0
	capabilityFitNoKeywordFallback  = 3.0
)

// ScoreSemantic implements the Semantic Scorer of spec.md §4.10.
func ScoreSemantic(org matchmodel.Organization, prog matchmodel.FundingProgram, classified classifier.Result, asOf time.Time, opts Options) matchmodel.SemanticBreakdown {
	var domainRelevance, capabilityFit float64

	var prox *proximity.Result
	if prog.HasIAP() {
		r := proximity.Score(org, *prog.IdealApplicantProfile, prog.Deadline, asOf)
		prox = &r
		domainRelevance = r.DomainFit / proximity.WeightDomainFit * domainRelevanceMax
		capabilityFit = r.CapabilityFit
	} else {
		domainRelevance = scoreDomainRelevanceNoIAP(org, classified)
		capabilityFit = scoreCapabilityFitNoIAP(org, prog)
	}

	if opts.NonEnrichedPenalty && !prog.HasIAP() && org.HasSemanticData() {
		domainRelevance -= 15
		if domainRelevance < 0 {
			domainRelevance = 0
		}
	}

	intentAlignment := scoreIntentAlignment(prog.ProgramIntent, org.MatchingTRL())

	orgSector := classifier.NormalizeOrgSector(org.Sector)
	isStartup := org.Scale == matchmodel.ScaleStartup || org.Scale == matchmodel.ScaleMicro
	signals := negsignal.Detect(orgSector, classified.Industry, prog.Title, isStartup)
	var penalties []float64
	for _, s := range signals {
		penalties = append(penalties, s.Penalty)
	}
	negativeSignals := negsignal.ClampedTotal(penalties)

	var confidenceBonus float64
	if prog.HasIAP() {
		confidenceBonus = math.Round(prog.IdealApplicantProfile.Confidence * confidenceBonusMax)
	}

	sum := domainRelevance + capabilityFit + intentAlignment + negativeSignals + confidenceBonus
	score := math.Max(semanticMin, math.Min(semanticMax, sum))

	_ = prox // kept for callers that want the full proximity breakdown (orchestrator)

	return matchmodel.SemanticBreakdown{
		DomainRelevance: domainRelevance,
		CapabilityFit:   capabilityFit,
		IntentAlignment: intentAlignment,
		NegativeSignals: negativeSignals,
		ConfidenceBonus: confidenceBonus,
		Score:           score,
	}
}

// NegativeSignalsFor recomputes the fired signal list (not just the
// clamped total) for attaching to the MatchScore record.
func NegativeSignalsFor(org matchmodel.Organization, prog matchmodel.FundingProgram, classified classifier.Result) []matchmodel.NegativeSignal {
	orgSector := classifier.NormalizeOrgSector(org.Sector)
	isStartup := org.Scale == matchmodel.ScaleStartup || org.Scale == matchmodel.ScaleMicro
	fired := negsignal.Detect(orgSector, classified.Industry, prog.Title, isStartup)
	out := make([]matchmodel.NegativeSignal, 0, len(fired))
	for _, s := range fired {
		out = append(out, matchmodel.NegativeSignal{Code: s.Code, Penalty: s.Penalty, Detail: s.Detail})
	}
	return out
}

func scoreDomainRelevanceNoIAP(org matchmodel.Organization, classified classifier.Result) float64 {
	if org.Sector == "" {
		return domainRelevanceNoSectorFallback
	}
	relevance := classifier.GetIndustryRelevance(org.Sector, classified.Industry)
	return relevance * domainRelevanceMax
}

func scoreCapabilityFitNoIAP(org matchmodel.Organization, prog matchmodel.FundingProgram) float64 {
	orgKeywords := make(map[string]bool)
	for _, w := range org.KeyTechnologies {
		orgKeywords[taxonomy.Normalize(w)] = true
	}
	for _, w := range org.TechnologySubDomains {
		orgKeywords[taxonomy.Normalize(w)] = true
	}
	for _, w := range org.ResearchFocusAreas {
		orgKeywords[taxonomy.Normalize(w)] = true
	}
	if len(orgKeywords) == 0 {
		return capabilityFitNoKeywordFallback
	}

	candidates := append([]string{}, prog.Keywords...)
	for _, tok := range strings.Fields(prog.Title) {
		if len([]rune(tok)) >= 2 {
			candidates = append(candidates, tok)
		}
	}

	hits := 0
	for _, c := range candidates {
		if orgKeywords[taxonomy.Normalize(c)] {
			hits++
		}
	}

	switch {
	case hits >= 4:
		return 15
	case hits == 3:
		return 13
	case hits == 2:
		return 10
	case hits == 1:
		return 6
	default:
		return 0
	}
}

// scoreIntentAlignment implements spec.md §4.10's bucketed table per
// program intent. orgTRL is the organization's matching TRL (target
// research TRL if set, else current TRL).
func scoreIntentAlignment(intent matchmodel.ProgramIntent, orgTRL *int) float64 {
	const missingDataDefault = 4.0
	if orgTRL == nil {
		return missingDataDefault
	}
	trl := *orgTRL

	switch intent {
	case matchmodel.IntentBasicResearch:
		switch {
		case trl <= 3:
			return 10
		case trl <= 5:
			return 5
		default:
			return 0
		}
	case matchmodel.IntentAppliedResearch:
		if trl >= 4 && trl <= 6 {
			return 10
		}
		return missingDataDefault
	case matchmodel.IntentCommercialization:
		if trl >= 7 {
			return 10
		}
		return missingDataDefault
	case matchmodel.IntentInfrastructure, matchmodel.IntentPolicySupport:
		return 6
	default:
		return missingDataDefault
	}
}
