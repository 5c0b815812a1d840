package iap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

const (
	maxDescriptionChars = 3000
	maxCriteriaChars    = 500
	minSourceTextChars  = 50
	tier2Temperature    = 0.1
	tier2MaxTokens      = 512
)

// tier2Response is the fixed schema of spec.md §4.5's single-shot LLM
// extraction request.
type tier2Response struct {
	ProgramStage                 string   `json:"programStage"`
	SubDomains                   []string `json:"subDomains"`
	ExpectedCapabilities         []string `json:"expectedCapabilities"`
	DesiredOutcomes              []string `json:"desiredOutcomes"`
	CollaborationExpectation     string   `json:"collaborationExpectation"`
	IdealTRLCenter               float64  `json:"idealTrlCenter"`
	FinancialRequiresMatchingFund bool    `json:"financialRequiresMatchingFund"`
}

func (r *tier2Response) validate() error {
	if len(r.SubDomains) > 5 {
		return fmt.Errorf("subDomains has %d entries, max 5", len(r.SubDomains))
	}
	if len(r.ExpectedCapabilities) > 5 {
		return fmt.Errorf("expectedCapabilities has %d entries, max 5", len(r.ExpectedCapabilities))
	}
	if len(r.DesiredOutcomes) > 5 {
		return fmt.Errorf("desiredOutcomes has %d entries, max 5", len(r.DesiredOutcomes))
	}
	if r.IdealTRLCenter != 0 && (r.IdealTRLCenter < 1 || r.IdealTRLCenter > 9) {
		return fmt.Errorf("idealTrlCenter %.1f out of [1,9]", r.IdealTRLCenter)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func buildTier2SourceText(prog matchmodel.FundingProgram) string {
	var sb strings.Builder
	sb.WriteString(prog.Title)
	sb.WriteString("\n")
	sb.WriteString(truncate(prog.Description, maxDescriptionChars))
	if len(prog.Keywords) > 0 {
		sb.WriteString("\nkeywords: ")
		sb.WriteString(strings.Join(prog.Keywords, ", "))
	}
	if prog.EligibilityCriteria != "" {
		sb.WriteString("\neligibility: ")
		sb.WriteString(truncate(prog.EligibilityCriteria, maxCriteriaChars))
	}
	return sb.String()
}

func buildTier2Prompt(sourceText string) string {
	return fmt.Sprintf(`Given the following Korean government funding program announcement text,
extract a JSON object with exactly these fields:
{
  "programStage": one of "BASIC_RESEARCH"|"APPLIED_RESEARCH"|"COMMERCIALIZATION"|"INFRASTRUCTURE"|"POLICY_SUPPORT",
  "subDomains": up to 5 short strings,
  "expectedCapabilities": up to 5 short strings,
  "desiredOutcomes": up to 5 short strings,
  "collaborationExpectation": short string or empty,
  "idealTrlCenter": number in [1,9] or 0 if not determinable,
  "financialRequiresMatchingFund": boolean
}

Announcement text:
%s`, sourceText)
}

// Generator produces an IdealApplicantProfile from a program record in two
// tiers, then merges (spec.md §4.5).
type Generator struct {
	completer Completer
	rates     CostRates
}

// NewGenerator constructs a Generator. completer may be nil if the caller
// only ever invokes GenerateRuleProfile / passes useLLM=false.
func NewGenerator(completer Completer, rates CostRates) *Generator {
	return &Generator{completer: completer, rates: rates}
}

// GenerateResult is the Generator's output (spec.md §6.2).
type GenerateResult struct {
	Profile  *matchmodel.IdealApplicantProfile
	CostKRW  float64
	UsedLLM  bool
	Usage    Usage
}

// Generate implements spec.md §4.5 end-to-end: tier 1, optional tier 2,
// merge, and overall confidence aggregation.
func (g *Generator) Generate(ctx context.Context, prog matchmodel.FundingProgram, useLLM bool) GenerateResult {
	profile := GenerateRuleProfile(prog)

	sourceText := buildTier2SourceText(prog)
	if !useLLM || len([]rune(sourceText)) < minSourceTextChars || g.completer == nil {
		finalizeConfidence(profile)
		return GenerateResult{Profile: profile, UsedLLM: false}
	}

	resp, usage, err := g.runTier2(ctx, sourceText)
	if err != nil {
		// ExternalDependencyFailure: recover locally, return the rule-only
		// profile, cost recorded as 0 (spec.md §7).
		log.Printf("iap: tier2 extraction failed, falling back to rule-only profile: %v", err)
		finalizeConfidence(profile)
		return GenerateResult{Profile: profile, UsedLLM: false}
	}

	mergeTier2(profile, resp)
	finalizeConfidence(profile)

	cost := g.rates.CostKRW(usage)
	return GenerateResult{Profile: profile, CostKRW: cost, UsedLLM: true, Usage: usage}
}

func (g *Generator) runTier2(ctx context.Context, sourceText string) (tier2Response, Usage, error) {
	var resp tier2Response
	exec := newExecutor(g.completer)
	prompt := buildTier2Prompt(sourceText)
	opts := CompleteOptions{MaxTokens: tier2MaxTokens, Temperature: tier2Temperature}

	_, usage, err := exec.run(ctx, prompt, opts, &resp, resp.validate)
	if err != nil {
		return tier2Response{}, usage, err
	}
	return resp, usage, nil
}

// mergeTier2 implements spec.md §4.5's merge policy: rule wins over LLM
// except for the fields explicitly named here.
func mergeTier2(p *matchmodel.IdealApplicantProfile, resp tier2Response) {
	if resp.ProgramStage != "" {
		current, hasConfidence := p.DimensionConfidence[matchmodel.DimProgramStage]
		if !hasConfidence || current == matchmodel.ConfidenceInferred {
			p.ProgramStage = matchmodel.ProgramIntent(resp.ProgramStage)
			p.SetConfidence(matchmodel.DimProgramStage, matchmodel.ConfidenceMedium)
		}
	}

	if len(resp.SubDomains) > 0 {
		p.SubDomains = resp.SubDomains
		p.SetConfidence(matchmodel.DimSubDomains, matchmodel.ConfidenceMedium)
	}
	if len(resp.ExpectedCapabilities) > 0 {
		p.ExpectedCapabilities = resp.ExpectedCapabilities
		p.SetConfidence(matchmodel.DimExpectedCapabilities, matchmodel.ConfidenceMedium)
	}
	if len(resp.DesiredOutcomes) > 0 {
		p.DesiredOutcomes = resp.DesiredOutcomes
		p.SetConfidence(matchmodel.DimDesiredOutcomes, matchmodel.ConfidenceMedium)
	}

	if p.CollaborationExpectation == "" && resp.CollaborationExpectation != "" {
		p.CollaborationExpectation = resp.CollaborationExpectation
		p.SetConfidence(matchmodel.DimCollaborationExpectation, matchmodel.ConfidenceMedium)
	}

	if resp.IdealTRLCenter > 0 {
		if p.TRLRange == nil {
			p.TRLRange = &matchmodel.IdealTRLRange{}
		}
		center := resp.IdealTRLCenter
		p.TRLRange.IdealCenter = &center
	}

	if resp.FinancialRequiresMatchingFund {
		if p.FinancialProfile == nil {
			p.FinancialProfile = &matchmodel.FinancialProfile{}
		}
		requires := true
		p.FinancialProfile.RequiresMatchingFund = &requires
	}
}

// finalizeConfidence implements spec.md §4.5's overall confidence formula:
// min(1.0, (H*1 + M*0.6) / 15), floored at 0.1 if no dimensions set.
func finalizeConfidence(p *matchmodel.IdealApplicantProfile) {
	high, medium := p.CountConfidenceLevels()
	if high == 0 && medium == 0 {
		p.Confidence = 0.1
		p.GeneratedBy = matchmodel.GeneratedByRule
		return
	}

	confidence := (float64(high) + float64(medium)*0.6) / 15
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.1 {
		confidence = 0.1
	}
	p.Confidence = confidence

	hasLLMDims := false
	for _, dim := range []string{matchmodel.DimSubDomains, matchmodel.DimExpectedCapabilities, matchmodel.DimDesiredOutcomes} {
		if _, ok := p.DimensionConfidence[dim]; ok {
			hasLLMDims = true
			break
		}
	}
	switch {
	case hasLLMDims && high > 0:
		p.GeneratedBy = matchmodel.GeneratedByHybrid
	case hasLLMDims:
		p.GeneratedBy = matchmodel.GeneratedByLLM
	default:
		p.GeneratedBy = matchmodel.GeneratedByRule
	}
}
