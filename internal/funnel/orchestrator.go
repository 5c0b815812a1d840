package funnel

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joelkehle/kmatch/internal/classifier"
	"github.com/joelkehle/kmatch/internal/eligibility"
	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/proximity"
)

var (
	yearPrefixPattern      = regexp.MustCompile(`^\s*\d{4}년도?\s*`)
	trailingParenPattern   = regexp.MustCompile(`\([^)]*\)\s*$`)
	yearSuffixPattern      = regexp.MustCompile(`\s*\d{4}년?\s*$`)
	whitespaceRunPattern   = regexp.MustCompile(`\s+`)
)

// NormalizeTitle implements spec.md §4.12's normalizeTitle: strips a
// leading year prefix, trailing parentheticals, year suffix patterns
// (repeating until none is left), collapses whitespace, lowercases.
// Idempotent (spec.md §8 property law).
func NormalizeTitle(title string) string {
	t := title
	for {
		prev := t
		t = yearPrefixPattern.ReplaceAllString(t, "")
		t = trailingParenPattern.ReplaceAllString(t, "")
		t = yearSuffixPattern.ReplaceAllString(t, "")
		if t == prev {
			break
		}
	}
	t = whitespaceRunPattern.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)
	return strings.ToLower(t)
}

type dedupKey struct {
	agencyID string
	title    string
}

// dedupePrograms implements spec.md §4.12 step 2: group by (agencyId,
// normalizeTitle(title)), keep one per group by has-deadline > has-budget
// > earliest scrapedAt.
func dedupePrograms(programs []matchmodel.FundingProgram) []matchmodel.FundingProgram {
	groups := make(map[dedupKey][]matchmodel.FundingProgram)
	var order []dedupKey

	for _, p := range programs {
		key := dedupKey{agencyID: p.AgencyID, title: NormalizeTitle(p.Title)}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	out := make([]matchmodel.FundingProgram, 0, len(order))
	for _, key := range order {
		out = append(out, bestOfGroup(groups[key]))
	}
	return out
}

func bestOfGroup(group []matchmodel.FundingProgram) matchmodel.FundingProgram {
	best := group[0]
	for _, p := range group[1:] {
		if betterCandidate(p, best) {
			best = p
		}
	}
	return best
}

// betterCandidate implements the tie-break order: has-deadline >
// has-budget > earliest scrapedAt.
func betterCandidate(a, b matchmodel.FundingProgram) bool {
	aHasDeadline, bHasDeadline := a.Deadline != nil, b.Deadline != nil
	if aHasDeadline != bHasDeadline {
		return aHasDeadline
	}
	aHasBudget, bHasBudget := a.BudgetAmount != nil, b.BudgetAmount != nil
	if aHasBudget != bHasBudget {
		return aHasBudget
	}
	return a.ScrapedAt.Before(b.ScrapedAt)
}

// counters tallies funnel processing outcomes for the log line spec.md
// §4.12 step 6 requires.
type counters struct {
	processed       int
	gateBlocked     int
	blockBreakdown  map[string]int
	lowSemantic     int
	aboveThreshold  int
}

// GenerateMatches implements the Funnel Orchestrator of spec.md §4.12.
// It reads nothing but its arguments and the clock (for expiry and
// deadline math); its only side effects are one summary log line and the
// run's trace span. Safely re-entrant, cancellable at program boundaries.
func GenerateMatches(ctx context.Context, org *matchmodel.Organization, programs []matchmodel.FundingProgram, limit int, opts Options) []matchmodel.MatchScore {
	if org == nil || len(programs) == 0 {
		return nil
	}
	opts = opts.WithDefaults()
	asOf := time.Now()

	ctx, recorder := runSpan(ctx, org.ID, len(programs))

	deduped := dedupePrograms(programs)

	var survivors []matchmodel.FundingProgram
	for _, p := range deduped {
		if p.Status != matchmodel.StatusActive && !opts.IncludeExpired {
			continue
		}
		if p.IsExpired(asOf) && !opts.IncludeExpired {
			continue
		}
		survivors = append(survivors, p)
	}

	c := counters{blockBreakdown: make(map[string]int)}
	var matches []matchmodel.MatchScore

	for _, prog := range survivors {
		select {
		case <-ctx.Done():
			recorder.end(c.processed, len(matches), c.aboveThreshold)
			return finalize(matches, limit)
		default:
		}

		match, gateResult := evaluateOne(*org, prog, asOf, opts)
		c.processed++
		if !gateResult.Passed {
			c.gateBlocked++
			for _, reason := range gateResult.BlockReasons {
				c.blockBreakdown[reason]++
			}
			recorder.record(gateResult.BlockReasons)
			continue
		}

		if match.TotalScore < 30 {
			c.lowSemantic++
		}
		if match.TotalScore >= float64(opts.MinimumScore) {
			c.aboveThreshold++
		}
		matches = append(matches, match)
	}

	log.Printf("funnel: processed=%d gate_blocked=%d low_semantic=%d above_threshold=%d breakdown=%v",
		c.processed, c.gateBlocked, c.lowSemantic, c.aboveThreshold, c.blockBreakdown)

	recorder.end(c.processed, len(matches), c.aboveThreshold)

	filtered := filterByMinimumScore(matches, opts.MinimumScore)
	return finalize(filtered, limit)
}

// evaluateOne evaluates one program against org. Every per-program
// failure is isolated here; a panic recovered at this boundary is logged
// and the program skipped, per spec.md §7 FatalInternal handling.
func evaluateOne(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time, opts Options) (match matchmodel.MatchScore, gate Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("funnel: recovered panic evaluating program %s: %v", prog.ID, r)
			gate = Result{Passed: false, BlockReasons: []string{"INTERNAL_ERROR"}}
		}
	}()

	gate = Evaluate(org, prog, asOf, opts)
	if !gate.Passed {
		return matchmodel.MatchScore{}, gate
	}

	classified := classifier.Classify(prog.Title, prog.Title, prog.Ministry)
	semantic := ScoreSemantic(org, prog, classified, asOf, opts)
	practical := ScorePractical(org, prog, asOf)
	total := roundTotal(semantic.Score + practical.Score)

	level := eligibilityLevel(gate.Eligibility.Level)
	v4 := BuildV4Breakdown(semantic, practical)
	negSignals := NegativeSignalsFor(org, prog, classified)

	var gaps []matchmodel.Gap
	if prog.HasIAP() {
		gaps = proximity.Score(org, *prog.IdealApplicantProfile, prog.Deadline, asOf).Gaps
	}

	return matchmodel.MatchScore{
		OrganizationID: org.ID,
		ProgramID:      prog.ID,
		TotalScore:     total,
		Gate: matchmodel.GateResult{
			Passed:          gate.Passed,
			BlockReasons:    gate.BlockReasons,
			ApplicationType: gate.ApplicationType,
			Eligibility: matchmodel.EligibilityDetail{
				Level:               level,
				HardRequirementsMet: gate.Eligibility.HardRequirementsMet,
				SoftRequirementsMet: gate.Eligibility.SoftRequirementsMet,
				NeedsManualReview:   gate.Eligibility.NeedsManualReview,
				ReasonCodes:         gate.Eligibility.ReasonCodes,
			},
		},
		Semantic:          semantic,
		Practical:         practical,
		V4:                v4,
		Eligibility:        level,
		ReasonCodes:        gate.Eligibility.ReasonCodes,
		Gaps:               gaps,
		NegativeSignals:    negSignals,
		NeedsManualReview:  gate.Eligibility.NeedsManualReview,
	}, gate
}

func eligibilityLevel(l eligibility.Level) matchmodel.EligibilityLevel {
	switch l {
	case eligibility.LevelFullyEligible:
		return matchmodel.EligibilityFullyEligible
	case eligibility.LevelConditionallyEligible:
		return matchmodel.EligibilityConditionallyEligible
	default:
		return matchmodel.EligibilityIneligible
	}
}

func roundTotal(v float64) float64 {
	return float64(int(v + 0.5))
}

func filterByMinimumScore(matches []matchmodel.MatchScore, minimum int) []matchmodel.MatchScore {
	var out []matchmodel.MatchScore
	for _, m := range matches {
		if m.TotalScore >= float64(minimum) {
			out = append(out, m)
		}
	}
	return out
}

// finalize implements spec.md §4.12 step 7's sort + slice: primary by
// eligibility level (FULLY_ELIGIBLE before CONDITIONALLY_ELIGIBLE),
// secondary by total score descending, stable.
func finalize(matches []matchmodel.MatchScore, limit int) []matchmodel.MatchScore {
	sort.SliceStable(matches, func(i, j int) bool {
		pi, pj := levelPriority(matches[i].Eligibility), levelPriority(matches[j].Eligibility)
		if pi != pj {
			return pi < pj
		}
		return matches[i].TotalScore > matches[j].TotalScore
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func levelPriority(l matchmodel.EligibilityLevel) int {
	switch l {
	case matchmodel.EligibilityFullyEligible:
		return 0
	case matchmodel.EligibilityConditionallyEligible:
		return 1
	default:
		return 2
	}
}
