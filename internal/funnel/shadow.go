package funnel

import (
	"context"
	"math"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

// ShadowDiff is one program's comparison record between the legacy v4
// total (reconstructed from the v6 breakdown, per spec.md §4.12) and the
// live v6.0-funnel score, emitted when MATCHING_SHADOW_MODE is set
// (spec.md §6.5).
type ShadowDiff struct {
	ProgramID       string
	V4Total         float64
	V6Total         float64
	ScoreDelta      float64
	RankV4          int
	RankV6          int
	RankDelta       int
	EligibilityV6   matchmodel.EligibilityLevel
}

type rankedMatch struct {
	match matchmodel.MatchScore
	v4    float64
}

// CompareShadow runs the v6 funnel once and derives the v4-equivalent
// ranking from each match's V4Breakdown, returning a per-program diff.
// It never runs a second, independent v4 scoring pass: spec.md §9 treats
// BuildV4Breakdown's reconstruction as the legacy-compatible view, so
// shadow mode compares that reconstruction's implied ranking against the
// v6 ranking actually served.
func CompareShadow(ctx context.Context, org *matchmodel.Organization, programs []matchmodel.FundingProgram, opts Options) []ShadowDiff {
	v6Matches := GenerateMatches(ctx, org, programs, 0, opts)
	if len(v6Matches) == 0 {
		return nil
	}

	v6RankOf := make(map[string]int, len(v6Matches))
	for i, m := range v6Matches {
		v6RankOf[m.ProgramID] = i + 1
	}

	v4Sorted := make([]rankedMatch, len(v6Matches))
	for i, m := range v6Matches {
		v4Sorted[i] = rankedMatch{match: m, v4: v4Total(m.V4)}
	}
	sortRankedByV4Desc(v4Sorted)
	v4RankOf := make(map[string]int, len(v4Sorted))
	for i, r := range v4Sorted {
		v4RankOf[r.match.ProgramID] = i + 1
	}

	diffs := make([]ShadowDiff, 0, len(v6Matches))
	for _, m := range v6Matches {
		v4 := v4Total(m.V4)
		v6Rank, v4Rank := v6RankOf[m.ProgramID], v4RankOf[m.ProgramID]
		diffs = append(diffs, ShadowDiff{
			ProgramID:     m.ProgramID,
			V4Total:       v4,
			V6Total:       m.TotalScore,
			ScoreDelta:    math.Round((m.TotalScore-v4)*10) / 10,
			RankV4:        v4Rank,
			RankV6:        v6Rank,
			RankDelta:     v4Rank - v6Rank,
			EligibilityV6: m.Eligibility,
		})
	}
	return diffs
}

func v4Total(b matchmodel.V4Breakdown) float64 {
	return b.KeywordScore + b.IndustryScore + b.TRLScore + b.TypeScore + b.RDScore + b.DeadlineScore
}

func sortRankedByV4Desc(r []rankedMatch) {
	for i := 1; i < len(r); i++ {
		for j := i; j > 0 && r[j].v4 > r[j-1].v4; j-- {
			r[j], r[j-1] = r[j-1], r[j]
		}
	}
}
