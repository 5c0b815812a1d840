package funnel

import (
	"context"
	"testing"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func TestCompareShadowReturnsOneDiffPerMatch(t *testing.T) {
	org := &matchmodel.Organization{ID: "org-1", Sector: "ICT", KeyTechnologies: []string{"인공지능"}}
	deadline := time.Now().Add(30 * 24 * time.Hour)
	programs := []matchmodel.FundingProgram{
		{ID: "prog-1", AgencyID: "ag1", Title: "인공지능 기술개발 지원사업", Status: matchmodel.StatusActive, Deadline: &deadline, Keywords: []string{"인공지능"}},
	}

	diffs := CompareShadow(context.Background(), org, programs, Options{MinimumScore: 1})
	if len(diffs) != 1 {
		t.Fatalf("len(diffs) = %d, want 1", len(diffs))
	}
	if diffs[0].ProgramID != "prog-1" {
		t.Errorf("ProgramID = %q, want prog-1", diffs[0].ProgramID)
	}
	if diffs[0].RankV6 != 1 {
		t.Errorf("RankV6 = %d, want 1 for the sole surviving match", diffs[0].RankV6)
	}
}

func TestCompareShadowEmptyWhenNoMatches(t *testing.T) {
	org := &matchmodel.Organization{ID: "org-1"}
	got := CompareShadow(context.Background(), org, nil, Options{})
	if got != nil {
		t.Errorf("CompareShadow with no programs = %v, want nil", got)
	}
}

func TestV4TotalSumsAllComponents(t *testing.T) {
	b := matchmodel.V4Breakdown{KeywordScore: 1, IndustryScore: 2, TRLScore: 3, TypeScore: 4, RDScore: 5, DeadlineScore: 6}
	if got := v4Total(b); got != 21 {
		t.Errorf("v4Total = %v, want 21", got)
	}
}

func TestSortRankedByV4DescOrdersDescending(t *testing.T) {
	ranked := []rankedMatch{
		{match: matchmodel.MatchScore{ProgramID: "low"}, v4: 10},
		{match: matchmodel.MatchScore{ProgramID: "high"}, v4: 90},
		{match: matchmodel.MatchScore{ProgramID: "mid"}, v4: 50},
	}
	sortRankedByV4Desc(ranked)
	want := []string{"high", "mid", "low"}
	for i, id := range want {
		if ranked[i].match.ProgramID != id {
			t.Errorf("sorted[%d] = %q, want %q", i, ranked[i].match.ProgramID, id)
		}
	}
}
