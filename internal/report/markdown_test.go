package report

import (
	"strings"
	"testing"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func TestBuildMarkdownNoMatches(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1", Name: "샘플기업"}
	got := BuildMarkdown(org, nil, noopLookup, time.Now())
	if !strings.Contains(got, "No programs met the minimum score threshold.") {
		t.Errorf("expected the empty-result notice, got:\n%s", got)
	}
}

func TestBuildMarkdownIncludesSummaryTableAndDetail(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1", Name: "샘플기업"}
	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	budget := int64(1_000_000_000)
	program := matchmodel.FundingProgram{ID: "prog-1", Title: "인공지능 지원사업", Ministry: "과학기술정보통신부", Deadline: &deadline, BudgetAmount: &budget}

	lookup := func(id string) (matchmodel.FundingProgram, bool) {
		if id == "prog-1" {
			return program, true
		}
		return matchmodel.FundingProgram{}, false
	}

	match := matchmodel.MatchScore{
		ProgramID:   "prog-1",
		TotalScore:  82.5,
		Eligibility: matchmodel.EligibilityFullyEligible,
		Semantic:    matchmodel.SemanticBreakdown{DomainRelevance: 20, Score: 55},
		Practical:   matchmodel.PracticalBreakdown{TRLAlignment: 8, Score: 27},
		Gaps:        []matchmodel.Gap{{Dimension: "complianceFit", Severity: matchmodel.GapSeverityHigh, IsBlocker: true, Description: "인증 누락"}},
		NegativeSignals: []matchmodel.NegativeSignal{{Code: "SECTOR_MISMATCH", Penalty: -5, Detail: "업종 불일치"}},
		ReasonCodes: []string{"MISSING_CERT"},
	}

	got := BuildMarkdown(org, []matchmodel.MatchScore{match}, lookup, time.Date(2026, 7, 30, 9, 0, 0, 0, time.UTC))

	for _, want := range []string{
		"샘플기업",
		"인공지능 지원사업",
		"82.5",
		"2026-12-31",
		"1,000,000,000원",
		"complianceFit",
		"blocker",
		"SECTOR_MISMATCH",
		"MISSING_CERT",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, got)
		}
	}
}

func TestBuildMarkdownSanitizesNewlinesInTitle(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1"}
	program := matchmodel.FundingProgram{ID: "prog-1", Title: "여러줄\n제목입니다"}
	lookup := func(id string) (matchmodel.FundingProgram, bool) { return program, true }
	match := matchmodel.MatchScore{ProgramID: "prog-1", Eligibility: matchmodel.EligibilityConditionallyEligible}

	got := BuildMarkdown(org, []matchmodel.MatchScore{match}, lookup, time.Now())
	if strings.Contains(got, "여러줄\n제목입니다") {
		t.Error("expected embedded newlines in the title to be collapsed")
	}
	if !strings.Contains(got, "여러줄 제목입니다") {
		t.Errorf("expected the sanitized single-line title, got:\n%s", got)
	}
}

func TestBuildMarkdownFlagsManualReview(t *testing.T) {
	org := matchmodel.Organization{ID: "org-1"}
	program := matchmodel.FundingProgram{ID: "prog-1", Title: "지원사업"}
	lookup := func(id string) (matchmodel.FundingProgram, bool) { return program, true }
	match := matchmodel.MatchScore{ProgramID: "prog-1", Eligibility: matchmodel.EligibilityConditionallyEligible, NeedsManualReview: true}

	got := BuildMarkdown(org, []matchmodel.MatchScore{match}, lookup, time.Now())
	if !strings.Contains(got, "Flagged for manual review") {
		t.Errorf("expected a manual-review notice, got:\n%s", got)
	}
}

func noopLookup(id string) (matchmodel.FundingProgram, bool) {
	return matchmodel.FundingProgram{}, false
}
