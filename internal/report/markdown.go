// Package report renders a funnel run as a human-readable markdown
// document, with an optional PDF export, grounded on
// internal/patentscreen/report.go's per-pipeline report builder and
// internal/operator/pdf_renderer.go's PDF renderer.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

// ProgramLookup resolves a program ID back to its full record so the
// report can render title/ministry/deadline alongside the score.
type ProgramLookup func(programID string) (matchmodel.FundingProgram, bool)

// BuildMarkdown renders a ranked match list for one organization into a
// markdown report (spec.md has no opinion on report shape; this is
// SPEC_FULL.md ambient-stack wiring for goldmark/chromedp/go-humanize).
func BuildMarkdown(org matchmodel.Organization, matches []matchmodel.MatchScore, lookup ProgramLookup, generatedAt time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Funding Match Report\n\n")
	fmt.Fprintf(&b, "- Organization: %s\n", org.Name)
	fmt.Fprintf(&b, "- Generated: %s\n", generatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "- Matches: %d\n\n", len(matches))

	if len(matches) == 0 {
		b.WriteString("No programs met the minimum score threshold.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "| # | Program | Ministry | Score | Eligibility | Deadline |\n")
	fmt.Fprintf(&b, "|---|---------|----------|-------|-------------|----------|\n")
	for i, m := range matches {
		prog, _ := lookup(m.ProgramID)
		deadline := "-"
		if prog.Deadline != nil {
			deadline = prog.Deadline.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %.1f | %s | %s |\n",
			i+1, sanitizeLine(prog.Title), sanitizeLine(prog.Ministry), m.TotalScore, m.Eligibility, deadline)
	}
	b.WriteString("\n")

	for i, m := range matches {
		prog, _ := lookup(m.ProgramID)
		fmt.Fprintf(&b, "---\n\n## %d. %s\n\n", i+1, sanitizeLine(prog.Title))
		fmt.Fprintf(&b, "**Total score**: %.1f &nbsp; **Eligibility**: %s\n\n", m.TotalScore, m.Eligibility)

		if prog.BudgetAmount != nil {
			fmt.Fprintf(&b, "- Budget: %s원\n", humanize.Comma(*prog.BudgetAmount))
		}
		if prog.Deadline != nil {
			fmt.Fprintf(&b, "- Deadline: %s\n", prog.Deadline.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "- Ministry: %s\n\n", sanitizeLine(prog.Ministry))

		fmt.Fprintf(&b, "### Semantic breakdown (max 65)\n\n")
		fmt.Fprintf(&b, "| Dimension | Score |\n|---|---|\n")
		fmt.Fprintf(&b, "| Domain relevance | %.1f |\n", m.Semantic.DomainRelevance)
		fmt.Fprintf(&b, "| Capability fit | %.1f |\n", m.Semantic.CapabilityFit)
		fmt.Fprintf(&b, "| Intent alignment | %.1f |\n", m.Semantic.IntentAlignment)
		fmt.Fprintf(&b, "| Negative signals | %.1f |\n", m.Semantic.NegativeSignals)
		fmt.Fprintf(&b, "| Confidence bonus | %.1f |\n\n", m.Semantic.ConfidenceBonus)

		fmt.Fprintf(&b, "### Practical breakdown (max 35)\n\n")
		fmt.Fprintf(&b, "| Dimension | Score |\n|---|---|\n")
		fmt.Fprintf(&b, "| TRL alignment | %.1f |\n", m.Practical.TRLAlignment)
		fmt.Fprintf(&b, "| Scale fit | %.1f |\n", m.Practical.ScaleFit)
		fmt.Fprintf(&b, "| R&D track | %.1f |\n", m.Practical.RDTrack)
		fmt.Fprintf(&b, "| Deadline urgency | %.1f |\n", m.Practical.DeadlineUrgency)
		fmt.Fprintf(&b, "| Certification bonus | %.1f |\n\n", m.Practical.CertificationBonus)

		if len(m.Gaps) > 0 {
			fmt.Fprintf(&b, "### Gaps\n\n")
			for _, g := range m.Gaps {
				marker := ""
				if g.IsBlocker {
					marker = " (blocker)"
				}
				fmt.Fprintf(&b, "- **%s**%s [%s]: %s\n", g.Dimension, marker, g.Severity, sanitizeLine(g.Description))
			}
			b.WriteString("\n")
		}

		if len(m.NegativeSignals) > 0 {
			fmt.Fprintf(&b, "### Negative signals\n\n")
			for _, s := range m.NegativeSignals {
				fmt.Fprintf(&b, "- `%s` (%.0f): %s\n", s.Code, s.Penalty, sanitizeLine(s.Detail))
			}
			b.WriteString("\n")
		}

		if m.NeedsManualReview {
			b.WriteString("> [!] Flagged for manual review — see eligibility reason codes below.\n\n")
		}
		if len(m.ReasonCodes) > 0 {
			fmt.Fprintf(&b, "**Reason codes**: %s\n\n", strings.Join(m.ReasonCodes, ", "))
		}
	}

	return b.String()
}

func sanitizeLine(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if s == "" {
		return "-"
	}
	return s
}
