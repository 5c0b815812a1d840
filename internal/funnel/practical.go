package funnel

import (
	"math"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
	"github.com/joelkehle/kmatch/internal/proximity"
	"github.com/joelkehle/kmatch/internal/trlscore"
)

const practicalMax = 35.0

// ScorePractical implements the Practical Scorer of spec.md §4.11.
func ScorePractical(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time) matchmodel.PracticalBreakdown {
	trl := trlscore.Score(org.MatchingTRL(), prog.TRL)
	trlAlignment := math.Round(trl.Score / 20 * 10)

	scaleFit := scoreScaleFit(org, prog, asOf)
	rdTrack := scoreRDTrack(org)
	deadlineUrgency := scoreDeadlineUrgencyPractical(prog, asOf)
	certificationBonus := scoreCertificationBonus(org, prog)

	sum := trlAlignment + scaleFit + rdTrack + deadlineUrgency + certificationBonus
	score := math.Min(practicalMax, sum)

	return matchmodel.PracticalBreakdown{
		TRLAlignment:       trlAlignment,
		ScaleFit:           scaleFit,
		RDTrack:            rdTrack,
		DeadlineUrgency:    deadlineUrgency,
		CertificationBonus: certificationBonus,
		Score:              score,
	}
}

func scoreScaleFit(org matchmodel.Organization, prog matchmodel.FundingProgram, asOf time.Time) float64 {
	if prog.HasIAP() {
		prox := proximity.Score(org, *prog.IdealApplicantProfile, prog.Deadline, asOf)
		orgPart := prox.OrganizationFit / proximity.WeightOrganizationFit * 6
		finPart := prox.FinancialFit / proximity.WeightFinancialFit * 2
		return orgPart + finPart
	}
	if org.Scale != "" || org.EmployeeRange != "" {
		return 4
	}
	return 2
}

func scoreRDTrack(org matchmodel.Organization) float64 {
	var score float64
	if org.RDExperience {
		score += 3
	}
	switch {
	case org.CollaborationCount >= 3:
		score += 2
	case org.CollaborationCount >= 1:
		score += 1
	}
	return score
}

// scoreDeadlineUrgencyPractical implements spec.md §4.11's deadlineUrgency
// table, capped at 7 of the practical scorer's 35 points — intentionally
// low: a soon-closing deadline must not push an irrelevant match above
// the display threshold.
func scoreDeadlineUrgencyPractical(prog matchmodel.FundingProgram, asOf time.Time) float64 {
	days, ok := prog.DaysUntilDeadline(asOf)
	if !ok {
		return 3
	}
	switch {
	case days < 0:
		return 0
	case days <= 7:
		return 7
	case days <= 30:
		return 6
	case days <= 60:
		return 4
	default:
		return 3
	}
}

func scoreCertificationBonus(org matchmodel.Organization, prog matchmodel.FundingProgram) float64 {
	hits := 0
	for _, c := range prog.PreferredCertifications {
		for _, oc := range org.Certifications {
			if c == oc {
				hits++
				break
			}
		}
	}
	if hits > 0 {
		bonus := float64(hits) * 3
		if bonus > 5 {
			bonus = 5
		}
		return bonus
	}

	if len(prog.RequiredCertifications) > 0 && isSubset(prog.RequiredCertifications, org.Certifications) {
		return 2
	}
	return 0
}

func isSubset(required, held []string) bool {
	heldSet := make(map[string]bool, len(held))
	for _, h := range held {
		heldSet[h] = true
	}
	for _, r := range required {
		if !heldSet[r] {
			return false
		}
	}
	return true
}
