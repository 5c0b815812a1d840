package store

import (
	"context"
	"testing"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleOrganization() matchmodel.Organization {
	trl := 4
	established := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	return matchmodel.Organization{
		ID:                  "org-1",
		Name:                "샘플기업",
		Type:                matchmodel.OrgTypeCompany,
		Scale:               matchmodel.ScaleSmall,
		Sector:              "ICT",
		KeyTechnologies:     []string{"인공지능", "빅데이터"},
		CurrentTRL:          &trl,
		Certifications:      []string{"ISO9001"},
		Locations:           []string{"SEOUL"},
		BusinessEstablishedDate: &established,
	}
}

func sampleProgram() matchmodel.FundingProgram {
	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	budget := int64(500_000_000)
	min, max := 3, 6
	return matchmodel.FundingProgram{
		ID:           "prog-1",
		AgencyID:     "ag-1",
		Title:        "인공지능 기술개발 지원사업",
		Status:       matchmodel.StatusActive,
		Deadline:     &deadline,
		BudgetAmount: &budget,
		Ministry:     "과학기술정보통신부",
		Keywords:     []string{"인공지능"},
		TRL:          matchmodel.TRLRange{Min: &min, Max: &max},
	}
}

func TestSaveAndGetOrganizationRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := sampleOrganization()

	if err := s.SaveOrganization(ctx, want); err != nil {
		t.Fatalf("SaveOrganization: %v", err)
	}

	got, err := s.GetOrganization(ctx, "org-1")
	if err != nil {
		t.Fatalf("GetOrganization: %v", err)
	}
	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if len(got.KeyTechnologies) != 2 || got.KeyTechnologies[0] != "인공지능" {
		t.Errorf("KeyTechnologies = %v, want %v", got.KeyTechnologies, want.KeyTechnologies)
	}
	if got.CurrentTRL == nil || *got.CurrentTRL != 4 {
		t.Errorf("CurrentTRL = %v, want 4", got.CurrentTRL)
	}
	if got.BusinessEstablishedDate == nil || !got.BusinessEstablishedDate.Equal(*want.BusinessEstablishedDate) {
		t.Errorf("BusinessEstablishedDate = %v, want %v", got.BusinessEstablishedDate, want.BusinessEstablishedDate)
	}
}

func TestGetOrganizationNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetOrganization(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for a missing organization")
	}
}

func TestSaveAndGetProgramRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	want := sampleProgram()

	if err := s.SaveProgram(ctx, want); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}

	got, err := s.GetProgram(ctx, "prog-1")
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.Deadline == nil || !got.Deadline.Equal(*want.Deadline) {
		t.Errorf("Deadline = %v, want %v", got.Deadline, want.Deadline)
	}
	if got.TRL.Min == nil || *got.TRL.Min != 3 {
		t.Errorf("TRL.Min = %v, want 3", got.TRL.Min)
	}
	if got.BudgetAmount == nil || *got.BudgetAmount != 500_000_000 {
		t.Errorf("BudgetAmount = %v, want 500000000", got.BudgetAmount)
	}
}

func TestListProgramsFiltersByType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rd := sampleProgram()
	rd.ID, rd.IsSME = "rd-1", false
	sme := sampleProgram()
	sme.ID, sme.IsSME = "sme-1", true

	if err := s.SaveProgram(ctx, rd); err != nil {
		t.Fatalf("SaveProgram(rd): %v", err)
	}
	if err := s.SaveProgram(ctx, sme); err != nil {
		t.Fatalf("SaveProgram(sme): %v", err)
	}

	rdOnly, err := s.ListPrograms(ctx, ProgramTypeRD)
	if err != nil {
		t.Fatalf("ListPrograms(rd): %v", err)
	}
	if len(rdOnly) != 1 || rdOnly[0].ID != "rd-1" {
		t.Errorf("ListPrograms(rd) = %v, want just rd-1", rdOnly)
	}

	all, err := s.ListPrograms(ctx, ProgramTypeAll)
	if err != nil {
		t.Fatalf("ListPrograms(all): %v", err)
	}
	if len(all) != 2 {
		t.Errorf("len(ListPrograms(all)) = %d, want 2", len(all))
	}
}

func TestSaveIdealApplicantProfilePatchesThreeColumnsOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prog := sampleProgram()
	if err := s.SaveProgram(ctx, prog); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}

	profile := matchmodel.NewIdealApplicantProfile()
	profile.PrimaryDomain = "ICT"
	generatedAt := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)

	if err := s.SaveIdealApplicantProfile(ctx, "prog-1", profile, generatedAt); err != nil {
		t.Fatalf("SaveIdealApplicantProfile: %v", err)
	}

	got, err := s.GetProgram(ctx, "prog-1")
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if got.Title != prog.Title {
		t.Errorf("Title = %q, want preserved %q", got.Title, prog.Title)
	}
	if got.IdealApplicantProfile == nil || got.IdealApplicantProfile.PrimaryDomain != "ICT" {
		t.Fatalf("IdealApplicantProfile = %v, want PrimaryDomain ICT", got.IdealApplicantProfile)
	}
	if got.IdealProfileGeneratedAt == nil || !got.IdealProfileGeneratedAt.Equal(generatedAt) {
		t.Errorf("IdealProfileGeneratedAt = %v, want %v", got.IdealProfileGeneratedAt, generatedAt)
	}
}

func TestGetProgramSkipsDecodingStaleSchemaIAP(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prog := sampleProgram()
	if err := s.SaveProgram(ctx, prog); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}

	profile := matchmodel.NewIdealApplicantProfile()
	profile.PrimaryDomain = "ICT"
	profile.Version = "0.9"
	generatedAt := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	if err := s.SaveIdealApplicantProfile(ctx, "prog-1", profile, generatedAt); err != nil {
		t.Fatalf("SaveIdealApplicantProfile: %v", err)
	}

	got, err := s.GetProgram(ctx, "prog-1")
	if err != nil {
		t.Fatalf("GetProgram: %v", err)
	}
	if got.IdealApplicantProfile != nil {
		t.Errorf("IdealApplicantProfile = %v, want nil for a stale schema version", got.IdealApplicantProfile)
	}
	if got.IdealProfileVersion != "0.9" {
		t.Errorf("IdealProfileVersion = %q, want the stale version to still surface for NeedsIAPRegeneration", got.IdealProfileVersion)
	}
	if !got.NeedsIAPRegeneration(matchmodel.IAPSchemaVersion) {
		t.Error("expected a stale-schema profile to be flagged for regeneration")
	}
}

func TestSaveProgramReplacesOnConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	prog := sampleProgram()
	if err := s.SaveProgram(ctx, prog); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}

	prog.Title = "개정된 지원사업 공고"
	if err := s.SaveProgram(ctx, prog); err != nil {
		t.Fatalf("SaveProgram (replace): %v", err)
	}

	all, err := s.ListPrograms(ctx, ProgramTypeAll)
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len(all) = %d, want 1 (replace, not insert)", len(all))
	}
	if all[0].Title != "개정된 지원사업 공고" {
		t.Errorf("Title = %q, want the replaced title", all[0].Title)
	}
}
