// Package store implements read-only access to organizations and funding
// programs plus write access to persisted idealApplicantProfile documents
// (spec.md §6.1, §6.4), grounded on internal/bus's SQLite-backed store.
package store

import (
	"context"
	"time"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

// ProgramType selects which program table(s) a listing covers (spec.md
// §6.3's --type flag).
type ProgramType string

const (
	ProgramTypeRD  ProgramType = "rd"
	ProgramTypeSME ProgramType = "sme"
	ProgramTypeAll ProgramType = "all"
)

// OrganizationRepository is read-only access to organizations (spec.md §6.1).
type OrganizationRepository interface {
	GetOrganization(ctx context.Context, id string) (*matchmodel.Organization, error)
	ListOrganizations(ctx context.Context) ([]matchmodel.Organization, error)
}

// ProgramRepository is read access to funding_programs (R&D and SME rows,
// told apart by is_sme) plus
// the single write path the IAP batch generator needs (spec.md §6.1,
// §6.4): persisting a generated profile back onto its program row.
type ProgramRepository interface {
	GetProgram(ctx context.Context, id string) (*matchmodel.FundingProgram, error)
	ListPrograms(ctx context.Context, t ProgramType) ([]matchmodel.FundingProgram, error)
	SaveIdealApplicantProfile(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, generatedAt time.Time) error
}

// Repository bundles both. Every consumer in this module depends on this
// interface, not on *SQLiteStore, so a fake can stand in for tests.
type Repository interface {
	OrganizationRepository
	ProgramRepository
}
