package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/joelkehle/kmatch/internal/matchmodel"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS organizations (
	id                       TEXT PRIMARY KEY,
	name                     TEXT NOT NULL DEFAULT '',
	type                     TEXT NOT NULL DEFAULT '',
	scale                    TEXT NOT NULL DEFAULT '',
	employee_range           TEXT NOT NULL DEFAULT '',
	revenue_range            TEXT NOT NULL DEFAULT '',
	business_structure       TEXT NOT NULL DEFAULT '',
	sector                   TEXT NOT NULL DEFAULT '',
	primary_business_domain  TEXT NOT NULL DEFAULT '',
	key_technologies         TEXT NOT NULL DEFAULT '[]',
	technology_sub_domains   TEXT NOT NULL DEFAULT '[]',
	research_focus_areas     TEXT NOT NULL DEFAULT '[]',
	current_trl              INTEGER,
	target_research_trl      INTEGER,
	rd_experience            INTEGER NOT NULL DEFAULT 0,
	collaboration_count      INTEGER NOT NULL DEFAULT 0,
	has_research_institute   INTEGER NOT NULL DEFAULT 0,
	certifications           TEXT NOT NULL DEFAULT '[]',
	government_certifications TEXT NOT NULL DEFAULT '[]',
	industry_awards          TEXT NOT NULL DEFAULT '[]',
	prior_grant_wins         INTEGER NOT NULL DEFAULT 0,
	investment_history       TEXT NOT NULL DEFAULT '[]',
	commercialization_capabilities TEXT NOT NULL DEFAULT '[]',
	description              TEXT NOT NULL DEFAULT '',
	locations                TEXT NOT NULL DEFAULT '[]',
	excluded_domains         TEXT NOT NULL DEFAULT '[]',
	business_established_date TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS funding_programs (
	id                          TEXT PRIMARY KEY,
	agency_id                   TEXT NOT NULL DEFAULT '',
	title                       TEXT NOT NULL DEFAULT '',
	announcement_url            TEXT NOT NULL DEFAULT '',
	content_hash                TEXT NOT NULL DEFAULT '',
	scraped_at                  TEXT NOT NULL DEFAULT '',
	industry_category           TEXT NOT NULL DEFAULT '',
	keywords                    TEXT NOT NULL DEFAULT '[]',
	ministry                    TEXT NOT NULL DEFAULT '',
	agency                      TEXT NOT NULL DEFAULT '',
	program_intent              TEXT NOT NULL DEFAULT '',
	description                 TEXT NOT NULL DEFAULT '',
	eligibility_criteria        TEXT NOT NULL DEFAULT '',
	allowed_org_types           TEXT NOT NULL DEFAULT '[]',
	allowed_business_structures TEXT NOT NULL DEFAULT '[]',
	trl_min                     INTEGER,
	trl_max                     INTEGER,
	required_certifications     TEXT NOT NULL DEFAULT '[]',
	preferred_certifications    TEXT NOT NULL DEFAULT '[]',
	required_operating_years    INTEGER,
	max_operating_years         INTEGER,
	required_min_employees      INTEGER,
	required_max_employees      INTEGER,
	required_min_revenue_eok    INTEGER,
	required_max_revenue_eok    INTEGER,
	required_investment_amount  INTEGER,
	requires_research_institute INTEGER NOT NULL DEFAULT 0,
	status                      TEXT NOT NULL DEFAULT '',
	application_start           TEXT NOT NULL DEFAULT '',
	deadline                    TEXT NOT NULL DEFAULT '',
	published_at                TEXT NOT NULL DEFAULT '',
	budget_amount                INTEGER,
	ideal_applicant_profile      TEXT NOT NULL DEFAULT '',
	ideal_profile_generated_at   TEXT NOT NULL DEFAULT '',
	ideal_profile_version        TEXT NOT NULL DEFAULT '',
	semantic_sub_domain          TEXT NOT NULL DEFAULT '{}',
	is_sme                       INTEGER NOT NULL DEFAULT 0,
	sme_scale_code               TEXT NOT NULL DEFAULT '',
	sme_stage_code               TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore implements Repository against a SQLite-backed catalog,
// grounded on internal/bus's SQLiteStore: open, create schema, scan rows
// into the domain types by hand, persist with INSERT OR REPLACE.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func marshalJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalJSON(s string, out any) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), out)
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetOrganization implements OrganizationRepository.
func (s *SQLiteStore) GetOrganization(ctx context.Context, id string) (*matchmodel.Organization, error) {
	row := s.db.QueryRowxContext(ctx, `SELECT * FROM organizations WHERE id = ?`, id)
	org, err := scanOrganization(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: organization %q not found", id)
		}
		return nil, err
	}
	return org, nil
}

// ListOrganizations implements OrganizationRepository.
func (s *SQLiteStore) ListOrganizations(ctx context.Context) ([]matchmodel.Organization, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT * FROM organizations`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var out []matchmodel.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *org)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*matchmodel.Organization, error) {
	var o matchmodel.Organization
	var keyTech, techSub, researchFocus, certs, govCerts, awards, investments, commCaps, locations, excluded string
	var currentTRL, targetTRL sql.NullInt64
	var rdExp, hasResearchInst int
	var establishedDate string

	err := row.Scan(
		&o.ID, &o.Name, &o.Type, &o.Scale, &o.EmployeeRange, &o.RevenueRange, &o.BusinessStructure,
		&o.Sector, &o.PrimaryBusinessDomain, &keyTech, &techSub, &researchFocus,
		&currentTRL, &targetTRL, &rdExp, &o.CollaborationCount, &hasResearchInst,
		&certs, &govCerts, &awards, &o.PriorGrantWins, &investments, &commCaps,
		&o.Description, &locations, &excluded, &establishedDate,
	)
	if err != nil {
		return nil, err
	}

	unmarshalJSON(keyTech, &o.KeyTechnologies)
	unmarshalJSON(techSub, &o.TechnologySubDomains)
	unmarshalJSON(researchFocus, &o.ResearchFocusAreas)
	unmarshalJSON(certs, &o.Certifications)
	unmarshalJSON(govCerts, &o.GovernmentCertifications)
	unmarshalJSON(awards, &o.IndustryAwards)
	unmarshalJSON(investments, &o.InvestmentHistory)
	unmarshalJSON(commCaps, &o.CommercializationCapabilities)
	unmarshalJSON(locations, &o.Locations)
	unmarshalJSON(excluded, &o.ExcludedDomains)

	if currentTRL.Valid {
		v := int(currentTRL.Int64)
		o.CurrentTRL = &v
	}
	if targetTRL.Valid {
		v := int(targetTRL.Int64)
		o.TargetResearchTRL = &v
	}
	o.RDExperience = rdExp != 0
	o.HasResearchInstitute = hasResearchInst != 0
	if t, ok := parseTime(establishedDate); ok {
		o.BusinessEstablishedDate = &t
	}

	return &o, nil
}

func (s *SQLiteStore) SaveOrganization(ctx context.Context, o matchmodel.Organization) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO organizations (
		id, name, type, scale, employee_range, revenue_range, business_structure,
		sector, primary_business_domain, key_technologies, technology_sub_domains, research_focus_areas,
		current_trl, target_research_trl, rd_experience, collaboration_count, has_research_institute,
		certifications, government_certifications, industry_awards, prior_grant_wins, investment_history,
		commercialization_capabilities, description, locations, excluded_domains, business_established_date
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, o.Name, string(o.Type), string(o.Scale), string(o.EmployeeRange), string(o.RevenueRange), o.BusinessStructure,
		o.Sector, o.PrimaryBusinessDomain, marshalJSON(o.KeyTechnologies), marshalJSON(o.TechnologySubDomains), marshalJSON(o.ResearchFocusAreas),
		nullableIntPtr(o.CurrentTRL), nullableIntPtr(o.TargetResearchTRL), boolToInt(o.RDExperience), o.CollaborationCount, boolToInt(o.HasResearchInstitute),
		marshalJSON(o.Certifications), marshalJSON(o.GovernmentCertifications), marshalJSON(o.IndustryAwards), o.PriorGrantWins, marshalJSON(o.InvestmentHistory),
		marshalJSON(o.CommercializationCapabilities), o.Description, marshalJSON(o.Locations), marshalJSON(o.ExcludedDomains), optionalTimeString(o.BusinessEstablishedDate),
	)
	return err
}

func nullableIntPtr(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt64Ptr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func optionalTimeString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return timeToString(*t)
}

// GetProgram implements ProgramRepository.
func (s *SQLiteStore) GetProgram(ctx context.Context, id string) (*matchmodel.FundingProgram, error) {
	row := s.db.QueryRowxContext(ctx, `SELECT * FROM funding_programs WHERE id = ?`, id)
	p, err := scanProgram(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("store: program %q not found", id)
		}
		return nil, err
	}
	return p, nil
}

// ListPrograms implements ProgramRepository, filtering by rd/sme/all
// (spec.md §6.3's --type flag).
func (s *SQLiteStore) ListPrograms(ctx context.Context, t ProgramType) ([]matchmodel.FundingProgram, error) {
	query := `SELECT * FROM funding_programs`
	switch t {
	case ProgramTypeRD:
		query += ` WHERE is_sme = 0`
	case ProgramTypeSME:
		query += ` WHERE is_sme = 1`
	}

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var out []matchmodel.FundingProgram
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProgram(row rowScanner) (*matchmodel.FundingProgram, error) {
	var p matchmodel.FundingProgram
	var keywords, allowedOrgTypes, allowedStructures, requiredCerts, preferredCerts, semanticSubDomain string
	var scrapedAt, applicationStart, deadline, publishedAt, iapGeneratedAt string
	var iapJSON string
	var trlMin, trlMax, requiredOpYears, maxOpYears, minEmp, maxEmp, minRev, maxRev sql.NullInt64
	var requiredInvestment, budgetAmount sql.NullInt64
	var requiresResearchInst, isSME int

	err := row.Scan(
		&p.ID, &p.AgencyID, &p.Title, &p.AnnouncementURL, &p.ContentHash, &scrapedAt,
		&p.IndustryCategory, &keywords, &p.Ministry, &p.Agency, &p.ProgramIntent, &p.Description, &p.EligibilityCriteria,
		&allowedOrgTypes, &allowedStructures, &trlMin, &trlMax, &requiredCerts, &preferredCerts,
		&requiredOpYears, &maxOpYears, &minEmp, &maxEmp, &minRev, &maxRev, &requiredInvestment, &requiresResearchInst,
		&p.Status, &applicationStart, &deadline, &publishedAt, &budgetAmount,
		&iapJSON, &iapGeneratedAt, &p.IdealProfileVersion, &semanticSubDomain,
		&isSME, &p.SMEScaleCode, &p.SMEStageCode,
	)
	if err != nil {
		return nil, err
	}

	unmarshalJSON(keywords, &p.Keywords)
	unmarshalJSON(allowedOrgTypes, &p.AllowedOrgTypes)
	unmarshalJSON(allowedStructures, &p.AllowedBusinessStructures)
	unmarshalJSON(requiredCerts, &p.RequiredCertifications)
	unmarshalJSON(preferredCerts, &p.PreferredCertifications)
	unmarshalJSON(semanticSubDomain, &p.SemanticSubDomain)

	if t, ok := parseTime(scrapedAt); ok {
		p.ScrapedAt = t
	}
	if t, ok := parseTime(applicationStart); ok {
		p.ApplicationStart = &t
	}
	if t, ok := parseTime(deadline); ok {
		p.Deadline = &t
	}
	if t, ok := parseTime(publishedAt); ok {
		p.PublishedAt = &t
	}
	if t, ok := parseTime(iapGeneratedAt); ok {
		p.IdealProfileGeneratedAt = &t
	}

	if trlMin.Valid {
		v := int(trlMin.Int64)
		p.TRL.Min = &v
	}
	if trlMax.Valid {
		v := int(trlMax.Int64)
		p.TRL.Max = &v
	}
	if requiredOpYears.Valid {
		v := int(requiredOpYears.Int64)
		p.RequiredOperatingYears = &v
	}
	if maxOpYears.Valid {
		v := int(maxOpYears.Int64)
		p.MaxOperatingYears = &v
	}
	if minEmp.Valid {
		v := int(minEmp.Int64)
		p.RequiredMinEmployees = &v
	}
	if maxEmp.Valid {
		v := int(maxEmp.Int64)
		p.RequiredMaxEmployees = &v
	}
	if minRev.Valid {
		v := int(minRev.Int64)
		p.RequiredMinRevenueEok = &v
	}
	if maxRev.Valid {
		v := int(maxRev.Int64)
		p.RequiredMaxRevenueEok = &v
	}
	if requiredInvestment.Valid {
		v := requiredInvestment.Int64
		p.RequiredInvestmentAmount = &v
	}
	if budgetAmount.Valid {
		v := budgetAmount.Int64
		p.BudgetAmount = &v
	}
	p.RequiresResearchInstitute = requiresResearchInst != 0
	p.IsSME = isSME != 0

	if iapJSON != "" && matchmodel.IAPSchemaVersionOf([]byte(iapJSON)) == matchmodel.IAPSchemaVersion {
		profile, err := matchmodel.UnmarshalIAP([]byte(iapJSON))
		if err == nil {
			p.IdealApplicantProfile = profile
		}
	}

	return &p, nil
}

func (s *SQLiteStore) SaveProgram(ctx context.Context, p matchmodel.FundingProgram) error {
	var iapJSON string
	if p.IdealApplicantProfile != nil {
		b, err := matchmodel.MarshalIAP(p.IdealApplicantProfile)
		if err != nil {
			return fmt.Errorf("marshal IAP for program %s: %w", p.ID, err)
		}
		iapJSON = string(b)
	}

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO funding_programs (
		id, agency_id, title, announcement_url, content_hash, scraped_at,
		industry_category, keywords, ministry, agency, program_intent, description, eligibility_criteria,
		allowed_org_types, allowed_business_structures, trl_min, trl_max, required_certifications, preferred_certifications,
		required_operating_years, max_operating_years, required_min_employees, required_max_employees,
		required_min_revenue_eok, required_max_revenue_eok, required_investment_amount, requires_research_institute,
		status, application_start, deadline, published_at, budget_amount,
		ideal_applicant_profile, ideal_profile_generated_at, ideal_profile_version, semantic_sub_domain,
		is_sme, sme_scale_code, sme_stage_code
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.AgencyID, p.Title, p.AnnouncementURL, p.ContentHash, timeToString(p.ScrapedAt),
		p.IndustryCategory, marshalJSON(p.Keywords), p.Ministry, p.Agency, string(p.ProgramIntent), p.Description, p.EligibilityCriteria,
		marshalJSON(p.AllowedOrgTypes), marshalJSON(p.AllowedBusinessStructures), nullableIntPtr(p.TRL.Min), nullableIntPtr(p.TRL.Max),
		marshalJSON(p.RequiredCertifications), marshalJSON(p.PreferredCertifications),
		nullableIntPtr(p.RequiredOperatingYears), nullableIntPtr(p.MaxOperatingYears), nullableIntPtr(p.RequiredMinEmployees), nullableIntPtr(p.RequiredMaxEmployees),
		nullableIntPtr(p.RequiredMinRevenueEok), nullableIntPtr(p.RequiredMaxRevenueEok), nullableInt64Ptr(p.RequiredInvestmentAmount), boolToInt(p.RequiresResearchInstitute),
		string(p.Status), optionalTimeString(p.ApplicationStart), optionalTimeString(p.Deadline), optionalTimeString(p.PublishedAt), nullableInt64Ptr(p.BudgetAmount),
		iapJSON, optionalTimeString(p.IdealProfileGeneratedAt), p.IdealProfileVersion, marshalJSON(p.SemanticSubDomain),
		boolToInt(p.IsSME), p.SMEScaleCode, p.SMEStageCode,
	)
	return err
}

// SaveIdealApplicantProfile implements ProgramRepository's single write
// path: patch just the three IAP-related columns of an existing program
// row (spec.md §6.2's generateIdealProfile output contract).
func (s *SQLiteStore) SaveIdealApplicantProfile(ctx context.Context, programID string, profile *matchmodel.IdealApplicantProfile, generatedAt time.Time) error {
	b, err := matchmodel.MarshalIAP(profile)
	if err != nil {
		return fmt.Errorf("marshal IAP for program %s: %w", programID, err)
	}
	_, err = s.db.ExecContext(ctx, `UPDATE funding_programs
		SET ideal_applicant_profile = ?, ideal_profile_generated_at = ?, ideal_profile_version = ?
		WHERE id = ?`,
		string(b), timeToString(generatedAt), profile.Version, programID,
	)
	return err
}

var _ Repository = (*SQLiteStore)(nil)
