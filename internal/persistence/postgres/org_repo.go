// Package postgres implements the persistence contracts on PostgreSQL
// via sqlx, with single-statement upserts keyed by unique constraints.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

type orgRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOrganizationRepo creates a PostgreSQL organization repository.
func NewOrganizationRepo(db *sqlx.DB, timeout time.Duration) persistence.OrganizationRepo {
	return &orgRepo{db: db, timeout: timeout}
}

func (r *orgRepo) Create(ctx context.Context, org *domain.Organization) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if org.Name == "" {
		return fmt.Errorf("%w: organization name is required", persistence.ErrValidation)
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}

	query := `
		INSERT INTO organizations
		(id, name, legal_name, uei, duns, cage_code,
		 naics_codes, psc_codes, set_aside_types,
		 address_line1, city, state, zip_code, country,
		 employee_count, annual_revenue,
		 capabilities_narrative, past_performance_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		org.ID, org.Name, org.LegalName, org.UEI, org.DUNS, org.CageCode,
		pq.Array(org.NAICSCodes), pq.Array(org.PSCCodes), pq.Array(org.SetAsideTypes),
		org.AddressLine1, org.City, org.State, org.ZipCode, org.Country,
		org.EmployeeCount, org.AnnualRevenue,
		org.CapabilitiesNarrative, org.PastPerformanceSummary).
		Scan(&org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *orgRepo) Update(ctx context.Context, org *domain.Organization) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if org.Name == "" {
		return fmt.Errorf("%w: organization name is required", persistence.ErrValidation)
	}

	query := `
		UPDATE organizations SET
			name = $2, legal_name = $3, uei = $4, duns = $5, cage_code = $6,
			naics_codes = $7, psc_codes = $8, set_aside_types = $9,
			address_line1 = $10, city = $11, state = $12, zip_code = $13, country = $14,
			employee_count = $15, annual_revenue = $16,
			capabilities_narrative = $17, past_performance_summary = $18,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		org.ID, org.Name, org.LegalName, org.UEI, org.DUNS, org.CageCode,
		pq.Array(org.NAICSCodes), pq.Array(org.PSCCodes), pq.Array(org.SetAsideTypes),
		org.AddressLine1, org.City, org.State, org.ZipCode, org.Country,
		org.EmployeeCount, org.AnnualRevenue,
		org.CapabilitiesNarrative, org.PastPerformanceSummary).
		Scan(&org.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	return nil
}

func (r *orgRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, name, legal_name, uei, duns, cage_code,
		       naics_codes, psc_codes, set_aside_types,
		       address_line1, city, state, zip_code, country,
		       employee_count, annual_revenue,
		       capabilities_narrative, past_performance_summary,
		       created_at, updated_at
		FROM organizations
		WHERE id = $1`

	row := r.db.QueryRowxContext(ctx, query, id)
	org, err := scanOrganization(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (r *orgRepo) List(ctx context.Context, limit, offset int) ([]domain.Organization, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, name, legal_name, uei, duns, cage_code,
		       naics_codes, psc_codes, set_aside_types,
		       address_line1, city, state, zip_code, country,
		       employee_count, annual_revenue,
		       capabilities_narrative, past_performance_summary,
		       created_at, updated_at
		FROM organizations
		ORDER BY name
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryxContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, *org)
	}
	return orgs, rows.Err()
}

func (r *orgRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	err := row.Scan(
		&org.ID, &org.Name, &org.LegalName, &org.UEI, &org.DUNS, &org.CageCode,
		pq.Array(&org.NAICSCodes), pq.Array(&org.PSCCodes), pq.Array(&org.SetAsideTypes),
		&org.AddressLine1, &org.City, &org.State, &org.ZipCode, &org.Country,
		&org.EmployeeCount, &org.AnnualRevenue,
		&org.CapabilitiesNarrative, &org.PastPerformanceSummary,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
