package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fedscout/fedscout/internal/domain"
	"github.com/fedscout/fedscout/internal/persistence"
)

type oppRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewOpportunityRepo creates a PostgreSQL opportunity repository.
func NewOpportunityRepo(db *sqlx.DB, timeout time.Duration) persistence.OpportunityRepo {
	return &oppRepo{db: db, timeout: timeout}
}

const oppColumns = `
	id, source_id, source_system, title, description, notice_type,
	solicitation_number, naics_code, naics_description, psc_code,
	psc_description, set_aside_type, posted_date, response_deadline,
	archive_date, contract_type, estimated_value_min, estimated_value_max,
	place_of_performance_city, place_of_performance_state,
	place_of_performance_zip, place_of_performance_country,
	contracting_office_name, point_of_contact_name,
	point_of_contact_email, point_of_contact_phone,
	security_clearance_required, status, raw_data,
	created_at, updated_at, ingested_at`

// Upsert writes one notice keyed by (source_system, source_id) in a
// single statement. With ON CONFLICT DO UPDATE a surviving row keeps
// its ctid but gets a new xmax of zero only on insert, which is how we
// tell inserts from updates without a second round trip.
func (r *oppRepo) Upsert(ctx context.Context, opp *domain.Opportunity) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if opp.SourceSystem == "" || opp.SourceID == "" {
		return false, fmt.Errorf("%w: source_system and source_id are required", persistence.ErrValidation)
	}
	if opp.Title == "" {
		return false, fmt.Errorf("%w: title is required", persistence.ErrValidation)
	}
	if opp.Status == "" {
		opp.Status = domain.StatusActive
	}
	if !domain.ValidStatus(opp.Status) {
		return false, fmt.Errorf("%w: unknown status %q", persistence.ErrValidation, opp.Status)
	}
	if opp.ID == uuid.Nil {
		opp.ID = uuid.New()
	}

	rawData, err := marshalJSONMap(opp.RawData)
	if err != nil {
		return false, fmt.Errorf("failed to encode raw_data: %w", err)
	}

	query := `
		INSERT INTO opportunities
		(id, source_id, source_system, title, description, notice_type,
		 solicitation_number, naics_code, naics_description, psc_code,
		 psc_description, set_aside_type, posted_date, response_deadline,
		 archive_date, contract_type, estimated_value_min, estimated_value_max,
		 place_of_performance_city, place_of_performance_state,
		 place_of_performance_zip, place_of_performance_country,
		 contracting_office_name, point_of_contact_name,
		 point_of_contact_email, point_of_contact_phone,
		 security_clearance_required, status, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
		        $27, $28, $29)
		ON CONFLICT (source_system, source_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			notice_type = EXCLUDED.notice_type,
			solicitation_number = EXCLUDED.solicitation_number,
			naics_code = EXCLUDED.naics_code,
			naics_description = EXCLUDED.naics_description,
			psc_code = EXCLUDED.psc_code,
			psc_description = EXCLUDED.psc_description,
			set_aside_type = EXCLUDED.set_aside_type,
			posted_date = EXCLUDED.posted_date,
			response_deadline = EXCLUDED.response_deadline,
			archive_date = EXCLUDED.archive_date,
			contract_type = EXCLUDED.contract_type,
			estimated_value_min = EXCLUDED.estimated_value_min,
			estimated_value_max = EXCLUDED.estimated_value_max,
			place_of_performance_city = EXCLUDED.place_of_performance_city,
			place_of_performance_state = EXCLUDED.place_of_performance_state,
			place_of_performance_zip = EXCLUDED.place_of_performance_zip,
			place_of_performance_country = EXCLUDED.place_of_performance_country,
			contracting_office_name = EXCLUDED.contracting_office_name,
			point_of_contact_name = EXCLUDED.point_of_contact_name,
			point_of_contact_email = EXCLUDED.point_of_contact_email,
			point_of_contact_phone = EXCLUDED.point_of_contact_phone,
			security_clearance_required = EXCLUDED.security_clearance_required,
			status = EXCLUDED.status,
			raw_data = EXCLUDED.raw_data,
			updated_at = now(),
			ingested_at = now()
		RETURNING id, created_at, updated_at, ingested_at, (xmax = 0) AS inserted`

	var inserted bool
	err = r.db.QueryRowxContext(ctx, query,
		opp.ID, opp.SourceID, opp.SourceSystem, opp.Title, opp.Description,
		opp.NoticeType, opp.SolicitationNumber, opp.NAICSCode,
		opp.NAICSDescription, opp.PSCCode, opp.PSCDescription,
		opp.SetAsideType, opp.PostedDate, opp.ResponseDeadline,
		opp.ArchiveDate, opp.ContractType, opp.EstimatedValueMin,
		opp.EstimatedValueMax, opp.PlaceOfPerformanceCity,
		opp.PlaceOfPerformanceState, opp.PlaceOfPerformanceZip,
		opp.PlaceOfPerformanceCountry, opp.ContractingOfficeName,
		opp.PointOfContactName, opp.PointOfContactEmail,
		opp.PointOfContactPhone, opp.SecurityClearanceRequired,
		opp.Status, rawData).
		Scan(&opp.ID, &opp.CreatedAt, &opp.UpdatedAt, &opp.IngestedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert opportunity: %w", err)
	}
	return inserted, nil
}

func (r *oppRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + oppColumns + ` FROM opportunities WHERE id = $1`
	opp, err := scanOpportunity(r.db.QueryRowxContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return opp, nil
}

func (r *oppRepo) GetBySource(ctx context.Context, sourceSystem, sourceID string) (*domain.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + oppColumns + ` FROM opportunities WHERE source_system = $1 AND source_id = $2`
	opp, err := scanOpportunity(r.db.QueryRowxContext(ctx, query, sourceSystem, sourceID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opportunity by source: %w", err)
	}
	return opp, nil
}

func (r *oppRepo) List(ctx context.Context, filter persistence.OpportunityFilter) ([]domain.Opportunity, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + oppColumns + ` FROM opportunities WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		query += ` AND status = ` + arg(filter.Status)
	}
	if filter.NAICSPrefix != "" {
		query += ` AND naics_code LIKE ` + arg(filter.NAICSPrefix+"%")
	}
	if filter.SetAside != "" {
		query += ` AND upper(set_aside_type) = upper(` + arg(filter.SetAside) + `)`
	}
	if filter.State != "" {
		query += ` AND upper(place_of_performance_state) = upper(` + arg(filter.State) + `)`
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` ORDER BY posted_date DESC NULLS LAST, id`
	query += ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		opps = append(opps, *opp)
	}
	return opps, rows.Err()
}

func (r *oppRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
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

func scanOpportunity(row rowScanner) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	var rawData []byte
	err := row.Scan(
		&opp.ID, &opp.SourceID, &opp.SourceSystem, &opp.Title,
		&opp.Description, &opp.NoticeType, &opp.SolicitationNumber,
		&opp.NAICSCode, &opp.NAICSDescription, &opp.PSCCode,
		&opp.PSCDescription, &opp.SetAsideType, &opp.PostedDate,
		&opp.ResponseDeadline, &opp.ArchiveDate, &opp.ContractType,
		&opp.EstimatedValueMin, &opp.EstimatedValueMax,
		&opp.PlaceOfPerformanceCity, &opp.PlaceOfPerformanceState,
		&opp.PlaceOfPerformanceZip, &opp.PlaceOfPerformanceCountry,
		&opp.ContractingOfficeName, &opp.PointOfContactName,
		&opp.PointOfContactEmail, &opp.PointOfContactPhone,
		&opp.SecurityClearanceRequired, &opp.Status, &rawData,
		&opp.CreatedAt, &opp.UpdatedAt, &opp.IngestedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawData) > 0 {
		if err := json.Unmarshal(rawData, &opp.RawData); err != nil {
			return nil, fmt.Errorf("failed to decode raw_data: %w", err)
		}
	}
	return &opp, nil
}

func marshalJSONMap(m map[string]interface{}) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
