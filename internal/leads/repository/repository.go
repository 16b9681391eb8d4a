package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline_crm_backend/internal/shared/access"
)

var (
	ErrNotFound     = errors.New("lead not found")
	ErrUnknownOwner = errors.New("owner user does not exist")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	BusinessName   string
	LegalName      *string
	Website        *string
	Email          *string
	Phone          *string
	AddressStreet  *string
	AddressNumber  *string
	AddressCity    *string
	AddressState   *string
	AddressZip     *string
	Industry       *string
	Source         *string
	Status         string
	Notes          *string
	OwnerID        uuid.UUID
	OrganizationID *uuid.UUID
	ConvertedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const leadColumns = `id, business_name, legal_name, website, email, phone,
	address_street, address_number, address_city, address_state, address_zip,
	industry, source, status, notes, owner_id, organization_id, converted_at,
	created_at, updated_at`

const getLeadQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

const getLeadForUpdateQuery = getLeadQuery + ` FOR UPDATE`

type CreateLeadParams struct {
	BusinessName  string
	LegalName     *string
	Website       *string
	Email         *string
	Phone         *string
	AddressStreet *string
	AddressNumber *string
	AddressCity   *string
	AddressState  *string
	AddressZip    *string
	Industry      *string
	Source        *string
	Notes         *string
	OwnerID       uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			business_name, legal_name, website, email, phone,
			address_street, address_number, address_city, address_state, address_zip,
			industry, source, notes, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+leadColumns,
		params.BusinessName, params.LegalName, params.Website, params.Email, params.Phone,
		params.AddressStreet, params.AddressNumber, params.AddressCity, params.AddressState, params.AddressZip,
		params.Industry, params.Source, params.Notes, params.OwnerID,
	)
	return scanLead(row)
}

// GetForActor loads a lead the actor is allowed to see. Non-admin actors only
// see leads they own.
func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (Lead, error) {
	query := getLeadQuery
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

type ListParams struct {
	Status   *string
	Search   *string
	Page     int
	PageSize int
}

// List returns unconverted leads visible to the actor, newest first.
func (r *Repository) List(ctx context.Context, actor access.Actor, params ListParams) ([]Lead, int, error) {
	where := []string{"converted_at IS NULL"}
	args := []any{}

	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	if clause != "" {
		where = append(where, strings.TrimPrefix(clause, " AND "))
		args = append(args, ownerArgs...)
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Search != nil && *params.Search != "" {
		args = append(args, "%"+*params.Search+"%")
		where = append(where, fmt.Sprintf("(business_name ILIKE $%d OR legal_name ILIKE $%d)", len(args), len(args)))
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads "+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.PageSize
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := 0
	if params.Page > 1 {
		offset = (params.Page - 1) * limit
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf("SELECT %s FROM leads %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		leadColumns, whereSQL, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLeadRow(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return leads, total, nil
}

type UpdateLeadParams struct {
	BusinessName  string
	LegalName     *string
	Website       *string
	Email         *string
	Phone         *string
	AddressStreet *string
	AddressNumber *string
	AddressCity   *string
	AddressState  *string
	AddressZip    *string
	Industry      *string
	Source        *string
	Notes         *string
}

func (r *Repository) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params UpdateLeadParams) (Lead, error) {
	query := `
		UPDATE leads SET
			business_name = $2, legal_name = $3, website = $4, email = $5, phone = $6,
			address_street = $7, address_number = $8, address_city = $9,
			address_state = $10, address_zip = $11,
			industry = $12, source = $13, notes = $14, updated_at = now()
		WHERE id = $1 AND converted_at IS NULL`
	args := []any{
		id, params.BusinessName, params.LegalName, params.Website, params.Email, params.Phone,
		params.AddressStreet, params.AddressNumber, params.AddressCity,
		params.AddressState, params.AddressZip,
		params.Industry, params.Source, params.Notes,
	}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + leadColumns
	args = append(args, ownerArgs...)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, status string) (Lead, error) {
	query := `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1 AND converted_at IS NULL`
	args := []any{id, status}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + leadColumns
	args = append(args, ownerArgs...)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

// UpdateOwner reassigns the lead. Ownership scoping is intentionally absent;
// the service restricts this operation to admins.
func (r *Repository) UpdateOwner(ctx context.Context, id, ownerID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET owner_id = $2, updated_at = now()
		WHERE id = $1 AND converted_at IS NULL
		RETURNING `+leadColumns,
		id, ownerID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Lead{}, ErrUnknownOwner
		}
		return Lead{}, err
	}
	return lead, nil
}

func (r *Repository) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	query := `DELETE FROM leads WHERE id = $1 AND converted_at IS NULL`
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type row interface {
	Scan(dest ...any) error
}

func scanLead(r row) (Lead, error) {
	var l Lead
	err := r.Scan(
		&l.ID, &l.BusinessName, &l.LegalName, &l.Website, &l.Email, &l.Phone,
		&l.AddressStreet, &l.AddressNumber, &l.AddressCity, &l.AddressState, &l.AddressZip,
		&l.Industry, &l.Source, &l.Status, &l.Notes, &l.OwnerID, &l.OrganizationID, &l.ConvertedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func scanLeadRow(rows pgx.Rows) (Lead, error) {
	return scanLead(rows)
}
