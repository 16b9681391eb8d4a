package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline_crm_backend/internal/shared/access"
)

var ErrNotFound = errors.New("organization not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Organization struct {
	ID            uuid.UUID
	Name          string
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
	Notes         *string
	OwnerID       uuid.UUID
	SourceLeadID  *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

const organizationColumns = `id, name, legal_name, website, email, phone,
	address_street, address_number, address_city, address_state, address_zip,
	industry, notes, owner_id, source_lead_id, created_at, updated_at`

const getOrganizationQuery = `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

type CreateParams struct {
	Name          string
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
	Notes         *string
	OwnerID       uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (
			name, legal_name, website, email, phone,
			address_street, address_number, address_city, address_state, address_zip,
			industry, notes, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+organizationColumns,
		params.Name, params.LegalName, params.Website, params.Email, params.Phone,
		params.AddressStreet, params.AddressNumber, params.AddressCity, params.AddressState, params.AddressZip,
		params.Industry, params.Notes, params.OwnerID,
	)
	return scanOrganization(row)
}

func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (Organization, error) {
	query := getOrganizationQuery
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

type ListParams struct {
	Search   *string
	Industry *string
	Page     int
	PageSize int
}

func (r *Repository) List(ctx context.Context, actor access.Actor, params ListParams) ([]Organization, int, error) {
	where := []string{"1=1"}
	args := []any{}

	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	if clause != "" {
		where = append(where, strings.TrimPrefix(clause, " AND "))
		args = append(args, ownerArgs...)
	}
	if params.Industry != nil {
		args = append(args, *params.Industry)
		where = append(where, fmt.Sprintf("industry = $%d", len(args)))
	}
	if params.Search != nil && *params.Search != "" {
		args = append(args, "%"+*params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR legal_name ILIKE $%d)", len(args), len(args)))
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM organizations "+whereSQL, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM organizations %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		organizationColumns, whereSQL, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orgs := make([]Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, org)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return orgs, total, nil
}

type UpdateParams struct {
	Name          string
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
	Notes         *string
}

func (r *Repository) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params UpdateParams) (Organization, error) {
	query := `
		UPDATE organizations SET
			name = $2, legal_name = $3, website = $4, email = $5, phone = $6,
			address_street = $7, address_number = $8, address_city = $9,
			address_state = $10, address_zip = $11,
			industry = $12, notes = $13, updated_at = now()
		WHERE id = $1`
	args := []any{
		id, params.Name, params.LegalName, params.Website, params.Email, params.Phone,
		params.AddressStreet, params.AddressNumber, params.AddressCity,
		params.AddressState, params.AddressZip,
		params.Industry, params.Notes,
	}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + organizationColumns
	args = append(args, ownerArgs...)

	org, err := scanOrganization(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}

func (r *Repository) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	query := `DELETE FROM organizations WHERE id = $1`
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

func scanOrganization(r row) (Organization, error) {
	var o Organization
	err := r.Scan(
		&o.ID, &o.Name, &o.LegalName, &o.Website, &o.Email, &o.Phone,
		&o.AddressStreet, &o.AddressNumber, &o.AddressCity, &o.AddressState, &o.AddressZip,
		&o.Industry, &o.Notes, &o.OwnerID, &o.SourceLeadID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
