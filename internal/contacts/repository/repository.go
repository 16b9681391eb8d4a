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
	ErrNotFound       = errors.New("contact not found")
	ErrUnknownOrg     = errors.New("organization does not exist")
	ErrDuplicateEmail = errors.New("contact email already exists in organization")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Contact struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	FirstName           string
	LastName            *string
	JobTitle            *string
	Department          *string
	Email               *string
	Phone               *string
	IsPrimary           bool
	OwnerID             uuid.UUID
	SourceLeadContactID *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const contactColumns = `id, organization_id, first_name, last_name, job_title, department,
	email, phone, is_primary, owner_id, source_lead_contact_id, created_at, updated_at`

const getContactQuery = `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1`

type CreateParams struct {
	OrganizationID uuid.UUID
	FirstName      string
	LastName       *string
	JobTitle       *string
	Department     *string
	Email          *string
	Phone          *string
	IsPrimary      bool
	OwnerID        uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Contact, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (
			organization_id, first_name, last_name, job_title, department,
			email, phone, is_primary, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+contactColumns,
		params.OrganizationID, params.FirstName, params.LastName, params.JobTitle, params.Department,
		params.Email, params.Phone, params.IsPrimary, params.OwnerID,
	)
	contact, err := scanContact(row)
	if err != nil {
		return Contact{}, constraintErr(err)
	}
	return contact, nil
}

func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (Contact, error) {
	query := getContactQuery
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	contact, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return contact, err
}

type ListParams struct {
	OrganizationID *uuid.UUID
	Search         *string
	Page           int
	PageSize       int
}

func (r *Repository) List(ctx context.Context, actor access.Actor, params ListParams) ([]Contact, int, error) {
	where := []string{"1=1"}
	args := []any{}

	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	if clause != "" {
		where = append(where, strings.TrimPrefix(clause, " AND "))
		args = append(args, ownerArgs...)
	}
	if params.OrganizationID != nil {
		args = append(args, *params.OrganizationID)
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if params.Search != nil && *params.Search != "" {
		args = append(args, "%"+*params.Search+"%")
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)",
			len(args), len(args), len(args)))
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contacts "+whereSQL, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM contacts %s ORDER BY first_name ASC, last_name ASC LIMIT $%d OFFSET $%d",
		contactColumns, whereSQL, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, contact)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return contacts, total, nil
}

type UpdateParams struct {
	FirstName  string
	LastName   *string
	JobTitle   *string
	Department *string
	Email      *string
	Phone      *string
	IsPrimary  bool
}

func (r *Repository) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params UpdateParams) (Contact, error) {
	query := `
		UPDATE contacts SET
			first_name = $2, last_name = $3, job_title = $4, department = $5,
			email = $6, phone = $7, is_primary = $8, updated_at = now()
		WHERE id = $1`
	args := []any{
		id, params.FirstName, params.LastName, params.JobTitle, params.Department,
		params.Email, params.Phone, params.IsPrimary,
	}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + contactColumns
	args = append(args, ownerArgs...)

	contact, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	if err != nil {
		return Contact{}, constraintErr(err)
	}
	return contact, nil
}

func (r *Repository) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1`
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

func scanContact(r row) (Contact, error) {
	var c Contact
	err := r.Scan(
		&c.ID, &c.OrganizationID, &c.FirstName, &c.LastName, &c.JobTitle, &c.Department,
		&c.Email, &c.Phone, &c.IsPrimary, &c.OwnerID, &c.SourceLeadContactID,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func constraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23503":
			return ErrUnknownOrg
		case "23505":
			return ErrDuplicateEmail
		}
	}
	return err
}
