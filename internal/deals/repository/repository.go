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
	ErrNotFound   = errors.New("deal not found")
	ErrBadLink    = errors.New("referenced record does not exist")
	ErrStaleState = errors.New("deal state changed concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Deal struct {
	ID                uuid.UUID
	Title             string
	OrganizationID    uuid.UUID
	ContactID         *uuid.UUID
	PipelineID        uuid.UUID
	StageID           *uuid.UUID
	Status            string
	ValueCents        int64
	Currency          string
	ExpectedCloseDate *time.Time
	LostReason        *string
	ClosedAt          *time.Time
	OwnerID           uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const dealColumns = `id, title, organization_id, contact_id, pipeline_id, stage_id,
	status, value_cents, currency, expected_close_date, lost_reason, closed_at,
	owner_id, created_at, updated_at`

const getDealQuery = `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

type CreateParams struct {
	Title             string
	OrganizationID    uuid.UUID
	ContactID         *uuid.UUID
	PipelineID        uuid.UUID
	StageID           *uuid.UUID
	ValueCents        int64
	Currency          string
	ExpectedCloseDate *time.Time
	OwnerID           uuid.UUID
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Deal, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO deals (
			title, organization_id, contact_id, pipeline_id, stage_id,
			value_cents, currency, expected_close_date, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+dealColumns,
		params.Title, params.OrganizationID, params.ContactID, params.PipelineID, params.StageID,
		params.ValueCents, params.Currency, params.ExpectedCloseDate, params.OwnerID,
	)
	deal, err := scanDeal(row)
	if err != nil {
		return Deal{}, fkErr(err)
	}
	return deal, nil
}

func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (Deal, error) {
	query := getDealQuery
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	deal, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return deal, err
}

type ListParams struct {
	Status         *string
	OrganizationID *uuid.UUID
	PipelineID     *uuid.UUID
	Page           int
	PageSize       int
}

func (r *Repository) List(ctx context.Context, actor access.Actor, params ListParams) ([]Deal, int, error) {
	where := []string{"1=1"}
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
	if params.OrganizationID != nil {
		args = append(args, *params.OrganizationID)
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if params.PipelineID != nil {
		args = append(args, *params.PipelineID)
		where = append(where, fmt.Sprintf("pipeline_id = $%d", len(args)))
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM deals "+whereSQL, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM deals %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		dealColumns, whereSQL, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	deals := make([]Deal, 0)
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, 0, err
		}
		deals = append(deals, deal)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return deals, total, nil
}

type UpdateParams struct {
	Title             string
	ContactID         *uuid.UUID
	ValueCents        int64
	Currency          string
	ExpectedCloseDate *time.Time
}

func (r *Repository) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params UpdateParams) (Deal, error) {
	query := `
		UPDATE deals SET
			title = $2, contact_id = $3, value_cents = $4, currency = $5,
			expected_close_date = $6, updated_at = now()
		WHERE id = $1`
	args := []any{id, params.Title, params.ContactID, params.ValueCents, params.Currency, params.ExpectedCloseDate}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + dealColumns
	args = append(args, ownerArgs...)

	deal, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	if err != nil {
		return Deal{}, fkErr(err)
	}
	return deal, nil
}

// MoveStage moves an open deal to a stage. The stage must belong to the
// deal's own pipeline; the subquery enforces that without a prior read.
func (r *Repository) MoveStage(ctx context.Context, actor access.Actor, id, stageID uuid.UUID) (Deal, error) {
	query := `
		UPDATE deals SET stage_id = $2, updated_at = now()
		WHERE id = $1 AND status = 'open'
		  AND EXISTS (
			SELECT 1 FROM pipeline_stages s
			WHERE s.id = $2 AND s.pipeline_id = deals.pipeline_id
		  )`
	args := []any{id, stageID}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + dealColumns
	args = append(args, ownerArgs...)

	deal, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrNotFound
	}
	return deal, err
}

// SetStatus transitions a deal between statuses. expectedFrom guards against
// concurrent transitions: the update only applies if the status still matches.
func (r *Repository) SetStatus(ctx context.Context, actor access.Actor, id uuid.UUID, expectedFrom, to string, lostReason *string) (Deal, error) {
	query := `
		UPDATE deals SET
			status = $3,
			lost_reason = $4,
			closed_at = CASE WHEN $3 = 'open' THEN NULL ELSE now() END,
			updated_at = now()
		WHERE id = $1 AND status = $2`
	args := []any{id, expectedFrom, to, lostReason}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + dealColumns
	args = append(args, ownerArgs...)

	deal, err := scanDeal(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Deal{}, ErrStaleState
	}
	return deal, err
}

func (r *Repository) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	query := `DELETE FROM deals WHERE id = $1`
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

func scanDeal(r row) (Deal, error) {
	var d Deal
	err := r.Scan(
		&d.ID, &d.Title, &d.OrganizationID, &d.ContactID, &d.PipelineID, &d.StageID,
		&d.Status, &d.ValueCents, &d.Currency, &d.ExpectedCloseDate, &d.LostReason, &d.ClosedAt,
		&d.OwnerID, &d.CreatedAt, &d.UpdatedAt,
	)
	return d, err
}

func fkErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrBadLink
	}
	return err
}
