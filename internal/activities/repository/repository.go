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
	ErrNotFound = errors.New("activity not found")
	ErrBadLink  = errors.New("referenced record does not exist")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Activity struct {
	ID             uuid.UUID
	Type           string
	Subject        string
	Notes          *string
	LeadID         *uuid.UUID
	OrganizationID *uuid.UUID
	DealID         *uuid.UUID
	ContactID      *uuid.UUID
	OwnerID        uuid.UUID
	DueAt          *time.Time
	RemindAt       *time.Time
	ReminderSentAt *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const activityColumns = `id, type, subject, notes, lead_id, organization_id, deal_id, contact_id,
	owner_id, due_at, remind_at, reminder_sent_at, completed_at, created_at, updated_at`

const getActivityQuery = `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

type CreateParams struct {
	Type           string
	Subject        string
	Notes          *string
	LeadID         *uuid.UUID
	OrganizationID *uuid.UUID
	DealID         *uuid.UUID
	ContactID      *uuid.UUID
	OwnerID        uuid.UUID
	DueAt          *time.Time
	RemindAt       *time.Time
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Activity, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO activities (
			type, subject, notes, lead_id, organization_id, deal_id, contact_id,
			owner_id, due_at, remind_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+activityColumns,
		params.Type, params.Subject, params.Notes, params.LeadID, params.OrganizationID,
		params.DealID, params.ContactID, params.OwnerID, params.DueAt, params.RemindAt,
	)
	activity, err := scanActivity(row)
	if err != nil {
		return Activity{}, fkErr(err)
	}
	return activity, nil
}

// Get loads an activity without ownership filtering. Used by the background
// worker, which acts on behalf of the system.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Activity, error) {
	activity, err := scanActivity(r.pool.QueryRow(ctx, getActivityQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

func (r *Repository) GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (Activity, error) {
	query := getActivityQuery
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause
	args = append(args, ownerArgs...)

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

type ListParams struct {
	LeadID         *uuid.UUID
	OrganizationID *uuid.UUID
	DealID         *uuid.UUID
	Pending        bool
	Page           int
	PageSize       int
}

func (r *Repository) List(ctx context.Context, actor access.Actor, params ListParams) ([]Activity, int, error) {
	where := []string{"1=1"}
	args := []any{}

	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	if clause != "" {
		where = append(where, strings.TrimPrefix(clause, " AND "))
		args = append(args, ownerArgs...)
	}
	if params.LeadID != nil {
		args = append(args, *params.LeadID)
		where = append(where, fmt.Sprintf("lead_id = $%d", len(args)))
	}
	if params.OrganizationID != nil {
		args = append(args, *params.OrganizationID)
		where = append(where, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if params.DealID != nil {
		args = append(args, *params.DealID)
		where = append(where, fmt.Sprintf("deal_id = $%d", len(args)))
	}
	if params.Pending {
		where = append(where, "completed_at IS NULL")
	}

	whereSQL := "WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM activities "+whereSQL, args...).Scan(&total); err != nil {
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
	query := fmt.Sprintf("SELECT %s FROM activities %s ORDER BY due_at ASC NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d",
		activityColumns, whereSQL, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities := make([]Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, 0, err
		}
		activities = append(activities, activity)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return activities, total, nil
}

type UpdateParams struct {
	Type     string
	Subject  string
	Notes    *string
	DueAt    *time.Time
	RemindAt *time.Time
}

func (r *Repository) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params UpdateParams) (Activity, error) {
	query := `
		UPDATE activities SET
			type = $2, subject = $3, notes = $4, due_at = $5, remind_at = $6, updated_at = now()
		WHERE id = $1 AND completed_at IS NULL`
	args := []any{id, params.Type, params.Subject, params.Notes, params.DueAt, params.RemindAt}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + activityColumns
	args = append(args, ownerArgs...)

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

func (r *Repository) Complete(ctx context.Context, actor access.Actor, id uuid.UUID) (Activity, error) {
	query := `UPDATE activities SET completed_at = now(), updated_at = now()
		WHERE id = $1 AND completed_at IS NULL`
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + activityColumns
	args = append(args, ownerArgs...)

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

func (r *Repository) Reopen(ctx context.Context, actor access.Actor, id uuid.UUID) (Activity, error) {
	query := `UPDATE activities SET completed_at = NULL, updated_at = now()
		WHERE id = $1 AND completed_at IS NOT NULL`
	args := []any{id}
	clause, ownerArgs := access.OwnerClause(actor, "owner_id", len(args)+1)
	query += clause + " RETURNING " + activityColumns
	args = append(args, ownerArgs...)

	activity, err := scanActivity(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Activity{}, ErrNotFound
	}
	return activity, err
}

// MarkReminderSent stamps the reminder so a redelivered task never fires twice.
func (r *Repository) MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE activities SET reminder_sent_at = now(), updated_at = now()
		WHERE id = $1 AND reminder_sent_at IS NULL AND completed_at IS NULL`,
		id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	query := `DELETE FROM activities WHERE id = $1`
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

func scanActivity(r row) (Activity, error) {
	var a Activity
	err := r.Scan(
		&a.ID, &a.Type, &a.Subject, &a.Notes, &a.LeadID, &a.OrganizationID, &a.DealID, &a.ContactID,
		&a.OwnerID, &a.DueAt, &a.RemindAt, &a.ReminderSentAt, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func fkErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrBadLink
	}
	return err
}
