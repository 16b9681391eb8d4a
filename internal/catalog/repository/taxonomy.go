package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TechOption is a technology-stack taxonomy entry, grouped by category.
type TechOption struct {
	ID        uuid.UUID
	Category  string
	Name      string
	CreatedAt time.Time
}

func (r *Repository) CreateTechOption(ctx context.Context, category, name string) (TechOption, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tech_options (category, name)
		VALUES ($1, $2)
		RETURNING id, category, name, created_at`,
		category, name,
	)
	var opt TechOption
	if err := row.Scan(&opt.ID, &opt.Category, &opt.Name, &opt.CreatedAt); err != nil {
		return TechOption{}, mutationErr(err)
	}
	return opt, nil
}

// ListTechOptions returns all options, optionally restricted to one category.
func (r *Repository) ListTechOptions(ctx context.Context, category string) ([]TechOption, error) {
	query := `SELECT id, category, name, created_at FROM tech_options`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY category ASC, name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := make([]TechOption, 0)
	for rows.Next() {
		var opt TechOption
		if err := rows.Scan(&opt.ID, &opt.Category, &opt.Name, &opt.CreatedAt); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (r *Repository) DeleteTechOption(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "tech_options", id)
}

// CNAECode is a Brazilian economic-activity classification code.
type CNAECode struct {
	ID          uuid.UUID
	Code        string
	Description string
	CreatedAt   time.Time
}

func (r *Repository) CreateCNAECode(ctx context.Context, code, description string) (CNAECode, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cnae_codes (code, description)
		VALUES ($1, $2)
		RETURNING id, code, description, created_at`,
		code, description,
	)
	var c CNAECode
	if err := row.Scan(&c.ID, &c.Code, &c.Description, &c.CreatedAt); err != nil {
		return CNAECode{}, mutationErr(err)
	}
	return c, nil
}

// ListCNAECodes filters by a code prefix when search is non-empty.
func (r *Repository) ListCNAECodes(ctx context.Context, search string) ([]CNAECode, error) {
	query := `SELECT id, code, description, created_at FROM cnae_codes`
	args := []any{}
	if search != "" {
		query += ` WHERE code LIKE $1 || '%' OR description ILIKE '%' || $1 || '%'`
		args = append(args, search)
	}
	query += ` ORDER BY code ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]CNAECode, 0)
	for rows.Next() {
		var c CNAECode
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &c.CreatedAt); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

func (r *Repository) DeleteCNAECode(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "cnae_codes", id)
}

// deleteByID works for catalog tables whose only delete guard is the
// foreign keys pointing at them. The table name is always a compile-time
// constant at call sites, never user input.
func (r *Repository) deleteByID(ctx context.Context, table string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return mutationErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func noRowsAsNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
