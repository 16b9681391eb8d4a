package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BusinessLine groups offerings for segmentation and reporting.
type BusinessLine struct {
	ID          uuid.UUID
	Name        string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const businessLineColumns = `id, name, description, created_at, updated_at`

func (r *Repository) CreateBusinessLine(ctx context.Context, name string, description *string) (BusinessLine, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO business_lines (name, description)
		VALUES ($1, $2)
		RETURNING `+businessLineColumns,
		name, description,
	)
	line, err := scanBusinessLine(row)
	if err != nil {
		return BusinessLine{}, mutationErr(err)
	}
	return line, nil
}

func (r *Repository) ListBusinessLines(ctx context.Context) ([]BusinessLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+businessLineColumns+` FROM business_lines ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]BusinessLine, 0)
	for rows.Next() {
		line, err := scanBusinessLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *Repository) UpdateBusinessLine(ctx context.Context, id uuid.UUID, name string, description *string) (BusinessLine, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE business_lines
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+businessLineColumns,
		id, name, description,
	)
	line, err := scanBusinessLine(row)
	if err != nil {
		return BusinessLine{}, mutationErr(noRowsAsNotFound(err))
	}
	return line, nil
}

func (r *Repository) DeleteBusinessLine(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "business_lines", id)
}

func scanBusinessLine(row interface{ Scan(dest ...any) error }) (BusinessLine, error) {
	var l BusinessLine
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// ICPProfile describes an ideal customer profile used to score leads,
// optionally tied to a business line.
type ICPProfile struct {
	ID             uuid.UUID
	Name           string
	Description    *string
	BusinessLineID *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const icpColumns = `id, name, description, business_line_id, created_at, updated_at`

type ICPProfileParams struct {
	Name           string
	Description    *string
	BusinessLineID *uuid.UUID
}

func (r *Repository) CreateICPProfile(ctx context.Context, params ICPProfileParams) (ICPProfile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO icp_profiles (name, description, business_line_id)
		VALUES ($1, $2, $3)
		RETURNING `+icpColumns,
		params.Name, params.Description, params.BusinessLineID,
	)
	profile, err := scanICPProfile(row)
	if err != nil {
		return ICPProfile{}, mutationErr(err)
	}
	return profile, nil
}

func (r *Repository) ListICPProfiles(ctx context.Context) ([]ICPProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+icpColumns+` FROM icp_profiles ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]ICPProfile, 0)
	for rows.Next() {
		profile, err := scanICPProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *Repository) UpdateICPProfile(ctx context.Context, id uuid.UUID, params ICPProfileParams) (ICPProfile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE icp_profiles
		SET name = $2, description = $3, business_line_id = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+icpColumns,
		id, params.Name, params.Description, params.BusinessLineID,
	)
	profile, err := scanICPProfile(row)
	if err != nil {
		return ICPProfile{}, mutationErr(noRowsAsNotFound(err))
	}
	return profile, nil
}

func (r *Repository) DeleteICPProfile(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, "icp_profiles", id)
}

func scanICPProfile(row interface{ Scan(dest ...any) error }) (ICPProfile, error) {
	var p ICPProfile
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.BusinessLineID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
