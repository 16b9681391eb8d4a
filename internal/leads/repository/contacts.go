package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrContactNotFound = errors.New("lead contact not found")

type LeadContact struct {
	ID                   uuid.UUID
	LeadID               uuid.UUID
	FirstName            string
	LastName             *string
	JobTitle             *string
	Department           *string
	Email                *string
	Phone                *string
	IsPrimary            bool
	ConvertedToContactID *uuid.UUID
	CreatedAt            time.Time
}

const leadContactColumns = `id, lead_id, first_name, last_name, job_title, department,
	email, phone, is_primary, converted_to_contact_id, created_at`

const listLeadContactsQuery = `SELECT ` + leadContactColumns + `
	FROM lead_contacts WHERE lead_id = $1 ORDER BY created_at ASC`

type AddContactParams struct {
	LeadID     uuid.UUID
	FirstName  string
	LastName   *string
	JobTitle   *string
	Department *string
	Email      *string
	Phone      *string
	IsPrimary  bool
}

func (r *Repository) AddContact(ctx context.Context, params AddContactParams) (LeadContact, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_contacts (lead_id, first_name, last_name, job_title, department, email, phone, is_primary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadContactColumns,
		params.LeadID, params.FirstName, params.LastName, params.JobTitle,
		params.Department, params.Email, params.Phone, params.IsPrimary,
	)
	return scanLeadContact(row)
}

func (r *Repository) ListContacts(ctx context.Context, leadID uuid.UUID) ([]LeadContact, error) {
	rows, err := r.pool.Query(ctx, listLeadContactsQuery, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]LeadContact, 0)
	for rows.Next() {
		contact, err := scanLeadContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

func (r *Repository) RemoveContact(ctx context.Context, leadID, contactID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM lead_contacts WHERE id = $1 AND lead_id = $2 AND converted_to_contact_id IS NULL`,
		contactID, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func scanLeadContact(r row) (LeadContact, error) {
	var c LeadContact
	err := r.Scan(
		&c.ID, &c.LeadID, &c.FirstName, &c.LastName, &c.JobTitle, &c.Department,
		&c.Email, &c.Phone, &c.IsPrimary, &c.ConvertedToContactID, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadContact{}, ErrContactNotFound
	}
	return c, err
}
