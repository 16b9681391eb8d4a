package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrgContact is a contact summary shown on the organization detail view.
type OrgContact struct {
	ID        uuid.UUID
	FirstName string
	LastName  *string
	JobTitle  *string
	Email     *string
	Phone     *string
	IsPrimary bool
	CreatedAt time.Time
}

func (r *Repository) ListContacts(ctx context.Context, orgID uuid.UUID) ([]OrgContact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, first_name, last_name, job_title, email, phone, is_primary, created_at
		FROM contacts WHERE organization_id = $1
		ORDER BY is_primary DESC, created_at ASC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]OrgContact, 0)
	for rows.Next() {
		var c OrgContact
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.JobTitle, &c.Email, &c.Phone, &c.IsPrimary, &c.CreatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// TechProfile is a technology entry on the organization detail view.
type TechProfile struct {
	ID       uuid.UUID
	OptionID uuid.UUID
	Option   string
	Category string
	Version  *string
	Notes    *string
}

func (r *Repository) ListTechProfiles(ctx context.Context, orgID uuid.UUID) ([]TechProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.option_id, o.name, o.category, p.version, p.notes
		FROM organization_tech_profiles p
		JOIN tech_options o ON o.id = p.option_id
		WHERE p.organization_id = $1
		ORDER BY o.category ASC, o.name ASC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]TechProfile, 0)
	for rows.Next() {
		var p TechProfile
		if err := rows.Scan(&p.ID, &p.OptionID, &p.Option, &p.Category, &p.Version, &p.Notes); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// ProductLink is a product of interest on the organization detail view.
type ProductLink struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Product   string
	Quantity  int
	SortOrder int
}

func (r *Repository) ListProducts(ctx context.Context, orgID uuid.UUID) ([]ProductLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT op.id, op.product_id, pr.name, op.quantity, op.sort_order
		FROM organization_products op
		JOIN products pr ON pr.id = op.product_id
		WHERE op.organization_id = $1
		ORDER BY op.sort_order ASC, op.created_at ASC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]ProductLink, 0)
	for rows.Next() {
		var p ProductLink
		if err := rows.Scan(&p.ID, &p.ProductID, &p.Product, &p.Quantity, &p.SortOrder); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CNAELink is an economic-activity classification on the detail view.
type CNAELink struct {
	ID          uuid.UUID
	CNAEID      uuid.UUID
	Code        string
	Description string
	IsPrimary   bool
}

func (r *Repository) ListCNAEs(ctx context.Context, orgID uuid.UUID) ([]CNAELink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oc.id, oc.cnae_id, c.code, c.description, oc.is_primary
		FROM organization_cnaes oc
		JOIN cnae_codes c ON c.id = oc.cnae_id
		WHERE oc.organization_id = $1
		ORDER BY oc.is_primary DESC, c.code ASC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]CNAELink, 0)
	for rows.Next() {
		var l CNAELink
		if err := rows.Scan(&l.ID, &l.CNAEID, &l.Code, &l.Description, &l.IsPrimary); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// DealSummary is an open or closed deal shown on the organization detail view.
type DealSummary struct {
	ID         uuid.UUID
	Title      string
	Status     string
	ValueCents int64
	StageID    *uuid.UUID
	CreatedAt  time.Time
}

func (r *Repository) ListDeals(ctx context.Context, orgID uuid.UUID) ([]DealSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, status, value_cents, stage_id, created_at
		FROM deals WHERE organization_id = $1
		ORDER BY created_at DESC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deals := make([]DealSummary, 0)
	for rows.Next() {
		var d DealSummary
		if err := rows.Scan(&d.ID, &d.Title, &d.Status, &d.ValueCents, &d.StageID, &d.CreatedAt); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}
