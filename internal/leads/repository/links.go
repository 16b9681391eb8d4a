package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrLinkExists = errors.New("link already exists")

// LeadTechProfile is a technology observed at a lead, joined with its
// catalog option for display.
type LeadTechProfile struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	OptionID  uuid.UUID
	Option    string
	Category  string
	Version   *string
	Notes     *string
	CreatedAt time.Time
}

func (r *Repository) AddTechProfile(ctx context.Context, leadID, optionID uuid.UUID, version, notes *string) (LeadTechProfile, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_tech_profiles (lead_id, option_id, version, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		leadID, optionID, version, notes,
	)
	p := LeadTechProfile{LeadID: leadID, OptionID: optionID, Version: version, Notes: notes}
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return LeadTechProfile{}, duplicateAsLinkExists(err)
	}
	return p, nil
}

func (r *Repository) ListTechProfiles(ctx context.Context, leadID uuid.UUID) ([]LeadTechProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.lead_id, p.option_id, o.name, o.category, p.version, p.notes, p.created_at
		FROM lead_tech_profiles p
		JOIN tech_options o ON o.id = p.option_id
		WHERE p.lead_id = $1
		ORDER BY o.category ASC, o.name ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]LeadTechProfile, 0)
	for rows.Next() {
		var p LeadTechProfile
		if err := rows.Scan(&p.ID, &p.LeadID, &p.OptionID, &p.Option, &p.Category, &p.Version, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *Repository) RemoveTechProfile(ctx context.Context, leadID, profileID uuid.UUID) error {
	return r.removeLink(ctx, `DELETE FROM lead_tech_profiles WHERE id = $1 AND lead_id = $2`, profileID, leadID)
}

// LeadProduct is a product of interest linked to a lead.
type LeadProduct struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ProductID uuid.UUID
	Product   string
	Quantity  int
	SortOrder int
	CreatedAt time.Time
}

func (r *Repository) AddProduct(ctx context.Context, leadID, productID uuid.UUID, quantity, sortOrder int) (LeadProduct, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_products (lead_id, product_id, quantity, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		leadID, productID, quantity, sortOrder,
	)
	p := LeadProduct{LeadID: leadID, ProductID: productID, Quantity: quantity, SortOrder: sortOrder}
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return LeadProduct{}, duplicateAsLinkExists(err)
	}
	return p, nil
}

func (r *Repository) ListProducts(ctx context.Context, leadID uuid.UUID) ([]LeadProduct, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lp.id, lp.lead_id, lp.product_id, pr.name, lp.quantity, lp.sort_order, lp.created_at
		FROM lead_products lp
		JOIN products pr ON pr.id = lp.product_id
		WHERE lp.lead_id = $1
		ORDER BY lp.sort_order ASC, lp.created_at ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]LeadProduct, 0)
	for rows.Next() {
		var p LeadProduct
		if err := rows.Scan(&p.ID, &p.LeadID, &p.ProductID, &p.Product, &p.Quantity, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repository) RemoveProduct(ctx context.Context, leadID, linkID uuid.UUID) error {
	return r.removeLink(ctx, `DELETE FROM lead_products WHERE id = $1 AND lead_id = $2`, linkID, leadID)
}

// LeadCNAE is a Brazilian economic-activity classification linked to a lead.
type LeadCNAE struct {
	ID          uuid.UUID
	LeadID      uuid.UUID
	CNAEID      uuid.UUID
	Code        string
	Description string
	IsPrimary   bool
	CreatedAt   time.Time
}

func (r *Repository) AddCNAE(ctx context.Context, leadID, cnaeID uuid.UUID, isPrimary bool) (LeadCNAE, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_cnaes (lead_id, cnae_id, is_primary)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		leadID, cnaeID, isPrimary,
	)
	l := LeadCNAE{LeadID: leadID, CNAEID: cnaeID, IsPrimary: isPrimary}
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return LeadCNAE{}, duplicateAsLinkExists(err)
	}
	return l, nil
}

func (r *Repository) ListCNAEs(ctx context.Context, leadID uuid.UUID) ([]LeadCNAE, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lc.id, lc.lead_id, lc.cnae_id, c.code, c.description, lc.is_primary, lc.created_at
		FROM lead_cnaes lc
		JOIN cnae_codes c ON c.id = lc.cnae_id
		WHERE lc.lead_id = $1
		ORDER BY lc.is_primary DESC, c.code ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]LeadCNAE, 0)
	for rows.Next() {
		var l LeadCNAE
		if err := rows.Scan(&l.ID, &l.LeadID, &l.CNAEID, &l.Code, &l.Description, &l.IsPrimary, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *Repository) RemoveCNAE(ctx context.Context, leadID, linkID uuid.UUID) error {
	return r.removeLink(ctx, `DELETE FROM lead_cnaes WHERE id = $1 AND lead_id = $2`, linkID, leadID)
}

// LeadICP links a lead to an ideal-customer profile it matches.
type LeadICP struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ICPID     uuid.UUID
	Name      string
	CreatedAt time.Time
}

func (r *Repository) AddICP(ctx context.Context, leadID, icpID uuid.UUID) (LeadICP, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO lead_icps (lead_id, icp_id)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		leadID, icpID,
	)
	l := LeadICP{LeadID: leadID, ICPID: icpID}
	if err := row.Scan(&l.ID, &l.CreatedAt); err != nil {
		return LeadICP{}, duplicateAsLinkExists(err)
	}
	return l, nil
}

func (r *Repository) ListICPs(ctx context.Context, leadID uuid.UUID) ([]LeadICP, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT li.id, li.lead_id, li.icp_id, p.name, li.created_at
		FROM lead_icps li
		JOIN icp_profiles p ON p.id = li.icp_id
		WHERE li.lead_id = $1
		ORDER BY p.name ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]LeadICP, 0)
	for rows.Next() {
		var l LeadICP
		if err := rows.Scan(&l.ID, &l.LeadID, &l.ICPID, &l.Name, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *Repository) RemoveICP(ctx context.Context, leadID, linkID uuid.UUID) error {
	return r.removeLink(ctx, `DELETE FROM lead_icps WHERE id = $1 AND lead_id = $2`, linkID, leadID)
}

func (r *Repository) removeLink(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func duplicateAsLinkExists(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrLinkExists
	}
	return err
}
