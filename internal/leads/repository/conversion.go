package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipeline_crm_backend/platform/config"
	"pipeline_crm_backend/platform/db"
)

// Organization is the organization record produced by converting a lead, as
// seen from the leads context.
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
	OwnerID       uuid.UUID
	SourceLeadID  uuid.UUID
	CreatedAt     time.Time
}

// Contact is a person record produced by converting a lead contact.
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
	SourceLeadContactID uuid.UUID
	CreatedAt           time.Time
}

type CreateOrganizationParams struct {
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
	OwnerID       uuid.UUID
	SourceLeadID  uuid.UUID
}

type CreateOrgContactParams struct {
	OrganizationID      uuid.UUID
	FirstName           string
	LastName            *string
	JobTitle            *string
	Department          *string
	Email               *string
	Phone               *string
	IsPrimary           bool
	OwnerID             uuid.UUID
	SourceLeadContactID uuid.UUID
}

// ConvertTx is the set of statements a lead conversion runs inside a single
// transaction.
type ConvertTx interface {
	LeadForUpdate(ctx context.Context, id uuid.UUID) (Lead, error)
	UnconvertedContacts(ctx context.Context, leadID uuid.UUID) ([]LeadContact, error)
	TechProfiles(ctx context.Context, leadID uuid.UUID) ([]LeadTechProfile, error)
	Products(ctx context.Context, leadID uuid.UUID) ([]LeadProduct, error)
	CNAEs(ctx context.Context, leadID uuid.UUID) ([]LeadCNAE, error)
	InsertOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error)
	InsertContact(ctx context.Context, params CreateOrgContactParams) (Contact, error)
	MarkContactConverted(ctx context.Context, leadContactID, contactID uuid.UUID) error
	InsertOrgTechProfile(ctx context.Context, orgID, optionID uuid.UUID, version, notes *string) error
	InsertOrgProduct(ctx context.Context, orgID, productID uuid.UUID, quantity, sortOrder int) error
	InsertOrgCNAE(ctx context.Context, orgID, cnaeID uuid.UUID, isPrimary bool) error
	MarkLeadConverted(ctx context.Context, leadID, orgID uuid.UUID, at time.Time) error
}

// ConversionStore runs conversion transactions against Postgres with the
// retry policy configured for conversions.
type ConversionStore struct {
	pool *pgxpool.Pool
	opts db.TxOptions
}

func NewConversionStore(pool *pgxpool.Pool, cfg config.ConversionConfig) *ConversionStore {
	return &ConversionStore{
		pool: pool,
		opts: db.TxOptions{
			MaxRetries: cfg.GetConvertMaxRetries(),
			Backoff:    50 * time.Millisecond,
			Timeout:    cfg.GetConvertTxTimeout(),
		},
	}
}

// GetLead is the non-locking read used for the eligibility pre-check before
// the conversion transaction starts.
func (s *ConversionStore) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(s.pool.QueryRow(ctx, getLeadQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (s *ConversionStore) InTx(ctx context.Context, fn func(tx ConvertTx) error) error {
	return db.InTx(ctx, s.pool, s.opts, func(tx pgx.Tx) error {
		return fn(&convertTx{tx: tx})
	})
}

type convertTx struct {
	tx pgx.Tx
}

func (t *convertTx) LeadForUpdate(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(t.tx.QueryRow(ctx, getLeadForUpdateQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (t *convertTx) UnconvertedContacts(ctx context.Context, leadID uuid.UUID) ([]LeadContact, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT `+leadContactColumns+`
		FROM lead_contacts
		WHERE lead_id = $1 AND converted_to_contact_id IS NULL
		ORDER BY created_at ASC`,
		leadID)
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

func (t *convertTx) TechProfiles(ctx context.Context, leadID uuid.UUID) ([]LeadTechProfile, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, lead_id, option_id, version, notes, created_at
		FROM lead_tech_profiles WHERE lead_id = $1 ORDER BY created_at ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]LeadTechProfile, 0)
	for rows.Next() {
		var p LeadTechProfile
		if err := rows.Scan(&p.ID, &p.LeadID, &p.OptionID, &p.Version, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (t *convertTx) Products(ctx context.Context, leadID uuid.UUID) ([]LeadProduct, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, lead_id, product_id, quantity, sort_order, created_at
		FROM lead_products WHERE lead_id = $1 ORDER BY sort_order ASC, created_at ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]LeadProduct, 0)
	for rows.Next() {
		var p LeadProduct
		if err := rows.Scan(&p.ID, &p.LeadID, &p.ProductID, &p.Quantity, &p.SortOrder, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (t *convertTx) CNAEs(ctx context.Context, leadID uuid.UUID) ([]LeadCNAE, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT id, lead_id, cnae_id, is_primary, created_at
		FROM lead_cnaes WHERE lead_id = $1 ORDER BY is_primary DESC, created_at ASC`,
		leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make([]LeadCNAE, 0)
	for rows.Next() {
		var l LeadCNAE
		if err := rows.Scan(&l.ID, &l.LeadID, &l.CNAEID, &l.IsPrimary, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (t *convertTx) InsertOrganization(ctx context.Context, params CreateOrganizationParams) (Organization, error) {
	org := Organization{
		Name:          params.Name,
		LegalName:     params.LegalName,
		Website:       params.Website,
		Email:         params.Email,
		Phone:         params.Phone,
		AddressStreet: params.AddressStreet,
		AddressNumber: params.AddressNumber,
		AddressCity:   params.AddressCity,
		AddressState:  params.AddressState,
		AddressZip:    params.AddressZip,
		Industry:      params.Industry,
		OwnerID:       params.OwnerID,
		SourceLeadID:  params.SourceLeadID,
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO organizations (
			name, legal_name, website, email, phone,
			address_street, address_number, address_city, address_state, address_zip,
			industry, owner_id, source_lead_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		params.Name, params.LegalName, params.Website, params.Email, params.Phone,
		params.AddressStreet, params.AddressNumber, params.AddressCity, params.AddressState, params.AddressZip,
		params.Industry, params.OwnerID, params.SourceLeadID,
	).Scan(&org.ID, &org.CreatedAt)
	if err != nil {
		return Organization{}, err
	}
	return org, nil
}

func (t *convertTx) InsertContact(ctx context.Context, params CreateOrgContactParams) (Contact, error) {
	contact := Contact{
		OrganizationID:      params.OrganizationID,
		FirstName:           params.FirstName,
		LastName:            params.LastName,
		JobTitle:            params.JobTitle,
		Department:          params.Department,
		Email:               params.Email,
		Phone:               params.Phone,
		IsPrimary:           params.IsPrimary,
		OwnerID:             params.OwnerID,
		SourceLeadContactID: params.SourceLeadContactID,
	}
	err := t.tx.QueryRow(ctx, `
		INSERT INTO contacts (
			organization_id, first_name, last_name, job_title, department,
			email, phone, is_primary, owner_id, source_lead_contact_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		params.OrganizationID, params.FirstName, params.LastName, params.JobTitle, params.Department,
		params.Email, params.Phone, params.IsPrimary, params.OwnerID, params.SourceLeadContactID,
	).Scan(&contact.ID, &contact.CreatedAt)
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

func (t *convertTx) MarkContactConverted(ctx context.Context, leadContactID, contactID uuid.UUID) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE lead_contacts SET converted_to_contact_id = $2 WHERE id = $1`,
		leadContactID, contactID)
	return err
}

func (t *convertTx) InsertOrgTechProfile(ctx context.Context, orgID, optionID uuid.UUID, version, notes *string) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO organization_tech_profiles (organization_id, option_id, version, notes)
		VALUES ($1, $2, $3, $4)`,
		orgID, optionID, version, notes)
	return err
}

func (t *convertTx) InsertOrgProduct(ctx context.Context, orgID, productID uuid.UUID, quantity, sortOrder int) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO organization_products (organization_id, product_id, quantity, sort_order)
		VALUES ($1, $2, $3, $4)`,
		orgID, productID, quantity, sortOrder)
	return err
}

func (t *convertTx) InsertOrgCNAE(ctx context.Context, orgID, cnaeID uuid.UUID, isPrimary bool) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO organization_cnaes (organization_id, cnae_id, is_primary)
		VALUES ($1, $2, $3)`,
		orgID, cnaeID, isPrimary)
	return err
}

func (t *convertTx) MarkLeadConverted(ctx context.Context, leadID, orgID uuid.UUID, at time.Time) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE leads SET converted_at = $2, organization_id = $3, updated_at = $2 WHERE id = $1`,
		leadID, at, orgID)
	return err
}
