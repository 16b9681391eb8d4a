package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/organizations/repository"
	"pipeline_crm_backend/internal/organizations/service"
)

// Request DTOs
type CreateOrganizationRequest struct {
	Name          string     `json:"name" validate:"required,min=1,max=200"`
	LegalName     *string    `json:"legalName" validate:"omitempty,max=200"`
	Website       *string    `json:"website" validate:"omitempty,url"`
	Email         *string    `json:"email" validate:"omitempty,email"`
	Phone         *string    `json:"phone" validate:"omitempty,max=32"`
	AddressStreet *string    `json:"addressStreet" validate:"omitempty,max=200"`
	AddressNumber *string    `json:"addressNumber" validate:"omitempty,max=20"`
	AddressCity   *string    `json:"addressCity" validate:"omitempty,max=100"`
	AddressState  *string    `json:"addressState" validate:"omitempty,len=2"`
	AddressZip    *string    `json:"addressZip" validate:"omitempty,max=10"`
	Industry      *string    `json:"industry" validate:"omitempty,max=100"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
	OwnerID       *uuid.UUID `json:"ownerId"`
}

type UpdateOrganizationRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	LegalName     *string `json:"legalName" validate:"omitempty,max=200"`
	Website       *string `json:"website" validate:"omitempty,url"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	AddressStreet *string `json:"addressStreet" validate:"omitempty,max=200"`
	AddressNumber *string `json:"addressNumber" validate:"omitempty,max=20"`
	AddressCity   *string `json:"addressCity" validate:"omitempty,max=100"`
	AddressState  *string `json:"addressState" validate:"omitempty,len=2"`
	AddressZip    *string `json:"addressZip" validate:"omitempty,max=10"`
	Industry      *string `json:"industry" validate:"omitempty,max=100"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs
type OrganizationResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	LegalName     *string    `json:"legalName,omitempty"`
	Website       *string    `json:"website,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	AddressStreet *string    `json:"addressStreet,omitempty"`
	AddressNumber *string    `json:"addressNumber,omitempty"`
	AddressCity   *string    `json:"addressCity,omitempty"`
	AddressState  *string    `json:"addressState,omitempty"`
	AddressZip    *string    `json:"addressZip,omitempty"`
	Industry      *string    `json:"industry,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	SourceLeadID  *uuid.UUID `json:"sourceLeadId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func OrganizationFromModel(o repository.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:            o.ID,
		Name:          o.Name,
		LegalName:     o.LegalName,
		Website:       o.Website,
		Email:         o.Email,
		Phone:         o.Phone,
		AddressStreet: o.AddressStreet,
		AddressNumber: o.AddressNumber,
		AddressCity:   o.AddressCity,
		AddressState:  o.AddressState,
		AddressZip:    o.AddressZip,
		Industry:      o.Industry,
		Notes:         o.Notes,
		OwnerID:       o.OwnerID,
		SourceLeadID:  o.SourceLeadID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type OrganizationListResponse struct {
	Items []OrganizationResponse `json:"items"`
	Total int                    `json:"total"`
}

type ContactSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  *string   `json:"lastName,omitempty"`
	JobTitle  *string   `json:"jobTitle,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

type TechProfileSummary struct {
	ID       uuid.UUID `json:"id"`
	OptionID uuid.UUID `json:"optionId"`
	Option   string    `json:"option"`
	Category string    `json:"category"`
	Version  *string   `json:"version,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

type ProductSummary struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Product   string    `json:"product"`
	Quantity  int       `json:"quantity"`
	SortOrder int       `json:"sortOrder"`
}

type CNAESummary struct {
	ID          uuid.UUID `json:"id"`
	CNAEID      uuid.UUID `json:"cnaeId"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	IsPrimary   bool      `json:"isPrimary"`
}

type DealSummary struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	ValueCents int64      `json:"valueCents"`
	StageID    *uuid.UUID `json:"stageId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type OrganizationDetailsResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Contacts     []ContactSummary     `json:"contacts"`
	TechProfiles []TechProfileSummary `json:"techProfiles"`
	Products     []ProductSummary     `json:"products"`
	CNAEs        []CNAESummary        `json:"cnaes"`
	Deals        []DealSummary        `json:"deals"`
}

func DetailsFromModel(d service.Details) OrganizationDetailsResponse {
	resp := OrganizationDetailsResponse{
		Organization: OrganizationFromModel(d.Organization),
		Contacts:     make([]ContactSummary, 0, len(d.Contacts)),
		TechProfiles: make([]TechProfileSummary, 0, len(d.TechProfiles)),
		Products:     make([]ProductSummary, 0, len(d.Products)),
		CNAEs:        make([]CNAESummary, 0, len(d.CNAEs)),
		Deals:        make([]DealSummary, 0, len(d.Deals)),
	}
	for _, c := range d.Contacts {
		resp.Contacts = append(resp.Contacts, ContactSummary{
			ID: c.ID, FirstName: c.FirstName, LastName: c.LastName,
			JobTitle: c.JobTitle, Email: c.Email, Phone: c.Phone,
			IsPrimary: c.IsPrimary, CreatedAt: c.CreatedAt,
		})
	}
	for _, p := range d.TechProfiles {
		resp.TechProfiles = append(resp.TechProfiles, TechProfileSummary{
			ID: p.ID, OptionID: p.OptionID, Option: p.Option,
			Category: p.Category, Version: p.Version, Notes: p.Notes,
		})
	}
	for _, p := range d.Products {
		resp.Products = append(resp.Products, ProductSummary{
			ID: p.ID, ProductID: p.ProductID, Product: p.Product,
			Quantity: p.Quantity, SortOrder: p.SortOrder,
		})
	}
	for _, c := range d.CNAEs {
		resp.CNAEs = append(resp.CNAEs, CNAESummary{
			ID: c.ID, CNAEID: c.CNAEID, Code: c.Code,
			Description: c.Description, IsPrimary: c.IsPrimary,
		})
	}
	for _, deal := range d.Deals {
		resp.Deals = append(resp.Deals, DealSummary{
			ID: deal.ID, Title: deal.Title, Status: deal.Status,
			ValueCents: deal.ValueCents, StageID: deal.StageID, CreatedAt: deal.CreatedAt,
		})
	}
	return resp
}
