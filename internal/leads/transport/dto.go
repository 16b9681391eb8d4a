package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/leads/repository"
)

// Request DTOs
type CreateLeadRequest struct {
	BusinessName  string     `json:"businessName" validate:"required,min=1,max=200"`
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
	Source        *string    `json:"source" validate:"omitempty,max=100"`
	Notes         *string    `json:"notes" validate:"omitempty,max=2000"`
	OwnerID       *uuid.UUID `json:"ownerId"`
}

type UpdateLeadRequest struct {
	BusinessName  string  `json:"businessName" validate:"required,min=1,max=200"`
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
	Source        *string `json:"source" validate:"omitempty,max=100"`
	Notes         *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified disqualified"`
}

type AssignLeadOwnerRequest struct {
	OwnerID uuid.UUID `json:"owner_id" validate:"required"`
}

type AddContactRequest struct {
	FirstName  string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	JobTitle   *string `json:"jobTitle" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	IsPrimary  bool    `json:"isPrimary"`
}

type AddTechProfileRequest struct {
	OptionID uuid.UUID `json:"optionId" validate:"required"`
	Version  *string   `json:"version" validate:"omitempty,max=50"`
	Notes    *string   `json:"notes" validate:"omitempty,max=500"`
}

type AddProductRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1,max=100000"`
	SortOrder int       `json:"sortOrder" validate:"omitempty,min=0"`
}

type AddCNAERequest struct {
	CNAEID    uuid.UUID `json:"cnaeId" validate:"required"`
	IsPrimary bool      `json:"isPrimary"`
}

type AddICPRequest struct {
	ICPID uuid.UUID `json:"icpId" validate:"required"`
}

// Response DTOs
type LeadResponse struct {
	ID             uuid.UUID  `json:"id"`
	BusinessName   string     `json:"businessName"`
	LegalName      *string    `json:"legalName,omitempty"`
	Website        *string    `json:"website,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	AddressStreet  *string    `json:"addressStreet,omitempty"`
	AddressNumber  *string    `json:"addressNumber,omitempty"`
	AddressCity    *string    `json:"addressCity,omitempty"`
	AddressState   *string    `json:"addressState,omitempty"`
	AddressZip     *string    `json:"addressZip,omitempty"`
	Industry       *string    `json:"industry,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Status         string     `json:"status"`
	Notes          *string    `json:"notes,omitempty"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
	ConvertedAt    *time.Time `json:"convertedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func LeadFromModel(l repository.Lead) LeadResponse {
	return LeadResponse{
		ID:             l.ID,
		BusinessName:   l.BusinessName,
		LegalName:      l.LegalName,
		Website:        l.Website,
		Email:          l.Email,
		Phone:          l.Phone,
		AddressStreet:  l.AddressStreet,
		AddressNumber:  l.AddressNumber,
		AddressCity:    l.AddressCity,
		AddressState:   l.AddressState,
		AddressZip:     l.AddressZip,
		Industry:       l.Industry,
		Source:         l.Source,
		Status:         l.Status,
		Notes:          l.Notes,
		OwnerID:        l.OwnerID,
		OrganizationID: l.OrganizationID,
		ConvertedAt:    l.ConvertedAt,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type LeadContactResponse struct {
	ID                   uuid.UUID  `json:"id"`
	LeadID               uuid.UUID  `json:"leadId"`
	FirstName            string     `json:"firstName"`
	LastName             *string    `json:"lastName,omitempty"`
	JobTitle             *string    `json:"jobTitle,omitempty"`
	Department           *string    `json:"department,omitempty"`
	Email                *string    `json:"email,omitempty"`
	Phone                *string    `json:"phone,omitempty"`
	IsPrimary            bool       `json:"isPrimary"`
	ConvertedToContactID *uuid.UUID `json:"convertedToContactId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

func LeadContactFromModel(c repository.LeadContact) LeadContactResponse {
	return LeadContactResponse{
		ID:                   c.ID,
		LeadID:               c.LeadID,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		JobTitle:             c.JobTitle,
		Department:           c.Department,
		Email:                c.Email,
		Phone:                c.Phone,
		IsPrimary:            c.IsPrimary,
		ConvertedToContactID: c.ConvertedToContactID,
		CreatedAt:            c.CreatedAt,
	}
}

type TechProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	OptionID  uuid.UUID `json:"optionId"`
	Option    string    `json:"option,omitempty"`
	Category  string    `json:"category,omitempty"`
	Version   *string   `json:"version,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ProductLinkResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Product   string    `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

type CNAELinkResponse struct {
	ID          uuid.UUID `json:"id"`
	CNAEID      uuid.UUID `json:"cnaeId"`
	Code        string    `json:"code,omitempty"`
	Description string    `json:"description,omitempty"`
	IsPrimary   bool      `json:"isPrimary"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ICPLinkResponse struct {
	ID        uuid.UUID `json:"id"`
	ICPID     uuid.UUID `json:"icpId"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversionResponse is the payload returned by a successful conversion.
type ConversionResponse struct {
	Organization OrganizationResponse `json:"organization"`
	Contacts     []ContactResponse    `json:"contacts"`
}

type OrganizationResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	LegalName     *string   `json:"legalName,omitempty"`
	Website       *string   `json:"website,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	AddressStreet *string   `json:"addressStreet,omitempty"`
	AddressNumber *string   `json:"addressNumber,omitempty"`
	AddressCity   *string   `json:"addressCity,omitempty"`
	AddressState  *string   `json:"addressState,omitempty"`
	AddressZip    *string   `json:"addressZip,omitempty"`
	Industry      *string   `json:"industry,omitempty"`
	OwnerID       uuid.UUID `json:"ownerId"`
	SourceLeadID  uuid.UUID `json:"sourceLeadId"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ContactResponse struct {
	ID                  uuid.UUID `json:"id"`
	OrganizationID      uuid.UUID `json:"organizationId"`
	FirstName           string    `json:"firstName"`
	LastName            *string   `json:"lastName,omitempty"`
	JobTitle            *string   `json:"jobTitle,omitempty"`
	Department          *string   `json:"department,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Phone               *string   `json:"phone,omitempty"`
	IsPrimary           bool      `json:"isPrimary"`
	OwnerID             uuid.UUID `json:"ownerId"`
	SourceLeadContactID uuid.UUID `json:"sourceLeadContactId"`
	CreatedAt           time.Time `json:"createdAt"`
}

func ConversionFromModel(org repository.Organization, contacts []repository.Contact) ConversionResponse {
	resp := ConversionResponse{
		Organization: OrganizationResponse{
			ID:            org.ID,
			Name:          org.Name,
			LegalName:     org.LegalName,
			Website:       org.Website,
			Email:         org.Email,
			Phone:         org.Phone,
			AddressStreet: org.AddressStreet,
			AddressNumber: org.AddressNumber,
			AddressCity:   org.AddressCity,
			AddressState:  org.AddressState,
			AddressZip:    org.AddressZip,
			Industry:      org.Industry,
			OwnerID:       org.OwnerID,
			SourceLeadID:  org.SourceLeadID,
			CreatedAt:     org.CreatedAt,
		},
		Contacts: make([]ContactResponse, 0, len(contacts)),
	}
	for _, c := range contacts {
		resp.Contacts = append(resp.Contacts, ContactResponse{
			ID:                  c.ID,
			OrganizationID:      c.OrganizationID,
			FirstName:           c.FirstName,
			LastName:            c.LastName,
			JobTitle:            c.JobTitle,
			Department:          c.Department,
			Email:               c.Email,
			Phone:               c.Phone,
			IsPrimary:           c.IsPrimary,
			OwnerID:             c.OwnerID,
			SourceLeadContactID: c.SourceLeadContactID,
			CreatedAt:           c.CreatedAt,
		})
	}
	return resp
}
