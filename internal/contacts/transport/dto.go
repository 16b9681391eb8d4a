package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/contacts/repository"
)

// Request DTOs
type CreateContactRequest struct {
	OrganizationID uuid.UUID `json:"organizationId" validate:"required"`
	FirstName      string    `json:"firstName" validate:"required,min=1,max=100"`
	LastName       *string   `json:"lastName" validate:"omitempty,max=100"`
	JobTitle       *string   `json:"jobTitle" validate:"omitempty,max=100"`
	Department     *string   `json:"department" validate:"omitempty,max=100"`
	Email          *string   `json:"email" validate:"omitempty,email"`
	Phone          *string   `json:"phone" validate:"omitempty,max=32"`
	IsPrimary      bool      `json:"isPrimary"`
}

type UpdateContactRequest struct {
	FirstName  string  `json:"firstName" validate:"required,min=1,max=100"`
	LastName   *string `json:"lastName" validate:"omitempty,max=100"`
	JobTitle   *string `json:"jobTitle" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	IsPrimary  bool    `json:"isPrimary"`
}

// Response DTOs
type ContactResponse struct {
	ID                  uuid.UUID  `json:"id"`
	OrganizationID      uuid.UUID  `json:"organizationId"`
	FirstName           string     `json:"firstName"`
	LastName            *string    `json:"lastName,omitempty"`
	JobTitle            *string    `json:"jobTitle,omitempty"`
	Department          *string    `json:"department,omitempty"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	IsPrimary           bool       `json:"isPrimary"`
	OwnerID             uuid.UUID  `json:"ownerId"`
	SourceLeadContactID *uuid.UUID `json:"sourceLeadContactId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func ContactFromModel(c repository.Contact) ContactResponse {
	return ContactResponse{
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
		UpdatedAt:           c.UpdatedAt,
	}
}

type ContactListResponse struct {
	Items []ContactResponse `json:"items"`
	Total int               `json:"total"`
}
