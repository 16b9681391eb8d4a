package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/activities/repository"
)

// Request DTOs
type CreateActivityRequest struct {
	Type           string     `json:"type" validate:"required,oneof=call email meeting task"`
	Subject        string     `json:"subject" validate:"required,min=1,max=200"`
	Notes          *string    `json:"notes" validate:"omitempty,max=2000"`
	LeadID         *uuid.UUID `json:"leadId"`
	OrganizationID *uuid.UUID `json:"organizationId"`
	DealID         *uuid.UUID `json:"dealId"`
	ContactID      *uuid.UUID `json:"contactId"`
	DueAt          *time.Time `json:"dueAt"`
	RemindAt       *time.Time `json:"remindAt"`
}

type UpdateActivityRequest struct {
	Type     string     `json:"type" validate:"required,oneof=call email meeting task"`
	Subject  string     `json:"subject" validate:"required,min=1,max=200"`
	Notes    *string    `json:"notes" validate:"omitempty,max=2000"`
	DueAt    *time.Time `json:"dueAt"`
	RemindAt *time.Time `json:"remindAt"`
}

// Response DTOs
type ActivityResponse struct {
	ID             uuid.UUID  `json:"id"`
	Type           string     `json:"type"`
	Subject        string     `json:"subject"`
	Notes          *string    `json:"notes,omitempty"`
	LeadID         *uuid.UUID `json:"leadId,omitempty"`
	OrganizationID *uuid.UUID `json:"organizationId,omitempty"`
	DealID         *uuid.UUID `json:"dealId,omitempty"`
	ContactID      *uuid.UUID `json:"contactId,omitempty"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	DueAt          *time.Time `json:"dueAt,omitempty"`
	RemindAt       *time.Time `json:"remindAt,omitempty"`
	ReminderSentAt *time.Time `json:"reminderSentAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func ActivityFromModel(a repository.Activity) ActivityResponse {
	return ActivityResponse{
		ID:             a.ID,
		Type:           a.Type,
		Subject:        a.Subject,
		Notes:          a.Notes,
		LeadID:         a.LeadID,
		OrganizationID: a.OrganizationID,
		DealID:         a.DealID,
		ContactID:      a.ContactID,
		OwnerID:        a.OwnerID,
		DueAt:          a.DueAt,
		RemindAt:       a.RemindAt,
		ReminderSentAt: a.ReminderSentAt,
		CompletedAt:    a.CompletedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
	Total int                `json:"total"`
}
