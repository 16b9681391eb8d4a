// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"pipeline_crm_backend/platform/events"
	"pipeline_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = func(log *logger.Logger) *InMemoryBus { return events.NewInMemoryBus(log) }
)

// =============================================================================
// Auth Domain Events
// =============================================================================

// PasswordResetRequested is published when a user requests a password reset.
type PasswordResetRequested struct {
	BaseEvent
	UserID     uuid.UUID `json:"userId"`
	Email      string    `json:"email"`
	ResetToken string    `json:"resetToken"`
}

func (e PasswordResetRequested) EventName() string { return "auth.password.reset_requested" }

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is created.
type LeadCreated struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	OwnerID      uuid.UUID `json:"ownerId"`
	BusinessName string    `json:"businessName"`
	Source       string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadConverted is published after a lead has been atomically converted into
// an organization. It fires outside the conversion transaction, after commit.
type LeadConverted struct {
	BaseEvent
	LeadID         uuid.UUID   `json:"leadId"`
	OrganizationID uuid.UUID   `json:"organizationId"`
	OwnerID        uuid.UUID   `json:"ownerId"`
	ContactIDs     []uuid.UUID `json:"contactIds"`
}

func (e LeadConverted) EventName() string { return "leads.lead.converted" }

// =============================================================================
// Deals Domain Events
// =============================================================================

// DealWon is published when a deal transitions to the won status.
type DealWon struct {
	BaseEvent
	DealID         uuid.UUID `json:"dealId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	OwnerID        uuid.UUID `json:"ownerId"`
	ValueCents     int64     `json:"valueCents"`
}

func (e DealWon) EventName() string { return "deals.deal.won" }
