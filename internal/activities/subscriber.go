package activities

import (
	"context"
	"time"

	"pipeline_crm_backend/internal/activities/repository"
	"pipeline_crm_backend/internal/events"
	"pipeline_crm_backend/platform/logger"
)

// followUpDelay is how long after a conversion the follow-up call is due.
const followUpDelay = 48 * time.Hour

// Subscriber reacts to domain events from other modules by creating
// activities for the record owner.
type Subscriber struct {
	repo *repository.Repository
	log  *logger.Logger
}

func NewSubscriber(repo *repository.Repository, log *logger.Logger) *Subscriber {
	return &Subscriber{repo: repo, log: log}
}

// Register attaches the subscriber to the event bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.LeadConverted{}.EventName(), events.HandlerFunc(s.onLeadConverted))
}

// onLeadConverted creates a follow-up call on the new organization so the
// owner contacts the converted account while it is still warm.
func (s *Subscriber) onLeadConverted(ctx context.Context, event events.Event) error {
	converted, ok := event.(events.LeadConverted)
	if !ok {
		return nil
	}

	due := time.Now().Add(followUpDelay)
	_, err := s.repo.Create(ctx, repository.CreateParams{
		Type:           "call",
		Subject:        "Follow-up call with newly converted organization",
		OrganizationID: &converted.OrganizationID,
		OwnerID:        converted.OwnerID,
		DueAt:          &due,
	})
	if err != nil {
		s.log.Error("failed to create conversion follow-up activity",
			"organization_id", converted.OrganizationID, "error", err)
		return err
	}
	return nil
}
