package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/activities/repository"
	"pipeline_crm_backend/internal/scheduler"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/logger"
)

// ActivityTypes lists the accepted activity kinds.
var ActivityTypes = map[string]bool{
	"call":    true,
	"email":   true,
	"meeting": true,
	"task":    true,
}

// Service implements activity (task) management with optional reminders
// dispatched through the background job queue.
type Service struct {
	repo      *repository.Repository
	reminders scheduler.ReminderScheduler
	log       *logger.Logger
}

func New(repo *repository.Repository, reminders scheduler.ReminderScheduler, log *logger.Logger) *Service {
	return &Service{repo: repo, reminders: reminders, log: log}
}

type CreateInput struct {
	Type           string
	Subject        string
	Notes          *string
	LeadID         *uuid.UUID
	OrganizationID *uuid.UUID
	DealID         *uuid.UUID
	ContactID      *uuid.UUID
	DueAt          *time.Time
	RemindAt       *time.Time
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input CreateInput) (repository.Activity, error) {
	if !ActivityTypes[input.Type] {
		return repository.Activity{}, apperr.Validation("unknown activity type")
	}
	if input.RemindAt != nil && input.RemindAt.Before(time.Now()) {
		return repository.Activity{}, apperr.Validation("reminder time must be in the future")
	}

	activity, err := s.repo.Create(ctx, repository.CreateParams{
		Type:           input.Type,
		Subject:        input.Subject,
		Notes:          input.Notes,
		LeadID:         input.LeadID,
		OrganizationID: input.OrganizationID,
		DealID:         input.DealID,
		ContactID:      input.ContactID,
		OwnerID:        actor.ID,
		DueAt:          input.DueAt,
		RemindAt:       input.RemindAt,
	})
	if err != nil {
		return repository.Activity{}, mapErr(err)
	}

	s.scheduleReminder(ctx, activity)
	return activity, nil
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Activity, error) {
	activity, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Activity{}, mapErr(err)
	}
	return activity, nil
}

func (s *Service) List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Activity, int, error) {
	return s.repo.List(ctx, actor, params)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateParams) (repository.Activity, error) {
	if !ActivityTypes[params.Type] {
		return repository.Activity{}, apperr.Validation("unknown activity type")
	}
	activity, err := s.repo.Update(ctx, actor, id, params)
	if err != nil {
		return repository.Activity{}, mapErr(err)
	}
	s.scheduleReminder(ctx, activity)
	return activity, nil
}

func (s *Service) Complete(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Activity, error) {
	activity, err := s.repo.Complete(ctx, actor, id)
	if err != nil {
		return repository.Activity{}, mapErr(err)
	}
	return activity, nil
}

func (s *Service) Reopen(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Activity, error) {
	activity, err := s.repo.Reopen(ctx, actor, id)
	if err != nil {
		return repository.Activity{}, mapErr(err)
	}
	return activity, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return mapErr(err)
	}
	return nil
}

// scheduleReminder enqueues the reminder task. Failures are logged instead of
// failing the request: the activity itself has been saved.
func (s *Service) scheduleReminder(ctx context.Context, activity repository.Activity) {
	if s.reminders == nil || activity.RemindAt == nil || activity.ReminderSentAt != nil {
		return
	}
	err := s.reminders.ScheduleActivityReminder(ctx, scheduler.ActivityReminderPayload{
		ActivityID: activity.ID.String(),
		OwnerID:    activity.OwnerID.String(),
	}, *activity.RemindAt)
	if err != nil {
		s.log.Error("failed to schedule activity reminder", "activity_id", activity.ID, "error", err)
	}
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("activity not found")
	case errors.Is(err, repository.ErrBadLink):
		return apperr.Validation("referenced record does not exist")
	}
	return err
}
