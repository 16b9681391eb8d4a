package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/contacts/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/phone"
)

// Service implements contact management for organizations. Contacts created
// by lead conversion carry a source_lead_contact_id and are managed here the
// same as directly created ones.
type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	OrganizationID uuid.UUID
	FirstName      string
	LastName       *string
	JobTitle       *string
	Department     *string
	Email          *string
	Phone          *string
	IsPrimary      bool
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input CreateInput) (repository.Contact, error) {
	contact, err := s.repo.Create(ctx, repository.CreateParams{
		OrganizationID: input.OrganizationID,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		JobTitle:       input.JobTitle,
		Department:     input.Department,
		Email:          input.Email,
		Phone:          normalizedPhone(input.Phone),
		IsPrimary:      input.IsPrimary,
		OwnerID:        actor.ID,
	})
	if err != nil {
		return repository.Contact{}, mapErr(err)
	}
	return contact, nil
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Contact, error) {
	contact, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Contact{}, mapErr(err)
	}
	return contact, nil
}

func (s *Service) List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Contact, int, error) {
	return s.repo.List(ctx, actor, params)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateParams) (repository.Contact, error) {
	params.Phone = normalizedPhone(params.Phone)
	contact, err := s.repo.Update(ctx, actor, id, params)
	if err != nil {
		return repository.Contact{}, mapErr(err)
	}
	return contact, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return mapErr(err)
	}
	return nil
}

func normalizedPhone(p *string) *string {
	if p == nil || *p == "" {
		return p
	}
	normalized := phone.NormalizeE164(*p)
	return &normalized
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("contact not found")
	case errors.Is(err, repository.ErrUnknownOrg):
		return apperr.Validation("organization does not exist")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict("a contact with this email already exists in the organization")
	}
	return err
}
