package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pipeline_crm_backend/internal/organizations/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
)

// Service implements organization management. Organizations come into
// existence either directly or as the product of a lead conversion.
type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
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
	Notes         *string
	OwnerID       *uuid.UUID
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input CreateInput) (repository.Organization, error) {
	ownerID := actor.ID
	if input.OwnerID != nil {
		if !actor.IsAdmin() && *input.OwnerID != actor.ID {
			return repository.Organization{}, apperr.Forbidden("cannot create an organization for another owner")
		}
		ownerID = *input.OwnerID
	}

	return s.repo.Create(ctx, repository.CreateParams{
		Name:          input.Name,
		LegalName:     input.LegalName,
		Website:       input.Website,
		Email:         input.Email,
		Phone:         input.Phone,
		AddressStreet: input.AddressStreet,
		AddressNumber: input.AddressNumber,
		AddressCity:   input.AddressCity,
		AddressState:  input.AddressState,
		AddressZip:    input.AddressZip,
		Industry:      input.Industry,
		Notes:         input.Notes,
		OwnerID:       ownerID,
	})
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Organization, error) {
	org, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Organization{}, notFoundErr(err)
	}
	return org, nil
}

// Details is the full organization view: the record plus contacts, technology
// profile, product interests, CNAE classifications and deals.
type Details struct {
	Organization repository.Organization
	Contacts     []repository.OrgContact
	TechProfiles []repository.TechProfile
	Products     []repository.ProductLink
	CNAEs        []repository.CNAELink
	Deals        []repository.DealSummary
}

// GetDetails loads the organization and fans out the related collections
// concurrently.
func (s *Service) GetDetails(ctx context.Context, actor access.Actor, id uuid.UUID) (Details, error) {
	org, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return Details{}, notFoundErr(err)
	}

	details := Details{Organization: org}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details.Contacts, err = s.repo.ListContacts(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.TechProfiles, err = s.repo.ListTechProfiles(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.Products, err = s.repo.ListProducts(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.CNAEs, err = s.repo.ListCNAEs(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		details.Deals, err = s.repo.ListDeals(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return Details{}, err
	}
	return details, nil
}

func (s *Service) List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Organization, int, error) {
	return s.repo.List(ctx, actor, params)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateParams) (repository.Organization, error) {
	org, err := s.repo.Update(ctx, actor, id, params)
	if err != nil {
		return repository.Organization{}, notFoundErr(err)
	}
	return org, nil
}

// Delete removes an organization. Only admins may delete, since organizations
// anchor deals and conversion provenance.
func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can delete organizations")
	}
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return notFoundErr(err)
	}
	return nil
}

func notFoundErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("organization not found")
	}
	return err
}
