package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/events"
	"pipeline_crm_backend/internal/leads/domain"
	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/phone"
)

// Store is the lead persistence surface the service works against. The
// production implementation is the pgx-backed repository.
type Store interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	GetForActor(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Lead, int, error)
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, status string) (repository.Lead, error)
	UpdateOwner(ctx context.Context, id, ownerID uuid.UUID) (repository.Lead, error)
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error

	AddContact(ctx context.Context, params repository.AddContactParams) (repository.LeadContact, error)
	ListContacts(ctx context.Context, leadID uuid.UUID) ([]repository.LeadContact, error)
	RemoveContact(ctx context.Context, leadID, contactID uuid.UUID) error

	AddTechProfile(ctx context.Context, leadID, optionID uuid.UUID, version, notes *string) (repository.LeadTechProfile, error)
	ListTechProfiles(ctx context.Context, leadID uuid.UUID) ([]repository.LeadTechProfile, error)
	RemoveTechProfile(ctx context.Context, leadID, profileID uuid.UUID) error
	AddProduct(ctx context.Context, leadID, productID uuid.UUID, quantity, sortOrder int) (repository.LeadProduct, error)
	ListProducts(ctx context.Context, leadID uuid.UUID) ([]repository.LeadProduct, error)
	RemoveProduct(ctx context.Context, leadID, linkID uuid.UUID) error
	AddCNAE(ctx context.Context, leadID, cnaeID uuid.UUID, isPrimary bool) (repository.LeadCNAE, error)
	ListCNAEs(ctx context.Context, leadID uuid.UUID) ([]repository.LeadCNAE, error)
	RemoveCNAE(ctx context.Context, leadID, linkID uuid.UUID) error
	AddICP(ctx context.Context, leadID, icpID uuid.UUID) (repository.LeadICP, error)
	ListICPs(ctx context.Context, leadID uuid.UUID) ([]repository.LeadICP, error)
	RemoveICP(ctx context.Context, leadID, linkID uuid.UUID) error
}

// Service implements lead management: capture, qualification, contacts and
// the catalog links (technology, products, CNAE) that feed conversion.
type Service struct {
	repo Store
	bus  events.Bus
}

func New(repo Store, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

type CreateLeadInput struct {
	BusinessName  string
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
	Source        *string
	Notes         *string
	OwnerID       *uuid.UUID
}

func (s *Service) Create(ctx context.Context, actor access.Actor, input CreateLeadInput) (repository.Lead, error) {
	ownerID := actor.ID
	if input.OwnerID != nil {
		if !actor.IsAdmin() && *input.OwnerID != actor.ID {
			return repository.Lead{}, apperr.Forbidden("cannot create a lead for another owner")
		}
		ownerID = *input.OwnerID
	}

	params := repository.CreateLeadParams{
		BusinessName:  input.BusinessName,
		LegalName:     input.LegalName,
		Website:       input.Website,
		Email:         input.Email,
		Phone:         normalizedPhone(input.Phone),
		AddressStreet: input.AddressStreet,
		AddressNumber: input.AddressNumber,
		AddressCity:   input.AddressCity,
		AddressState:  input.AddressState,
		AddressZip:    input.AddressZip,
		Industry:      input.Industry,
		Source:        input.Source,
		Notes:         input.Notes,
		OwnerID:       ownerID,
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return repository.Lead{}, err
	}

	source := ""
	if lead.Source != nil {
		source = *lead.Source
	}
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		OwnerID:      lead.OwnerID,
		BusinessName: lead.BusinessName,
		Source:       source,
	})

	return lead, nil
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Lead, int, error) {
	if params.Status != nil && !domain.Status(*params.Status).Valid() {
		return nil, 0, apperr.Validation("unknown lead status")
	}
	return s.repo.List(ctx, actor, params)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	if err := s.requireEditable(ctx, actor, id); err != nil {
		return repository.Lead{}, err
	}
	params.Phone = normalizedPhone(params.Phone)
	lead, err := s.repo.Update(ctx, actor, id, params)
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	return lead, nil
}

func (s *Service) UpdateStatus(ctx context.Context, actor access.Actor, id uuid.UUID, status domain.Status) (repository.Lead, error) {
	if !status.Valid() {
		return repository.Lead{}, apperr.Validation("unknown lead status")
	}
	current, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	if current.ConvertedAt != nil {
		return repository.Lead{}, apperr.Conflict("a converted lead can no longer change status")
	}
	if !domain.CanTransition(domain.Status(current.Status), status) {
		return repository.Lead{}, apperr.Validation("invalid status transition from " + current.Status + " to " + string(status))
	}
	lead, err := s.repo.UpdateStatus(ctx, actor, id, string(status))
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	return lead, nil
}

// AssignOwner reassigns an unconverted lead to another user. Admin only.
func (s *Service) AssignOwner(ctx context.Context, actor access.Actor, id, ownerID uuid.UUID) (repository.Lead, error) {
	if !actor.IsAdmin() {
		return repository.Lead{}, apperr.Forbidden("only admins can reassign leads")
	}
	current, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	if current.ConvertedAt != nil {
		return repository.Lead{}, apperr.Conflict("a converted lead can no longer be reassigned")
	}
	lead, err := s.repo.UpdateOwner(ctx, id, ownerID)
	if err != nil {
		return repository.Lead{}, notFoundErr(err)
	}
	return lead, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return notFoundErr(err)
	}
	return nil
}

func (s *Service) AddContact(ctx context.Context, actor access.Actor, params repository.AddContactParams) (repository.LeadContact, error) {
	lead, err := s.repo.GetForActor(ctx, actor, params.LeadID)
	if err != nil {
		return repository.LeadContact{}, notFoundErr(err)
	}
	if lead.ConvertedAt != nil {
		return repository.LeadContact{}, apperr.Conflict("cannot add contacts to a converted lead")
	}
	params.Phone = normalizedPhone(params.Phone)
	return s.repo.AddContact(ctx, params)
}

func (s *Service) ListContacts(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]repository.LeadContact, error) {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.repo.ListContacts(ctx, leadID)
}

func (s *Service) RemoveContact(ctx context.Context, actor access.Actor, leadID, contactID uuid.UUID) error {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return notFoundErr(err)
	}
	if err := s.repo.RemoveContact(ctx, leadID, contactID); err != nil {
		return notFoundErr(err)
	}
	return nil
}

func (s *Service) AddTechProfile(ctx context.Context, actor access.Actor, leadID, optionID uuid.UUID, version, notes *string) (repository.LeadTechProfile, error) {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return repository.LeadTechProfile{}, err
	}
	profile, err := s.repo.AddTechProfile(ctx, leadID, optionID, version, notes)
	if err != nil {
		return repository.LeadTechProfile{}, linkErr(err)
	}
	return profile, nil
}

func (s *Service) ListTechProfiles(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]repository.LeadTechProfile, error) {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.repo.ListTechProfiles(ctx, leadID)
}

func (s *Service) RemoveTechProfile(ctx context.Context, actor access.Actor, leadID, profileID uuid.UUID) error {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return err
	}
	return notFoundOrNil(s.repo.RemoveTechProfile(ctx, leadID, profileID))
}

func (s *Service) AddProduct(ctx context.Context, actor access.Actor, leadID, productID uuid.UUID, quantity, sortOrder int) (repository.LeadProduct, error) {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return repository.LeadProduct{}, err
	}
	if quantity < 1 {
		quantity = 1
	}
	product, err := s.repo.AddProduct(ctx, leadID, productID, quantity, sortOrder)
	if err != nil {
		return repository.LeadProduct{}, linkErr(err)
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]repository.LeadProduct, error) {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.repo.ListProducts(ctx, leadID)
}

func (s *Service) RemoveProduct(ctx context.Context, actor access.Actor, leadID, linkID uuid.UUID) error {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return err
	}
	return notFoundOrNil(s.repo.RemoveProduct(ctx, leadID, linkID))
}

func (s *Service) AddCNAE(ctx context.Context, actor access.Actor, leadID, cnaeID uuid.UUID, isPrimary bool) (repository.LeadCNAE, error) {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return repository.LeadCNAE{}, err
	}
	link, err := s.repo.AddCNAE(ctx, leadID, cnaeID, isPrimary)
	if err != nil {
		return repository.LeadCNAE{}, linkErr(err)
	}
	return link, nil
}

func (s *Service) ListCNAEs(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]repository.LeadCNAE, error) {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.repo.ListCNAEs(ctx, leadID)
}

func (s *Service) RemoveCNAE(ctx context.Context, actor access.Actor, leadID, linkID uuid.UUID) error {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return err
	}
	return notFoundOrNil(s.repo.RemoveCNAE(ctx, leadID, linkID))
}

func (s *Service) AddICP(ctx context.Context, actor access.Actor, leadID, icpID uuid.UUID) (repository.LeadICP, error) {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return repository.LeadICP{}, err
	}
	link, err := s.repo.AddICP(ctx, leadID, icpID)
	if err != nil {
		return repository.LeadICP{}, linkErr(err)
	}
	return link, nil
}

func (s *Service) ListICPs(ctx context.Context, actor access.Actor, leadID uuid.UUID) ([]repository.LeadICP, error) {
	if _, err := s.repo.GetForActor(ctx, actor, leadID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.repo.ListICPs(ctx, leadID)
}

func (s *Service) RemoveICP(ctx context.Context, actor access.Actor, leadID, linkID uuid.UUID) error {
	if err := s.requireEditable(ctx, actor, leadID); err != nil {
		return err
	}
	return notFoundOrNil(s.repo.RemoveICP(ctx, leadID, linkID))
}

// requireEditable checks the actor can see the lead and that it has not been
// converted yet.
func (s *Service) requireEditable(ctx context.Context, actor access.Actor, leadID uuid.UUID) error {
	lead, err := s.repo.GetForActor(ctx, actor, leadID)
	if err != nil {
		return notFoundErr(err)
	}
	if lead.ConvertedAt != nil {
		return apperr.Conflict("cannot modify a converted lead")
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

func notFoundErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("lead not found")
	case errors.Is(err, repository.ErrContactNotFound):
		return apperr.NotFound("lead contact not found")
	case errors.Is(err, repository.ErrUnknownOwner):
		return apperr.Validation("owner user does not exist")
	}
	return err
}

func notFoundOrNil(err error) error {
	if err == nil {
		return nil
	}
	return notFoundErr(err)
}

func linkErr(err error) error {
	if errors.Is(err, repository.ErrLinkExists) {
		return apperr.Conflict("already linked to this lead")
	}
	return err
}
