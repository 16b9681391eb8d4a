package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/events"
	"pipeline_crm_backend/internal/leads/domain"
	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/logger"
)

// Conversion failure modes. Each carries the HTTP semantics callers map it to.
var (
	ErrLeadNotFound     = apperr.NotFound("lead not found")
	ErrAlreadyConverted = apperr.Conflict("lead has already been converted")
	ErrLeadDisqualified = apperr.Validation("a disqualified lead cannot be converted")
	ErrNoContacts       = apperr.Validation("lead has no contacts to convert")
)

// ConversionStore runs a conversion transaction. The production implementation
// wraps a Postgres transaction with retry on transient serialization failures.
type ConversionStore interface {
	InTx(ctx context.Context, fn func(tx repository.ConvertTx) error) error
	GetLead(ctx context.Context, id uuid.UUID) (repository.Lead, error)
}

// ConversionResult is the organization and contacts produced by a conversion.
// Contacts preserve the creation order of the lead contacts they came from.
type ConversionResult struct {
	Organization repository.Organization
	Contacts     []repository.Contact
}

// ConversionService turns a qualified lead into an organization with contacts.
// The whole transfer is atomic: either the organization, every contact and
// every copied catalog link exist and the lead is marked converted, or nothing
// changed.
type ConversionService struct {
	store ConversionStore
	bus   events.Bus
	log   *logger.Logger
	now   func() time.Time
}

func NewConversion(store ConversionStore, bus events.Bus, log *logger.Logger) *ConversionService {
	return &ConversionService{store: store, bus: bus, log: log, now: time.Now}
}

// Convert executes the lead-to-organization conversion workflow.
//
// Eligibility is checked twice: once up front on a plain read, and again
// inside the transaction after taking a row lock on the lead, so two
// concurrent conversions of the same lead cannot both succeed.
func (s *ConversionService) Convert(ctx context.Context, actor access.Actor, leadID uuid.UUID) (ConversionResult, error) {
	lead, err := s.store.GetLead(ctx, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ConversionResult{}, ErrLeadNotFound
		}
		return ConversionResult{}, err
	}
	if err := checkEligibility(actor, lead); err != nil {
		return ConversionResult{}, err
	}

	var result ConversionResult
	err = s.store.InTx(ctx, func(tx repository.ConvertTx) error {
		lead, err := tx.LeadForUpdate(ctx, leadID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrLeadNotFound
			}
			return err
		}
		if err := checkEligibility(actor, lead); err != nil {
			return err
		}

		leadContacts, err := tx.UnconvertedContacts(ctx, leadID)
		if err != nil {
			return err
		}
		if len(leadContacts) == 0 {
			return ErrNoContacts
		}

		org, err := tx.InsertOrganization(ctx, organizationFromLead(lead))
		if err != nil {
			return err
		}

		contacts := make([]repository.Contact, 0, len(leadContacts))
		for _, lc := range leadContacts {
			contact, err := tx.InsertContact(ctx, contactFromLeadContact(lc, org.ID, lead.OwnerID))
			if err != nil {
				return err
			}
			if err := tx.MarkContactConverted(ctx, lc.ID, contact.ID); err != nil {
				return err
			}
			contacts = append(contacts, contact)
		}

		if err := s.copyLinks(ctx, tx, leadID, org.ID); err != nil {
			return err
		}

		if err := tx.MarkLeadConverted(ctx, leadID, org.ID, s.now()); err != nil {
			return err
		}

		result = ConversionResult{Organization: org, Contacts: contacts}
		return nil
	})
	if err != nil {
		return ConversionResult{}, err
	}

	s.log.Info("lead converted",
		"lead_id", leadID,
		"organization_id", result.Organization.ID,
		"contacts", len(result.Contacts),
	)
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         leadID,
		OrganizationID: result.Organization.ID,
		OwnerID:        result.Organization.OwnerID,
		ContactIDs:     contactIDs(result.Contacts),
	})

	return result, nil
}

// copyLinks carries the lead's technology profile, product interests and CNAE
// classifications over to the new organization.
func (s *ConversionService) copyLinks(ctx context.Context, tx repository.ConvertTx, leadID, orgID uuid.UUID) error {
	profiles, err := tx.TechProfiles(ctx, leadID)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := tx.InsertOrgTechProfile(ctx, orgID, p.OptionID, p.Version, p.Notes); err != nil {
			return err
		}
	}

	products, err := tx.Products(ctx, leadID)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := tx.InsertOrgProduct(ctx, orgID, p.ProductID, p.Quantity, p.SortOrder); err != nil {
			return err
		}
	}

	cnaes, err := tx.CNAEs(ctx, leadID)
	if err != nil {
		return err
	}
	for _, c := range cnaes {
		if err := tx.InsertOrgCNAE(ctx, orgID, c.CNAEID, c.IsPrimary); err != nil {
			return err
		}
	}
	return nil
}

// checkEligibility validates that the actor may convert the lead right now.
// A lead the actor cannot see reports as not found rather than forbidden.
func checkEligibility(actor access.Actor, lead repository.Lead) error {
	if !actor.CanActOn(lead.OwnerID) {
		return ErrLeadNotFound
	}
	if lead.ConvertedAt != nil {
		return ErrAlreadyConverted
	}
	if domain.Status(lead.Status) == domain.StatusDisqualified {
		return ErrLeadDisqualified
	}
	return nil
}

func organizationFromLead(lead repository.Lead) repository.CreateOrganizationParams {
	return repository.CreateOrganizationParams{
		Name:          lead.BusinessName,
		LegalName:     lead.LegalName,
		Website:       lead.Website,
		Email:         lead.Email,
		Phone:         lead.Phone,
		AddressStreet: lead.AddressStreet,
		AddressNumber: lead.AddressNumber,
		AddressCity:   lead.AddressCity,
		AddressState:  lead.AddressState,
		AddressZip:    lead.AddressZip,
		Industry:      lead.Industry,
		OwnerID:       lead.OwnerID,
		SourceLeadID:  lead.ID,
	}
}

func contactFromLeadContact(lc repository.LeadContact, orgID, ownerID uuid.UUID) repository.CreateOrgContactParams {
	return repository.CreateOrgContactParams{
		OrganizationID:      orgID,
		FirstName:           lc.FirstName,
		LastName:            lc.LastName,
		JobTitle:            lc.JobTitle,
		Department:          lc.Department,
		Email:               lc.Email,
		Phone:               lc.Phone,
		IsPrimary:           lc.IsPrimary,
		OwnerID:             ownerID,
		SourceLeadContactID: lc.ID,
	}
}

func contactIDs(contacts []repository.Contact) []uuid.UUID {
	ids := make([]uuid.UUID, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}
	return ids
}
