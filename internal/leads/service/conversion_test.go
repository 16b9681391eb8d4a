package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline_crm_backend/internal/events"
	"pipeline_crm_backend/internal/leads/domain"
	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
	"pipeline_crm_backend/platform/logger"
)

// fakeStore is an in-memory ConversionStore. Writes inside a transaction are
// staged and only applied when the transaction function returns nil, so tests
// can assert rollback semantics.
type fakeStore struct {
	lead     repository.Lead
	contacts []repository.LeadContact
	tech     []repository.LeadTechProfile
	products []repository.LeadProduct
	cnaes    []repository.LeadCNAE

	orgs        []repository.Organization
	orgContacts []repository.Contact
	orgTech     []orgTechRow
	orgProducts []orgProductRow
	orgCNAEs    []orgCNAERow

	txCount int
	failOn  string
}

type orgTechRow struct {
	orgID, optionID uuid.UUID
	version, notes  *string
}

type orgProductRow struct {
	orgID, productID    uuid.UUID
	quantity, sortOrder int
}

type orgCNAERow struct {
	orgID, cnaeID uuid.UUID
	isPrimary     bool
}

func (s *fakeStore) GetLead(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	if s.lead.ID != id {
		return repository.Lead{}, repository.ErrNotFound
	}
	return s.lead, nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(tx repository.ConvertTx) error) error {
	s.txCount++
	tx := &fakeTx{store: s, staged: &stagedWrites{}}
	if err := fn(tx); err != nil {
		return err
	}
	tx.staged.apply(s)
	return nil
}

type stagedWrites struct {
	orgs             []repository.Organization
	contacts         []repository.Contact
	contactMarks     map[uuid.UUID]uuid.UUID
	tech             []orgTechRow
	products         []orgProductRow
	cnaes            []orgCNAERow
	convertedLeadID  uuid.UUID
	convertedOrgID   uuid.UUID
	convertedAt      time.Time
	leadWasConverted bool
}

func (w *stagedWrites) apply(s *fakeStore) {
	s.orgs = append(s.orgs, w.orgs...)
	s.orgContacts = append(s.orgContacts, w.contacts...)
	s.orgTech = append(s.orgTech, w.tech...)
	s.orgProducts = append(s.orgProducts, w.products...)
	s.orgCNAEs = append(s.orgCNAEs, w.cnaes...)
	for i := range s.contacts {
		if id, ok := w.contactMarks[s.contacts[i].ID]; ok {
			converted := id
			s.contacts[i].ConvertedToContactID = &converted
		}
	}
	if w.leadWasConverted && s.lead.ID == w.convertedLeadID {
		at := w.convertedAt
		org := w.convertedOrgID
		s.lead.ConvertedAt = &at
		s.lead.OrganizationID = &org
	}
}

type fakeTx struct {
	store  *fakeStore
	staged *stagedWrites
}

func (t *fakeTx) LeadForUpdate(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	if t.store.lead.ID != id {
		return repository.Lead{}, repository.ErrNotFound
	}
	return t.store.lead, nil
}

func (t *fakeTx) UnconvertedContacts(_ context.Context, leadID uuid.UUID) ([]repository.LeadContact, error) {
	out := make([]repository.LeadContact, 0)
	for _, c := range t.store.contacts {
		if c.LeadID == leadID && c.ConvertedToContactID == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (t *fakeTx) TechProfiles(_ context.Context, leadID uuid.UUID) ([]repository.LeadTechProfile, error) {
	return t.store.tech, nil
}

func (t *fakeTx) Products(_ context.Context, leadID uuid.UUID) ([]repository.LeadProduct, error) {
	return t.store.products, nil
}

func (t *fakeTx) CNAEs(_ context.Context, leadID uuid.UUID) ([]repository.LeadCNAE, error) {
	return t.store.cnaes, nil
}

func (t *fakeTx) InsertOrganization(_ context.Context, params repository.CreateOrganizationParams) (repository.Organization, error) {
	if t.store.failOn == "insertOrganization" {
		return repository.Organization{}, errors.New("insert failed")
	}
	org := repository.Organization{
		ID:            uuid.New(),
		Name:          params.Name,
		LegalName:     params.LegalName,
		Website:       params.Website,
		Email:         params.Email,
		Phone:         params.Phone,
		AddressStreet: params.AddressStreet,
		AddressNumber: params.AddressNumber,
		AddressCity:   params.AddressCity,
		AddressState:  params.AddressState,
		AddressZip:    params.AddressZip,
		Industry:      params.Industry,
		OwnerID:       params.OwnerID,
		SourceLeadID:  params.SourceLeadID,
		CreatedAt:     time.Now(),
	}
	t.staged.orgs = append(t.staged.orgs, org)
	return org, nil
}

func (t *fakeTx) InsertContact(_ context.Context, params repository.CreateOrgContactParams) (repository.Contact, error) {
	if t.store.failOn == "insertContact" {
		return repository.Contact{}, errors.New("insert failed")
	}
	contact := repository.Contact{
		ID:                  uuid.New(),
		OrganizationID:      params.OrganizationID,
		FirstName:           params.FirstName,
		LastName:            params.LastName,
		JobTitle:            params.JobTitle,
		Department:          params.Department,
		Email:               params.Email,
		Phone:               params.Phone,
		IsPrimary:           params.IsPrimary,
		OwnerID:             params.OwnerID,
		SourceLeadContactID: params.SourceLeadContactID,
		CreatedAt:           time.Now(),
	}
	t.staged.contacts = append(t.staged.contacts, contact)
	return contact, nil
}

func (t *fakeTx) MarkContactConverted(_ context.Context, leadContactID, contactID uuid.UUID) error {
	if t.staged.contactMarks == nil {
		t.staged.contactMarks = make(map[uuid.UUID]uuid.UUID)
	}
	t.staged.contactMarks[leadContactID] = contactID
	return nil
}

func (t *fakeTx) InsertOrgTechProfile(_ context.Context, orgID, optionID uuid.UUID, version, notes *string) error {
	t.staged.tech = append(t.staged.tech, orgTechRow{orgID: orgID, optionID: optionID, version: version, notes: notes})
	return nil
}

func (t *fakeTx) InsertOrgProduct(_ context.Context, orgID, productID uuid.UUID, quantity, sortOrder int) error {
	t.staged.products = append(t.staged.products, orgProductRow{orgID: orgID, productID: productID, quantity: quantity, sortOrder: sortOrder})
	return nil
}

func (t *fakeTx) InsertOrgCNAE(_ context.Context, orgID, cnaeID uuid.UUID, isPrimary bool) error {
	t.staged.cnaes = append(t.staged.cnaes, orgCNAERow{orgID: orgID, cnaeID: cnaeID, isPrimary: isPrimary})
	return nil
}

func (t *fakeTx) MarkLeadConverted(_ context.Context, leadID, orgID uuid.UUID, at time.Time) error {
	t.staged.convertedLeadID = leadID
	t.staged.convertedOrgID = orgID
	t.staged.convertedAt = at
	t.staged.leadWasConverted = true
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event)          { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func strPtr(s string) *string { return &s }

func testLead(owner uuid.UUID) repository.Lead {
	legal := "Acme Sistemas Ltda"
	site := "https://acme.example.com"
	industry := "software"
	return repository.Lead{
		ID:           uuid.New(),
		BusinessName: "Acme Sistemas",
		LegalName:    &legal,
		Website:      &site,
		Email:        strPtr("contato@acme.example.com"),
		Phone:        strPtr("+5511999990000"),
		AddressCity:  strPtr("São Paulo"),
		AddressState: strPtr("SP"),
		Industry:     &industry,
		Status:       string(domain.StatusQualified),
		OwnerID:      owner,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func testContact(leadID uuid.UUID, first string, createdAt time.Time) repository.LeadContact {
	return repository.LeadContact{
		ID:        uuid.New(),
		LeadID:    leadID,
		FirstName: first,
		Email:     strPtr(first + "@acme.example.com"),
		CreatedAt: createdAt,
	}
}

func newConversionFixture(t *testing.T) (*ConversionService, *fakeStore, *recordingBus, access.Actor) {
	t.Helper()
	owner := uuid.New()
	actor := access.Actor{ID: owner, Role: access.RoleSDR}
	store := &fakeStore{lead: testLead(owner)}
	bus := &recordingBus{}
	svc := NewConversion(store, bus, logger.New("development"))
	return svc, store, bus, actor
}

func TestConvertCreatesOrganizationWithProvenance(t *testing.T) {
	svc, store, _, actor := newConversionFixture(t)
	base := time.Now()
	store.contacts = []repository.LeadContact{
		testContact(store.lead.ID, "maria", base),
		testContact(store.lead.ID, "joao", base.Add(time.Minute)),
	}

	result, err := svc.Convert(context.Background(), actor, store.lead.ID)
	require.NoError(t, err)

	org := result.Organization
	assert.Equal(t, store.lead.BusinessName, org.Name)
	assert.Equal(t, store.lead.LegalName, org.LegalName)
	assert.Equal(t, store.lead.Website, org.Website)
	assert.Equal(t, store.lead.Industry, org.Industry)
	assert.Equal(t, store.lead.OwnerID, org.OwnerID)
	assert.Equal(t, store.lead.ID, org.SourceLeadID)

	// Contacts come back in lead-contact creation order.
	require.Len(t, result.Contacts, 2)
	assert.Equal(t, "maria", result.Contacts[0].FirstName)
	assert.Equal(t, "joao", result.Contacts[1].FirstName)
	for i, c := range result.Contacts {
		assert.Equal(t, org.ID, c.OrganizationID)
		assert.Equal(t, org.OwnerID, c.OwnerID)
		assert.Equal(t, store.contacts[i].ID, c.SourceLeadContactID)
	}

	// The lead is stamped converted and back-references the organization.
	require.NotNil(t, store.lead.ConvertedAt)
	require.NotNil(t, store.lead.OrganizationID)
	assert.Equal(t, org.ID, *store.lead.OrganizationID)

	// Every lead contact now points at its converted counterpart.
	for i := range store.contacts {
		require.NotNil(t, store.contacts[i].ConvertedToContactID)
		assert.Equal(t, result.Contacts[i].ID, *store.contacts[i].ConvertedToContactID)
	}
}

func TestConvertCopiesCatalogLinks(t *testing.T) {
	svc, store, _, actor := newConversionFixture(t)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}
	optionID, productID, cnaeID := uuid.New(), uuid.New(), uuid.New()
	store.tech = []repository.LeadTechProfile{{ID: uuid.New(), LeadID: store.lead.ID, OptionID: optionID, Version: strPtr("12")}}
	store.products = []repository.LeadProduct{{ID: uuid.New(), LeadID: store.lead.ID, ProductID: productID, Quantity: 3, SortOrder: 1}}
	store.cnaes = []repository.LeadCNAE{{ID: uuid.New(), LeadID: store.lead.ID, CNAEID: cnaeID, IsPrimary: true}}

	result, err := svc.Convert(context.Background(), actor, store.lead.ID)
	require.NoError(t, err)

	require.Len(t, store.orgTech, 1)
	assert.Equal(t, result.Organization.ID, store.orgTech[0].orgID)
	assert.Equal(t, optionID, store.orgTech[0].optionID)
	assert.Equal(t, "12", *store.orgTech[0].version)

	require.Len(t, store.orgProducts, 1)
	assert.Equal(t, productID, store.orgProducts[0].productID)
	assert.Equal(t, 3, store.orgProducts[0].quantity)

	require.Len(t, store.orgCNAEs, 1)
	assert.Equal(t, cnaeID, store.orgCNAEs[0].cnaeID)
	assert.True(t, store.orgCNAEs[0].isPrimary)
}

func TestConvertPublishesEventAfterSuccess(t *testing.T) {
	svc, store, bus, actor := newConversionFixture(t)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}

	result, err := svc.Convert(context.Background(), actor, store.lead.ID)
	require.NoError(t, err)

	require.Len(t, bus.published, 1)
	evt, ok := bus.published[0].(events.LeadConverted)
	require.True(t, ok)
	assert.Equal(t, store.lead.ID, evt.LeadID)
	assert.Equal(t, result.Organization.ID, evt.OrganizationID)
	assert.Equal(t, []uuid.UUID{result.Contacts[0].ID}, evt.ContactIDs)
}

func TestConvertUnknownLead(t *testing.T) {
	svc, _, bus, actor := newConversionFixture(t)

	_, err := svc.Convert(context.Background(), actor, uuid.New())
	assert.ErrorIs(t, err, ErrLeadNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
	assert.Empty(t, bus.published)
}

func TestConvertLeadOwnedBySomeoneElse(t *testing.T) {
	svc, store, _, _ := newConversionFixture(t)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}
	stranger := access.Actor{ID: uuid.New(), Role: access.RoleCloser}

	_, err := svc.Convert(context.Background(), stranger, store.lead.ID)
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestConvertAdminCanConvertAnyLead(t *testing.T) {
	svc, store, _, _ := newConversionFixture(t)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}
	admin := access.Actor{ID: uuid.New(), Role: access.RoleAdmin}

	result, err := svc.Convert(context.Background(), admin, store.lead.ID)
	require.NoError(t, err)
	// Ownership of the organization follows the lead owner, not the admin.
	assert.Equal(t, store.lead.OwnerID, result.Organization.OwnerID)
}

func TestConvertAlreadyConverted(t *testing.T) {
	svc, store, _, actor := newConversionFixture(t)
	at := time.Now()
	store.lead.ConvertedAt = &at

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.Equal(t, apperr.KindConflict, apperr.GetKind(err))
	assert.Zero(t, store.txCount, "ineligible lead should not open a transaction")
}

func TestConvertDisqualifiedLead(t *testing.T) {
	svc, store, _, actor := newConversionFixture(t)
	store.lead.Status = string(domain.StatusDisqualified)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	assert.ErrorIs(t, err, ErrLeadDisqualified)
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}

func TestConvertWithoutContacts(t *testing.T) {
	svc, store, _, actor := newConversionFixture(t)

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	assert.ErrorIs(t, err, ErrNoContacts)
	assert.Empty(t, store.orgs)
	assert.Nil(t, store.lead.ConvertedAt)
}

func TestConvertContactsAlreadyConsumed(t *testing.T) {
	// Contacts exist but all were consumed by an earlier (rolled back then
	// repaired) flow; only unconverted contacts count.
	svc, store, _, actor := newConversionFixture(t)
	consumed := uuid.New()
	contact := testContact(store.lead.ID, "ana", time.Now())
	contact.ConvertedToContactID = &consumed
	store.contacts = []repository.LeadContact{contact}

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	assert.ErrorIs(t, err, ErrNoContacts)
}

func TestConvertSkipsAlreadyConvertedContacts(t *testing.T) {
	// One contact was consumed earlier, one is fresh. The conversion
	// succeeds and transfers only the fresh contact.
	svc, store, _, actor := newConversionFixture(t)
	priorContact := uuid.New()
	consumed := testContact(store.lead.ID, "maria", time.Now())
	consumed.ConvertedToContactID = &priorContact
	fresh := testContact(store.lead.ID, "joao", time.Now().Add(time.Minute))
	store.contacts = []repository.LeadContact{consumed, fresh}

	result, err := svc.Convert(context.Background(), actor, store.lead.ID)
	require.NoError(t, err)

	require.Len(t, result.Contacts, 1)
	assert.Equal(t, "joao", result.Contacts[0].FirstName)
	assert.Equal(t, fresh.ID, result.Contacts[0].SourceLeadContactID)
	require.Len(t, store.orgContacts, 1)

	// The consumed contact still points at its original counterpart.
	require.NotNil(t, store.contacts[0].ConvertedToContactID)
	assert.Equal(t, priorContact, *store.contacts[0].ConvertedToContactID)
	require.NotNil(t, store.contacts[1].ConvertedToContactID)
	assert.Equal(t, result.Contacts[0].ID, *store.contacts[1].ConvertedToContactID)

	require.NotNil(t, store.lead.ConvertedAt)
}

func TestConvertRollsBackOnFailure(t *testing.T) {
	svc, store, bus, actor := newConversionFixture(t)
	store.contacts = []repository.LeadContact{
		testContact(store.lead.ID, "maria", time.Now()),
	}
	store.failOn = "insertContact"

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	require.Error(t, err)

	// Nothing leaked out of the failed transaction.
	assert.Empty(t, store.orgs)
	assert.Empty(t, store.orgContacts)
	assert.Nil(t, store.lead.ConvertedAt)
	assert.Nil(t, store.contacts[0].ConvertedToContactID)
	assert.Empty(t, bus.published)
}

func TestConvertRaceDetectedInsideTransaction(t *testing.T) {
	// The pre-check passes, then a concurrent conversion wins the row lock.
	// The locked re-read must reject the second conversion.
	svc, store, _, actor := newConversionFixture(t)
	store.contacts = []repository.LeadContact{testContact(store.lead.ID, "ana", time.Now())}

	raced := &racingStore{fakeStore: store}
	svc = NewConversion(raced, &recordingBus{}, logger.New("development"))

	_, err := svc.Convert(context.Background(), actor, store.lead.ID)
	assert.ErrorIs(t, err, ErrAlreadyConverted)
	assert.Empty(t, store.orgs)
}

// racingStore simulates another conversion committing between the eligibility
// pre-check and the transaction acquiring the lead row lock.
type racingStore struct {
	*fakeStore
}

func (s *racingStore) InTx(ctx context.Context, fn func(tx repository.ConvertTx) error) error {
	at := time.Now()
	winner := uuid.New()
	s.lead.ConvertedAt = &at
	s.lead.OrganizationID = &winner
	return s.fakeStore.InTx(ctx, fn)
}
