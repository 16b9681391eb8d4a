package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
)

// updateStore fakes the read and update surface of the lead store. The
// embedded Store panics on anything else, which keeps the tests honest about
// what a mutation is allowed to touch.
type updateStore struct {
	Store
	lead        repository.Lead
	updateCalls int
}

func (s *updateStore) GetForActor(_ context.Context, actor access.Actor, id uuid.UUID) (repository.Lead, error) {
	if s.lead.ID != id {
		return repository.Lead{}, repository.ErrNotFound
	}
	if !actor.IsAdmin() && s.lead.OwnerID != actor.ID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return s.lead, nil
}

func (s *updateStore) Update(_ context.Context, _ access.Actor, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	s.updateCalls++
	if s.lead.ID != id || s.lead.ConvertedAt != nil {
		return repository.Lead{}, repository.ErrNotFound
	}
	s.lead.BusinessName = params.BusinessName
	s.lead.Notes = params.Notes
	return s.lead, nil
}

func newUpdateFixture() (*Service, *updateStore, access.Actor) {
	owner := uuid.New()
	actor := access.Actor{ID: owner, Role: access.RoleSDR}
	store := &updateStore{lead: testLead(owner)}
	return New(store, &recordingBus{}), store, actor
}

func TestUpdateEditableLead(t *testing.T) {
	svc, store, actor := newUpdateFixture()

	lead, err := svc.Update(context.Background(), actor, store.lead.ID, repository.UpdateLeadParams{
		BusinessName: "Acme Sistemas SA",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Sistemas SA", lead.BusinessName)
	assert.Equal(t, 1, store.updateCalls)
}

func TestUpdateConvertedLeadConflicts(t *testing.T) {
	svc, store, actor := newUpdateFixture()
	converted := time.Now().Add(-time.Hour)
	store.lead.ConvertedAt = &converted

	_, err := svc.Update(context.Background(), actor, store.lead.ID, repository.UpdateLeadParams{
		BusinessName: "Acme Sistemas SA",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.GetKind(err))
	assert.Zero(t, store.updateCalls)
}

func TestUpdateUnknownLeadNotFound(t *testing.T) {
	svc, _, actor := newUpdateFixture()

	_, err := svc.Update(context.Background(), actor, uuid.New(), repository.UpdateLeadParams{
		BusinessName: "Acme Sistemas SA",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
}

func TestUpdateForeignLeadNotFound(t *testing.T) {
	svc, store, _ := newUpdateFixture()
	stranger := access.Actor{ID: uuid.New(), Role: access.RoleCloser}

	_, err := svc.Update(context.Background(), stranger, store.lead.ID, repository.UpdateLeadParams{
		BusinessName: "Acme Sistemas SA",
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.GetKind(err))
	assert.Zero(t, store.updateCalls)
}
