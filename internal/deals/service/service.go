package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/deals/domain"
	"pipeline_crm_backend/internal/deals/repository"
	"pipeline_crm_backend/internal/events"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/apperr"
)

// Service implements deal management across pipelines.
type Service struct {
	repo *repository.Repository
	bus  events.Bus
}

func New(repo *repository.Repository, bus events.Bus) *Service {
	return &Service{repo: repo, bus: bus}
}

func (s *Service) Create(ctx context.Context, actor access.Actor, params repository.CreateParams) (repository.Deal, error) {
	params.OwnerID = actor.ID
	if params.Currency == "" {
		params.Currency = "BRL"
	}
	if params.PipelineID == uuid.Nil {
		pipeline, err := s.repo.DefaultPipeline(ctx)
		if err != nil {
			if errors.Is(err, repository.ErrPipelineNotFound) {
				return repository.Deal{}, apperr.Validation("no default pipeline configured")
			}
			return repository.Deal{}, err
		}
		params.PipelineID = pipeline.ID
		if params.StageID == nil && len(pipeline.Stages) > 0 {
			first := pipeline.Stages[0].ID
			params.StageID = &first
		}
	}

	deal, err := s.repo.Create(ctx, params)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	return deal, nil
}

func (s *Service) GetByID(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Deal, error) {
	deal, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	return deal, nil
}

func (s *Service) List(ctx context.Context, actor access.Actor, params repository.ListParams) ([]repository.Deal, int, error) {
	if params.Status != nil && !domain.Status(*params.Status).Valid() {
		return nil, 0, apperr.Validation("unknown deal status")
	}
	return s.repo.List(ctx, actor, params)
}

func (s *Service) Update(ctx context.Context, actor access.Actor, id uuid.UUID, params repository.UpdateParams) (repository.Deal, error) {
	current, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	if domain.Status(current.Status).Closed() {
		return repository.Deal{}, apperr.Conflict("closed deals cannot be edited; reopen first")
	}
	deal, err := s.repo.Update(ctx, actor, id, params)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	return deal, nil
}

// MoveStage moves an open deal to another stage of its pipeline.
func (s *Service) MoveStage(ctx context.Context, actor access.Actor, id, stageID uuid.UUID) (repository.Deal, error) {
	current, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	if domain.Status(current.Status) != domain.StatusOpen {
		return repository.Deal{}, apperr.Conflict("only open deals can change stage")
	}
	deal, err := s.repo.MoveStage(ctx, actor, id, stageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Deal{}, apperr.Validation("stage does not belong to the deal's pipeline")
		}
		return repository.Deal{}, err
	}
	return deal, nil
}

// MarkWon closes a deal as won and publishes the win.
func (s *Service) MarkWon(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Deal, error) {
	deal, err := s.transition(ctx, actor, id, domain.StatusWon, nil)
	if err != nil {
		return repository.Deal{}, err
	}
	s.bus.Publish(ctx, events.DealWon{
		BaseEvent:      events.NewBaseEvent(),
		DealID:         deal.ID,
		OrganizationID: deal.OrganizationID,
		OwnerID:        deal.OwnerID,
		ValueCents:     deal.ValueCents,
	})
	return deal, nil
}

// MarkLost closes a deal as lost with a reason.
func (s *Service) MarkLost(ctx context.Context, actor access.Actor, id uuid.UUID, reason string) (repository.Deal, error) {
	return s.transition(ctx, actor, id, domain.StatusLost, &reason)
}

// Reopen puts a closed deal back in play.
func (s *Service) Reopen(ctx context.Context, actor access.Actor, id uuid.UUID) (repository.Deal, error) {
	return s.transition(ctx, actor, id, domain.StatusOpen, nil)
}

func (s *Service) transition(ctx context.Context, actor access.Actor, id uuid.UUID, to domain.Status, lostReason *string) (repository.Deal, error) {
	current, err := s.repo.GetForActor(ctx, actor, id)
	if err != nil {
		return repository.Deal{}, mapErr(err)
	}
	from := domain.Status(current.Status)
	if !domain.CanTransition(from, to) {
		return repository.Deal{}, apperr.Validation("invalid deal transition from " + current.Status + " to " + string(to))
	}

	deal, err := s.repo.SetStatus(ctx, actor, id, string(from), string(to), lostReason)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return repository.Deal{}, apperr.Conflict("deal status changed concurrently, retry")
		}
		return repository.Deal{}, err
	}
	return deal, nil
}

func (s *Service) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return mapErr(err)
	}
	return nil
}

// Pipelines

func (s *Service) ListPipelines(ctx context.Context) ([]repository.Pipeline, error) {
	return s.repo.ListPipelines(ctx)
}

func (s *Service) GetPipeline(ctx context.Context, id uuid.UUID) (repository.Pipeline, error) {
	pipeline, err := s.repo.GetPipeline(ctx, id)
	if err != nil {
		return repository.Pipeline{}, mapErr(err)
	}
	return pipeline, nil
}

// CreatePipeline creates a pipeline. Admin only, enforced by routing.
func (s *Service) CreatePipeline(ctx context.Context, name string, isDefault bool) (repository.Pipeline, error) {
	return s.repo.CreatePipeline(ctx, name, isDefault)
}

func (s *Service) AddStage(ctx context.Context, pipelineID uuid.UUID, name string, sortOrder, probability int) (repository.PipelineStage, error) {
	stage, err := s.repo.AddStage(ctx, pipelineID, name, sortOrder, probability)
	if err != nil {
		return repository.PipelineStage{}, mapErr(err)
	}
	return stage, nil
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("deal not found")
	case errors.Is(err, repository.ErrPipelineNotFound):
		return apperr.NotFound("pipeline not found")
	case errors.Is(err, repository.ErrBadLink):
		return apperr.Validation("referenced record does not exist")
	}
	return err
}
