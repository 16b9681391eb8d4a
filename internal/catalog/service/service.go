// Package service holds the catalog business rules. Catalog data is
// tenant-global: reads are open to every authenticated role and writes
// are restricted to admins at the routing layer.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/catalog/repository"
	"pipeline_crm_backend/platform/apperr"
)

// TechCategories enumerates the accepted tech-stack taxonomy groups.
var TechCategories = map[string]bool{
	"language":  true,
	"framework": true,
	"hosting":   true,
	"database":  true,
	"erp":       true,
	"crm":       true,
	"ecommerce": true,
}

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateProduct(ctx context.Context, params repository.ProductParams) (repository.Product, error) {
	product, err := s.repo.CreateProduct(ctx, params)
	if err != nil {
		return repository.Product{}, catalogErr(err)
	}
	return product, nil
}

func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (repository.Product, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return repository.Product{}, catalogErr(err)
	}
	return product, nil
}

func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]repository.Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, params repository.ProductParams) (repository.Product, error) {
	product, err := s.repo.UpdateProduct(ctx, id, params)
	if err != nil {
		return repository.Product{}, catalogErr(err)
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return catalogErr(s.repo.DeleteProduct(ctx, id))
}

func (s *Service) CreateTechOption(ctx context.Context, category, name string) (repository.TechOption, error) {
	if !TechCategories[category] {
		return repository.TechOption{}, apperr.Validation("unknown tech category: " + category)
	}
	opt, err := s.repo.CreateTechOption(ctx, category, name)
	if err != nil {
		return repository.TechOption{}, catalogErr(err)
	}
	return opt, nil
}

func (s *Service) ListTechOptions(ctx context.Context, category string) ([]repository.TechOption, error) {
	if category != "" && !TechCategories[category] {
		return nil, apperr.Validation("unknown tech category: " + category)
	}
	return s.repo.ListTechOptions(ctx, category)
}

func (s *Service) DeleteTechOption(ctx context.Context, id uuid.UUID) error {
	return catalogErr(s.repo.DeleteTechOption(ctx, id))
}

func (s *Service) CreateCNAECode(ctx context.Context, code, description string) (repository.CNAECode, error) {
	c, err := s.repo.CreateCNAECode(ctx, code, description)
	if err != nil {
		return repository.CNAECode{}, catalogErr(err)
	}
	return c, nil
}

func (s *Service) ListCNAECodes(ctx context.Context, search string) ([]repository.CNAECode, error) {
	return s.repo.ListCNAECodes(ctx, search)
}

func (s *Service) DeleteCNAECode(ctx context.Context, id uuid.UUID) error {
	return catalogErr(s.repo.DeleteCNAECode(ctx, id))
}

func (s *Service) CreateBusinessLine(ctx context.Context, name string, description *string) (repository.BusinessLine, error) {
	line, err := s.repo.CreateBusinessLine(ctx, name, description)
	if err != nil {
		return repository.BusinessLine{}, catalogErr(err)
	}
	return line, nil
}

func (s *Service) ListBusinessLines(ctx context.Context) ([]repository.BusinessLine, error) {
	return s.repo.ListBusinessLines(ctx)
}

func (s *Service) UpdateBusinessLine(ctx context.Context, id uuid.UUID, name string, description *string) (repository.BusinessLine, error) {
	line, err := s.repo.UpdateBusinessLine(ctx, id, name, description)
	if err != nil {
		return repository.BusinessLine{}, catalogErr(err)
	}
	return line, nil
}

func (s *Service) DeleteBusinessLine(ctx context.Context, id uuid.UUID) error {
	return catalogErr(s.repo.DeleteBusinessLine(ctx, id))
}

func (s *Service) CreateICPProfile(ctx context.Context, params repository.ICPProfileParams) (repository.ICPProfile, error) {
	profile, err := s.repo.CreateICPProfile(ctx, params)
	if err != nil {
		return repository.ICPProfile{}, icpErr(err)
	}
	return profile, nil
}

func (s *Service) ListICPProfiles(ctx context.Context) ([]repository.ICPProfile, error) {
	return s.repo.ListICPProfiles(ctx)
}

func (s *Service) UpdateICPProfile(ctx context.Context, id uuid.UUID, params repository.ICPProfileParams) (repository.ICPProfile, error) {
	profile, err := s.repo.UpdateICPProfile(ctx, id, params)
	if err != nil {
		return repository.ICPProfile{}, icpErr(err)
	}
	return profile, nil
}

func (s *Service) DeleteICPProfile(ctx context.Context, id uuid.UUID) error {
	return catalogErr(s.repo.DeleteICPProfile(ctx, id))
}

func catalogErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("catalog entry not found")
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict("catalog entry already exists")
	case errors.Is(err, repository.ErrInUse):
		return apperr.Conflict("catalog entry is still referenced and cannot be removed")
	default:
		return err
	}
}

// icpErr reinterprets the foreign-key sentinel: on an ICP write it means
// the referenced business line does not exist, not that the ICP is in use.
func icpErr(err error) error {
	if errors.Is(err, repository.ErrInUse) {
		return apperr.Validation("business line does not exist")
	}
	return catalogErr(err)
}
