// Package catalog provides the admin-managed reference data: products,
// tech-stack taxonomy, CNAE codes, business lines and ICP profiles.
package catalog

import (
	"pipeline_crm_backend/internal/catalog/handler"
	"pipeline_crm_backend/internal/catalog/repository"
	"pipeline_crm_backend/internal/catalog/service"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the catalog module's dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "catalog" }

// RegisterRoutes mounts reads for all authenticated roles and catalog
// management behind the admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/catalog"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}
