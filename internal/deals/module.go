// Package deals provides the deal and pipeline bounded context.
package deals

import (
	"pipeline_crm_backend/internal/deals/handler"
	"pipeline_crm_backend/internal/deals/repository"
	"pipeline_crm_backend/internal/deals/service"
	"pipeline_crm_backend/internal/events"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the deals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the deals module's dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "deals" }

// RegisterRoutes mounts deal routes behind authentication and pipeline
// management behind the admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/deals"))
	m.handler.RegisterPipelineRoutes(ctx.Protected.Group("/pipelines"))
	m.handler.RegisterAdminRoutes(ctx.Admin)
}
