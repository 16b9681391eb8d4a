// Package leads provides the lead management bounded context, including the
// conversion workflow that turns a qualified lead into an organization.
package leads

import (
	"pipeline_crm_backend/internal/events"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/internal/leads/handler"
	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/leads/service"
	"pipeline_crm_backend/platform/config"
	"pipeline_crm_backend/platform/logger"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the leads module's dependencies.
func NewModule(pool *pgxpool.Pool, cfg *config.Config, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus)
	conversion := service.NewConversion(repository.NewConversionStore(pool, cfg), bus, log)
	return &Module{handler: handler.New(svc, conversion, val)}
}

func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts all lead routes behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
}
