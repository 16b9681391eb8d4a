// Package organizations provides the organization (account) bounded context.
package organizations

import (
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/internal/organizations/handler"
	"pipeline_crm_backend/internal/organizations/repository"
	"pipeline_crm_backend/internal/organizations/service"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the organizations bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the organizations module's dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "organizations" }

// RegisterRoutes mounts all organization routes behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/organizations"))
}
