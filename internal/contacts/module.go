// Package contacts provides the contact (person) bounded context.
package contacts

import (
	"pipeline_crm_backend/internal/contacts/handler"
	"pipeline_crm_backend/internal/contacts/repository"
	"pipeline_crm_backend/internal/contacts/service"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the contacts module's dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "contacts" }

// RegisterRoutes mounts all contact routes behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/contacts"))
}
