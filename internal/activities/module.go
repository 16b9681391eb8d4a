// Package activities provides the activity (task and reminder) bounded
// context. It also subscribes to conversion events to create follow-up tasks.
package activities

import (
	"pipeline_crm_backend/internal/activities/handler"
	"pipeline_crm_backend/internal/activities/repository"
	"pipeline_crm_backend/internal/activities/service"
	"pipeline_crm_backend/internal/events"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/internal/scheduler"
	"pipeline_crm_backend/platform/logger"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the activities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the activities module and registers its event subscriptions.
func NewModule(pool *pgxpool.Pool, bus events.Bus, reminders scheduler.ReminderScheduler, log *logger.Logger, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reminders, log)
	NewSubscriber(repo, log).Register(bus)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "activities" }

// RegisterRoutes mounts all activity routes behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/activities"))
}
