// Package auth provides the authentication and user management bounded context.
package auth

import (
	"pipeline_crm_backend/internal/auth/handler"
	"pipeline_crm_backend/internal/auth/repository"
	"pipeline_crm_backend/internal/auth/service"
	"pipeline_crm_backend/internal/auth/tokenstore"
	"pipeline_crm_backend/internal/email"
	apphttp "pipeline_crm_backend/internal/http"
	"pipeline_crm_backend/platform/config"
	"pipeline_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the auth module's dependencies.
func NewModule(pool *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config, val *validator.Validator, mailer email.Sender) *Module {
	repo := repository.New(pool)
	tokens := tokenstore.New(redisClient)
	svc := service.New(repo, tokens, cfg, mailer)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts public auth routes (rate limited) and the admin-only
// user management routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	m.handler.RegisterAdminRoutes(ctx.Admin)
}
