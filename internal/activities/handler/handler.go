package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_crm_backend/internal/activities/repository"
	"pipeline_crm_backend/internal/activities/service"
	"pipeline_crm_backend/internal/activities/transport"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/httpkit"
	"pipeline_crm_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the activity routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.POST("/:id/complete", h.Complete)
	rg.POST("/:id/reopen", h.Reopen)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	activity, err := h.svc.Create(c.Request.Context(), actor, service.CreateInput{
		Type:           req.Type,
		Subject:        req.Subject,
		Notes:          req.Notes,
		LeadID:         req.LeadID,
		OrganizationID: req.OrganizationID,
		DealID:         req.DealID,
		ContactID:      req.ContactID,
		DueAt:          req.DueAt,
		RemindAt:       req.RemindAt,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ActivityFromModel(activity))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := repository.ListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
		Pending:  c.Query("pending") == "true",
	}
	if !parseOptionalUUID(c, "leadId", &params.LeadID) ||
		!parseOptionalUUID(c, "organizationId", &params.OrganizationID) ||
		!parseOptionalUUID(c, "dealId", &params.DealID) {
		return
	}

	activities, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, transport.ActivityFromModel(activity))
	}
	httpkit.OK(c, transport.ActivityListResponse{Items: items, Total: total})
}

func (h *Handler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	activity, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ActivityFromModel(activity))
}

func (h *Handler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	activity, err := h.svc.Update(c.Request.Context(), actor, id, repository.UpdateParams{
		Type:     req.Type,
		Subject:  req.Subject,
		Notes:    req.Notes,
		DueAt:    req.DueAt,
		RemindAt: req.RemindAt,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ActivityFromModel(activity))
}

func (h *Handler) Complete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	activity, err := h.svc.Complete(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ActivityFromModel(activity))
}

func (h *Handler) Reopen(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	activity, err := h.svc.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ActivityFromModel(activity))
}

func (h *Handler) Delete(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func actorFrom(c *gin.Context) (access.Actor, bool) {
	id := httpkit.GetIdentity(c)
	if !id.IsAuthenticated() {
		httpkit.Error(c, http.StatusUnauthorized, "authentication required", nil)
		return access.Actor{}, false
	}
	return access.FromIdentity(id), true
}

func actorAndID(c *gin.Context) (access.Actor, uuid.UUID, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return access.Actor{}, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return access.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func parseOptionalUUID(c *gin.Context, name string, dst **uuid.UUID) bool {
	raw := c.Query(name)
	if raw == "" {
		return true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid "+name, nil)
		return false
	}
	*dst = &id
	return true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
