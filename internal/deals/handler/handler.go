package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_crm_backend/internal/deals/repository"
	"pipeline_crm_backend/internal/deals/service"
	"pipeline_crm_backend/internal/deals/transport"
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

// RegisterRoutes mounts deal and pipeline read routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/stage", h.MoveStage)
	rg.POST("/:id/win", h.MarkWon)
	rg.POST("/:id/lose", h.MarkLost)
	rg.POST("/:id/reopen", h.Reopen)
	rg.DELETE("/:id", h.Delete)
}

// RegisterPipelineRoutes mounts pipeline reads for all users.
func (h *Handler) RegisterPipelineRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListPipelines)
	rg.GET("/:id", h.GetPipeline)
}

// RegisterAdminRoutes mounts pipeline management for admins.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/pipelines", h.CreatePipeline)
	rg.POST("/pipelines/:id/stages", h.AddStage)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := repository.CreateParams{
		Title:             req.Title,
		OrganizationID:    req.OrganizationID,
		ContactID:         req.ContactID,
		StageID:           req.StageID,
		ValueCents:        req.ValueCents,
		Currency:          req.Currency,
		ExpectedCloseDate: req.ExpectedCloseDate,
	}
	if req.PipelineID != nil {
		params.PipelineID = *req.PipelineID
	}

	deal, err := h.svc.Create(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.DealFromModel(deal))
}

func (h *Handler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := repository.ListParams{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if status := c.Query("status"); status != "" {
		params.Status = &status
	}
	if raw := c.Query("organizationId"); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid organizationId", nil)
			return
		}
		params.OrganizationID = &orgID
	}
	if raw := c.Query("pipelineId"); raw != "" {
		pipelineID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid pipelineId", nil)
			return
		}
		params.PipelineID = &pipelineID
	}

	deals, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.DealResponse, 0, len(deals))
	for _, deal := range deals {
		items = append(items, transport.DealFromModel(deal))
	}
	httpkit.OK(c, transport.DealListResponse{Items: items, Total: total})
}

func (h *Handler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	deal, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
}

func (h *Handler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Update(c.Request.Context(), actor, id, repository.UpdateParams{
		Title:             req.Title,
		ContactID:         req.ContactID,
		ValueCents:        req.ValueCents,
		Currency:          req.Currency,
		ExpectedCloseDate: req.ExpectedCloseDate,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
}

func (h *Handler) MoveStage(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.MoveStage(c.Request.Context(), actor, id, req.StageID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
}

func (h *Handler) MarkWon(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	deal, err := h.svc.MarkWon(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
}

func (h *Handler) MarkLost(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.MarkLostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.MarkLost(c.Request.Context(), actor, id, req.Reason)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
}

func (h *Handler) Reopen(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	deal, err := h.svc.Reopen(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.DealFromModel(deal))
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

func (h *Handler) ListPipelines(c *gin.Context) {
	pipelines, err := h.svc.ListPipelines(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.PipelineResponse, 0, len(pipelines))
	for _, p := range pipelines {
		items = append(items, transport.PipelineFromModel(p))
	}
	httpkit.OK(c, items)
}

func (h *Handler) GetPipeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	pipeline, err := h.svc.GetPipeline(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.PipelineFromModel(pipeline))
}

func (h *Handler) CreatePipeline(c *gin.Context) {
	var req transport.CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	pipeline, err := h.svc.CreatePipeline(c.Request.Context(), req.Name, req.IsDefault)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.PipelineFromModel(pipeline))
}

func (h *Handler) AddStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req transport.AddStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	stage, err := h.svc.AddStage(c.Request.Context(), id, req.Name, req.SortOrder, req.Probability)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.StageFromModel(stage))
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
