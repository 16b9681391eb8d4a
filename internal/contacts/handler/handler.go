package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_crm_backend/internal/contacts/repository"
	"pipeline_crm_backend/internal/contacts/service"
	"pipeline_crm_backend/internal/contacts/transport"
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

// RegisterRoutes mounts the contact routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	contact, err := h.svc.Create(c.Request.Context(), actor, service.CreateInput{
		OrganizationID: req.OrganizationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		JobTitle:       req.JobTitle,
		Department:     req.Department,
		Email:          req.Email,
		Phone:          req.Phone,
		IsPrimary:      req.IsPrimary,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ContactFromModel(contact))
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
	if raw := c.Query("organizationId"); raw != "" {
		orgID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid organizationId", nil)
			return
		}
		params.OrganizationID = &orgID
	}
	if search := c.Query("search"); search != "" {
		params.Search = &search
	}

	contacts, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, transport.ContactFromModel(contact))
	}
	httpkit.OK(c, transport.ContactListResponse{Items: items, Total: total})
}

func (h *Handler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	contact, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ContactFromModel(contact))
}

func (h *Handler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	contact, err := h.svc.Update(c.Request.Context(), actor, id, repository.UpdateParams{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		JobTitle:   req.JobTitle,
		Department: req.Department,
		Email:      req.Email,
		Phone:      req.Phone,
		IsPrimary:  req.IsPrimary,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ContactFromModel(contact))
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
