package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_crm_backend/internal/leads/domain"
	"pipeline_crm_backend/internal/leads/repository"
	"pipeline_crm_backend/internal/leads/service"
	"pipeline_crm_backend/internal/leads/transport"
	"pipeline_crm_backend/internal/shared/access"
	"pipeline_crm_backend/platform/httpkit"
	"pipeline_crm_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

type Handler struct {
	svc        *service.Service
	conversion *service.ConversionService
	val        *validator.Validator
}

func New(svc *service.Service, conversion *service.ConversionService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, conversion: conversion, val: val}
}

// RegisterRoutes mounts the lead routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.PATCH("/:id/owner", h.AssignOwner)
	rg.DELETE("/:id", h.Delete)

	rg.POST("/:id/convert", h.Convert)

	rg.POST("/:id/contacts", h.AddContact)
	rg.GET("/:id/contacts", h.ListContacts)
	rg.DELETE("/:id/contacts/:contactId", h.RemoveContact)

	rg.POST("/:id/tech-profiles", h.AddTechProfile)
	rg.GET("/:id/tech-profiles", h.ListTechProfiles)
	rg.DELETE("/:id/tech-profiles/:linkId", h.RemoveTechProfile)

	rg.POST("/:id/products", h.AddProduct)
	rg.GET("/:id/products", h.ListProducts)
	rg.DELETE("/:id/products/:linkId", h.RemoveProduct)

	rg.POST("/:id/cnaes", h.AddCNAE)
	rg.GET("/:id/cnaes", h.ListCNAEs)
	rg.DELETE("/:id/cnaes/:linkId", h.RemoveCNAE)

	rg.POST("/:id/icps", h.AddICP)
	rg.GET("/:id/icps", h.ListICPs)
	rg.DELETE("/:id/icps/:linkId", h.RemoveICP)
}

func (h *Handler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actor, service.CreateLeadInput{
		BusinessName:  req.BusinessName,
		LegalName:     req.LegalName,
		Website:       req.Website,
		Email:         req.Email,
		Phone:         req.Phone,
		AddressStreet: req.AddressStreet,
		AddressNumber: req.AddressNumber,
		AddressCity:   req.AddressCity,
		AddressState:  req.AddressState,
		AddressZip:    req.AddressZip,
		Industry:      req.Industry,
		Source:        req.Source,
		Notes:         req.Notes,
		OwnerID:       req.OwnerID,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.LeadFromModel(lead))
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
	if search := c.Query("search"); search != "" {
		params.Search = &search
	}

	leads, total, err := h.svc.List(c.Request.Context(), actor, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, transport.LeadFromModel(lead))
	}
	httpkit.OK(c, transport.LeadListResponse{Items: items, Total: total})
}

func (h *Handler) Get(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	lead, err := h.svc.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.LeadFromModel(lead))
}

func (h *Handler) Update(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), actor, id, repository.UpdateLeadParams{
		BusinessName:  req.BusinessName,
		LegalName:     req.LegalName,
		Website:       req.Website,
		Email:         req.Email,
		Phone:         req.Phone,
		AddressStreet: req.AddressStreet,
		AddressNumber: req.AddressNumber,
		AddressCity:   req.AddressCity,
		AddressState:  req.AddressState,
		AddressZip:    req.AddressZip,
		Industry:      req.Industry,
		Source:        req.Source,
		Notes:         req.Notes,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.LeadFromModel(lead))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), actor, id, domain.Status(req.Status))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.LeadFromModel(lead))
}

func (h *Handler) AssignOwner(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AssignLeadOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	lead, err := h.svc.AssignOwner(c.Request.Context(), actor, id, req.OwnerID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.LeadFromModel(lead))
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

// Convert turns a qualified lead into an organization with contacts. The
// operation takes no request body.
func (h *Handler) Convert(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	result, err := h.conversion.Convert(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ConversionFromModel(result.Organization, result.Contacts))
}

func (h *Handler) AddContact(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AddContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	contact, err := h.svc.AddContact(c.Request.Context(), actor, repository.AddContactParams{
		LeadID:     id,
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
	httpkit.Created(c, transport.LeadContactFromModel(contact))
}

func (h *Handler) ListContacts(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	contacts, err := h.svc.ListContacts(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.LeadContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, transport.LeadContactFromModel(contact))
	}
	httpkit.OK(c, items)
}

func (h *Handler) RemoveContact(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	contactID, ok := pathUUID(c, "contactId")
	if !ok {
		return
	}
	if err := h.svc.RemoveContact(c.Request.Context(), actor, id, contactID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) AddTechProfile(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AddTechProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	profile, err := h.svc.AddTechProfile(c.Request.Context(), actor, id, req.OptionID, req.Version, req.Notes)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.TechProfileResponse{
		ID:        profile.ID,
		OptionID:  profile.OptionID,
		Version:   profile.Version,
		Notes:     profile.Notes,
		CreatedAt: profile.CreatedAt,
	})
}

func (h *Handler) ListTechProfiles(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	profiles, err := h.svc.ListTechProfiles(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.TechProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, transport.TechProfileResponse{
			ID:        p.ID,
			OptionID:  p.OptionID,
			Option:    p.Option,
			Category:  p.Category,
			Version:   p.Version,
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt,
		})
	}
	httpkit.OK(c, items)
}

func (h *Handler) RemoveTechProfile(c *gin.Context) {
	h.removeLink(c, h.svc.RemoveTechProfile)
}

func (h *Handler) AddProduct(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	product, err := h.svc.AddProduct(c.Request.Context(), actor, id, req.ProductID, req.Quantity, req.SortOrder)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ProductLinkResponse{
		ID:        product.ID,
		ProductID: product.ProductID,
		Quantity:  product.Quantity,
		SortOrder: product.SortOrder,
		CreatedAt: product.CreatedAt,
	})
}

func (h *Handler) ListProducts(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	products, err := h.svc.ListProducts(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.ProductLinkResponse, 0, len(products))
	for _, p := range products {
		items = append(items, transport.ProductLinkResponse{
			ID:        p.ID,
			ProductID: p.ProductID,
			Product:   p.Product,
			Quantity:  p.Quantity,
			SortOrder: p.SortOrder,
			CreatedAt: p.CreatedAt,
		})
	}
	httpkit.OK(c, items)
}

func (h *Handler) RemoveProduct(c *gin.Context) {
	h.removeLink(c, h.svc.RemoveProduct)
}

func (h *Handler) AddCNAE(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AddCNAERequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	link, err := h.svc.AddCNAE(c.Request.Context(), actor, id, req.CNAEID, req.IsPrimary)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.CNAELinkResponse{
		ID:        link.ID,
		CNAEID:    link.CNAEID,
		IsPrimary: link.IsPrimary,
		CreatedAt: link.CreatedAt,
	})
}

func (h *Handler) ListCNAEs(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	links, err := h.svc.ListCNAEs(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.CNAELinkResponse, 0, len(links))
	for _, l := range links {
		items = append(items, transport.CNAELinkResponse{
			ID:          l.ID,
			CNAEID:      l.CNAEID,
			Code:        l.Code,
			Description: l.Description,
			IsPrimary:   l.IsPrimary,
			CreatedAt:   l.CreatedAt,
		})
	}
	httpkit.OK(c, items)
}

func (h *Handler) RemoveCNAE(c *gin.Context) {
	h.removeLink(c, h.svc.RemoveCNAE)
}

func (h *Handler) AddICP(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	var req transport.AddICPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	link, err := h.svc.AddICP(c.Request.Context(), actor, id, req.ICPID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ICPLinkResponse{
		ID:        link.ID,
		ICPID:     link.ICPID,
		CreatedAt: link.CreatedAt,
	})
}

func (h *Handler) ListICPs(c *gin.Context) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	links, err := h.svc.ListICPs(c.Request.Context(), actor, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	items := make([]transport.ICPLinkResponse, 0, len(links))
	for _, l := range links {
		items = append(items, transport.ICPLinkResponse{
			ID:        l.ID,
			ICPID:     l.ICPID,
			Name:      l.Name,
			CreatedAt: l.CreatedAt,
		})
	}
	httpkit.OK(c, items)
}

func (h *Handler) RemoveICP(c *gin.Context) {
	h.removeLink(c, h.svc.RemoveICP)
}

func (h *Handler) removeLink(c *gin.Context, remove func(ctx context.Context, actor access.Actor, leadID, linkID uuid.UUID) error) {
	actor, id, ok := actorAndID(c)
	if !ok {
		return
	}
	linkID, ok := pathUUID(c, "linkId")
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), actor, id, linkID); err != nil {
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
	id, ok := pathUUID(c, "id")
	if !ok {
		return access.Actor{}, uuid.Nil, false
	}
	return actor, id, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
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
