package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pipeline_crm_backend/internal/catalog/repository"
	"pipeline_crm_backend/internal/catalog/service"
	"pipeline_crm_backend/internal/catalog/transport"
	"pipeline_crm_backend/platform/httpkit"
	"pipeline_crm_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts catalog reads for every authenticated role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/products", h.ListProducts)
	rg.GET("/products/:id", h.GetProduct)
	rg.GET("/tech-options", h.ListTechOptions)
	rg.GET("/cnae-codes", h.ListCNAECodes)
	rg.GET("/business-lines", h.ListBusinessLines)
	rg.GET("/icp-profiles", h.ListICPProfiles)
}

// RegisterAdminRoutes mounts catalog management for admins.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/catalog/products", h.CreateProduct)
	rg.PUT("/catalog/products/:id", h.UpdateProduct)
	rg.DELETE("/catalog/products/:id", h.DeleteProduct)
	rg.POST("/catalog/tech-options", h.CreateTechOption)
	rg.DELETE("/catalog/tech-options/:id", h.DeleteTechOption)
	rg.POST("/catalog/cnae-codes", h.CreateCNAECode)
	rg.DELETE("/catalog/cnae-codes/:id", h.DeleteCNAECode)
	rg.POST("/catalog/business-lines", h.CreateBusinessLine)
	rg.PUT("/catalog/business-lines/:id", h.UpdateBusinessLine)
	rg.DELETE("/catalog/business-lines/:id", h.DeleteBusinessLine)
	rg.POST("/catalog/icp-profiles", h.CreateICPProfile)
	rg.PUT("/catalog/icp-profiles/:id", h.UpdateICPProfile)
	rg.DELETE("/catalog/icp-profiles/:id", h.DeleteICPProfile)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req transport.CreateProductRequest
	if !h.bind(c, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	product, err := h.svc.CreateProduct(c.Request.Context(), repository.ProductParams{
		Name:       req.Name,
		SKU:        req.SKU,
		PriceCents: req.PriceCents,
		Active:     active,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ProductFromModel(product))
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ProductFromModel(product))
}

func (h *Handler) ListProducts(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	products, err := h.svc.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ProductsFromModels(products))
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var req transport.UpdateProductRequest
	if !h.bind(c, &req) {
		return
	}
	product, err := h.svc.UpdateProduct(c.Request.Context(), id, repository.ProductParams{
		Name:       req.Name,
		SKU:        req.SKU,
		PriceCents: req.PriceCents,
		Active:     req.Active,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ProductFromModel(product))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteProduct)
}

func (h *Handler) CreateTechOption(c *gin.Context) {
	var req transport.CreateTechOptionRequest
	if !h.bind(c, &req) {
		return
	}
	opt, err := h.svc.CreateTechOption(c.Request.Context(), req.Category, req.Name)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.TechOptionFromModel(opt))
}

func (h *Handler) ListTechOptions(c *gin.Context) {
	options, err := h.svc.ListTechOptions(c.Request.Context(), c.Query("category"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.TechOptionsFromModels(options))
}

func (h *Handler) DeleteTechOption(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteTechOption)
}

func (h *Handler) CreateCNAECode(c *gin.Context) {
	var req transport.CreateCNAECodeRequest
	if !h.bind(c, &req) {
		return
	}
	code, err := h.svc.CreateCNAECode(c.Request.Context(), req.Code, req.Description)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.CNAECodeFromModel(code))
}

func (h *Handler) ListCNAECodes(c *gin.Context) {
	codes, err := h.svc.ListCNAECodes(c.Request.Context(), c.Query("search"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.CNAECodesFromModels(codes))
}

func (h *Handler) DeleteCNAECode(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteCNAECode)
}

func (h *Handler) CreateBusinessLine(c *gin.Context) {
	var req transport.BusinessLineRequest
	if !h.bind(c, &req) {
		return
	}
	line, err := h.svc.CreateBusinessLine(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.BusinessLineFromModel(line))
}

func (h *Handler) ListBusinessLines(c *gin.Context) {
	lines, err := h.svc.ListBusinessLines(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.BusinessLinesFromModels(lines))
}

func (h *Handler) UpdateBusinessLine(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var req transport.BusinessLineRequest
	if !h.bind(c, &req) {
		return
	}
	line, err := h.svc.UpdateBusinessLine(c.Request.Context(), id, req.Name, req.Description)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.BusinessLineFromModel(line))
}

func (h *Handler) DeleteBusinessLine(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteBusinessLine)
}

func (h *Handler) CreateICPProfile(c *gin.Context) {
	var req transport.ICPProfileRequest
	if !h.bind(c, &req) {
		return
	}
	profile, err := h.svc.CreateICPProfile(c.Request.Context(), repository.ICPProfileParams{
		Name:           req.Name,
		Description:    req.Description,
		BusinessLineID: req.BusinessLineID,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ICPProfileFromModel(profile))
}

func (h *Handler) ListICPProfiles(c *gin.Context) {
	profiles, err := h.svc.ListICPProfiles(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ICPProfilesFromModels(profiles))
}

func (h *Handler) UpdateICPProfile(c *gin.Context) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	var req transport.ICPProfileRequest
	if !h.bind(c, &req) {
		return
	}
	profile, err := h.svc.UpdateICPProfile(c.Request.Context(), id, repository.ICPProfileParams{
		Name:           req.Name,
		Description:    req.Description,
		BusinessLineID: req.BusinessLineID,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ICPProfileFromModel(profile))
}

func (h *Handler) DeleteICPProfile(c *gin.Context) {
	h.deleteByID(c, h.svc.DeleteICPProfile)
}

func (h *Handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) deleteByID(c *gin.Context, remove func(ctx context.Context, id uuid.UUID) error) {
	id, ok := pathUUID(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func pathUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
