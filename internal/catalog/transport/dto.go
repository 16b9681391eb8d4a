// Package transport defines the catalog HTTP request and response shapes.
package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/catalog/repository"
)

type CreateProductRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=200"`
	SKU        *string `json:"sku,omitempty" validate:"omitempty,max=64"`
	PriceCents int64   `json:"price_cents" validate:"gte=0"`
	Active     *bool   `json:"active,omitempty"`
}

type UpdateProductRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=200"`
	SKU        *string `json:"sku,omitempty" validate:"omitempty,max=64"`
	PriceCents int64   `json:"price_cents" validate:"gte=0"`
	Active     bool    `json:"active"`
}

type CreateTechOptionRequest struct {
	Category string `json:"category" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=120"`
}

type CreateCNAECodeRequest struct {
	Code        string `json:"code" validate:"required,min=4,max=12"`
	Description string `json:"description" validate:"required,max=500"`
}

type BusinessLineRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type ICPProfileRequest struct {
	Name           string     `json:"name" validate:"required,min=2,max=200"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	BusinessLineID *uuid.UUID `json:"business_line_id,omitempty"`
}

type ProductResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	SKU        *string   `json:"sku,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ProductFromModel(p repository.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func ProductsFromModels(products []repository.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ProductFromModel(p))
	}
	return out
}

type TechOptionResponse struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func TechOptionFromModel(o repository.TechOption) TechOptionResponse {
	return TechOptionResponse{ID: o.ID, Category: o.Category, Name: o.Name, CreatedAt: o.CreatedAt}
}

func TechOptionsFromModels(options []repository.TechOption) []TechOptionResponse {
	out := make([]TechOptionResponse, 0, len(options))
	for _, o := range options {
		out = append(out, TechOptionFromModel(o))
	}
	return out
}

type CNAECodeResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func CNAECodeFromModel(c repository.CNAECode) CNAECodeResponse {
	return CNAECodeResponse{ID: c.ID, Code: c.Code, Description: c.Description, CreatedAt: c.CreatedAt}
}

func CNAECodesFromModels(codes []repository.CNAECode) []CNAECodeResponse {
	out := make([]CNAECodeResponse, 0, len(codes))
	for _, c := range codes {
		out = append(out, CNAECodeFromModel(c))
	}
	return out
}

type BusinessLineResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func BusinessLineFromModel(l repository.BusinessLine) BusinessLineResponse {
	return BusinessLineResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func BusinessLinesFromModels(lines []repository.BusinessLine) []BusinessLineResponse {
	out := make([]BusinessLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, BusinessLineFromModel(l))
	}
	return out
}

type ICPProfileResponse struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    *string    `json:"description,omitempty"`
	BusinessLineID *uuid.UUID `json:"business_line_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func ICPProfileFromModel(p repository.ICPProfile) ICPProfileResponse {
	return ICPProfileResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		BusinessLineID: p.BusinessLineID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func ICPProfilesFromModels(profiles []repository.ICPProfile) []ICPProfileResponse {
	out := make([]ICPProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, ICPProfileFromModel(p))
	}
	return out
}
