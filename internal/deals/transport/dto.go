package transport

import (
	"time"

	"github.com/google/uuid"

	"pipeline_crm_backend/internal/deals/repository"
)

// Request DTOs
type CreateDealRequest struct {
	Title             string     `json:"title" validate:"required,min=1,max=200"`
	OrganizationID    uuid.UUID  `json:"organizationId" validate:"required"`
	ContactID         *uuid.UUID `json:"contactId"`
	PipelineID        *uuid.UUID `json:"pipelineId"`
	StageID           *uuid.UUID `json:"stageId"`
	ValueCents        int64      `json:"valueCents" validate:"min=0"`
	Currency          string     `json:"currency" validate:"omitempty,len=3"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

type UpdateDealRequest struct {
	Title             string     `json:"title" validate:"required,min=1,max=200"`
	ContactID         *uuid.UUID `json:"contactId"`
	ValueCents        int64      `json:"valueCents" validate:"min=0"`
	Currency          string     `json:"currency" validate:"omitempty,len=3"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate"`
}

type MoveStageRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
}

type MarkLostRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

type CreatePipelineRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	IsDefault bool   `json:"isDefault"`
}

type AddStageRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	SortOrder   int    `json:"sortOrder" validate:"min=0"`
	Probability int    `json:"probability" validate:"min=0,max=100"`
}

// Response DTOs
type DealResponse struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	OrganizationID    uuid.UUID  `json:"organizationId"`
	ContactID         *uuid.UUID `json:"contactId,omitempty"`
	PipelineID        uuid.UUID  `json:"pipelineId"`
	StageID           *uuid.UUID `json:"stageId,omitempty"`
	Status            string     `json:"status"`
	ValueCents        int64      `json:"valueCents"`
	Currency          string     `json:"currency"`
	ExpectedCloseDate *time.Time `json:"expectedCloseDate,omitempty"`
	LostReason        *string    `json:"lostReason,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	OwnerID           uuid.UUID  `json:"ownerId"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func DealFromModel(d repository.Deal) DealResponse {
	return DealResponse{
		ID:                d.ID,
		Title:             d.Title,
		OrganizationID:    d.OrganizationID,
		ContactID:         d.ContactID,
		PipelineID:        d.PipelineID,
		StageID:           d.StageID,
		Status:            d.Status,
		ValueCents:        d.ValueCents,
		Currency:          d.Currency,
		ExpectedCloseDate: d.ExpectedCloseDate,
		LostReason:        d.LostReason,
		ClosedAt:          d.ClosedAt,
		OwnerID:           d.OwnerID,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type DealListResponse struct {
	Items []DealResponse `json:"items"`
	Total int            `json:"total"`
}

type StageResponse struct {
	ID          uuid.UUID `json:"id"`
	PipelineID  uuid.UUID `json:"pipelineId"`
	Name        string    `json:"name"`
	SortOrder   int       `json:"sortOrder"`
	Probability int       `json:"probability"`
}

type PipelineResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	IsDefault bool            `json:"isDefault"`
	Stages    []StageResponse `json:"stages"`
	CreatedAt time.Time       `json:"createdAt"`
}

func PipelineFromModel(p repository.Pipeline) PipelineResponse {
	resp := PipelineResponse{
		ID:        p.ID,
		Name:      p.Name,
		IsDefault: p.IsDefault,
		Stages:    make([]StageResponse, 0, len(p.Stages)),
		CreatedAt: p.CreatedAt,
	}
	for _, s := range p.Stages {
		resp.Stages = append(resp.Stages, StageFromModel(s))
	}
	return resp
}

func StageFromModel(s repository.PipelineStage) StageResponse {
	return StageResponse{
		ID:          s.ID,
		PipelineID:  s.PipelineID,
		Name:        s.Name,
		SortOrder:   s.SortOrder,
		Probability: s.Probability,
	}
}
