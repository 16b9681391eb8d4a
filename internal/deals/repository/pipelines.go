package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrPipelineNotFound = errors.New("pipeline not found")

type Pipeline struct {
	ID        uuid.UUID
	Name      string
	IsDefault bool
	CreatedAt time.Time
	Stages    []PipelineStage
}

type PipelineStage struct {
	ID          uuid.UUID
	PipelineID  uuid.UUID
	Name        string
	SortOrder   int
	Probability int
}

func (r *Repository) ListPipelines(ctx context.Context) ([]Pipeline, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, is_default, created_at FROM pipelines ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pipelines := make([]Pipeline, 0)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var p Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.IsDefault, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Stages = make([]PipelineStage, 0)
		index[p.ID] = len(pipelines)
		pipelines = append(pipelines, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	stageRows, err := r.pool.Query(ctx, `
		SELECT id, pipeline_id, name, sort_order, probability
		FROM pipeline_stages ORDER BY pipeline_id, sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer stageRows.Close()

	for stageRows.Next() {
		var s PipelineStage
		if err := stageRows.Scan(&s.ID, &s.PipelineID, &s.Name, &s.SortOrder, &s.Probability); err != nil {
			return nil, err
		}
		if i, ok := index[s.PipelineID]; ok {
			pipelines[i].Stages = append(pipelines[i].Stages, s)
		}
	}
	return pipelines, stageRows.Err()
}

func (r *Repository) GetPipeline(ctx context.Context, id uuid.UUID) (Pipeline, error) {
	var p Pipeline
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, is_default, created_at FROM pipelines WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.IsDefault, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pipeline{}, ErrPipelineNotFound
	}
	if err != nil {
		return Pipeline{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, pipeline_id, name, sort_order, probability
		FROM pipeline_stages WHERE pipeline_id = $1 ORDER BY sort_order ASC`, id)
	if err != nil {
		return Pipeline{}, err
	}
	defer rows.Close()

	p.Stages = make([]PipelineStage, 0)
	for rows.Next() {
		var s PipelineStage
		if err := rows.Scan(&s.ID, &s.PipelineID, &s.Name, &s.SortOrder, &s.Probability); err != nil {
			return Pipeline{}, err
		}
		p.Stages = append(p.Stages, s)
	}
	return p, rows.Err()
}

// DefaultPipeline returns the pipeline new deals land in when none is given.
func (r *Repository) DefaultPipeline(ctx context.Context) (Pipeline, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM pipelines WHERE is_default = true LIMIT 1`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return Pipeline{}, ErrPipelineNotFound
	}
	if err != nil {
		return Pipeline{}, err
	}
	return r.GetPipeline(ctx, id)
}

func (r *Repository) CreatePipeline(ctx context.Context, name string, isDefault bool) (Pipeline, error) {
	var p Pipeline
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pipelines (name, is_default) VALUES ($1, $2)
		RETURNING id, name, is_default, created_at`,
		name, isDefault).
		Scan(&p.ID, &p.Name, &p.IsDefault, &p.CreatedAt)
	if err != nil {
		return Pipeline{}, err
	}
	p.Stages = make([]PipelineStage, 0)
	return p, nil
}

func (r *Repository) AddStage(ctx context.Context, pipelineID uuid.UUID, name string, sortOrder, probability int) (PipelineStage, error) {
	s := PipelineStage{PipelineID: pipelineID, Name: name, SortOrder: sortOrder, Probability: probability}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_stages (pipeline_id, name, sort_order, probability)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		pipelineID, name, sortOrder, probability).Scan(&s.ID)
	if err != nil {
		return PipelineStage{}, fkErr(err)
	}
	return s, nil
}
