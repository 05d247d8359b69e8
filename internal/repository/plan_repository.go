package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func scanPlan(row interface{ Scan(...any) error }) (*models.Plan, error) {
	var p models.Plan
	var features sql.NullString
	var active int
	if err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Price, &p.Credits, &features, &active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.IsActive = active != 0
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &p.Features); err != nil {
			return nil, fmt.Errorf("decode plan features: %w", err)
		}
	}
	return &p, nil
}

func encodeFeatures(features []string) (string, error) {
	if len(features) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("encode plan features: %w", err)
	}
	return string(b), nil
}

func (r *PlanRepository) GetByID(ctx context.Context, id int64) (*models.Plan, error) {
	const query = `
SELECT id, slug, name, price, credits, features, is_active, created_at, updated_at
FROM plans WHERE id = ?`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by id: %w", err)
	}
	return plan, nil
}

func (r *PlanRepository) GetBySlug(ctx context.Context, slug string) (*models.Plan, error) {
	const query = `
SELECT id, slug, name, price, credits, features, is_active, created_at, updated_at
FROM plans WHERE slug = ?`
	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by slug: %w", err)
	}
	return plan, nil
}

func (r *PlanRepository) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	query := `
SELECT id, slug, name, price, credits, features, is_active, created_at, updated_at
FROM plans ORDER BY price ASC`
	if activeOnly {
		query = `
SELECT id, slug, name, price, credits, features, is_active, created_at, updated_at
FROM plans WHERE is_active = 1 ORDER BY price ASC`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan list: %w", err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	features, err := encodeFeatures(plan.Features)
	if err != nil {
		return nil, err
	}
	active := 0
	if plan.IsActive {
		active = 1
	}
	const query = `
INSERT INTO plans (slug, name, price, credits, features, is_active)
VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, plan.Slug, plan.Name, plan.Price, plan.Credits, features, active)
	if err != nil {
		return nil, fmt.Errorf("create plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("plan last insert id: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) (*models.Plan, error) {
	features, err := encodeFeatures(plan.Features)
	if err != nil {
		return nil, err
	}
	active := 0
	if plan.IsActive {
		active = 1
	}
	const query = `
UPDATE plans SET slug = ?, name = ?, price = ?, credits = ?, features = ?, is_active = ?, updated_at = NOW()
WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, plan.Slug, plan.Name, plan.Price, plan.Credits, features, active, plan.ID); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	return r.GetByID(ctx, plan.ID)
}

func (r *PlanRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM plans WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
