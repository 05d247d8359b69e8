package service

import (
	"context"
	"fmt"

	"github.com/nexaguru/nexaguru/internal/models"
)

// PlanService exposes the subscription catalog and its admin CRUD.
type PlanService struct {
	repo PlanCatalogStore
}

type CreatePlanInput struct {
	Slug     string
	Name     string
	Price    int
	Credits  int
	Features []string
	IsActive *bool
}

type UpdatePlanInput struct {
	Name     *string
	Price    *int
	Credits  *int
	Features []string
	IsActive *bool
}

func NewPlanService(repo PlanCatalogStore) *PlanService {
	return &PlanService{repo: repo}
}

// EnsureDefaultPlans seeds the catalog the storefront ships with.
func (s *PlanService) EnsureDefaultPlans(ctx context.Context) error {
	defaults := []models.Plan{
		{
			Slug:     "starter",
			Name:     "Starter Pack",
			Price:    99,
			Credits:  49,
			Features: []string{"Standard Speed", "Commercial Use", "Priority Support"},
			IsActive: true,
		},
		{
			Slug:     "pro",
			Name:     "Pro Bundle",
			Price:    199,
			Credits:  120,
			Features: []string{"High Speed", "Commercial Use", "VIP Support", "Exclusive Styles"},
			IsActive: true,
		},
	}

	for i := range defaults {
		existing, err := s.repo.GetBySlug(ctx, defaults[i].Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		if _, err := s.repo.Create(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("create default plan %s: %w", defaults[i].Slug, err)
		}
	}
	return nil
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	return s.repo.List(ctx, true)
}

func (s *PlanService) ListAll(ctx context.Context) ([]models.Plan, error) {
	return s.repo.List(ctx, false)
}

func (s *PlanService) GetByID(ctx context.Context, id int64) (*models.Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlanService) Create(ctx context.Context, input CreatePlanInput) (*models.Plan, error) {
	if input.Slug == "" || input.Name == "" {
		return nil, fmt.Errorf("slug and name are required")
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if input.Credits <= 0 {
		return nil, fmt.Errorf("credits must be positive")
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	plan := models.Plan{
		Slug:     input.Slug,
		Name:     input.Name,
		Price:    input.Price,
		Credits:  input.Credits,
		Features: input.Features,
		IsActive: isActive,
	}
	return s.repo.Create(ctx, &plan)
}

func (s *PlanService) Update(ctx context.Context, id int64, input UpdatePlanInput) (*models.Plan, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPlanNotFound
	}
	if input.Name != nil && *input.Name != "" {
		existing.Name = *input.Name
	}
	if input.Price != nil && *input.Price > 0 {
		existing.Price = *input.Price
	}
	if input.Credits != nil && *input.Credits > 0 {
		existing.Credits = *input.Credits
	}
	if input.Features != nil {
		existing.Features = input.Features
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	return s.repo.Update(ctx, existing)
}

func (s *PlanService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
