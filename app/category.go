package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/domain/catalog"
	"github.com/openshelf/openshelf/pkg/apperr"
	"github.com/openshelf/openshelf/ports"
)

// CategoryService manages catalog categories.
type CategoryService struct {
	categories ports.CategoryStore
	ids        ports.IDGenerator
	clock      ports.Clock
	logger     zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories ports.CategoryStore, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *CategoryService {
	return &CategoryService{categories: categories, ids: ids, clock: clock, logger: logger}
}

// List returns all categories with their book counts.
func (s *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	return s.categories.List(ctx)
}

// Get returns one category.
func (s *CategoryService) Get(ctx context.Context, id string) (catalog.Category, error) {
	cat, err := s.categories.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return catalog.Category{}, apperr.NotFound("Category not found")
		}
		return catalog.Category{}, err
	}
	return cat, nil
}

// Create adds a category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, name, description string) (catalog.Category, error) {
	now := s.clock.Now().UTC()
	cat := catalog.Category{
		ID:          s.ids.New(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categories.Create(ctx, cat); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return catalog.Category{}, apperr.BadRequest("Category already exists")
		}
		return catalog.Category{}, err
	}

	s.logger.Info().Str("category_id", cat.ID).Str("name", name).Msg("category created")
	return cat, nil
}

// Update renames or re-describes a category.
func (s *CategoryService) Update(ctx context.Context, id, name, description string) (catalog.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return catalog.Category{}, err
	}

	cat.Name = name
	cat.Description = description

	if err := s.categories.Update(ctx, cat); err != nil {
		switch {
		case errors.Is(err, ports.ErrDuplicate):
			return catalog.Category{}, apperr.BadRequest("Category already exists")
		case errors.Is(err, ports.ErrNotFound):
			return catalog.Category{}, apperr.NotFound("Category not found")
		}
		return catalog.Category{}, err
	}
	return cat, nil
}

// Delete removes a category. Book links are dropped with it.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return apperr.NotFound("Category not found")
		}
		return err
	}
	s.logger.Info().Str("category_id", id).Msg("category deleted")
	return nil
}
