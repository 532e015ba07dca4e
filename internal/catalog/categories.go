package catalog

import (
	"context"
	"fmt"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// CategoryService manages categories.
type CategoryService struct {
	repo  repository.CategoryRepository
	cache cache.Client
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(repo repository.CategoryRepository, c cache.Client) *CategoryService {
	return &CategoryService{repo: repo, cache: orNoop(c)}
}

// Create stores a new category. Names are unique.
func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (domain.Category, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return domain.Category{}, err
	}

	saved, err := s.repo.Save(ctx, domain.Category{Name: name})
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	logger.From(ctx).Info("category created", logger.CategoryID(saved.ID))
	return saved, nil
}

// Get returns the category with the given id.
func (s *CategoryService) Get(ctx context.Context, id int64) (domain.Category, error) {
	return s.repo.FindByID(ctx, id)
}

// Update renames a category.
func (s *CategoryService) Update(ctx context.Context, id int64, in CategoryInput) (domain.Category, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return domain.Category{}, err
	}

	saved, err := s.repo.Save(ctx, domain.Category{ID: id, Name: name})
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	return saved, nil
}

// Delete removes a category and its product links.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	logger.From(ctx).Info("category deleted", logger.CategoryID(id))
	return nil
}

// List returns one page of categories in id order.
func (s *CategoryService) List(ctx context.Context, page repository.PageRequest) (domain.Page[domain.Category], error) {
	return s.repo.FindPage(ctx, page)
}
