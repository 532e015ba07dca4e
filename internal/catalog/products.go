package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

// ProductInput is the writable part of a product. Categories are referenced
// by id and must exist.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ShopID      *int64  `json:"shopId"`
	CategoryIDs []int64 `json:"categoryIds"`
}

// ProductService manages products.
type ProductService struct {
	products   repository.ProductRepository
	shops      repository.ShopRepository
	categories repository.CategoryRepository
	cache      cache.Client
}

// NewProductService creates a ProductService.
func NewProductService(products repository.ProductRepository, shops repository.ShopRepository, categories repository.CategoryRepository, c cache.Client) *ProductService {
	return &ProductService{products: products, shops: shops, categories: categories, cache: orNoop(c)}
}

// Create stores a new product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (domain.Product, error) {
	product, err := s.resolve(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to create product: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	logger.From(ctx).Info("product created", logger.ProductID(saved.ID))
	return saved, nil
}

// Get returns the product with the given id.
func (s *ProductService) Get(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Update replaces every writable field of a product, categories included.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (domain.Product, error) {
	product, err := s.resolve(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	product.ID = id

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	return saved, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	flushSearchCache(ctx, s.cache)
	logger.From(ctx).Info("product deleted", logger.ProductID(id))
	return nil
}

// List returns one page of products in id order.
func (s *ProductService) List(ctx context.Context, q repository.ProductQuery) (domain.Page[domain.Product], error) {
	return s.products.FindPage(ctx, q)
}

func (s *ProductService) resolve(ctx context.Context, in ProductInput) (domain.Product, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return domain.Product{}, err
	}
	description := strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return domain.Product{}, fmt.Errorf("%w: description must be at most %d characters", repository.ErrInvalidEntity, maxDescriptionLength)
	}
	if in.Price < 0 || math.IsNaN(in.Price) || math.IsInf(in.Price, 0) {
		return domain.Product{}, fmt.Errorf("%w: price must be a non-negative number", repository.ErrInvalidEntity)
	}

	if in.ShopID != nil {
		exists, err := s.shops.ExistsByID(ctx, *in.ShopID)
		if err != nil {
			return domain.Product{}, fmt.Errorf("failed to check shop: %w", err)
		}
		if !exists {
			return domain.Product{}, fmt.Errorf("%w: shop %d does not exist", repository.ErrInvalidEntity, *in.ShopID)
		}
	}

	categories := make([]domain.Category, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		c, err := s.categories.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return domain.Product{}, fmt.Errorf("%w: category %d does not exist", repository.ErrInvalidEntity, id)
			}
			return domain.Product{}, fmt.Errorf("failed to load category: %w", err)
		}
		categories = append(categories, c)
	}

	return domain.Product{
		Name:        name,
		Description: description,
		Price:       in.Price,
		ShopID:      in.ShopID,
		Categories:  categories,
	}, nil
}
