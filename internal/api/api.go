// Package api exposes the storefront over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jbweber/homelab/storefront/internal/catalog"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/metrics"
	"github.com/jbweber/homelab/storefront/internal/repository"
	"github.com/jbweber/homelab/storefront/internal/shops"
)

// ShopService defines the shop use cases the handlers call
type ShopService interface {
	Create(ctx context.Context, in shops.ShopInput) (domain.Shop, error)
	Get(ctx context.Context, id int64) (domain.Shop, error)
	Update(ctx context.Context, id int64, in shops.ShopInput) (domain.Shop, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, p shops.ListParams) (domain.Page[domain.Shop], error)
	Search(ctx context.Context, p shops.SearchParams) ([]domain.ShopSummary, error)
}

// ProductService defines the product use cases the handlers call
type ProductService interface {
	Create(ctx context.Context, in catalog.ProductInput) (domain.Product, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Update(ctx context.Context, id int64, in catalog.ProductInput) (domain.Product, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q repository.ProductQuery) (domain.Page[domain.Product], error)
}

// CategoryService defines the category use cases the handlers call
type CategoryService interface {
	Create(ctx context.Context, in catalog.CategoryInput) (domain.Category, error)
	Get(ctx context.Context, id int64) (domain.Category, error)
	Update(ctx context.Context, id int64, in catalog.CategoryInput) (domain.Category, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page repository.PageRequest) (domain.Page[domain.Category], error)
}

// Pinger is a dependency checked by the health endpoint
type Pinger interface {
	Ping(ctx context.Context) error
}

// Pagination bounds the page size accepted on list endpoints
type Pagination struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPagination serves five items per page and at most one hundred.
var DefaultPagination = Pagination{DefaultSize: 5, MaxSize: 100}

// Deps groups everything the API serves
type Deps struct {
	Shops      ShopService
	Products   ProductService
	Categories CategoryService
	Checks     map[string]Pinger
	Metrics    http.Handler // served on /metrics when set
	Pagination Pagination
}

// API holds the handler groups
type API struct {
	shops      *Shops
	products   *Products
	categories *Categories
	health     *Health
	metrics    http.Handler
}

// NewAPI creates a new API instance from its dependencies
func NewAPI(deps Deps) *API {
	pg := deps.Pagination
	if pg.DefaultSize <= 0 {
		pg.DefaultSize = DefaultPagination.DefaultSize
	}
	if pg.MaxSize <= 0 {
		pg.MaxSize = DefaultPagination.MaxSize
	}

	return &API{
		shops:      NewShops(deps.Shops, pg),
		products:   NewProducts(deps.Products, pg),
		categories: NewCategories(deps.Categories, pg),
		health:     NewHealth(deps.Checks),
		metrics:    deps.Metrics,
	}
}

// Router builds the chi router with the middleware stack and every route.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(middleware.Recoverer)
	r.Use(metrics.WithMetrics)
	r.Use(middleware.Timeout(30 * time.Second))

	a.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API endpoints to the given chi router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/health", a.health.HealthHandler)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/api/v1/shops", func(r chi.Router) {
		r.Get("/", a.shops.ListShopsHandler)
		r.Post("/", a.shops.CreateShopHandler)
		r.Get("/search", a.shops.SearchShopsHandler)
		r.Get("/{id}", a.shops.GetShopHandler)
		r.Put("/{id}", a.shops.UpdateShopHandler)
		r.Delete("/{id}", a.shops.DeleteShopHandler)
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", a.products.ListProductsHandler)
		r.Post("/", a.products.CreateProductHandler)
		r.Get("/{id}", a.products.GetProductHandler)
		r.Put("/{id}", a.products.UpdateProductHandler)
		r.Delete("/{id}", a.products.DeleteProductHandler)
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", a.categories.ListCategoriesHandler)
		r.Post("/", a.categories.CreateCategoryHandler)
		r.Get("/{id}", a.categories.GetCategoryHandler)
		r.Put("/{id}", a.categories.UpdateCategoryHandler)
		r.Delete("/{id}", a.categories.DeleteCategoryHandler)
	})
}
