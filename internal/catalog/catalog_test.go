package catalog

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/repository"
	"github.com/jbweber/homelab/storefront/internal/testutil"
)

type fixture struct {
	products   *ProductService
	categories *CategoryService
	shops      repository.ShopRepository
	cache      *cache.Memory
}

func setup(t *testing.T, name string) (*fixture, func()) {
	t.Helper()
	ds, cleanup := testutil.SetupTestDatastoreWithMigrations(t, name)

	mem := cache.NewMemory(time.Minute)
	shops := repository.NewShopRepository(ds)
	categories := repository.NewCategoryRepository(ds)
	return &fixture{
		products:   NewProductService(repository.NewProductRepository(ds), shops, categories, mem),
		categories: NewCategoryService(categories, mem),
		shops:      shops,
		cache:      mem,
	}, cleanup
}

func (f *fixture) primeCache(t *testing.T) {
	t.Helper()
	require.NoError(t, f.cache.Set(context.Background(), "search:probe", []byte("[]"), 0))
	require.Equal(t, 1, f.cache.Len())
}

func TestCategoryService(t *testing.T) {
	f, cleanup := setup(t, "TestCategoryService")
	defer cleanup()
	ctx := context.Background()

	f.primeCache(t)
	books, err := f.categories.Create(ctx, CategoryInput{Name: "  Books "})
	require.NoError(t, err)
	assert.Equal(t, "Books", books.Name)
	assert.Zero(t, f.cache.Len())

	_, err = f.categories.Create(ctx, CategoryInput{Name: "Books"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = f.categories.Create(ctx, CategoryInput{Name: ""})
	assert.ErrorIs(t, err, repository.ErrInvalidEntity)

	renamed, err := f.categories.Update(ctx, books.ID, CategoryInput{Name: "Novels"})
	require.NoError(t, err)
	assert.Equal(t, "Novels", renamed.Name)

	_, err = f.categories.Update(ctx, 999, CategoryInput{Name: "Ghost"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	page, err := f.categories.List(ctx, repository.PageRequest{Page: 0, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)

	require.NoError(t, f.categories.Delete(ctx, books.ID))
	_, err = f.categories.Get(ctx, books.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductService(t *testing.T) {
	f, cleanup := setup(t, "TestProductService")
	defer cleanup()
	ctx := context.Background()

	shop, err := f.shops.Save(ctx, domain.Shop{Name: "Store", CreatedAt: domain.MustParseDate("2024-01-01")})
	require.NoError(t, err)
	toys, err := f.categories.Create(ctx, CategoryInput{Name: "Toys"})
	require.NoError(t, err)

	f.primeCache(t)
	created, err := f.products.Create(ctx, ProductInput{
		Name:        "Kite",
		Description: "red",
		Price:       12.5,
		ShopID:      &shop.ID,
		CategoryIDs: []int64{toys.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{toys}, created.Categories)
	assert.Zero(t, f.cache.Len())

	stored, err := f.shops.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.NbProducts)

	updated, err := f.products.Update(ctx, created.ID, ProductInput{Name: "Kite", Price: 10})
	require.NoError(t, err)
	assert.Nil(t, updated.ShopID)
	assert.Empty(t, updated.Categories)

	page, err := f.products.List(ctx, repository.ProductQuery{ShopID: &shop.ID, PageRequest: repository.PageRequest{Size: 5}})
	require.NoError(t, err)
	assert.Empty(t, page.Content)

	require.NoError(t, f.products.Delete(ctx, created.ID))
	_, err = f.products.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProductService_Validation(t *testing.T) {
	f, cleanup := setup(t, "TestProductService_Validation")
	defer cleanup()
	ctx := context.Background()

	missing := int64(404)
	tests := []struct {
		name  string
		input ProductInput
	}{
		{"blank name", ProductInput{Name: " "}},
		{"long description", ProductInput{Name: "p", Description: strings.Repeat("d", 1001)}},
		{"negative price", ProductInput{Name: "p", Price: -0.01}},
		{"nan price", ProductInput{Name: "p", Price: math.NaN()}},
		{"unknown shop", ProductInput{Name: "p", ShopID: &missing}},
		{"unknown category", ProductInput{Name: "p", CategoryIDs: []int64{missing}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.products.Create(ctx, tt.input)
			assert.ErrorIs(t, err, repository.ErrInvalidEntity)
		})
	}

	_, err := f.products.Update(ctx, 77, ProductInput{Name: "p"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
