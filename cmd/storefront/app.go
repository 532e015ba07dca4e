//go:build !test

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/catalog"
	"github.com/jbweber/homelab/storefront/internal/config"
	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/repository"
	"github.com/jbweber/homelab/storefront/internal/search"
	"github.com/jbweber/homelab/storefront/internal/shops"
)

// app wires the storage, cache and services for one process.
type app struct {
	cfg        *config.Config
	ds         *datastore.Datastore
	cache      cache.Client
	index      *search.ShopIndex
	shops      *shops.Service
	products   *catalog.ProductService
	categories *catalog.CategoryService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	ds, err := cfg.InitializeDatabase(ctx)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, cfg.CacheConfig())
	if err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	shopRepo := repository.NewShopRepository(ds)
	categoryRepo := repository.NewCategoryRepository(ds)
	index := search.NewShopIndex(ds, shopRepo)

	return &app{
		cfg:        cfg,
		ds:         ds,
		cache:      c,
		index:      index,
		shops:      shops.NewService(shopRepo, index, shops.Options{Cache: c, CacheTTL: cfg.Cache.TTL}),
		products:   catalog.NewProductService(repository.NewProductRepository(ds), shopRepo, categoryRepo, c),
		categories: catalog.NewCategoryService(categoryRepo, c),
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.cache.Close(), a.ds.Close())
}
