// Package shops holds the shop use cases: validated writes, filtered
// listing and full-text search.
package shops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/metrics"
	"github.com/jbweber/homelab/storefront/internal/schedule"
)

const maxNameLength = 255

// Store is the persistence the shop service needs.
type Store interface {
	PageFinder
	Save(ctx context.Context, shop domain.Shop) (domain.Shop, error)
	FindByID(ctx context.Context, id int64) (domain.Shop, error)
	DeleteByID(ctx context.Context, id int64) error
}

// Index is the name index kept in step with shop writes.
type Index interface {
	NameIndex
	Index(ctx context.Context, shop domain.Shop) error
	Remove(ctx context.Context, shopID int64) error
}

// ShopInput is the writable part of a shop.
type ShopInput struct {
	Name         string                `json:"name"`
	InVacations  bool                  `json:"inVacations"`
	OpeningHours []domain.OpeningHours `json:"openingHours"`
}

// Options tunes a Service.
type Options struct {
	Cache    cache.Client
	CacheTTL time.Duration
}

// Service implements the shop use cases.
type Service struct {
	store   Store
	index   Index
	cache   cache.Client
	filter  *FilterEngine
	search  *SearchEngine
	nowFunc func() time.Time
}

// NewService wires a Service over store and index.
func NewService(store Store, index Index, opts Options) *Service {
	c := opts.Cache
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		store:   store,
		index:   index,
		cache:   c,
		filter:  NewFilterEngine(store),
		search:  NewSearchEngine(index, c, opts.CacheTTL),
		nowFunc: time.Now,
	}
}

// Create validates in and stores a new shop dated today.
func (s *Service) Create(ctx context.Context, in ShopInput) (domain.Shop, error) {
	shop, err := s.validate(in)
	if err != nil {
		return domain.Shop{}, err
	}
	shop.CreatedAt = domain.DateOf(s.nowFunc())

	saved, err := s.store.Save(ctx, shop)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("failed to create shop: %w", err)
	}

	if err := s.afterWrite(ctx, func() error { return s.index.Index(ctx, saved) }); err != nil {
		return saved, err
	}
	logger.From(ctx).Info("shop created", logger.ShopID(saved.ID))
	return saved, nil
}

// Get returns the shop with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Shop, error) {
	return s.store.FindByID(ctx, id)
}

// Update replaces name, vacation flag and opening hours of an existing shop.
// A rejected update leaves the stored shop untouched.
func (s *Service) Update(ctx context.Context, id int64, in ShopInput) (domain.Shop, error) {
	shop, err := s.validate(in)
	if err != nil {
		return domain.Shop{}, err
	}
	shop.ID = id

	saved, err := s.store.Save(ctx, shop)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("failed to update shop: %w", err)
	}

	if err := s.afterWrite(ctx, func() error { return s.index.Index(ctx, saved) }); err != nil {
		return saved, err
	}
	logger.From(ctx).Info("shop updated", logger.ShopID(saved.ID))
	return saved, nil
}

// Delete removes a shop. Its products stay, detached from any shop.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}

	if err := s.afterWrite(ctx, func() error { return s.index.Remove(ctx, id) }); err != nil {
		return err
	}
	logger.From(ctx).Info("shop deleted", logger.ShopID(id))
	return nil
}

// List lists shops, see FilterEngine.List.
func (s *Service) List(ctx context.Context, p ListParams) (domain.Page[domain.Shop], error) {
	return s.filter.List(ctx, p)
}

// Search searches shops by name, see SearchEngine.Search.
func (s *Service) Search(ctx context.Context, p SearchParams) ([]domain.ShopSummary, error) {
	return s.search.Search(ctx, p)
}

func (s *Service) validate(in ShopInput) (domain.Shop, error) {
	name := strings.TrimSpace(in.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		metrics.RecordValidationFailure("name")
		return domain.Shop{}, &ValidationError{
			Field: "name",
			Err:   fmt.Errorf("must be between 1 and %d characters", maxNameLength),
		}
	}

	if err := schedule.Validate(in.OpeningHours); err != nil {
		reason := "interval"
		if errors.Is(err, schedule.ErrOverlappingIntervals) {
			reason = "overlap"
		}
		metrics.RecordValidationFailure(reason)
		return domain.Shop{}, &ValidationError{Field: "openingHours", Err: err}
	}

	hours := append([]domain.OpeningHours{}, in.OpeningHours...)
	return domain.Shop{Name: name, InVacations: in.InVacations, OpeningHours: hours}, nil
}

// afterWrite brings the name index and the search cache in line with a
// committed write. The cache is flushed even when the index update fails;
// `storefront reindex` rebuilds the index from the shops table.
func (s *Service) afterWrite(ctx context.Context, syncIndex func() error) error {
	indexErr := syncIndex()
	if err := s.cache.Flush(ctx); err != nil {
		logger.From(ctx).Warn("failed to flush search cache", logger.Err(err))
	}
	if indexErr != nil {
		return fmt.Errorf("failed to sync search index: %w", indexErr)
	}
	return nil
}
