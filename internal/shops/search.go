package shops

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/singleflight"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NameIndex answers substring queries on shop names. Returned shops carry
// their products and categories.
type NameIndex interface {
	FindByNameContaining(ctx context.Context, substring string) ([]domain.Shop, error)
}

// SearchParams carries the raw search query.
type SearchParams struct {
	Name          string
	InVacations   string
	CreatedAfter  string
	CreatedBefore string
}

// SearchEngine combines the name index with in-memory filtering and
// projects every hit into a summary. Results are cached per query.
type SearchEngine struct {
	index NameIndex
	cache cache.Client
	ttl   time.Duration
	group singleflight.Group
}

// NewSearchEngine creates a SearchEngine. A nil cache disables caching.
func NewSearchEngine(index NameIndex, c cache.Client, ttl time.Duration) *SearchEngine {
	if c == nil {
		c = cache.Noop{}
	}
	return &SearchEngine{index: index, cache: c, ttl: ttl}
}

// Search returns the summaries of shops whose name contains p.Name, ignoring
// case, narrowed by the optional filters. Dates are parsed before the index
// is consulted. The result is not paginated.
func (e *SearchEngine) Search(ctx context.Context, p SearchParams) ([]domain.ShopSummary, error) {
	filters, err := ParseFilters(p.InVacations, p.CreatedAfter, p.CreatedBefore)
	if err != nil {
		return nil, err
	}

	log := logger.From(ctx).With(logger.Component("shops.search"), logger.Query(p.Name))
	key := searchKey(p.Name, filters)

	data, err := e.cache.Get(ctx, key)
	switch {
	case err == nil:
		var summaries []domain.ShopSummary
		if err := json.Unmarshal(data, &summaries); err == nil {
			metrics.RecordSearchCache("hit")
			log.Debug("search served from cache", logger.Count(len(summaries)))
			return summaries, nil
		}
		log.Warn("discarding undecodable cache entry")
		metrics.RecordSearchCache("error")
	case errors.Is(err, cache.ErrNotFound):
		metrics.RecordSearchCache("miss")
	default:
		log.Warn("search cache unavailable", logger.Err(err))
		metrics.RecordSearchCache("error")
	}

	// the shared call is detached from any one caller; each caller waits on its own ctx
	flight := e.group.DoChan(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		summaries, err := e.search(ctx, p.Name, filters)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(summaries); err == nil {
			if err := e.cache.Set(ctx, key, data, e.ttl); err != nil {
				log.Warn("failed to cache search result", logger.Err(err))
			}
		}
		return summaries, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-flight:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	summaries := res.Val.([]domain.ShopSummary)
	log.Debug("search completed", logger.Count(len(summaries)))
	return summaries, nil
}

func (e *SearchEngine) search(ctx context.Context, name string, f Filters) ([]domain.ShopSummary, error) {
	hits, err := e.index.FindByNameContaining(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}

	hits = Apply(hits, f.Predicates()...)

	summaries := make([]domain.ShopSummary, 0, len(hits))
	for _, s := range hits {
		summaries = append(summaries, Project(s))
	}
	return summaries, nil
}

func searchKey(name string, f Filters) string {
	var b strings.Builder
	b.WriteString("search:")
	b.WriteString(strconv.Quote(name))
	b.WriteString(":v=")
	if f.InVacations != nil {
		b.WriteString(strconv.FormatBool(*f.InVacations))
	}
	b.WriteString(":a=")
	if f.CreatedAfter != nil {
		b.WriteString(f.CreatedAfter.String())
	}
	b.WriteString(":b=")
	if f.CreatedBefore != nil {
		b.WriteString(f.CreatedBefore.String())
	}
	return b.String()
}
