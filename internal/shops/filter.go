package shops

import (
	"context"
	"fmt"
	"sort"

	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

// PageFinder is the relational query the listing path depends on.
type PageFinder interface {
	FindPage(ctx context.Context, q repository.ShopQuery) (domain.Page[domain.Shop], error)
}

// ListParams carries the raw listing query. A nil SortBy means the
// parameter was absent.
type ListParams struct {
	SortBy        *string
	InVacations   string
	CreatedAfter  string
	CreatedBefore string
	Page          int
	Size          int
}

// FilterEngine lists shops under optional filters and an optional sort key.
type FilterEngine struct {
	shops PageFinder
}

// NewFilterEngine creates a FilterEngine backed by shops.
func NewFilterEngine(shops PageFinder) *FilterEngine {
	return &FilterEngine{shops: shops}
}

// List resolves a listing request. Every parameter is parsed before any
// query runs.
//
// When at least one filter is given, the filtered page comes back in id
// order; a sort key then reorders that page only, so ordering never spans
// pages. Without filters a sort key orders the whole result set, and
// without either the shops come back in id order.
func (e *FilterEngine) List(ctx context.Context, p ListParams) (domain.Page[domain.Shop], error) {
	filters, err := ParseFilters(p.InVacations, p.CreatedAfter, p.CreatedBefore)
	if err != nil {
		return domain.Page[domain.Shop]{}, err
	}
	sortKey, sorted := ParseSortKey(p.SortBy)
	pageReq := repository.PageRequest{Page: p.Page, Size: p.Size}

	log := logger.From(ctx).With(logger.Component("shops.filter"))

	page, ok, err := e.Filter(ctx, filters, pageReq)
	if err != nil {
		return domain.Page[domain.Shop]{}, err
	}
	if ok {
		if sorted {
			SortShops(page.Content, sortKey)
		}
		log.Debug("listed filtered shops", logger.Count(len(page.Content)))
		return page, nil
	}

	q := repository.ShopQuery{Sort: repository.SortByID, PageRequest: pageReq}
	if sorted {
		q.Sort = sortKey
	}
	page, err = e.shops.FindPage(ctx, q)
	if err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("failed to list shops: %w", err)
	}
	log.Debug("listed shops", logger.String("sort", string(q.Sort)), logger.Count(len(page.Content)))
	return page, nil
}

// Filter runs the filtered query. ok is false when f holds no predicate,
// which is distinct from a filter that matched nothing.
func (e *FilterEngine) Filter(ctx context.Context, f Filters, pageReq repository.PageRequest) (domain.Page[domain.Shop], bool, error) {
	if f.Empty() {
		return domain.Page[domain.Shop]{}, false, nil
	}

	page, err := e.shops.FindPage(ctx, repository.ShopQuery{
		InVacations:   f.InVacations,
		CreatedAfter:  f.CreatedAfter,
		CreatedBefore: f.CreatedBefore,
		Sort:          repository.SortByID,
		PageRequest:   pageReq,
	})
	if err != nil {
		return domain.Page[domain.Shop]{}, false, fmt.Errorf("failed to filter shops: %w", err)
	}
	return page, true, nil
}

// SortShops orders shops ascending by key in place. The sort is stable.
func SortShops(shops []domain.Shop, key repository.ShopSort) {
	var less func(a, b domain.Shop) bool
	switch key {
	case repository.SortByName:
		less = func(a, b domain.Shop) bool { return a.Name < b.Name }
	case repository.SortByCreatedAt:
		less = func(a, b domain.Shop) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case repository.SortByID:
		less = func(a, b domain.Shop) bool { return a.ID < b.ID }
	default:
		less = func(a, b domain.Shop) bool { return a.NbProducts < b.NbProducts }
	}
	sort.SliceStable(shops, func(i, j int) bool { return less(shops[i], shops[j]) })
}

// Predicate selects shops held in memory.
type Predicate func(domain.Shop) bool

// InVacations keeps shops whose vacation flag equals v.
func InVacations(v bool) Predicate {
	return func(s domain.Shop) bool { return s.InVacations == v }
}

// CreatedAfter keeps shops created strictly after d.
func CreatedAfter(d domain.Date) Predicate {
	return func(s domain.Shop) bool { return s.CreatedAt.After(d) }
}

// CreatedBefore keeps shops created strictly before d.
func CreatedBefore(d domain.Date) Predicate {
	return func(s domain.Shop) bool { return s.CreatedAt.Before(d) }
}

// Predicates returns the in-memory form of f.
func (f Filters) Predicates() []Predicate {
	var preds []Predicate
	if f.InVacations != nil {
		preds = append(preds, InVacations(*f.InVacations))
	}
	if f.CreatedAfter != nil {
		preds = append(preds, CreatedAfter(*f.CreatedAfter))
	}
	if f.CreatedBefore != nil {
		preds = append(preds, CreatedBefore(*f.CreatedBefore))
	}
	return preds
}

// Apply runs each predicate as its own pass over shops, preserving order.
// The input slice is not modified.
func Apply(shops []domain.Shop, preds ...Predicate) []domain.Shop {
	out := append([]domain.Shop{}, shops...)
	for _, keep := range preds {
		kept := out[:0:0]
		for _, s := range out {
			if keep(s) {
				kept = append(kept, s)
			}
		}
		out = kept
	}
	return out
}
