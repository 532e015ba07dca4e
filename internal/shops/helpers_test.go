package shops

import (
	"context"

	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

func hours(day int, openAt, closeAt string) domain.OpeningHours {
	return domain.OpeningHours{Day: day, OpenAt: domain.MustClockTime(openAt), CloseAt: domain.MustClockTime(closeAt)}
}

func shop(id int64, name string, vacation bool, created string, nbProducts int64) domain.Shop {
	return domain.Shop{
		ID:           id,
		Name:         name,
		InVacations:  vacation,
		CreatedAt:    domain.MustParseDate(created),
		NbProducts:   nbProducts,
		OpeningHours: []domain.OpeningHours{},
	}
}

func sortBy(v string) *string { return &v }

func ids(shops []domain.Shop) []int64 {
	out := make([]int64, 0, len(shops))
	for _, s := range shops {
		out = append(out, s.ID)
	}
	return out
}

// memoryShops answers FindPage from a slice held in id order.
type memoryShops struct {
	shops   []domain.Shop
	queries []repository.ShopQuery
}

func (m *memoryShops) FindPage(_ context.Context, q repository.ShopQuery) (domain.Page[domain.Shop], error) {
	m.queries = append(m.queries, q)

	var preds []Predicate
	if q.InVacations != nil {
		preds = append(preds, InVacations(*q.InVacations))
	}
	if q.CreatedAfter != nil {
		preds = append(preds, CreatedAfter(*q.CreatedAfter))
	}
	if q.CreatedBefore != nil {
		preds = append(preds, CreatedBefore(*q.CreatedBefore))
	}
	matched := Apply(m.shops, preds...)
	SortShops(matched, q.Sort)

	start, end := 0, len(matched)
	if q.Size > 0 {
		start = min(q.Page*q.Size, len(matched))
		end = min(start+q.Size, len(matched))
	}
	return domain.NewPage(matched[start:end], q.Page, q.Size, int64(len(matched))), nil
}
