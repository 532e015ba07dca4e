package shops

import "github.com/jbweber/homelab/storefront/internal/domain"

// Project derives the read-only summary of shop. The number of categories is
// the count of distinct category ids across the shop's products. The source
// shop is not modified and shares no slices with the result.
func Project(shop domain.Shop) domain.ShopSummary {
	categories := make(map[int64]struct{})
	products := make([]domain.Product, 0, len(shop.Products))
	for _, p := range shop.Products {
		for _, c := range p.Categories {
			categories[c.ID] = struct{}{}
		}
		cp := p
		cp.Categories = append([]domain.Category{}, p.Categories...)
		if p.ShopID != nil {
			id := *p.ShopID
			cp.ShopID = &id
		}
		products = append(products, cp)
	}

	return domain.ShopSummary{
		ID:                 shop.ID,
		CreatedAt:          shop.CreatedAt,
		InVacations:        shop.InVacations,
		Name:               shop.Name,
		NbProducts:         shop.NbProducts,
		OpeningHours:       append([]domain.OpeningHours{}, shop.OpeningHours...),
		Products:           products,
		NumberOfCategories: len(categories),
	}
}
