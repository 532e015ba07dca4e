package shops

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jbweber/homelab/storefront/internal/domain"
)

func TestProject_CountsDistinctCategories(t *testing.T) {
	a := domain.Category{ID: 1, Name: "A"}
	b := domain.Category{ID: 2, Name: "B"}
	c := domain.Category{ID: 3, Name: "C"}

	s := shop(7, "Acme", true, "2024-01-10", 2)
	s.OpeningHours = []domain.OpeningHours{hours(1, "08:00", "12:00")}
	s.Products = []domain.Product{
		{ID: 1, Name: "p1", Categories: []domain.Category{a, b}},
		{ID: 2, Name: "p2", Categories: []domain.Category{b, c}},
	}

	got := Project(s)

	assert.Equal(t, 3, got.NumberOfCategories)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Acme", got.Name)
	assert.True(t, got.InVacations)
	assert.Equal(t, int64(2), got.NbProducts)
	assert.Equal(t, "2024-01-10", got.CreatedAt.String())
	assert.Equal(t, s.OpeningHours, got.OpeningHours)
	assert.Len(t, got.Products, 2)
}

func TestProject_NoProducts(t *testing.T) {
	got := Project(shop(1, "Empty", false, "2024-01-01", 0))

	assert.Equal(t, 0, got.NumberOfCategories)
	assert.NotNil(t, got.Products)
	assert.Empty(t, got.Products)
	assert.NotNil(t, got.OpeningHours)
}

func TestProject_ProductsWithoutCategories(t *testing.T) {
	s := shop(1, "Plain", false, "2024-01-01", 2)
	s.Products = []domain.Product{{ID: 1}, {ID: 2}}

	assert.Equal(t, 0, Project(s).NumberOfCategories)
}

func TestProject_DoesNotAliasSource(t *testing.T) {
	shopID := int64(1)
	s := shop(1, "Acme", false, "2024-01-01", 1)
	s.OpeningHours = []domain.OpeningHours{hours(2, "09:00", "10:00")}
	s.Products = []domain.Product{{ID: 1, ShopID: &shopID, Categories: []domain.Category{{ID: 1, Name: "A"}}}}

	got := Project(s)
	got.OpeningHours[0].Day = 5
	got.Products[0].Categories[0].Name = "changed"
	*got.Products[0].ShopID = 99

	assert.Equal(t, 2, s.OpeningHours[0].Day)
	assert.Equal(t, "A", s.Products[0].Categories[0].Name)
	assert.Equal(t, int64(1), *s.Products[0].ShopID)
}
