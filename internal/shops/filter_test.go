package shops

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

func listFixture() *memoryShops {
	return &memoryShops{shops: []domain.Shop{
		shop(1, "Zed", true, "2024-02-01", 3),
		shop(2, "Bravo", false, "2023-12-31", 1),
		shop(3, "Alpha", true, "2024-03-15", 0),
		shop(4, "Mike", true, "2024-01-01", 7),
		shop(5, "Charlie", false, "2024-05-05", 2),
		shop(6, "Echo", true, "2023-06-01", 5),
	}}
}

func TestFilterEngine_FilteredPageIsSortedLocally(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)

	page, err := engine.List(context.Background(), ListParams{
		SortBy:       sortBy("name"),
		InVacations:  "true",
		CreatedAfter: "2024-01-01",
		Page:         0,
		Size:         10,
	})
	require.NoError(t, err)

	// Zed(1) and Alpha(3) match; Mike was created on the bound itself
	assert.Equal(t, []int64{3, 1}, ids(page.Content))
	assert.Equal(t, int64(2), page.TotalElements)

	require.Len(t, store.queries, 1)
	q := store.queries[0]
	assert.Equal(t, repository.SortByID, q.Sort)
	require.NotNil(t, q.InVacations)
	assert.True(t, *q.InVacations)
	assert.Equal(t, "2024-01-01", q.CreatedAfter.String())
	assert.Nil(t, q.CreatedBefore)
}

func TestFilterEngine_SortNeverSpansFilteredPages(t *testing.T) {
	engine := NewFilterEngine(listFixture())
	ctx := context.Background()

	first, err := engine.List(ctx, ListParams{SortBy: sortBy("name"), InVacations: "true", Page: 0, Size: 2})
	require.NoError(t, err)
	second, err := engine.List(ctx, ListParams{SortBy: sortBy("name"), InVacations: "true", Page: 1, Size: 2})
	require.NoError(t, err)

	// id order splits vacation shops into {1,3} and {4,6}; each page is then sorted by name
	assert.Equal(t, []string{"Alpha", "Zed"}, []string{first.Content[0].Name, first.Content[1].Name})
	assert.Equal(t, []string{"Echo", "Mike"}, []string{second.Content[0].Name, second.Content[1].Name})
	assert.Equal(t, 2, first.TotalPages)
}

func TestFilterEngine_SortOnlyOrdersWholeResult(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)

	page, err := engine.List(context.Background(), ListParams{SortBy: sortBy("createdAt"), Page: 0, Size: 3})
	require.NoError(t, err)

	assert.Equal(t, []int64{6, 2, 4}, ids(page.Content))
	require.Len(t, store.queries, 1)
	assert.Equal(t, repository.SortByCreatedAt, store.queries[0].Sort)
	assert.False(t, store.queries[0].HasFilter())
}

func TestFilterEngine_UnknownSortKeyUsesProductCount(t *testing.T) {
	engine := NewFilterEngine(listFixture())

	page, err := engine.List(context.Background(), ListParams{SortBy: sortBy("whatever"), Size: 10})
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 2, 5, 1, 6, 4}, ids(page.Content))
}

func TestFilterEngine_EmptySortKeyUsesProductCount(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)

	page, err := engine.List(context.Background(), ListParams{SortBy: sortBy(""), Size: 10})
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 2, 5, 1, 6, 4}, ids(page.Content))
	assert.Equal(t, repository.SortByNbProducts, store.queries[0].Sort)
}

func TestFilterEngine_NoSortNoFilterUsesIDOrder(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)

	page, err := engine.List(context.Background(), ListParams{Size: 4})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(page.Content))
	assert.Equal(t, int64(6), page.TotalElements)
	assert.Equal(t, repository.SortByID, store.queries[0].Sort)
}

func TestFilterEngine_InvalidDateFailsBeforeQuery(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)

	_, err := engine.List(context.Background(), ListParams{CreatedBefore: "yesterday", Size: 10})

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "createdBefore", perr.Param)
	assert.Empty(t, store.queries)
}

func TestFilterEngine_FilterDistinguishesNoFilterFromNoMatch(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)
	ctx := context.Background()
	pageReq := repository.PageRequest{Size: 10}

	_, ok, err := engine.Filter(ctx, Filters{}, pageReq)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.queries)

	f, err := ParseFilters("", "2030-01-01", "")
	require.NoError(t, err)
	page, ok, err := engine.Filter(ctx, f, pageReq)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, page.Content)
}

func TestFilterEngine_VacationFlagPartitionsShops(t *testing.T) {
	store := listFixture()
	engine := NewFilterEngine(store)
	ctx := context.Background()

	open, err := engine.List(ctx, ListParams{InVacations: "false", Size: 100})
	require.NoError(t, err)
	closed, err := engine.List(ctx, ListParams{InVacations: "true", Size: 100})
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, s := range append(open.Content, closed.Content...) {
		seen[s.ID]++
	}
	assert.Len(t, seen, len(store.shops))
	for id, n := range seen {
		assert.Equal(t, 1, n, "shop %d", id)
	}
}

func TestFilterEngine_DateBoundsAreExclusive(t *testing.T) {
	engine := NewFilterEngine(listFixture())
	ctx := context.Background()

	after, err := engine.List(ctx, ListParams{CreatedAfter: "2024-02-01", Size: 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids(after.Content))

	before, err := engine.List(ctx, ListParams{CreatedBefore: "2024-02-01", Size: 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 4, 6}, ids(before.Content))

	window, err := engine.List(ctx, ListParams{CreatedAfter: "2024-01-01", CreatedBefore: "2024-02-01", Size: 100})
	require.NoError(t, err)
	assert.Empty(t, window.Content)
}

func TestSortShops_Stable(t *testing.T) {
	shops := []domain.Shop{
		shop(1, "b", false, "2024-01-01", 2),
		shop(2, "a", false, "2024-01-01", 1),
		shop(3, "c", false, "2024-01-01", 2),
		shop(4, "a", false, "2023-01-01", 1),
	}

	SortShops(shops, repository.SortByNbProducts)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(shops))

	SortShops(shops, repository.SortByName)
	assert.Equal(t, []int64{2, 4, 1, 3}, ids(shops))

	SortShops(shops, repository.SortByCreatedAt)
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(shops))
}

func TestApply_PassesCommute(t *testing.T) {
	shops := listFixture().shops
	preds := []Predicate{
		InVacations(true),
		CreatedAfter(domain.MustParseDate("2023-07-01")),
		CreatedBefore(domain.MustParseDate("2024-03-01")),
	}
	want := Apply(shops, preds...)
	assert.Equal(t, []int64{1, 4}, ids(want))

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		shuffled := append([]Predicate(nil), preds...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, ids(want), ids(Apply(shops, shuffled...)))
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	shops := listFixture().shops
	before := ids(shops)

	Apply(shops, InVacations(false))

	assert.Equal(t, before, ids(shops))
}
