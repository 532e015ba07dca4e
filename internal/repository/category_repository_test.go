package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/testutil"
)

func TestCategoryRepository_CRUD(t *testing.T) {
	ds, cleanup := testutil.SetupTestDatastoreWithMigrations(t, "TestCategoryRepository_CRUD")
	defer cleanup()

	repo := NewCategoryRepository(ds)
	ctx := context.Background()

	saved, err := repo.Save(ctx, domain.Category{Name: "Garden"})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)

	_, err = repo.Save(ctx, domain.Category{Name: "Garden"})
	assert.ErrorIs(t, err, ErrDuplicate)

	byName, err := repo.FindByName(ctx, "Garden")
	require.NoError(t, err)
	assert.Equal(t, saved, byName)

	saved.Name = "Outdoor"
	renamed, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", renamed.Name)

	_, err = repo.Save(ctx, domain.Category{ID: 999, Name: "Nope"})
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outdoor", found.Name)

	require.NoError(t, repo.DeleteByID(ctx, saved.ID))
	exists, err := repo.ExistsByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID), ErrNotFound)
}

func TestCategoryRepository_FindPage(t *testing.T) {
	ds, cleanup := testutil.SetupTestDatastoreWithMigrations(t, "TestCategoryRepository_FindPage")
	defer cleanup()

	repo := NewCategoryRepository(ds)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := repo.Save(ctx, domain.Category{Name: name})
		require.NoError(t, err)
	}

	page, err := repo.FindPage(ctx, PageRequest{Page: 1, Size: 5})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "F", page.Content[0].Name)
	assert.Equal(t, int64(6), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}
