package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/domain"
)

// CategoryRepository defines domain-specific operations for categories
type CategoryRepository interface {
	Repository[domain.Category, int64]
	FindPage(ctx context.Context, p PageRequest) (domain.Page[domain.Category], error)
	FindByName(ctx context.Context, name string) (domain.Category, error)
}

// categoryRepositoryImpl implements CategoryRepository
type categoryRepositoryImpl struct {
	ds *datastore.Datastore
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(ds *datastore.Datastore) CategoryRepository {
	return &categoryRepositoryImpl{ds: ds}
}

// Save creates or renames a category. Names are unique.
func (r *categoryRepositoryImpl) Save(ctx context.Context, category domain.Category) (domain.Category, error) {
	db := r.ds.DB
	if category.ID == 0 {
		err := db.QueryRowxContext(ctx,
			db.Rebind(`INSERT INTO categories (name) VALUES (?) RETURNING id`), category.Name,
		).Scan(&category.ID)
		if err != nil {
			return domain.Category{}, fmt.Errorf("failed to create category: %w", translateConstraint(err, "category "+category.Name))
		}
		return category, nil
	}

	result, err := db.ExecContext(ctx, db.Rebind(`UPDATE categories SET name = ? WHERE id = ?`), category.Name, category.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to update category: %w", translateConstraint(err, "category "+category.Name))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return domain.Category{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.Category{}, fmt.Errorf("category with ID %d: %w", category.ID, ErrNotFound)
	}
	return category, nil
}

// FindByID retrieves a category by its ID
func (r *categoryRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.Category, error) {
	var category domain.Category
	err := r.ds.DB.QueryRowxContext(ctx, r.ds.DB.Rebind(`SELECT id, name FROM categories WHERE id = ?`), id).
		Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, fmt.Errorf("category with ID %d: %w", id, ErrNotFound)
		}
		return domain.Category{}, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// FindByName retrieves a category by its unique name
func (r *categoryRepositoryImpl) FindByName(ctx context.Context, name string) (domain.Category, error) {
	var category domain.Category
	err := r.ds.DB.QueryRowxContext(ctx, r.ds.DB.Rebind(`SELECT id, name FROM categories WHERE name = ?`), name).
		Scan(&category.ID, &category.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, fmt.Errorf("category with name %s: %w", name, ErrNotFound)
		}
		return domain.Category{}, fmt.Errorf("failed to find category by name: %w", err)
	}
	return category, nil
}

// FindAll retrieves every category in id order
func (r *categoryRepositoryImpl) FindAll(ctx context.Context) ([]domain.Category, error) {
	page, err := r.FindPage(ctx, PageRequest{})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// FindPage lists categories in id order
func (r *categoryRepositoryImpl) FindPage(ctx context.Context, p PageRequest) (domain.Page[domain.Category], error) {
	var total int64
	if err := r.ds.DB.QueryRowxContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return domain.Page[domain.Category]{}, fmt.Errorf("failed to count categories: %w", err)
	}

	ds := r.ds.Builder().From("categories").Prepared(true).Select("id", "name").Order(goqu.C("id").Asc())
	if p.Limit() > 0 {
		ds = ds.Limit(p.Limit()).Offset(p.Offset())
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return domain.Page[domain.Category]{}, errors.Join(ErrBuildingQueryFailed, err)
	}

	rows, err := r.ds.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		return domain.Page[domain.Category]{}, fmt.Errorf("failed to find categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return domain.Page[domain.Category]{}, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Category]{}, fmt.Errorf("error iterating categories: %w", err)
	}

	size := p.Size
	if size <= 0 {
		size = len(categories)
	}
	return domain.NewPage(categories, p.Page, size, total), nil
}

// DeleteByID removes a category; links to products cascade
func (r *categoryRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.ds.DB.ExecContext(ctx, r.ds.DB.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("category with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// ExistsByID checks if a category exists by its ID
func (r *categoryRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.ds.DB, "categories", id)
}
