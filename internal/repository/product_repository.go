package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/domain"
)

// ProductQuery selects a page of products. Nil filters are ignored.
type ProductQuery struct {
	ShopID     *int64
	CategoryID *int64
	PageRequest
}

// ProductRepository defines domain-specific operations for products
type ProductRepository interface {
	Repository[domain.Product, int64]
	FindPage(ctx context.Context, q ProductQuery) (domain.Page[domain.Product], error)
}

type productRow struct {
	ID          int64         `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	Price       float64       `db:"price"`
	ShopID      sql.NullInt64 `db:"shop_id"`
}

func (r productRow) toDomain() domain.Product {
	p := domain.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Categories:  []domain.Category{},
	}
	if r.ShopID.Valid {
		id := r.ShopID.Int64
		p.ShopID = &id
	}
	return p
}

type productCategoryRow struct {
	ProductID int64  `db:"product_id"`
	ID        int64  `db:"id"`
	Name      string `db:"name"`
}

// productRepositoryImpl implements ProductRepository
type productRepositoryImpl struct {
	ds *datastore.Datastore
}

// NewProductRepository creates a new product repository
func NewProductRepository(ds *datastore.Datastore) ProductRepository {
	return &productRepositoryImpl{ds: ds}
}

// Save creates or updates a product and replaces its category links
func (r *productRepositoryImpl) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	err := r.ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if product.ID == 0 {
			err := tx.QueryRowxContext(ctx,
				tx.Rebind(`INSERT INTO products (name, description, price, shop_id) VALUES (?, ?, ?, ?) RETURNING id`),
				product.Name, product.Description, product.Price, nullableID(product.ShopID),
			).Scan(&product.ID)
			if err != nil {
				return fmt.Errorf("failed to create product: %w", translateConstraint(err, "product"))
			}
		} else {
			result, err := tx.ExecContext(ctx,
				tx.Rebind(`UPDATE products SET name = ?, description = ?, price = ?, shop_id = ? WHERE id = ?`),
				product.Name, product.Description, product.Price, nullableID(product.ShopID), product.ID)
			if err != nil {
				return fmt.Errorf("failed to update product: %w", translateConstraint(err, "product"))
			}
			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %w", err)
			}
			if rowsAffected == 0 {
				return fmt.Errorf("product with ID %d: %w", product.ID, ErrNotFound)
			}
		}
		return r.replaceCategories(ctx, tx, product.ID, product.Categories)
	})
	if err != nil {
		return domain.Product{}, err
	}

	return r.FindByID(ctx, product.ID)
}

func (r *productRepositoryImpl) replaceCategories(ctx context.Context, tx *sqlx.Tx, productID int64, categories []domain.Category) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM product_categories WHERE product_id = ?`), productID); err != nil {
		return fmt.Errorf("failed to clear product categories: %w", err)
	}

	seen := make(map[int64]bool, len(categories))
	rows := make([]interface{}, 0, len(categories))
	for _, c := range categories {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		rows = append(rows, goqu.Record{"product_id": productID, "category_id": c.ID})
	}
	if len(rows) == 0 {
		return nil
	}

	query, args, err := r.ds.Builder().Insert("product_categories").Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to link product categories: %w", translateConstraint(err, "product category"))
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// FindByID retrieves a product with its categories
func (r *productRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	var row productRow
	err := r.ds.DB.GetContext(ctx, &row,
		r.ds.DB.Rebind(`SELECT id, name, description, price, shop_id FROM products WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
		}
		return domain.Product{}, fmt.Errorf("failed to find product: %w", err)
	}

	products := []domain.Product{row.toDomain()}
	if err := attachCategories(ctx, r.ds, products); err != nil {
		return domain.Product{}, err
	}
	return products[0], nil
}

// FindAll retrieves every product in id order
func (r *productRepositoryImpl) FindAll(ctx context.Context) ([]domain.Product, error) {
	page, err := r.FindPage(ctx, ProductQuery{})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// FindPage lists products filtered by shop and category
func (r *productRepositoryImpl) FindPage(ctx context.Context, q ProductQuery) (domain.Page[domain.Product], error) {
	var where []exp.Expression
	if q.ShopID != nil {
		where = append(where, goqu.I("p.shop_id").Eq(*q.ShopID))
	}
	if q.CategoryID != nil {
		where = append(where, goqu.L(
			"EXISTS (SELECT 1 FROM product_categories pc WHERE pc.product_id = p.id AND pc.category_id = ?)",
			*q.CategoryID))
	}

	base := r.ds.Builder().From(goqu.T("products").As("p")).Prepared(true)
	if len(where) > 0 {
		base = base.Where(goqu.And(where...))
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return domain.Page[domain.Product]{}, errors.Join(ErrBuildingQueryFailed, err)
	}

	page := base.Select(
		goqu.I("p.id").As("id"),
		goqu.I("p.name").As("name"),
		goqu.I("p.description").As("description"),
		goqu.I("p.price").As("price"),
		goqu.I("p.shop_id").As("shop_id"),
	).Order(goqu.I("id").Asc())
	if q.Limit() > 0 {
		page = page.Limit(q.Limit()).Offset(q.Offset())
	}
	pageSQL, pageArgs, err := page.ToSQL()
	if err != nil {
		return domain.Page[domain.Product]{}, errors.Join(ErrBuildingQueryFailed, err)
	}

	var total int64
	if err := r.ds.DB.QueryRowxContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("failed to count products: %w", err)
	}

	var rows []productRow
	if err := r.ds.DB.SelectContext(ctx, &rows, pageSQL, pageArgs...); err != nil {
		return domain.Page[domain.Product]{}, fmt.Errorf("failed to find products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	if err := attachCategories(ctx, r.ds, products); err != nil {
		return domain.Page[domain.Product]{}, err
	}

	size := q.Size
	if size <= 0 {
		size = len(products)
	}
	return domain.NewPage(products, q.Page, size, total), nil
}

// DeleteByID removes a product; its category links cascade
func (r *productRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.ds.DB.ExecContext(ctx, r.ds.DB.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// ExistsByID checks if a product exists by its ID
func (r *productRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.ds.DB, "products", id)
}

// loadProductsByShop returns the products of each shop, with categories, keyed by shop id.
func loadProductsByShop(ctx context.Context, ds *datastore.Datastore, shopIDs []int64) (map[int64][]domain.Product, error) {
	byShop := make(map[int64][]domain.Product, len(shopIDs))
	if len(shopIDs) == 0 {
		return byShop, nil
	}

	query, args, err := ds.Builder().
		From("products").
		Prepared(true).
		Select("id", "name", "description", "price", "shop_id").
		Where(goqu.C("shop_id").In(shopIDs)).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	var rows []productRow
	if err := ds.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load shop products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	if err := attachCategories(ctx, ds, products); err != nil {
		return nil, err
	}

	for _, p := range products {
		byShop[*p.ShopID] = append(byShop[*p.ShopID], p)
	}
	return byShop, nil
}

// attachCategories fills in the categories of each product in place.
func attachCategories(ctx context.Context, ds *datastore.Datastore, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[int64]int, len(products))
	ids := make([]int64, 0, len(products))
	for i, p := range products {
		index[p.ID] = i
		ids = append(ids, p.ID)
	}

	query, args, err := ds.Builder().
		From(goqu.T("product_categories").As("pc")).
		Prepared(true).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.I("c.id").Eq(goqu.I("pc.category_id")))).
		Select(goqu.I("pc.product_id").As("product_id"), goqu.I("c.id").As("id"), goqu.I("c.name").As("name")).
		Where(goqu.I("pc.product_id").In(ids)).
		Order(goqu.I("pc.product_id").Asc(), goqu.I("c.id").Asc()).
		ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}

	var rows []productCategoryRow
	if err := ds.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to load product categories: %w", err)
	}

	for _, row := range rows {
		i := index[row.ProductID]
		products[i].Categories = append(products[i].Categories, domain.Category{ID: row.ID, Name: row.Name})
	}
	return nil
}
