package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/domain"
)

// ShopRepository defines domain-specific operations for shops
type ShopRepository interface {
	Repository[domain.Shop, int64]

	// FindPage returns one page of shops matching q, with opening hours loaded.
	FindPage(ctx context.Context, q ShopQuery) (domain.Page[domain.Shop], error)

	// FindByIDs loads the given shops in id order, skipping ids that do not
	// exist. Products and their categories are loaded when withProducts is set.
	FindByIDs(ctx context.Context, ids []int64, withProducts bool) ([]domain.Shop, error)
}

type shopRow struct {
	ID          int64       `db:"id"`
	Name        string      `db:"name"`
	InVacations bool        `db:"in_vacations"`
	CreatedAt   domain.Date `db:"created_at"`
	NbProducts  int64       `db:"nb_products"`
}

func (r shopRow) toDomain() domain.Shop {
	return domain.Shop{
		ID:           r.ID,
		Name:         r.Name,
		InVacations:  r.InVacations,
		CreatedAt:    r.CreatedAt,
		NbProducts:   r.NbProducts,
		OpeningHours: []domain.OpeningHours{},
	}
}

type openingHoursRow struct {
	ShopID  int64            `db:"shop_id"`
	Day     int              `db:"day"`
	OpenAt  domain.ClockTime `db:"open_at"`
	CloseAt domain.ClockTime `db:"close_at"`
}

const selectShopByID = `
	SELECT s.id, s.name, s.in_vacations, s.created_at,
		(SELECT COUNT(*) FROM products p WHERE p.shop_id = s.id) AS nb_products
	FROM shops s WHERE s.id = ?`

// shopRepositoryImpl implements ShopRepository
type shopRepositoryImpl struct {
	ds    *datastore.Datastore
	stmts *PreparedStatementCache
}

// NewShopRepository creates a new shop repository
func NewShopRepository(ds *datastore.Datastore) ShopRepository {
	return &shopRepositoryImpl{
		ds:    ds,
		stmts: NewPreparedStatementCache(ds.DB),
	}
}

// Save creates the shop when its ID is zero and updates it otherwise. The
// opening hours are replaced wholesale in the same transaction. CreatedAt is
// only written on creation.
func (r *shopRepositoryImpl) Save(ctx context.Context, shop domain.Shop) (domain.Shop, error) {
	err := r.ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if shop.ID == 0 {
			id, err := r.insertShop(ctx, tx, shop)
			if err != nil {
				return err
			}
			shop.ID = id
		} else if err := r.updateShop(ctx, tx, shop); err != nil {
			return err
		}
		return r.replaceOpeningHours(ctx, tx, shop.ID, shop.OpeningHours)
	})
	if err != nil {
		return domain.Shop{}, err
	}

	return r.FindByID(ctx, shop.ID)
}

func (r *shopRepositoryImpl) insertShop(ctx context.Context, tx *sqlx.Tx, shop domain.Shop) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx,
		tx.Rebind(`INSERT INTO shops (name, in_vacations, created_at) VALUES (?, ?, ?) RETURNING id`),
		shop.Name, shop.InVacations, shop.CreatedAt.String(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create shop: %w", translateConstraint(err, "shop"))
	}
	return id, nil
}

func (r *shopRepositoryImpl) updateShop(ctx context.Context, tx *sqlx.Tx, shop domain.Shop) error {
	result, err := tx.ExecContext(ctx,
		tx.Rebind(`UPDATE shops SET name = ?, in_vacations = ? WHERE id = ?`),
		shop.Name, shop.InVacations, shop.ID)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", translateConstraint(err, "shop"))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("shop with ID %d: %w", shop.ID, ErrNotFound)
	}
	return nil
}

func (r *shopRepositoryImpl) replaceOpeningHours(ctx context.Context, tx *sqlx.Tx, shopID int64, hours []domain.OpeningHours) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM opening_hours WHERE shop_id = ?`), shopID); err != nil {
		return fmt.Errorf("failed to clear opening hours: %w", err)
	}
	if len(hours) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(hours))
	for _, h := range hours {
		rows = append(rows, goqu.Record{
			"shop_id":  shopID,
			"day":      h.Day,
			"open_at":  clockText(h.OpenAt),
			"close_at": clockText(h.CloseAt),
		})
	}

	query, args, err := r.ds.Builder().Insert("opening_hours").Prepared(true).Rows(rows...).ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert opening hours: %w", translateConstraint(err, "opening hours"))
	}
	return nil
}

func clockText(c domain.ClockTime) string {
	v, _ := c.Value()
	return v.(string)
}

// FindByID retrieves a shop with its opening hours
func (r *shopRepositoryImpl) FindByID(ctx context.Context, id int64) (domain.Shop, error) {
	stmt, err := r.stmts.Get(ctx, selectShopByID)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("failed to prepare shop lookup: %w", err)
	}

	var row shopRow
	if err := stmt.GetContext(ctx, &row, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Shop{}, fmt.Errorf("shop with ID %d: %w", id, ErrNotFound)
		}
		return domain.Shop{}, fmt.Errorf("failed to find shop: %w", err)
	}

	shops := []domain.Shop{row.toDomain()}
	if err := r.attachOpeningHours(ctx, shops); err != nil {
		return domain.Shop{}, err
	}
	return shops[0], nil
}

// FindAll retrieves every shop in id order
func (r *shopRepositoryImpl) FindAll(ctx context.Context) ([]domain.Shop, error) {
	page, err := r.FindPage(ctx, ShopQuery{Sort: SortByID})
	if err != nil {
		return nil, err
	}
	return page.Content, nil
}

// FindPage runs the shop query and its matching count
func (r *shopRepositoryImpl) FindPage(ctx context.Context, q ShopQuery) (domain.Page[domain.Shop], error) {
	pageSQL, pageArgs, countSQL, countArgs, err := buildShopPageQueries(r.ds.Builder(), q)
	if err != nil {
		return domain.Page[domain.Shop]{}, err
	}

	var total int64
	if err := r.ds.DB.QueryRowxContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("failed to count shops: %w", err)
	}

	var rows []shopRow
	if err := r.ds.DB.SelectContext(ctx, &rows, pageSQL, pageArgs...); err != nil {
		return domain.Page[domain.Shop]{}, fmt.Errorf("failed to find shops: %w", err)
	}

	shops := make([]domain.Shop, 0, len(rows))
	for _, row := range rows {
		shops = append(shops, row.toDomain())
	}
	if err := r.attachOpeningHours(ctx, shops); err != nil {
		return domain.Page[domain.Shop]{}, err
	}

	size := q.Size
	if size <= 0 {
		size = len(shops)
	}
	return domain.NewPage(shops, q.Page, size, total), nil
}

// FindByIDs loads shops by id for the text index
func (r *shopRepositoryImpl) FindByIDs(ctx context.Context, ids []int64, withProducts bool) ([]domain.Shop, error) {
	if len(ids) == 0 {
		return []domain.Shop{}, nil
	}

	query, args, err := r.ds.Builder().
		From(goqu.T("shops").As("s")).
		Prepared(true).
		Select(shopColumns()...).
		Where(goqu.I("s.id").In(ids)).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	var rows []shopRow
	if err := r.ds.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find shops: %w", err)
	}

	shops := make([]domain.Shop, 0, len(rows))
	for _, row := range rows {
		shops = append(shops, row.toDomain())
	}
	// the two loaders fill disjoint fields of each shop
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.attachOpeningHours(gctx, shops) })
	if withProducts {
		g.Go(func() error { return r.attachProducts(gctx, shops) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shops, nil
}

// DeleteByID detaches the shop's products and removes the shop in one transaction
func (r *shopRepositoryImpl) DeleteByID(ctx context.Context, id int64) error {
	return r.ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE products SET shop_id = NULL WHERE shop_id = ?`), id); err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM shops WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete shop: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("shop with ID %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

// ExistsByID checks if a shop exists by its ID
func (r *shopRepositoryImpl) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return existsByID(ctx, r.ds.DB, "shops", id)
}

func (r *shopRepositoryImpl) attachOpeningHours(ctx context.Context, shops []domain.Shop) error {
	if len(shops) == 0 {
		return nil
	}

	index := make(map[int64]int, len(shops))
	ids := make([]int64, 0, len(shops))
	for i, s := range shops {
		index[s.ID] = i
		ids = append(ids, s.ID)
	}

	query, args, err := r.ds.Builder().
		From("opening_hours").
		Prepared(true).
		Select("shop_id", "day", "open_at", "close_at").
		Where(goqu.C("shop_id").In(ids)).
		Order(goqu.C("shop_id").Asc(), goqu.C("day").Asc(), goqu.C("open_at").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}

	var rows []openingHoursRow
	if err := r.ds.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("failed to load opening hours: %w", err)
	}

	for _, row := range rows {
		i := index[row.ShopID]
		shops[i].OpeningHours = append(shops[i].OpeningHours, domain.OpeningHours{
			Day:     row.Day,
			OpenAt:  row.OpenAt,
			CloseAt: row.CloseAt,
		})
	}
	return nil
}

func (r *shopRepositoryImpl) attachProducts(ctx context.Context, shops []domain.Shop) error {
	ids := make([]int64, 0, len(shops))
	for _, s := range shops {
		ids = append(ids, s.ID)
	}

	byShop, err := loadProductsByShop(ctx, r.ds, ids)
	if err != nil {
		return err
	}
	for i := range shops {
		products := byShop[shops[i].ID]
		if products == nil {
			products = []domain.Product{}
		}
		shops[i].Products = products
	}
	return nil
}

func existsByID(ctx context.Context, q querier, table string, id int64) (bool, error) {
	var exists bool
	query := q.Rebind(fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?)", table))
	if err := q.QueryRowxContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return exists, nil
}
