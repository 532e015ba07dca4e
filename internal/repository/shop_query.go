package repository

import (
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/jbweber/homelab/storefront/internal/domain"
)

// ShopSort names the column a shop page is ordered by.
type ShopSort string

const (
	SortByID         ShopSort = "id"
	SortByName       ShopSort = "name"
	SortByCreatedAt  ShopSort = "createdAt"
	SortByNbProducts ShopSort = "nbProducts"
)

var shopSortColumns = map[ShopSort]string{
	SortByID:         "id",
	SortByName:       "name",
	SortByCreatedAt:  "created_at",
	SortByNbProducts: "nb_products",
}

// ShopQuery describes one page of shops. Every predicate is optional and
// present predicates are combined with AND. Date bounds are exclusive.
type ShopQuery struct {
	InVacations   *bool
	CreatedAfter  *domain.Date
	CreatedBefore *domain.Date
	Sort          ShopSort
	PageRequest
}

// HasFilter reports whether any predicate is set.
func (q ShopQuery) HasFilter() bool {
	return q.InVacations != nil || q.CreatedAfter != nil || q.CreatedBefore != nil
}

func (q ShopQuery) predicates() []exp.Expression {
	var where []exp.Expression
	if q.InVacations != nil {
		where = append(where, goqu.I("s.in_vacations").Eq(*q.InVacations))
	}
	if q.CreatedAfter != nil {
		where = append(where, goqu.I("s.created_at").Gt(q.CreatedAfter.String()))
	}
	if q.CreatedBefore != nil {
		where = append(where, goqu.I("s.created_at").Lt(q.CreatedBefore.String()))
	}
	return where
}

func (q ShopQuery) orderColumn() string {
	if col, ok := shopSortColumns[q.Sort]; ok {
		return col
	}
	return shopSortColumns[SortByID]
}

// nbProductsColumn derives the product count of the outer shop row.
var nbProductsColumn = goqu.L("(SELECT COUNT(*) FROM products p WHERE p.shop_id = s.id)").As("nb_products")

func shopColumns() []interface{} {
	return []interface{}{
		goqu.I("s.id").As("id"),
		goqu.I("s.name").As("name"),
		goqu.I("s.in_vacations").As("in_vacations"),
		goqu.I("s.created_at").As("created_at"),
		nbProductsColumn,
	}
}

// buildShopPageQueries renders the page select and the matching count
// select for q.
func buildShopPageQueries(dialect goqu.DialectWrapper, q ShopQuery) (pageSQL string, pageArgs []interface{}, countSQL string, countArgs []interface{}, err error) {
	base := dialect.From(goqu.T("shops").As("s")).Prepared(true)
	if where := q.predicates(); len(where) > 0 {
		base = base.Where(goqu.And(where...))
	}

	col := q.orderColumn()
	page := base.Select(shopColumns()...).Order(goqu.I(col).Asc())
	if col != "id" {
		page = page.OrderAppend(goqu.I("id").Asc())
	}
	if q.Limit() > 0 {
		page = page.Limit(q.Limit()).Offset(q.Offset())
	}

	pageSQL, pageArgs, err = page.ToSQL()
	if err != nil {
		return "", nil, "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	countSQL, countArgs, err = base.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return "", nil, "", nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	return pageSQL, pageArgs, countSQL, countArgs, nil
}
