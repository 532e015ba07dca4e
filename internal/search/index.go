// Package search maintains the shop name index used for substring search.
package search

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"github.com/jbweber/homelab/storefront/internal/datastore"
	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/logger"
)

// trigram tokens are three runes long; shorter needles bypass the index
const minIndexedRunes = 3

// ShopLoader hydrates shops found in the index.
type ShopLoader interface {
	FindByIDs(ctx context.Context, ids []int64, withProducts bool) ([]domain.Shop, error)
}

// ShopIndex answers case-insensitive substring queries on shop names.
// It supports no other predicate and no pagination.
type ShopIndex struct {
	ds    *datastore.Datastore
	shops ShopLoader
}

// NewShopIndex creates an index over the shop_search table.
func NewShopIndex(ds *datastore.Datastore, shops ShopLoader) *ShopIndex {
	return &ShopIndex{ds: ds, shops: shops}
}

// Index adds or refreshes the entry for shop.
func (i *ShopIndex) Index(ctx context.Context, shop domain.Shop) error {
	return i.ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM shop_search WHERE shop_id = ?`), shop.ID); err != nil {
			return fmt.Errorf("failed to clear index entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO shop_search (shop_id, name) VALUES (?, ?)`), shop.ID, shop.Name); err != nil {
			return fmt.Errorf("failed to index shop: %w", err)
		}
		return nil
	})
}

// Remove drops the entry for a shop. Removing a missing entry is not an error.
func (i *ShopIndex) Remove(ctx context.Context, shopID int64) error {
	if _, err := i.ds.DB.ExecContext(ctx, i.ds.DB.Rebind(`DELETE FROM shop_search WHERE shop_id = ?`), shopID); err != nil {
		return fmt.Errorf("failed to remove index entry: %w", err)
	}
	return nil
}

// Rebuild repopulates the index from the shops table and returns the number of entries.
func (i *ShopIndex) Rebuild(ctx context.Context) (int, error) {
	var count int
	err := i.ds.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shop_search`); err != nil {
			return fmt.Errorf("failed to clear index: %w", err)
		}
		result, err := tx.ExecContext(ctx, `INSERT INTO shop_search (shop_id, name) SELECT id, name FROM shops`)
		if err != nil {
			return fmt.Errorf("failed to populate index: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		count = int(n)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.From(ctx).Info("rebuilt shop index", logger.Component("search"), logger.Count(count))
	return count, nil
}

// FindByNameContaining returns the shops whose name contains substring,
// ignoring case, in id order. Products and their categories are loaded.
func (i *ShopIndex) FindByNameContaining(ctx context.Context, substring string) ([]domain.Shop, error) {
	ids, err := i.matchingIDs(ctx, substring)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Shop{}, nil
	}

	shops, err := i.shops.FindByIDs(ctx, ids, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load matching shops: %w", err)
	}
	return shops, nil
}

func (i *ShopIndex) matchingIDs(ctx context.Context, substring string) ([]int64, error) {
	var (
		query string
		arg   string
	)
	switch {
	case !i.ds.IsSQLite():
		query = `SELECT shop_id FROM shop_search WHERE strpos(lower(name), lower(?)) > 0 ORDER BY shop_id`
		arg = substring
	case utf8.RuneCountInString(substring) >= minIndexedRunes:
		query = `SELECT shop_id FROM shop_search WHERE shop_search MATCH ? ORDER BY shop_id`
		arg = phrase(substring)
	default:
		return i.scanIDs(ctx, substring)
	}

	var ids []int64
	if err := i.ds.DB.SelectContext(ctx, &ids, i.ds.DB.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("failed to query shop index: %w", err)
	}
	return ids, nil
}

// scanIDs matches needles too short for the trigram index. SQLite's lower()
// folds ASCII only, so names are folded here to agree with the index.
func (i *ShopIndex) scanIDs(ctx context.Context, substring string) ([]int64, error) {
	var rows []struct {
		ShopID int64  `db:"shop_id"`
		Name   string `db:"name"`
	}
	if err := i.ds.DB.SelectContext(ctx, &rows, `SELECT shop_id, name FROM shop_search ORDER BY shop_id`); err != nil {
		return nil, fmt.Errorf("failed to scan shop index: %w", err)
	}

	needle := strings.ToLower(substring)
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.Name), needle) {
			ids = append(ids, row.ShopID)
		}
	}
	return ids, nil
}

// phrase quotes s as a single FTS5 phrase so that query syntax in user input is inert.
func phrase(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
