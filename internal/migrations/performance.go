package migrations

import (
	"github.com/jmoiron/sqlx"
)

// GetPerformanceMigrations returns performance optimization migrations
func GetPerformanceMigrations() []Migration {
	return []Migration{
		{
			Version: 10,
			Name:    "add_performance_indices",
			Up: func(tx *sqlx.Tx) error {
				// Indices backing the shop filter and sort paths
				return execAll(tx,
					"CREATE INDEX IF NOT EXISTS idx_shops_name ON shops(name)",
					"CREATE INDEX IF NOT EXISTS idx_shops_created_at ON shops(created_at)",
					"CREATE INDEX IF NOT EXISTS idx_shops_in_vacations_created_at ON shops(in_vacations, created_at)",
					"CREATE INDEX IF NOT EXISTS idx_product_categories_category_id ON product_categories(category_id)",
				)
			},
			Down: func(tx *sqlx.Tx) error {
				return execAll(tx,
					"DROP INDEX IF EXISTS idx_shops_name",
					"DROP INDEX IF EXISTS idx_shops_created_at",
					"DROP INDEX IF EXISTS idx_shops_in_vacations_created_at",
					"DROP INDEX IF EXISTS idx_product_categories_category_id",
				)
			},
		},
	}
}
