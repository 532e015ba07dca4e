package migrations

import (
	"github.com/jmoiron/sqlx"
)

// GetInitialMigrations returns all initial migrations
func GetInitialMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_catalog_tables",
			Up: func(tx *sqlx.Tx) error {
				if isPostgres(tx) {
					return execAll(tx, postgresCatalogSchema...)
				}
				return execAll(tx, sqliteCatalogSchema...)
			},
			Down: func(tx *sqlx.Tx) error {
				// Drop tables in reverse order due to foreign key constraints
				return execAll(tx,
					`DROP TABLE IF EXISTS product_categories`,
					`DROP TABLE IF EXISTS products`,
					`DROP TABLE IF EXISTS categories`,
					`DROP TABLE IF EXISTS opening_hours`,
					`DROP TABLE IF EXISTS shops`,
				)
			},
		},
	}
}

var sqliteCatalogSchema = []string{
	`CREATE TABLE shops (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 255),
		in_vacations BOOLEAN NOT NULL DEFAULT 0,
		created_at DATE NOT NULL
	)`,
	`CREATE TABLE opening_hours (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		shop_id INTEGER NOT NULL,
		day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 7),
		open_at TEXT NOT NULL,
		close_at TEXT NOT NULL,
		FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE CHECK (length(name) BETWEEN 1 AND 255)
	)`,
	`CREATE TABLE products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL CHECK (length(name) BETWEEN 1 AND 255),
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL CHECK (price >= 0),
		shop_id INTEGER,
		FOREIGN KEY (shop_id) REFERENCES shops(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE product_categories (
		product_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		PRIMARY KEY (product_id, category_id),
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX idx_opening_hours_shop_id ON opening_hours(shop_id)`,
	`CREATE INDEX idx_products_shop_id ON products(shop_id)`,
}

var postgresCatalogSchema = []string{
	`CREATE TABLE shops (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL CHECK (length(name) >= 1),
		in_vacations BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATE NOT NULL
	)`,
	`CREATE TABLE opening_hours (
		id BIGSERIAL PRIMARY KEY,
		shop_id BIGINT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		day INTEGER NOT NULL CHECK (day BETWEEN 1 AND 7),
		open_at TEXT NOT NULL,
		close_at TEXT NOT NULL
	)`,
	`CREATE TABLE categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE CHECK (length(name) >= 1)
	)`,
	`CREATE TABLE products (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL CHECK (length(name) >= 1),
		description TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
		shop_id BIGINT REFERENCES shops(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE product_categories (
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
		PRIMARY KEY (product_id, category_id)
	)`,
	`CREATE INDEX idx_opening_hours_shop_id ON opening_hours(shop_id)`,
	`CREATE INDEX idx_products_shop_id ON products(shop_id)`,
}
