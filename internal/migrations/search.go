package migrations

import (
	"github.com/jmoiron/sqlx"
)

// GetSearchMigrations returns the migrations backing the shop name index.
// SQLite gets an FTS5 table with the trigram tokenizer so that substring
// queries of three or more characters are served from the index.
func GetSearchMigrations() []Migration {
	return []Migration{
		{
			Version: 2,
			Name:    "create_shop_search_index",
			Up: func(tx *sqlx.Tx) error {
				if isPostgres(tx) {
					return execAll(tx,
						`CREATE TABLE shop_search (
							shop_id BIGINT PRIMARY KEY REFERENCES shops(id) ON DELETE CASCADE,
							name TEXT NOT NULL
						)`,
						`CREATE INDEX idx_shop_search_name ON shop_search (lower(name))`,
						`INSERT INTO shop_search (shop_id, name) SELECT id, name FROM shops`,
					)
				}
				return execAll(tx,
					`CREATE VIRTUAL TABLE shop_search USING fts5(shop_id UNINDEXED, name, tokenize = 'trigram')`,
					`INSERT INTO shop_search (shop_id, name) SELECT id, name FROM shops`,
				)
			},
			Down: func(tx *sqlx.Tx) error {
				return execAll(tx, `DROP TABLE IF EXISTS shop_search`)
			},
		},
	}
}
