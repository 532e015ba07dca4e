package repository

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
)

// PreparedStatementCache caches prepared statements for the fixed queries
// the repositories run on every request.
type PreparedStatementCache struct {
	mu         sync.RWMutex
	statements map[string]*sqlx.Stmt
	db         *sqlx.DB
}

// NewPreparedStatementCache creates a new prepared statement cache
func NewPreparedStatementCache(db *sqlx.DB) *PreparedStatementCache {
	return &PreparedStatementCache{
		statements: make(map[string]*sqlx.Stmt),
		db:         db,
	}
}

// Get retrieves or creates a prepared statement. The query is rebound to the
// driver's placeholder style before preparing.
func (c *PreparedStatementCache) Get(ctx context.Context, query string) (*sqlx.Stmt, error) {
	c.mu.RLock()
	if stmt, ok := c.statements[query]; ok {
		c.mu.RUnlock()
		return stmt, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if stmt, ok := c.statements[query]; ok {
		return stmt, nil
	}

	stmt, err := c.db.PreparexContext(ctx, c.db.Rebind(query))
	if err != nil {
		return nil, err
	}

	c.statements[query] = stmt
	return stmt, nil
}

// Close closes all prepared statements and clears the cache
func (c *PreparedStatementCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for _, stmt := range c.statements {
		if err := stmt.Close(); err != nil {
			lastErr = err
		}
	}

	c.statements = make(map[string]*sqlx.Stmt)
	return lastErr
}

// Clear removes a specific prepared statement from cache
func (c *PreparedStatementCache) Clear(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if stmt, ok := c.statements[query]; ok {
		delete(c.statements, query)
		return stmt.Close()
	}

	return nil
}

// Size returns the number of cached prepared statements
func (c *PreparedStatementCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statements)
}
