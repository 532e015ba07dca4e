// Package catalog implements the product and category use cases.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jbweber/homelab/storefront/internal/cache"
	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 1000
)

// Every catalog write can change a shop summary, so each one drops the
// cached search results.
func flushSearchCache(ctx context.Context, c cache.Client) {
	if err := c.Flush(ctx); err != nil {
		logger.From(ctx).Warn("failed to flush search cache", logger.Component("catalog"), logger.Err(err))
	}
}

func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if n := utf8.RuneCountInString(name); n == 0 || n > maxNameLength {
		return "", fmt.Errorf("%w: name must be between 1 and %d characters", repository.ErrInvalidEntity, maxNameLength)
	}
	return name, nil
}

func orNoop(c cache.Client) cache.Client {
	if c == nil {
		return cache.Noop{}
	}
	return c
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
