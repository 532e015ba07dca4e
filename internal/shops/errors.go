package shops

import (
	"fmt"

	"github.com/jbweber/homelab/storefront/internal/repository"
)

// ValidationError rejects a shop write before anything is persisted.
// It matches repository.ErrInvalidEntity as well as its cause.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{e.Err, repository.ErrInvalidEntity}
}

// ParseError reports a query parameter that could not be parsed.
type ParseError struct {
	Param string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Value, e.Param, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
