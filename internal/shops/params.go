package shops

import (
	"strconv"
	"strings"

	"github.com/jbweber/homelab/storefront/internal/domain"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

// Filters holds the optional shop predicates shared by listing and search.
type Filters struct {
	InVacations   *bool
	CreatedAfter  *domain.Date
	CreatedBefore *domain.Date
}

// Empty reports whether no predicate is set.
func (f Filters) Empty() bool {
	return f.InVacations == nil && f.CreatedAfter == nil && f.CreatedBefore == nil
}

// ParseFilters parses raw query values. Empty strings leave a predicate unset.
// Dates are ISO-8601 calendar dates.
func ParseFilters(inVacations, createdAfter, createdBefore string) (Filters, error) {
	var f Filters

	if v := strings.TrimSpace(inVacations); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Filters{}, &ParseError{Param: "inVacations", Value: inVacations, Err: err}
		}
		f.InVacations = &b
	}

	after, err := parseDate("createdAfter", createdAfter)
	if err != nil {
		return Filters{}, err
	}
	f.CreatedAfter = after

	before, err := parseDate("createdBefore", createdBefore)
	if err != nil {
		return Filters{}, err
	}
	f.CreatedBefore = before

	return f, nil
}

func parseDate(param, raw string) (*domain.Date, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(v)
	if err != nil {
		return nil, &ParseError{Param: param, Value: raw, Err: err}
	}
	return &d, nil
}

// ParseSortKey maps a sortBy value onto a shop ordering. The second result is
// false when the parameter is absent. Any present value other than name or
// createdAt, including an empty one, sorts by product count.
func ParseSortKey(raw *string) (repository.ShopSort, bool) {
	if raw == nil {
		return "", false
	}
	switch strings.TrimSpace(*raw) {
	case "name":
		return repository.SortByName, true
	case "createdAt":
		return repository.SortByCreatedAt, true
	default:
		return repository.SortByNbProducts, true
	}
}
