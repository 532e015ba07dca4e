// Package schedule validates the weekly opening hours of a shop.
package schedule

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jbweber/homelab/storefront/internal/domain"
)

var (
	// ErrInvalidInterval is returned when a single interval is malformed
	// (unknown day, or open time not strictly before close time).
	ErrInvalidInterval = errors.New("invalid opening hours interval")

	// ErrOverlappingIntervals is returned when two intervals on the same day overlap.
	ErrOverlappingIntervals = errors.New("opening hours overlap")
)

// ValidateInterval checks a single interval on its own.
func ValidateInterval(h domain.OpeningHours) error {
	if h.Day < 1 || h.Day > 7 {
		return fmt.Errorf("%w: day %d must be between 1 (Monday) and 7 (Sunday)", ErrInvalidInterval, h.Day)
	}
	if !h.OpenAt.Before(h.CloseAt) {
		return fmt.Errorf("%w: openAt %s must be before closeAt %s", ErrInvalidInterval, h.OpenAt, h.CloseAt)
	}
	return nil
}

// IsConsistent reports whether no two intervals sharing a day overlap.
// An interval closing exactly when the next one opens does not overlap it.
// The input slice is not modified.
func IsConsistent(intervals []domain.OpeningHours) bool {
	_, _, ok := firstOverlap(intervals)
	return ok
}

// Validate runs every per-interval check, then the same-day overlap check.
func Validate(intervals []domain.OpeningHours) error {
	for i, h := range intervals {
		if err := ValidateInterval(h); err != nil {
			return fmt.Errorf("openingHours[%d]: %w", i, err)
		}
	}

	if a, b, ok := firstOverlap(intervals); !ok {
		return fmt.Errorf("%w: day %d [%s, %s) overlaps [%s, %s)",
			ErrOverlappingIntervals, a.Day, a.OpenAt, a.CloseAt, b.OpenAt, b.CloseAt)
	}
	return nil
}

func firstOverlap(intervals []domain.OpeningHours) (domain.OpeningHours, domain.OpeningHours, bool) {
	byDay := make(map[int][]domain.OpeningHours)
	for _, h := range intervals {
		byDay[h.Day] = append(byDay[h.Day], h)
	}

	// visit days in order so the reported conflict is deterministic
	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	for _, day := range days {
		group := byDay[day]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].OpenAt.Before(group[j].OpenAt)
		})
		for i := 0; i+1 < len(group); i++ {
			if group[i].CloseAt.After(group[i+1].OpenAt) {
				return group[i], group[i+1], false
			}
		}
	}
	return domain.OpeningHours{}, domain.OpeningHours{}, true
}
