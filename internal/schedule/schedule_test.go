package schedule

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbweber/homelab/storefront/internal/domain"
)

func interval(day int, openAt, closeAt string) domain.OpeningHours {
	return domain.OpeningHours{
		Day:     day,
		OpenAt:  domain.MustClockTime(openAt),
		CloseAt: domain.MustClockTime(closeAt),
	}
}

func TestIsConsistent(t *testing.T) {
	tests := []struct {
		name      string
		intervals []domain.OpeningHours
		want      bool
	}{
		{"empty", nil, true},
		{"single", []domain.OpeningHours{interval(1, "09:00", "17:00")}, true},
		{
			name: "touching boundary",
			intervals: []domain.OpeningHours{
				interval(1, "09:00", "12:00"),
				interval(1, "12:00", "15:00"),
			},
			want: true,
		},
		{
			name: "one minute overlap",
			intervals: []domain.OpeningHours{
				interval(1, "09:00", "12:00"),
				interval(1, "11:59", "15:00"),
			},
			want: false,
		},
		{
			name: "nested",
			intervals: []domain.OpeningHours{
				interval(3, "08:00", "20:00"),
				interval(3, "10:00", "11:00"),
			},
			want: false,
		},
		{
			name: "same hours on different days",
			intervals: []domain.OpeningHours{
				interval(1, "08:00", "20:00"),
				interval(2, "08:00", "20:00"),
				interval(3, "07:00", "21:00"),
			},
			want: true,
		},
		{
			name: "conflict on one day spoils the set",
			intervals: []domain.OpeningHours{
				interval(1, "08:00", "12:00"),
				interval(2, "08:00", "12:00"),
				interval(2, "11:00", "13:00"),
			},
			want: false,
		},
		{
			name: "duplicate interval",
			intervals: []domain.OpeningHours{
				interval(5, "08:00", "12:00"),
				interval(5, "08:00", "12:00"),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConsistent(tt.intervals))
		})
	}
}

func TestIsConsistent_DistinctDaysAlwaysConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		var intervals []domain.OpeningHours
		for day := 1; day <= 7; day++ {
			if rng.Intn(2) == 0 {
				continue
			}
			open := domain.ClockTime(rng.Intn(12 * 3600))
			closeAt := open + domain.ClockTime(1+rng.Intn(12*3600))
			intervals = append(intervals, domain.OpeningHours{Day: day, OpenAt: open, CloseAt: closeAt})
		}
		assert.True(t, IsConsistent(intervals), "intervals: %+v", intervals)
	}
}

func TestIsConsistent_PermutationInvariant(t *testing.T) {
	sets := [][]domain.OpeningHours{
		{
			interval(1, "08:00", "12:00"),
			interval(1, "13:00", "18:00"),
			interval(2, "09:00", "10:00"),
			interval(1, "18:00", "22:00"),
		},
		{
			interval(1, "08:00", "12:00"),
			interval(1, "13:00", "18:00"),
			interval(1, "11:00", "14:00"),
			interval(4, "09:00", "10:00"),
		},
	}

	rng := rand.New(rand.NewSource(7))
	for _, set := range sets {
		want := IsConsistent(set)
		for i := 0; i < 50; i++ {
			shuffled := append([]domain.OpeningHours(nil), set...)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			assert.Equal(t, want, IsConsistent(shuffled))
		}
	}
}

func TestIsConsistent_DoesNotMutateInput(t *testing.T) {
	input := []domain.OpeningHours{
		interval(1, "13:00", "18:00"),
		interval(1, "08:00", "12:00"),
	}
	before := append([]domain.OpeningHours(nil), input...)

	IsConsistent(input)

	assert.Equal(t, before, input)
}

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		name    string
		h       domain.OpeningHours
		wantErr bool
	}{
		{"open before close", interval(1, "09:00", "17:00"), false},
		{"one second apart", interval(7, "09:00:00", "09:00:01"), false},
		{"open equals close", interval(1, "09:00", "09:00"), true},
		{"open after close", interval(1, "17:00", "09:00"), true},
		{"day zero", interval(0, "09:00", "17:00"), true},
		{"day eight", interval(8, "09:00", "17:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterval(tt.h)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInterval)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid schedule", func(t *testing.T) {
		err := Validate([]domain.OpeningHours{
			interval(1, "08:00", "12:00"),
			interval(1, "13:00", "18:00"),
		})
		assert.NoError(t, err)
	})

	t.Run("overlap", func(t *testing.T) {
		err := Validate([]domain.OpeningHours{
			interval(1, "08:00", "12:00"),
			interval(1, "13:00", "18:00"),
			interval(1, "11:00", "14:00"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOverlappingIntervals)
		assert.False(t, errors.Is(err, ErrInvalidInterval))
	})

	t.Run("interval check runs before overlap check", func(t *testing.T) {
		err := Validate([]domain.OpeningHours{
			interval(1, "08:00", "12:00"),
			interval(1, "10:00", "09:00"),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInterval)
		assert.False(t, errors.Is(err, ErrOverlappingIntervals))
		assert.Contains(t, err.Error(), "openingHours[1]")
	})
}
