package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ClockTime is a time of day with second precision, stored as seconds since midnight.
type ClockTime int

// NewClockTime builds a ClockTime from hours, minutes and seconds.
func NewClockTime(hour, minute, second int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("invalid time of day %02d:%02d:%02d", hour, minute, second)
	}
	return ClockTime(hour*3600 + minute*60 + second), nil
}

// MustClockTime parses s and panics on error. Intended for tests and constants.
func MustClockTime(s string) ClockTime {
	c, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseClockTime parses "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time of day %q: expected HH:MM or HH:MM:SS", s)
	}

	values := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("invalid time of day %q: expected two digits per component", s)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
		values[i] = n
	}

	c, err := NewClockTime(values[0], values[1], values[2])
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return c, nil
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 3600 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 3600 / 60 }

// Second returns the second component.
func (c ClockTime) Second() int { return int(c) % 60 }

// Before reports whether c is strictly earlier than o.
func (c ClockTime) Before(o ClockTime) bool { return c < o }

// After reports whether c is strictly later than o.
func (c ClockTime) After(o ClockTime) bool { return c > o }

// String renders "HH:MM", or "HH:MM:SS" when seconds are set.
func (c ClockTime) String() string {
	if c.Second() == 0 {
		return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
	}
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second())
}

// MarshalJSON implements json.Marshaler.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(c.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("time of day must be a string: %w", err)
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer. The canonical column format is HH:MM:SS so
// that lexical and chronological order agree.
func (c ClockTime) Value() (driver.Value, error) {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour(), c.Minute(), c.Second()), nil
}

// Scan implements sql.Scanner.
func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseClockTime(v)
		if err != nil {
			return err
		}
		*c = parsed
	case []byte:
		return c.Scan(string(v))
	case time.Time:
		*c = ClockTime(v.Hour()*3600 + v.Minute()*60 + v.Second())
	case int64:
		if v < 0 || v >= secondsPerDay {
			return fmt.Errorf("time of day out of range: %d", v)
		}
		*c = ClockTime(v)
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
	return nil
}
