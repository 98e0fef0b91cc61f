package domain

import (
	"fmt"
	"time"
)

// DateLayout is the canonical day-resolution date format.
const DateLayout = "2006-01-02"

// ParseDate parses a canonical date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return t, nil
}

// NormalizeDate converts a stored date representation to the canonical
// "2006-01-02" form. Accepts canonical dates and RFC 3339 timestamps; the
// calendar day is taken as written, without time zone conversion.
func NormalizeDate(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Format(DateLayout), nil
	}
	if len(s) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("%w: invalid date %q", ErrValidation, s)
}

// AddDays returns the canonical date n days after start.
func AddDays(start string, n int) (string, error) {
	t, err := ParseDate(start)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// DaysInclusive returns end - start + 1 in calendar days.
func DaysInclusive(start, end string) (int, error) {
	s, err := ParseDate(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return 0, err
	}
	if e.Before(s) {
		return 0, fmt.Errorf("%w: end date %s is before start date %s", ErrValidation, end, start)
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// Weekday returns the English weekday name of a canonical date.
func Weekday(date string) string {
	t, err := ParseDate(date)
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}
