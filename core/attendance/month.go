package attendance

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vidyalaya/vidyalaya/core"
)

const monthLayout = "2006-01"

var errInvalidMonth = errors.New("month must be formatted as YYYY-MM")

// Month is a calendar month filter.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, core.CleanString(s))
	if err != nil {
		return Month{}, core.NewValidationError(errInvalidMonth, core.FieldError{Field: "month", Error: errInvalidMonth.Error()})
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// Range returns the first and the last instant of the month in loc, both inclusive.
func (m Month) Range(loc *time.Location) (from, to time.Time) {
	from = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return from, to
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
}

// dayRange returns the first and the last instant of the calendar day of t in loc.
func dayRange(t time.Time, loc *time.Location) (from, to time.Time) {
	t = t.In(loc)
	from = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	to = from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to
}

var legacyDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	core.DateLayout,
	"01/02/2006",
}

// parseLegacyDate parses the raw date of a LegacyEntry; ok is false when no layout matches.
func parseLegacyDate(raw string, loc *time.Location) (t time.Time, ok bool) {
	raw = core.CleanString(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
