package world

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is the textual form of a Date
const DateLayout = "2006-01-02"

// Date is a calendar day with no time zone attached
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes year, month and day the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DateOfMillis returns the calendar day containing the instant millis
// (milliseconds since the Unix epoch) in loc
func DateOfMillis(millis int64, loc *time.Location) Date {
	return DateOf(time.UnixMilli(millis).In(loc))
}

// ParseDate parses "YYYY-MM-DD"
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (earlier for negative n)
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Start returns local midnight at the beginning of d in loc
func (d Date) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week
func (d Date) Weekday() time.Weekday {
	return d.Start(time.UTC).Weekday()
}

// Compare returns -1, 0 or 1
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}
