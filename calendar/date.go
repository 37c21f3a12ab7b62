package calendar

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Civil calendar date (no time of day, no zone)
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar day. The wrapped time is always midnight UTC, so two
// Dates for the same day compare equal with == and can be used as map keys.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time-of-day and zone of t, keeping its wall-clock day.
func DateOf(t time.Time) Date { return NewDate(t.Year(), t.Month(), t.Day()) }

func Today() Date { return DateOf(time.Now()) }

// ParseDate parses an ISO "YYYY-MM-DD" date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.t.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.t.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsWeekend() bool       { wd := d.Weekday(); return wd == time.Saturday || wd == time.Sunday }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format(dateLayout) }

// MarshalText encodes the date as "YYYY-MM-DD". It also drives JSON encoding
// and lets Date be used as a JSON object key.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE UTILITIES
// =============================================================================

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

// EndOfMonth relies on time.Date normalising day 0 to the last day of the
// previous month.
func EndOfMonth(year int, month time.Month) Date { return NewDate(year, month+1, 0) }

// MonthDays returns every day of the month in order.
func MonthDays(year int, month time.Month) []Date {
	end := EndOfMonth(year, month)
	days := make([]Date, 0, end.Day())
	for d := StartOfMonth(year, month); d.BeforeOrEqual(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// DaysBetween returns every day in [from, to]. Empty when to is before from.
func DaysBetween(from, to Date) []Date {
	var days []Date
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}
