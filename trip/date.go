package trip

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day abstraction (all rule math is whole-day math)
// =============================================================================

// Date is a calendar day, always normalized to UTC midnight.
// Immigration and tax rules count calendar days, never wall-clock
// durations, so a dedicated day type keeps DST and timezone drift
// out of the arithmetic entirely.
type Date struct {
	t time.Time
}

const dateLayout = "2006-01-02"

// NewDate constructs a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates a time.Time to its UTC calendar day.
func FromTime(t time.Time) Date {
	u := t.UTC()
	return NewDate(u.Year(), u.Month(), u.Day())
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t.UTC()}, nil
}

// MustParseDate parses a date or panics. Use in tests and scenario seeds.
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
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic. AddDate handles leap years on the proleptic Gregorian
// calendar, including the century rule (1900 is not a leap year, 2000 is).
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

// Min returns the earlier of two dates.
func (d Date) Min(other Date) Date {
	if other.Before(d) {
		return other
	}
	return d
}

// Max returns the later of two dates.
func (d Date) Max(other Date) Date {
	if other.After(d) {
		return other
	}
	return d
}

func (d Date) String() string { return d.t.Format(dateLayout) }

// DaysBetween returns the signed whole-day distance from one date to
// another. Both dates are already UTC midnights, so dividing the
// duration by 24h is exact.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// =============================================================================
// JSON - Dates cross the API boundary as ISO-8601 strings
// =============================================================================

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
