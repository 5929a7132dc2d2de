package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the stored form of a Date.
const DateFormat = "2006-01-02"

// Date is a local calendar date with day granularity. It is never derived
// from a UTC-interpreting parse, so it cannot shift by a day near midnight.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date.
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	return Date{t.Year(), t.Month(), t.Day()}
}

// DateOf returns the local calendar date of t.
func DateOf(t time.Time) Date {
	t = t.In(time.Local)
	return Date{t.Year(), t.Month(), t.Day()}
}

// Today returns the current local date.
func Today() Date { return DateOf(time.Now()) }

// ParseDate parses "YYYY-MM-DD" by splitting on '-' and building the day from
// its components. A trailing time part ("T...") is ignored.
func ParseDate(s string) (Date, error) {
	datePart, _, _ := strings.Cut(s, "T")
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("invalid year in date %q: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return Date{}, fmt.Errorf("invalid month in date %q: %w", s, err)
	}
	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return Date{}, fmt.Errorf("invalid day in date %q: %w", s, err)
	}
	if m < 1 || m > 12 {
		return Date{}, fmt.Errorf("invalid month in date %q", s)
	}
	if d < 1 || d > DaysIn(y, time.Month(m)) {
		return Date{}, fmt.Errorf("invalid day in date %q", s)
	}
	return Date{y, time.Month(m), d}, nil
}

// MustParseDate is like ParseDate but panics on error.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// DaysIn returns the number of days of month in year.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }
func (d Date) IsZero() bool      { return d == Date{} }

// Time returns local midnight of the date.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.Local)
}

// In reports whether the date falls in the given calendar month.
func (d Date) In(year int, month time.Month) bool {
	return d.y == year && d.m == month
}

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.String() < x.String() }

// String returns the YYYY-MM-DD form, which sorts chronologically.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.y, int(d.m), d.d)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
