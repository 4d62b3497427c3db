package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO 8601 calendar date format used on the wire and in the store.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time of day. It is always held at UTC midnight so that
// reading a stored value back never shifts it by a day.
type Date struct {
	time.Time
}

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return DateOf(t), nil
}

// ParseOptionalDate parses raw when it is not blank.
func ParseOptionalDate(raw string) (*Date, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Year(), d.Month(), d.Day()+n)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD and, for tolerance, full RFC 3339 timestamps whose calendar
// day is taken as written.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if len(raw) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer. Dates are sent as text so the server never applies a zone.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		parsed, err := ParseDate(firstN(v, len(DateLayout)))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

var indonesianWeekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// DayName returns the Indonesian weekday label used on session reports.
func (d Date) DayName() string {
	return indonesianWeekdays[d.Weekday()]
}

// LastDayOfMonth returns the final calendar day of the given month.
func LastDayOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 0)
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
