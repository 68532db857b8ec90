package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date is a possibly partial calendar date. Providers report years,
// year-months or full dates; missing fields default to the 1st. The zero
// value means "unknown" and serializes as JSON null.
type Date struct {
	t     time.Time
	valid bool
}

func NewDate(t time.Time) Date {
	return Date{t: t, valid: true}
}

// ParseDate reads "2006", "2006-01" or "2006-01-02". Empty input and the
// literal "0" some providers emit yield the zero date, not an error.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return Date{}, nil
	}

	var layout string
	switch strings.Count(s, "-") {
	case 0:
		layout = "2006"
	case 1:
		layout = "2006-01"
	case 2:
		layout = "2006-01-02"
	default:
		return Date{}, fmt.Errorf("invalid date %q", s)
	}

	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t, valid: true}, nil
}

func (d Date) IsZero() bool {
	return !d.valid
}

func (d Date) Year() int {
	if !d.valid {
		return 0
	}
	return d.t.Year()
}

func (d Date) Time() time.Time {
	return d.t
}

// String formats the date as ISO-8601, or "" when unknown.
func (d Date) String() string {
	if !d.valid {
		return ""
	}
	return d.t.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.valid {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
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
