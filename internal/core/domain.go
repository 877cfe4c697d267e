package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout accepts both zero-padded and unpadded month/day parts,
// e.g. "2004-08-01" and "2004-8-1".
const DateLayout = "2006-1-2"

type (
	Date struct {
		time.Time
	}

	// Reading is one day's observation. Temperatures are in Celsius,
	// humidity in percent.
	Reading struct {
		Date         Date
		MaxTemp      Measurement
		MeanTemp     Measurement
		MinTemp      Measurement
		MaxHumidity  Measurement
		MeanHumidity Measurement
		MinHumidity  Measurement
	}
)

var (
	ErrInvalidDate = errors.New("invalid date")
	// ErrNoData is returned when a year or month has no usable readings.
	ErrNoData = errors.New("no data available")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date; zero padding is optional.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String returns the canonical zero-padded YYYY-MM-DD form.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// In reports whether the date falls in year and, when month is non-zero, in that month.
func (d Date) In(year, month int) bool {
	if d.Year() != year {
		return false
	}
	return month == 0 || d.Month() == month
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (r Reading) Validate() error {
	return r.Date.Validate()
}
