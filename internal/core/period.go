package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidYearMonth = errors.New("invalid year/month")
)

// MonthNames is indexed by month-1.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June", "July",
	"August", "September", "October", "November", "December",
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// ParseError is returned for a malformed year or year/month argument. Its
// message is meant to be shown to the user as is.
type ParseError struct {
	Kind     error
	Field    string
	Input    string
	Expected string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Invalid %s format: %s. Expected format: %s", e.Field, e.Input, e.Expected)
}

func (e *ParseError) Unwrap() error { return e.Kind }

// ParseYear accepts exactly four digits.
func ParseYear(s string) (int, error) {
	t, err := time.Parse("2006", strings.TrimSpace(s))
	if err != nil {
		return 0, &ParseError{Kind: ErrInvalidYear, Field: "year", Input: s, Expected: "YYYY"}
	}
	return t.Year(), nil
}

// ParseYearMonth accepts YYYY/MM; the month may be unpadded.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006/1", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, &ParseError{Kind: ErrInvalidYearMonth, Field: "year/month", Input: s, Expected: "YYYY/MM"}
	}
	return YearMonth{Year: t.Year(), Month: int(t.Month())}, nil
}

// NewYearMonth validates separately supplied year and month numbers.
func NewYearMonth(year, month int) (YearMonth, error) {
	if year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("%w: year %d out of range", ErrInvalidYear, year)
	}
	if month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: month %d out of range", ErrInvalidYearMonth, month)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// MonthName returns the English month name, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return MonthNames[month-1]
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d/%02d", ym.Year, ym.Month)
}
