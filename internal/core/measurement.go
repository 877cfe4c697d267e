package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Measurement is a numeric observation that may be missing. The zero value
// is missing, so an unset field is never mistaken for 0.
type Measurement struct {
	Value float64
	Valid bool
}

// Missing returns the explicit not-a-number measurement.
func Missing() Measurement {
	return Measurement{}
}

// Value wraps a known value. NaN and infinities are treated as missing.
func Value(v float64) Measurement {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing()
	}
	return Measurement{Value: v, Valid: true}
}

// ParseMeasurement parses s as a float. Anything unparseable is missing.
func ParseMeasurement(s string) Measurement {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing()
	}
	return Value(v)
}

// Float returns the value, or NaN when missing.
func (m Measurement) Float() float64 {
	if !m.Valid {
		return math.NaN()
	}
	return m.Value
}

// Ptr returns nil for a missing value, for database and view layers.
func (m Measurement) Ptr() *float64 {
	if !m.Valid {
		return nil
	}
	v := m.Value
	return &v
}

// String formats the value in its shortest form, "NaN" when missing.
func (m Measurement) String() string {
	if !m.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measurement) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*m = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*m = Value(v)
	return nil
}
