package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2004, 8, 1), true},
		{NewDate(2011, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2004-8-1", NewDate(2004, 8, 1), true},
		{"2004-08-01", NewDate(2004, 8, 1), true},
		{" 2011-12-31 ", NewDate(2011, 12, 31), true},
		{"2011-2-30", Date{}, false},
		{"PKT", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tc.in, err)
			}
			if !got.Equal(tc.want.Time) {
				t.Fatalf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("ParseDate(%q) expected ErrInvalidDate, got %v", tc.in, err)
		}
	}
}

func TestDateIn(t *testing.T) {
	d := NewDate(2011, 3, 14)
	if !d.In(2011, 0) || !d.In(2011, 3) {
		t.Fatalf("expected %v in 2011 and 2011/03", d)
	}
	if d.In(2011, 4) || d.In(2010, 0) {
		t.Fatalf("unexpected match for %v", d)
	}
}

func TestDateText(t *testing.T) {
	b, err := json.Marshal(struct {
		D Date `json:"d"`
	}{NewDate(2004, 8, 1)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"d":"2004-08-01"}` {
		t.Fatalf("unexpected json %s", b)
	}
	var back struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.D.Day() != 1 || back.D.Month() != 8 || back.D.Year() != 2004 {
		t.Fatalf("round trip mismatch: %v", back.D)
	}
}

func TestParseMeasurement(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		want  float64
	}{
		{"30", true, 30},
		{" -4.5 ", true, -4.5},
		{"", false, 0},
		{"abc", false, 0},
		{"NaN", false, 0},
		{"Inf", false, 0},
	}
	for _, tc := range cases {
		m := ParseMeasurement(tc.in)
		if m.Valid != tc.valid {
			t.Fatalf("ParseMeasurement(%q).Valid = %v, want %v", tc.in, m.Valid, tc.valid)
		}
		if tc.valid && m.Value != tc.want {
			t.Fatalf("ParseMeasurement(%q) = %v, want %v", tc.in, m.Value, tc.want)
		}
		if !tc.valid && !math.IsNaN(m.Float()) {
			t.Fatalf("missing measurement should read as NaN, got %v", m.Float())
		}
	}
}

func TestMeasurementJSON(t *testing.T) {
	b, err := json.Marshal([]Measurement{Value(7.5), Missing()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[7.5,null]" {
		t.Fatalf("unexpected json %s", b)
	}
	var back []Measurement
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back[0].Valid || back[0].Value != 7.5 || back[1].Valid {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestMeasurementString(t *testing.T) {
	if got := Value(45).String(); got != "45" {
		t.Fatalf("got %q", got)
	}
	if got := Value(45.5).String(); got != "45.5" {
		t.Fatalf("got %q", got)
	}
	if got := Missing().String(); got != "NaN" {
		t.Fatalf("got %q", got)
	}
	if Missing().Ptr() != nil {
		t.Fatalf("missing measurement should have nil pointer")
	}
}
