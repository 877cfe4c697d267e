package readings

import (
	"errors"
	"testing"

	"weatherman/internal/core"
)

func TestParseLine(t *testing.T) {
	r, err := ParseLine("2004-8-1,36,30,24,23,19,16,68,48,29,1010,1007,1004,10,6,4,16,9,,0.0,5,Rain,35\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Date.Equal(core.NewDate(2004, 8, 1).Time) {
		t.Fatalf("unexpected date %v", r.Date)
	}
	checks := []struct {
		name string
		m    core.Measurement
		want float64
	}{
		{"max temp", r.MaxTemp, 36},
		{"mean temp", r.MeanTemp, 30},
		{"min temp", r.MinTemp, 24},
		{"max humidity", r.MaxHumidity, 68},
		{"mean humidity", r.MeanHumidity, 48},
		{"min humidity", r.MinHumidity, 29},
	}
	for _, c := range checks {
		if !c.m.Valid || c.m.Value != c.want {
			t.Fatalf("%s: got %+v, want %v", c.name, c.m, c.want)
		}
	}
}

func TestParseRowMissingNumericKeepsRow(t *testing.T) {
	r, err := ParseLine("2004-8-2,,30,abc,23,19,16, 70 ,,NaN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.MaxTemp.Valid || r.MinTemp.Valid || r.MeanHumidity.Valid || r.MinHumidity.Valid {
		t.Fatalf("expected missing fields, got %+v", r)
	}
	if !r.MeanTemp.Valid || r.MeanTemp.Value != 30 {
		t.Fatalf("expected mean temp 30, got %+v", r.MeanTemp)
	}
	if !r.MaxHumidity.Valid || r.MaxHumidity.Value != 70 {
		t.Fatalf("expected trimmed max humidity 70, got %+v", r.MaxHumidity)
	}
}

func TestParseRowRejects(t *testing.T) {
	cases := []struct {
		name string
		line string
		err  error
	}{
		{"blank", "   ", ErrBlankRow},
		{"only commas", ",,,,,,,,,", ErrBlankRow},
		{"short", "2004-8-1,36,30,24", ErrShortRow},
		{"bad date", "PKT,36,30,24,23,19,16,68,48,29", core.ErrInvalidDate},
	}
	for _, tc := range cases {
		_, err := ParseLine(tc.line)
		if !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.err, err)
		}
	}
}
