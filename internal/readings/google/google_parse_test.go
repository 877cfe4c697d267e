package google

import "testing"

func TestParseValues(t *testing.T) {
	values := [][]interface{}{
		{"PKT", "Max TemperatureC", "Mean TemperatureC", "Min TemperatureC", "Dew PointC", "MeanDew PointC", "Min DewpointC", "Max Humidity", "Mean Humidity", "Min Humidity"},
		{"2011-3-1", 20.0, 15.0, 10.0, 5.0, 4.0, 3.0, 80.0, 60.0, 40.0},
		{"2011-3-2", "21", "", "11", "5", "4", "3", "81", "61", "41"},
		{},
		{"2011-3-3", 22.0},
		{"bad", 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
	got, skipped := parseValues(values)
	if len(got) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(got))
	}
	if skipped != 3 {
		t.Fatalf("expected 3 skipped rows, got %d", skipped)
	}
	if got[0].MaxTemp.Value != 20 || got[0].MaxHumidity.Value != 80 {
		t.Fatalf("unexpected first reading %+v", got[0])
	}
	if got[1].MeanTemp.Valid {
		t.Fatalf("expected missing mean temp on second reading")
	}
}

func TestParseValuesHeaderOnly(t *testing.T) {
	got, skipped := parseValues([][]interface{}{{"PKT"}})
	if len(got) != 0 || skipped != 0 {
		t.Fatalf("expected nothing, got %d readings and %d skipped", len(got), skipped)
	}
}
