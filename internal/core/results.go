package core

import "fmt"

// Extreme is a value and the day it was observed.
type Extreme struct {
	Value float64 `json:"value"`
	Date  Date    `json:"date"`
}

// YearExtremes is the result of an extremes-for-year aggregation.
type YearExtremes struct {
	Year        int     `json:"year"`
	MaxTemp     Extreme `json:"max_temp"`
	MinTemp     Extreme `json:"min_temp"`
	MaxHumidity Extreme `json:"max_humidity"`
}

// MonthAverages holds per-month means; a field with no samples is missing.
type MonthAverages struct {
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	AvgHighestTemp  Measurement `json:"avg_highest_temp"`
	AvgLowestTemp   Measurement `json:"avg_lowest_temp"`
	AvgMeanHumidity Measurement `json:"avg_mean_humidity"`
	// Samples is the number of readings that matched the month.
	Samples int `json:"samples"`
}

// DailyValue is one day's entry in a series.
type DailyValue struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// MonthSeries lists per-day max and min temperatures in date order. Missing
// entries are dropped from each list independently, so the lists are not
// aligned by index; pair them by Date. A date read from more than one file
// appears once per reading; the charts draw one row per date from the first.
type MonthSeries struct {
	Year     int          `json:"year"`
	Month    int          `json:"month"`
	MaxTemps []DailyValue `json:"max_temps"`
	MinTemps []DailyValue `json:"min_temps"`
}

func (y YearExtremes) Validate() error {
	if y.Year == 0 || y.MaxTemp.Date.IsZero() || y.MinTemp.Date.IsZero() || y.MaxHumidity.Date.IsZero() {
		return fmt.Errorf("%w for year %d", ErrNoData, y.Year)
	}
	return nil
}

func (m MonthAverages) Validate() error {
	if m.Year == 0 || m.Month < 1 || m.Month > 12 || m.Samples == 0 {
		return fmt.Errorf("%w for %d/%02d", ErrNoData, m.Year, m.Month)
	}
	return nil
}

func (s MonthSeries) Validate() error {
	if s.Year == 0 || s.Month < 1 || s.Month > 12 || (len(s.MaxTemps) == 0 && len(s.MinTemps) == 0) {
		return fmt.Errorf("%w for %d/%02d", ErrNoData, s.Year, s.Month)
	}
	return nil
}

// MaxValues returns the max temperatures without dates.
func (s MonthSeries) MaxValues() []float64 {
	return values(s.MaxTemps)
}

// MinValues returns the min temperatures without dates.
func (s MonthSeries) MinValues() []float64 {
	return values(s.MinTemps)
}

func values(in []DailyValue) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v.Value
	}
	return out
}
