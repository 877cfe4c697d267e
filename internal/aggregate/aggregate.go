// Package aggregate folds daily readings into yearly extremes, monthly
// averages and per-day series. Every function returns a fresh value and never
// modifies its input.
package aggregate

import (
	"fmt"
	"sort"

	"weatherman/internal/core"
)

// Filter returns the readings that fall in year and, when month is non-zero,
// in that month. Input order is kept.
func Filter(rs []core.Reading, year, month int) []core.Reading {
	var out []core.Reading
	for _, r := range rs {
		if r.Date.In(year, month) {
			out = append(out, r)
		}
	}
	return out
}

// ExtremesForYear finds the highest max temperature, the lowest min
// temperature and the highest max humidity of a year. On ties the earliest
// reading in input order wins.
func ExtremesForYear(rs []core.Reading, year int) (core.YearExtremes, error) {
	matched := Filter(rs, year, 0)
	if len(matched) == 0 {
		return core.YearExtremes{}, fmt.Errorf("%w for year %d", core.ErrNoData, year)
	}

	var maxT, minT, maxH tracker
	for _, r := range matched {
		maxT.offer(r.MaxTemp, r.Date, func(v, best float64) bool { return v > best })
		minT.offer(r.MinTemp, r.Date, func(v, best float64) bool { return v < best })
		maxH.offer(r.MaxHumidity, r.Date, func(v, best float64) bool { return v > best })
	}
	if !maxT.found || !minT.found || !maxH.found {
		return core.YearExtremes{}, fmt.Errorf("%w for year %d", core.ErrNoData, year)
	}
	return core.YearExtremes{
		Year:        year,
		MaxTemp:     maxT.best,
		MinTemp:     minT.best,
		MaxHumidity: maxH.best,
	}, nil
}

// MonthlyAverages computes the mean highest temperature, lowest temperature
// and mean humidity for a month. Missing values are left out of both sum and
// count; a field without any valid sample is missing.
func MonthlyAverages(rs []core.Reading, year, month int) (core.MonthAverages, error) {
	matched := Filter(rs, year, month)
	if len(matched) == 0 {
		return core.MonthAverages{}, fmt.Errorf("%w for %d/%02d", core.ErrNoData, year, month)
	}

	var hi, lo, hum mean
	for _, r := range matched {
		hi.add(r.MaxTemp)
		lo.add(r.MinTemp)
		hum.add(r.MeanHumidity)
	}
	return core.MonthAverages{
		Year:            year,
		Month:           month,
		AvgHighestTemp:  hi.result(),
		AvgLowestTemp:   lo.result(),
		AvgMeanHumidity: hum.result(),
		Samples:         len(matched),
	}, nil
}

// MonthlyExtremesSeries lists each day's max and min temperature in date
// order. Missing values are dropped from their own list only.
func MonthlyExtremesSeries(rs []core.Reading, year, month int) (core.MonthSeries, error) {
	matched := Filter(rs, year, month)
	if len(matched) == 0 {
		return core.MonthSeries{}, fmt.Errorf("%w for %d/%02d", core.ErrNoData, year, month)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date.Time)
	})

	s := core.MonthSeries{
		Year:     year,
		Month:    month,
		MaxTemps: make([]core.DailyValue, 0, len(matched)),
		MinTemps: make([]core.DailyValue, 0, len(matched)),
	}
	for _, r := range matched {
		if r.MaxTemp.Valid {
			s.MaxTemps = append(s.MaxTemps, core.DailyValue{Date: r.Date, Value: r.MaxTemp.Value})
		}
		if r.MinTemp.Valid {
			s.MinTemps = append(s.MinTemps, core.DailyValue{Date: r.Date, Value: r.MinTemp.Value})
		}
	}
	return s, nil
}

type tracker struct {
	best  core.Extreme
	found bool
}

func (t *tracker) offer(m core.Measurement, d core.Date, better func(v, best float64) bool) {
	if !m.Valid {
		return
	}
	if !t.found || better(m.Value, t.best.Value) {
		t.best = core.Extreme{Value: m.Value, Date: d}
		t.found = true
	}
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v core.Measurement) {
	if !v.Valid {
		return
	}
	m.sum += v.Value
	m.n++
}

func (m mean) result() core.Measurement {
	if m.n == 0 {
		return core.Missing()
	}
	return core.Value(m.sum / float64(m.n))
}
