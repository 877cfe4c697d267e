// Package report renders aggregation results as text reports, ASCII bar
// charts, or view structs for the web templates and JSON API.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"weatherman/internal/core"
)

// Palette holds the escape sequences wrapped around chart bars.
type Palette struct {
	Max   string
	Min   string
	Reset string
}

var (
	// ANSI colours max bars bright red and min bars bright blue.
	ANSI = Palette{Max: "\033[91m", Min: "\033[94m", Reset: "\033[0m"}
	// Plain renders bars without escape codes.
	Plain = Palette{}
)

// DayLabel formats a date as "June 23".
func DayLabel(d core.Date) string {
	return fmt.Sprintf("%s %02d", core.MonthName(d.Month()), d.Day())
}

// PeriodTitle formats a month as "March 2011".
func PeriodTitle(year, month int) string {
	return fmt.Sprintf("%s %d", core.MonthName(month), year)
}

// YearExtremesText renders the yearly extremes report.
func YearExtremesText(e core.YearExtremes) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Highest: %sC on %s\n", formatValue(e.MaxTemp.Value), DayLabel(e.MaxTemp.Date))
	fmt.Fprintf(&b, "Lowest: %sC on %s\n", formatValue(e.MinTemp.Value), DayLabel(e.MinTemp.Date))
	fmt.Fprintf(&b, "Humidity: %s%% on %s\n", formatValue(e.MaxHumidity.Value), DayLabel(e.MaxHumidity.Date))
	return b.String(), nil
}

// MonthAveragesText renders the monthly averages report with two decimals.
// Missing averages print as NaN.
func MonthAveragesText(a core.MonthAverages) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Avg Lowest Temp: %.2fC\n", a.AvgLowestTemp.Float())
	fmt.Fprintf(&b, "Avg Highest Temp: %.2fC\n", a.AvgHighestTemp.Float())
	fmt.Fprintf(&b, "Avg Mean Humidity: %.2f%%\n", a.AvgMeanHumidity.Float())
	return b.String(), nil
}

// BasicChart draws two bars per day, max then min, one '+' per whole degree.
func BasicChart(s core.MonthSeries, p Palette) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(PeriodTitle(s.Year, s.Month))
	b.WriteByte('\n')
	for _, d := range pairByDay(s) {
		if d.max != nil {
			v := truncate(*d.max)
			fmt.Fprintf(&b, "%02d %s%s%s %dC\n", d.day, p.Max, bar(v), p.Reset, v)
		}
		if d.min != nil {
			v := truncate(*d.min)
			fmt.Fprintf(&b, "%02d %s%s%s %dC\n", d.day, p.Min, bar(v), p.Reset, v)
		}
	}
	b.WriteByte('\n')
	return b.String(), nil
}

// NetChart draws one bar per day: the min part followed by the max-min range.
// Days missing either value are left out.
func NetChart(s core.MonthSeries, p Palette) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, d := range pairByDay(s) {
		if d.max == nil || d.min == nil {
			continue
		}
		lo, hi := truncate(*d.min), truncate(*d.max)
		fmt.Fprintf(&b, "%02d %s%s%s%s%s%s %02dC - %02dC\n",
			d.day, p.Min, bar(lo), p.Reset, p.Max, bar(truncate(*d.max-*d.min)), p.Reset, lo, hi)
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no day has both max and min for %d/%02d", core.ErrNoData, s.Year, s.Month)
	}
	return b.String(), nil
}

type dayPair struct {
	day      int
	date     core.Date
	max, min *float64
}

// pairByDay joins the max and min series on date, in date order. When a date
// occurs more than once the first entry of each series is used.
func pairByDay(s core.MonthSeries) []dayPair {
	out := make([]dayPair, 0, len(s.MaxTemps))
	index := make(map[core.Date]int, len(s.MaxTemps))
	get := func(d core.Date) *dayPair {
		if i, ok := index[d]; ok {
			return &out[i]
		}
		out = append(out, dayPair{day: d.Day(), date: d})
		index[d] = len(out) - 1
		return &out[len(out)-1]
	}
	for _, v := range s.MaxTemps {
		if p := get(v.Date); p.max == nil {
			val := v.Value
			p.max = &val
		}
	}
	for _, v := range s.MinTemps {
		if p := get(v.Date); p.min == nil {
			val := v.Value
			p.min = &val
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date.Before(out[j].date.Time) })
	return out
}

func truncate(v float64) int {
	return int(math.Trunc(v))
}

func bar(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("+", n)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
