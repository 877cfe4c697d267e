package report

import (
	"strconv"

	"weatherman/internal/core"
)

type (
	ExtremeView struct {
		Value float64   `json:"value"`
		Date  core.Date `json:"date"`
		Label string    `json:"label"`
	}

	YearExtremesView struct {
		Year     int         `json:"year"`
		Highest  ExtremeView `json:"highest"`
		Lowest   ExtremeView `json:"lowest"`
		Humidity ExtremeView `json:"humidity"`
		Text     string      `json:"text"`
	}

	// MonthAveragesView carries averages rounded to two decimals; missing
	// values encode as null.
	MonthAveragesView struct {
		Year            int              `json:"year"`
		Month           int              `json:"month"`
		Title           string           `json:"title"`
		AvgHighestTemp  core.Measurement `json:"avg_highest_temp"`
		AvgLowestTemp   core.Measurement `json:"avg_lowest_temp"`
		AvgMeanHumidity core.Measurement `json:"avg_mean_humidity"`
		Samples         int              `json:"samples"`
		Text            string           `json:"text"`
	}

	ChartDay struct {
		Day    int              `json:"day"`
		Date   core.Date        `json:"date"`
		Max    core.Measurement `json:"max"`
		Min    core.Measurement `json:"min"`
		MaxBar int              `json:"max_bar"`
		MinBar int              `json:"min_bar"`
	}

	ChartView struct {
		Year  int        `json:"year"`
		Month int        `json:"month"`
		Title string     `json:"title"`
		Days  []ChartDay `json:"days"`
		Text  string     `json:"text"`
	}

	NetChartDay struct {
		Day      int       `json:"day"`
		Date     core.Date `json:"date"`
		Min      int       `json:"min"`
		Max      int       `json:"max"`
		MinBar   int       `json:"min_bar"`
		RangeBar int       `json:"range_bar"`
	}

	NetChartView struct {
		Year  int           `json:"year"`
		Month int           `json:"month"`
		Title string        `json:"title"`
		Days  []NetChartDay `json:"days"`
		Text  string        `json:"text"`
	}
)

func NewYearExtremesView(e core.YearExtremes) (YearExtremesView, error) {
	text, err := YearExtremesText(e)
	if err != nil {
		return YearExtremesView{}, err
	}
	return YearExtremesView{
		Year:     e.Year,
		Highest:  extremeView(e.MaxTemp),
		Lowest:   extremeView(e.MinTemp),
		Humidity: extremeView(e.MaxHumidity),
		Text:     text,
	}, nil
}

func NewMonthAveragesView(a core.MonthAverages) (MonthAveragesView, error) {
	text, err := MonthAveragesText(a)
	if err != nil {
		return MonthAveragesView{}, err
	}
	return MonthAveragesView{
		Year:            a.Year,
		Month:           a.Month,
		Title:           PeriodTitle(a.Year, a.Month),
		AvgHighestTemp:  round2(a.AvgHighestTemp),
		AvgLowestTemp:   round2(a.AvgLowestTemp),
		AvgMeanHumidity: round2(a.AvgMeanHumidity),
		Samples:         a.Samples,
		Text:            text,
	}, nil
}

func NewChartView(s core.MonthSeries) (ChartView, error) {
	text, err := BasicChart(s, Plain)
	if err != nil {
		return ChartView{}, err
	}
	pairs := pairByDay(s)
	days := make([]ChartDay, 0, len(pairs))
	for _, p := range pairs {
		d := ChartDay{Day: p.day, Date: p.date}
		if p.max != nil {
			d.Max = core.Value(*p.max)
			d.MaxBar = clamp(truncate(*p.max))
		}
		if p.min != nil {
			d.Min = core.Value(*p.min)
			d.MinBar = clamp(truncate(*p.min))
		}
		days = append(days, d)
	}
	return ChartView{
		Year:  s.Year,
		Month: s.Month,
		Title: PeriodTitle(s.Year, s.Month),
		Days:  days,
		Text:  text,
	}, nil
}

func NewNetChartView(s core.MonthSeries) (NetChartView, error) {
	text, err := NetChart(s, Plain)
	if err != nil {
		return NetChartView{}, err
	}
	var days []NetChartDay
	for _, p := range pairByDay(s) {
		if p.max == nil || p.min == nil {
			continue
		}
		lo, hi := truncate(*p.min), truncate(*p.max)
		days = append(days, NetChartDay{
			Day:      p.day,
			Date:     p.date,
			Min:      lo,
			Max:      hi,
			MinBar:   clamp(lo),
			RangeBar: clamp(truncate(*p.max - *p.min)),
		})
	}
	return NetChartView{
		Year:  s.Year,
		Month: s.Month,
		Title: PeriodTitle(s.Year, s.Month),
		Days:  days,
		Text:  text,
	}, nil
}

func extremeView(e core.Extreme) ExtremeView {
	return ExtremeView{Value: e.Value, Date: e.Date, Label: DayLabel(e.Date)}
}

// round2 rounds the way the text report prints, so JSON and text agree on
// ties such as 10.125.
func round2(m core.Measurement) core.Measurement {
	if !m.Valid {
		return m
	}
	v, err := strconv.ParseFloat(strconv.FormatFloat(m.Value, 'f', 2, 64), 64)
	if err != nil {
		return m
	}
	return core.Value(v)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
