package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"weatherman/internal/aggregate"
	"weatherman/internal/core"
	applog "weatherman/internal/log"
	"weatherman/internal/report"
)

// Report names used in cache keys, logs and template names.
const (
	reportYearExtremes   = "year-extremes"
	reportMonthlyAverage = "monthly-averages"
	reportBasicChart     = "basic-chart"
	reportNetChart       = "net-chart"
)

func (s *Server) handleYearExtremes(w http.ResponseWriter, r *http.Request) {
	asJSON := WantsJSON(r)
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	year, err := ParseYearParam(r.URL.Query())
	if err != nil {
		s.badRequest(w, r, reportYearExtremes, err, asJSON)
		return
	}

	view, err := cachedView(s, reportKey(reportYearExtremes, year, 0), func() (report.YearExtremesView, error) {
		e, err := aggregate.ExtremesForYear(s.readings, year)
		if err != nil {
			return report.YearExtremesView{}, err
		}
		return report.NewYearExtremesView(e)
	})
	if err != nil {
		s.reportError(w, r, reportYearExtremes, year, 0, err, asJSON)
		return
	}
	s.renderReport(w, r, reportYearExtremes, year, 0, "year_extremes.html", view, asJSON)
}

func (s *Server) handleMonthlyAverages(w http.ResponseWriter, r *http.Request) {
	monthReport(s, w, r, reportMonthlyAverage, "monthly_averages.html", func(ym core.YearMonth) (report.MonthAveragesView, error) {
		a, err := aggregate.MonthlyAverages(s.readings, ym.Year, ym.Month)
		if err != nil {
			return report.MonthAveragesView{}, err
		}
		return report.NewMonthAveragesView(a)
	})
}

func (s *Server) handleBasicChart(w http.ResponseWriter, r *http.Request) {
	monthReport(s, w, r, reportBasicChart, "basic_chart.html", func(ym core.YearMonth) (report.ChartView, error) {
		series, err := aggregate.MonthlyExtremesSeries(s.readings, ym.Year, ym.Month)
		if err != nil {
			return report.ChartView{}, err
		}
		return report.NewChartView(series)
	})
}

func (s *Server) handleNetChart(w http.ResponseWriter, r *http.Request) {
	monthReport(s, w, r, reportNetChart, "net_chart.html", func(ym core.YearMonth) (report.NetChartView, error) {
		series, err := aggregate.MonthlyExtremesSeries(s.readings, ym.Year, ym.Month)
		if err != nil {
			return report.NetChartView{}, err
		}
		return report.NewNetChartView(series)
	})
}

// monthReport runs the shared flow of the per-month routes: parse year and
// month, build or reuse the view, render it.
func monthReport[T any](s *Server, w http.ResponseWriter, r *http.Request, name, tmpl string, build func(core.YearMonth) (T, error)) {
	asJSON := WantsJSON(r)
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	ym, err := ParseMonthParams(r.URL.Query())
	if err != nil {
		s.badRequest(w, r, name, err, asJSON)
		return
	}

	view, err := cachedView(s, reportKey(name, ym.Year, ym.Month), func() (T, error) {
		return build(ym)
	})
	if err != nil {
		s.reportError(w, r, name, ym.Year, ym.Month, err, asJSON)
		return
	}
	s.renderReport(w, r, name, ym.Year, ym.Month, tmpl, view, asJSON)
}

// cachedView memoises views per report and period. Readings never change
// while the server runs, so entries only leave the cache by TTL or size.
func cachedView[T any](s *Server, key string, build func() (T, error)) (T, error) {
	v, err := s.views.GetOrCompute(key, func() (any, error) {
		return build()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	view, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached view %s has type %T", key, v)
	}
	return view, nil
}

func reportKey(name string, year, month int) string {
	return fmt.Sprintf("%s:%04d:%02d", name, year, month)
}

func (s *Server) renderReport(w http.ResponseWriter, r *http.Request, name string, year, month int, tmpl string, view any, asJSON bool) {
	s.appMetrics.reportsRendered.Add(1)
	s.structured.LogReportRendered(r.Context(), name, year, month)
	if asJSON {
		NewResponse().JSON(view).Write(w)
		return
	}
	s.renderHTML(w, r, http.StatusOK, tmpl, view)
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, name string, err error, asJSON bool) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentHTTP).WarnContext(r.Context(),
		"Invalid report parameters",
		applog.FieldReport, name,
		applog.FieldQuery, r.URL.RawQuery,
		applog.FieldError, err)
	BadRequestError(err.Error(), asJSON).Write(w)
}

// reportError maps ErrNoData to 404 and anything else to 500.
func (s *Server) reportError(w http.ResponseWriter, r *http.Request, name string, year, month int, err error, asJSON bool) {
	if errors.Is(err, core.ErrNoData) {
		s.appMetrics.reportsNoData.Add(1)
		applog.FromContext(r.Context()).WithComponent(applog.ComponentReport).InfoContext(r.Context(),
			"No data for report",
			applog.FieldReport, name,
			applog.FieldYear, year,
			applog.FieldMonth, month)
		NotFoundError(err.Error(), asJSON).Write(w)
		return
	}
	s.structured.LogError(r.Context(), "Report failed", err, applog.ComponentReport, applog.OpAggregate,
		applog.NewFields().WithPeriod(year, month))
	InternalServerError("Failed to build report", asJSON).Write(w)
}

// renderHTML executes tmpl into a buffer first so a template error can still
// produce a clean 500.
func (s *Server) renderHTML(w http.ResponseWriter, r *http.Request, status int, tmpl string, data any) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, tmpl, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender, nil)
		InternalServerError("Failed to render page", false).Write(w)
		return
	}
	NewResponse().Status(status).HTML(buf.String()).Write(w)
}
