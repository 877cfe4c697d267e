package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"weatherman/internal/core"
)

// ErrMissingParam is returned when a required query parameter is absent.
var ErrMissingParam = errors.New("missing parameter")

// ParseYearParam reads the required four-digit "year" parameter.
func ParseYearParam(query url.Values) (int, error) {
	v := strings.TrimSpace(query.Get("year"))
	if v == "" {
		return 0, fmt.Errorf("%w: year", ErrMissingParam)
	}
	return core.ParseYear(v)
}

// ParseMonthParams reads the required "year" and "month" parameters. The
// month is a number from 1 to 12.
func ParseMonthParams(query url.Values) (core.YearMonth, error) {
	year, err := ParseYearParam(query)
	if err != nil {
		return core.YearMonth{}, err
	}
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.YearMonth{}, fmt.Errorf("%w: month", ErrMissingParam)
	}
	month, err := strconv.Atoi(v)
	if err != nil {
		return core.YearMonth{}, fmt.Errorf("%w: Invalid month: %s. Expected a number from 1 to 12", core.ErrInvalidYearMonth, v)
	}
	return core.NewYearMonth(year, month)
}

// WantsJSON reports whether the caller asked for the JSON view, either with
// format=json or an Accept header naming application/json.
func WantsJSON(r *http.Request) bool {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "json":
		return true
	case "html":
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// RequireMethod returns a 405 response when r uses none of methods.
func RequireMethod(r *http.Request, methods ...string) *ResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequireGET(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}

func RequirePOST(r *http.Request) *ResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// ParseFormOrFail parses the request form and returns an error response on
// failure.
func ParseFormOrFail(r *http.Request, asJSON bool) *ResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format", asJSON)
	}
	return nil
}

// sanitizeInput trims s and strips control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
