package http

import (
	"encoding/json"
	"html/template"
	"net/http"
)

// ResponseBuilder provides a fluent API for writing HTML, JSON and plain
// text responses with consistent headers.
type ResponseBuilder struct {
	statusCode  int
	contentType string
	body        []byte
	headers     map[string]string
	err         error
}

func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the body. An encoding error turns the response into a
// 500 when written.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.contentType = "application/json"
	b.body = append(data, '\n')
	return b
}

func (b *ResponseBuilder) HTML(html string) *ResponseBuilder {
	b.contentType = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.contentType = "text/plain; charset=utf-8"
	b.body = []byte(s)
	return b
}

func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.contentType != "" {
		w.Header().Set("Content-Type", b.contentType)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// ErrorResponse renders message as JSON when asJSON is set and as an
// escaped HTML fragment otherwise.
func ErrorResponse(statusCode int, message string, asJSON bool) *ResponseBuilder {
	b := NewResponse().Status(statusCode)
	if asJSON {
		return b.JSON(errorBody{Error: message, Status: statusCode})
	}
	return b.HTML(`<div class="error">` + template.HTMLEscapeString(message) + `</div>`)
}

func BadRequestError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message, asJSON)
}

func NotFoundError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message, asJSON)
}

func InternalServerError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message, asJSON)
}

func ServiceUnavailableError(message string, asJSON bool) *ResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message, asJSON)
}

func MethodNotAllowedError(allowedMethods string) *ResponseBuilder {
	return NewResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
