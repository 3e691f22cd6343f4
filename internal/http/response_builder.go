// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing JSON responses
// and maps domain errors to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"smartfinance/internal/core"
	"smartfinance/internal/log"
	"smartfinance/internal/records"
	"smartfinance/internal/session"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	// Fields maps form fields to their validation messages.
	Fields map[string]string `json:"fields,omitempty"`
}

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
	raw        []byte
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// JSON is shorthand for a response with status code and JSON body v.
func JSON(statusCode int, v any) *ResponseBuilder {
	return NewResponse().Status(statusCode).Body(v)
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets a value to be encoded as JSON.
func (b *ResponseBuilder) Body(v any) *ResponseBuilder {
	b.body = v
	return b
}

// Raw sets an already encoded body with its content type.
func (b *ResponseBuilder) Raw(contentType string, content []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.raw = content
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	switch {
	case b.raw != nil:
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(b.raw)
	case b.body != nil:
		data, err := json.Marshal(b.body)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"failed to encode response"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.statusCode)
		_, _ = w.Write(append(data, '\n'))
	default:
		w.WriteHeader(b.statusCode)
	}
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return JSON(statusCode, ErrorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 error response listing the failing
// fields.
func UnprocessableEntityError(message string, fields map[string]string) *ResponseBuilder {
	return JSON(http.StatusUnprocessableEntity, ErrorBody{Error: message, Fields: fields})
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ErrorFor maps err to a response. Unknown errors are logged and hidden
// behind a 500.
func ErrorFor(r *http.Request, err error) *ResponseBuilder {
	var formErr *session.FormError
	var importErr *records.ImportError
	switch {
	case errors.As(err, &formErr):
		return UnprocessableEntityError("Please fix the errors below", formErr.Fields)
	case errors.As(err, &importErr):
		return UnprocessableEntityError(importErr.Error(), nil)
	case errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidType),
		errors.Is(err, session.ErrTermsNotAccepted), errors.Is(err, session.ErrInvalidGoal):
		return UnprocessableEntityError(err.Error(), nil)
	case errors.Is(err, records.ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, records.ErrCategoryInUse):
		return ErrorResponse(http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidCredentials), errors.Is(err, session.ErrNotLoggedIn):
		return ErrorResponse(http.StatusUnauthorized, err.Error())
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	return InternalServerError("internal error")
}
