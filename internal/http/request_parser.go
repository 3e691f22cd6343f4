// Package http provides the JSON API server and its handlers.
//
// This file implements utilities for parsing and validating request data.
// Parsers return a ready error response instead of an error so handlers can
// write it and return.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"smartfinance/internal/core"
	"smartfinance/internal/records"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 16 << 20

	defaultTrendDays = 30
	maxTrendDays     = 366
)

// DecodeJSON reads a single JSON document from the request body into v.
// Unknown fields are rejected so that typos in field names surface as 400.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) *ResponseBuilder {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrorResponse(http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			return BadRequestError("request body is empty")
		default:
			return BadRequestError("malformed JSON: " + err.Error())
		}
	}
	if dec.More() {
		return BadRequestError("request body must hold a single JSON document")
	}
	return nil
}

// ParseFilters builds transaction filters from query parameters. The period
// parameter selects the date range; unknown periods mean all time.
func ParseFilters(q url.Values) (records.Filters, *ResponseBuilder) {
	f := records.Filters{
		DateRange: core.Period(strings.TrimSpace(q.Get("period"))),
		Category:  strings.TrimSpace(q.Get("category")),
		Search:    sanitizeInput(q.Get("search")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(q.Get("sortOrder"))),
	}

	if v := strings.TrimSpace(q.Get("type")); v != "" {
		t := core.TransactionType(v)
		if !t.Valid() {
			return records.Filters{}, BadRequestError("type must be income or expense")
		}
		f.Type = t
	}
	switch f.SortOrder {
	case "", records.SortAsc, records.SortDesc:
	default:
		return records.Filters{}, BadRequestError("sortOrder must be asc or desc")
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return records.Filters{}, BadRequestError("limit must be a non-negative integer")
		}
		f.Limit = n
	}
	return f, nil
}

// ParsePeriod returns the period parameter, defaulting to the last month.
func ParsePeriod(q url.Values) core.Period {
	if v := strings.TrimSpace(q.Get("period")); v != "" {
		return core.Period(v)
	}
	return core.PeriodMonth
}

// ParseDays returns the days parameter of the trend endpoint.
func ParseDays(q url.Values) (int, *ResponseBuilder) {
	v := strings.TrimSpace(q.Get("days"))
	if v == "" {
		return defaultTrendDays, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxTrendDays {
		return 0, BadRequestError("days must be an integer between 1 and " + strconv.Itoa(maxTrendDays))
	}
	return n, nil
}

// ParseFormat returns the export or import format, defaulting to JSON.
func ParseFormat(q url.Values) (string, *ResponseBuilder) {
	switch f := strings.ToLower(strings.TrimSpace(q.Get("format"))); f {
	case "", records.FormatJSON:
		return records.FormatJSON, nil
	case records.FormatYAML, "yml":
		return records.FormatYAML, nil
	default:
		return "", BadRequestError("format must be json or yaml")
	}
}
