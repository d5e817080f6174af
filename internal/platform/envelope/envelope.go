// Package envelope defines the response envelope every portal API
// endpoint returns: a success flag, the payload, optional pagination
// and aggregate blocks, and a human-readable message on failure.
package envelope

import (
	"github.com/carebridge/portal/pkg/listquery"
	"github.com/carebridge/portal/pkg/pagination"
)

type Response struct {
	Success    bool               `json:"success"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *pagination.Cursor `json:"pagination,omitempty"`
	Aggregates *listquery.Totals  `json:"aggregates,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// OK wraps a successful payload.
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// OKWithMessage wraps a successful payload with an informational message,
// e.g. when serving fallback data after an upstream failure.
func OKWithMessage(data interface{}, message string) Response {
	return Response{Success: true, Data: data, Message: message}
}

// Paged wraps a list payload with its pagination cursor and aggregate
// totals.
func Paged(data interface{}, cursor pagination.Cursor, totals listquery.Totals) Response {
	return Response{Success: true, Data: data, Pagination: &cursor, Aggregates: &totals}
}

// Fail wraps an error message. The message falls back to a generic
// string when empty so clients always have something to display.
func Fail(message string) Response {
	if message == "" {
		message = "something went wrong, please try again"
	}
	return Response{Success: false, Error: message}
}
