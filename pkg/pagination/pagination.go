// Package pagination implements the page/limit cursor used by every
// server-backed list endpoint of the portal API.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the row offset for the current page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Cursor is the server-reported pagination bookkeeping included in every
// list response envelope.
type Cursor struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

// NewCursor computes the cursor for a page of results.
func NewCursor(page, limit, total int) Cursor {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return Cursor{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// Next returns the page number to request for the next page. At the last
// page it returns the current page unchanged.
func (c Cursor) Next() int {
	if c.HasNext {
		return c.Page + 1
	}
	return c.Page
}

// Prev returns the page number to request for the previous page. At the
// first page it returns the current page unchanged.
func (c Cursor) Prev() int {
	if c.HasPrev {
		return c.Page - 1
	}
	return c.Page
}
