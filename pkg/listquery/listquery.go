// Package listquery implements the client-side list query engine shared
// by every record-listing page of the portal: free-text search, status
// filtering, and stable comparator-based sorting over an in-memory set
// of records. The engine is pure: it never mutates its input and the
// same inputs always produce the same output.
package listquery

import (
	"slices"
	"strings"
	"time"
)

// StatusAll is the sentinel status filter that matches every record.
const StatusAll = "all"

// State holds the query selections for a single list view.
type State struct {
	SearchText   string `json:"search_text"`
	StatusFilter string `json:"status_filter"`
	SortKey      string `json:"sort_key"`
}

// Comparator orders two records. Negative means a before b.
type Comparator[T any] func(a, b T) int

// Definition configures the engine for one record type: which fields are
// searchable, which field carries the status, and which named sort
// orders are available.
type Definition[T any] struct {
	SearchFields []func(T) string
	Status       func(T) string
	Sorts        map[string]Comparator[T]
	DefaultSort  string
}

// DefaultState returns the reset state for this definition.
func (d Definition[T]) DefaultState() State {
	return State{SearchText: "", StatusFilter: StatusAll, SortKey: d.DefaultSort}
}

// FilterAndSort applies the text filter, then the status filter, then a
// stable sort, and returns a new slice. Records missing searchable or
// status fields degrade to empty strings; the function never panics for
// well-typed input.
func (d Definition[T]) FilterAndSort(records []T, s State) []T {
	needle := strings.ToLower(strings.TrimSpace(s.SearchText))
	out := make([]T, 0, len(records))
	for _, r := range records {
		if needle != "" && !d.matchesText(r, needle) {
			continue
		}
		if !d.matchesStatus(r, s.StatusFilter) {
			continue
		}
		out = append(out, r)
	}

	cmp, ok := d.Sorts[s.SortKey]
	if !ok {
		cmp = d.Sorts[d.DefaultSort]
	}
	if cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

// matchesText checks the needle against the concatenation of all
// searchable fields, so a query may span a field boundary.
func (d Definition[T]) matchesText(r T, needle string) bool {
	if len(d.SearchFields) == 0 {
		return false
	}
	var b strings.Builder
	for _, field := range d.SearchFields {
		if field == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(field(r))
	}
	return strings.Contains(strings.ToLower(b.String()), needle)
}

func (d Definition[T]) matchesStatus(r T, filter string) bool {
	if filter == "" || strings.EqualFold(filter, StatusAll) {
		return true
	}
	if d.Status == nil {
		return false
	}
	return strings.EqualFold(d.Status(r), filter)
}

// SortKeys returns the declared sort option names in no particular order.
func (d Definition[T]) SortKeys() []string {
	keys := make([]string, 0, len(d.Sorts))
	for k := range d.Sorts {
		keys = append(keys, k)
	}
	return keys
}

// -- Comparator constructors --

// TimeAsc orders chronologically ascending ("soonest"). Zero times sort
// after all valid times.
func TimeAsc[T any](field func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return compareTimes(field(a), field(b), false)
	}
}

// TimeDesc orders chronologically descending ("latest"). Zero times sort
// after all valid times.
func TimeDesc[T any](field func(T) time.Time) Comparator[T] {
	return func(a, b T) int {
		return compareTimes(field(a), field(b), true)
	}
}

// DateStringAsc orders by an ISO-8601 date-time string ascending.
// Unparseable or empty values sort after all valid dates.
func DateStringAsc[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		return compareTimes(parseWhen(field(a)), parseWhen(field(b)), false)
	}
}

// DateStringDesc orders by an ISO-8601 date-time string descending.
// Unparseable or empty values sort after all valid dates.
func DateStringDesc[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		return compareTimes(parseWhen(field(a)), parseWhen(field(b)), true)
	}
}

// StringAsc orders lexicographically ascending, case-insensitive.
func StringAsc[T any](field func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(field(a)), strings.ToLower(field(b)))
	}
}

// NumberAsc orders by a numeric field ascending.
func NumberAsc[T any](field func(T) float64) Comparator[T] {
	return func(a, b T) int {
		return compareFloats(field(a), field(b))
	}
}

// NumberDesc orders by a numeric field descending.
func NumberDesc[T any](field func(T) float64) Comparator[T] {
	return func(a, b T) int {
		return compareFloats(field(b), field(a))
	}
}

func compareTimes(a, b time.Time, desc bool) int {
	// Invalid (zero) values always sort last regardless of direction.
	switch {
	case a.IsZero() && b.IsZero():
		return 0
	case a.IsZero():
		return 1
	case b.IsZero():
		return -1
	}
	if desc {
		return b.Compare(a)
	}
	return a.Compare(b)
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// parseWhen accepts RFC 3339 timestamps and bare dates; anything else
// maps to the zero time.
func parseWhen(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
