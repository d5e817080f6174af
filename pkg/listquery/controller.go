package listquery

import "github.com/labstack/echo/v4"

// Controller owns the query state for one list view. Setters replace the
// stored value verbatim; trimming and case folding happen only inside
// the engine's comparison step. The controller performs no I/O.
type Controller[T any] struct {
	def   Definition[T]
	state State
}

// NewController creates a controller initialized to the definition's
// default state.
func NewController[T any](def Definition[T]) *Controller[T] {
	return &Controller[T]{def: def, state: def.DefaultState()}
}

// State returns the current query state.
func (c *Controller[T]) State() State { return c.state }

// SetSearchText replaces the search text verbatim.
func (c *Controller[T]) SetSearchText(text string) { c.state.SearchText = text }

// SetStatusFilter replaces the status filter. Unrecognized tokens are
// accepted and simply match zero records.
func (c *Controller[T]) SetStatusFilter(value string) { c.state.StatusFilter = value }

// SetSortKey replaces the sort key. Unknown keys fall back to the
// definition's default order at query time.
func (c *Controller[T]) SetSortKey(key string) { c.state.SortKey = key }

// Reset restores the page-defined defaults.
func (c *Controller[T]) Reset() { c.state = c.def.DefaultState() }

// View recomputes the filtered view for the current state.
func (c *Controller[T]) View(records []T) []T {
	return c.def.FilterAndSort(records, c.state)
}

// StateFromContext extracts a query state from the q, status, and sort
// request parameters, falling back to the given default sort key.
func StateFromContext(c echo.Context, defaultSort string) State {
	s := State{
		SearchText:   c.QueryParam("q"),
		StatusFilter: c.QueryParam("status"),
		SortKey:      c.QueryParam("sort"),
	}
	if s.StatusFilter == "" {
		s.StatusFilter = StatusAll
	}
	if s.SortKey == "" {
		s.SortKey = defaultSort
	}
	return s
}
