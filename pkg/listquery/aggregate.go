package listquery

import "strings"

// Totals holds summary tallies computed over the full loaded record set.
// They depend only on the records themselves, never on the query state.
type Totals struct {
	Total          int                `json:"total"`
	CountsByStatus map[string]int     `json:"counts_by_status"`
	Sums           map[string]float64 `json:"sums,omitempty"`
}

// Aggregate reduces the records to per-status counts plus named sums.
// Empty input yields zero totals. Status values are normalized to lower
// case; records without a status field are counted under "unknown".
func Aggregate[T any](records []T, status func(T) string, sums map[string]func(T) float64) Totals {
	t := Totals{
		Total:          len(records),
		CountsByStatus: make(map[string]int),
	}
	if len(sums) > 0 {
		t.Sums = make(map[string]float64, len(sums))
	}
	for _, r := range records {
		key := "unknown"
		if status != nil {
			if s := strings.ToLower(strings.TrimSpace(status(r))); s != "" {
				key = s
			}
		}
		t.CountsByStatus[key]++
		for name, field := range sums {
			if field != nil {
				t.Sums[name] += field(r)
			}
		}
	}
	return t
}
