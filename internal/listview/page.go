package listview

import (
	"fmt"
	"strings"
)

// TotalPages returns max(1, ceil(count/pageSize)). An empty view still has
// one page so pagination controls stay stable.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// Bounds returns the half-open slice range [start, end) for a 1-indexed page.
func Bounds(page, pageSize, count int) (start, end int) {
	if count <= 0 || pageSize <= 0 {
		return 0, 0
	}
	page = clamp(page, 1, TotalPages(count, pageSize))
	start = (page - 1) * pageSize
	end = min(start+pageSize, count)
	return start, end
}

// Summary formats the page position, e.g. "Page 2 of 3 (showing 6-10 of 12)".
func (m Meta) Summary() string {
	return fmt.Sprintf("Page %d of %d (showing %d-%d of %d)", m.Page, m.TotalPages, m.Start, m.End, m.TotalCount)
}

// ContainsFold reports whether query is a case-insensitive substring of the
// space-joined fields. An empty query matches everything.
func ContainsFold(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), strings.ToLower(query))
}

// AnyContainsFold is ContainsFold applied to each field on its own, so a
// query never matches across a field boundary.
func AnyContainsFold(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// MatchFacet reports whether facet selects value: FacetAll (or empty) selects
// everything, otherwise the match is exact.
func MatchFacet(facet, value string) bool {
	if facet == "" || facet == FacetAll {
		return true
	}
	return facet == value
}

func clamp(n, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
