// Package search looks records up by key and filters them by keyword.
// The data set is small, so both operations are plain scans.
package search

import (
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// NotFound is the index LinearSearch returns when nothing matches.
const NotFound = -1

// LinearSearch returns the index of the first record whose ID equals id,
// or NotFound.
func LinearSearch(records []types.Student, id string) int {
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return NotFound
}

// Filter returns the records whose ID or name contains keyword, ignoring
// case. Order is preserved. An empty keyword matches everything.
// The result never aliases records.
func Filter(records []types.Student, keyword string) []types.Student {
	kw := strings.ToLower(strings.TrimSpace(keyword))

	out := make([]types.Student, 0, len(records))
	for _, s := range records {
		if kw == "" ||
			strings.Contains(strings.ToLower(s.ID), kw) ||
			strings.Contains(strings.ToLower(s.Name), kw) {
			out = append(out, s)
		}
	}
	return out
}
