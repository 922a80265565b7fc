package organizer

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter keeps the entries whose text contains query, case-insensitively.
// A group is kept whole when any member matches. An empty query keeps
// everything. The result is for display only.
func Filter(b Board, query string) Board {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return b.Clone()
	}
	fold := cases.Fold()
	needle := fold.String(query)

	var out Board
	for _, c := range Columns {
		var kept []Entry
		for _, e := range b.Entries(c) {
			for _, q := range e.Questions() {
				if strings.Contains(fold.String(q.Text()), needle) || strings.Contains(fold.String(q.ID), needle) {
					kept = append(kept, e.clone())
					break
				}
			}
		}
		out.setEntries(c, kept)
	}
	return out
}
