package commands

import (
	"strings"

	"colljump/internal/domain"
)

// FilterEntries keeps the entries whose path contains query, ignoring case.
// A blank query keeps everything. Order is preserved.
func FilterEntries(entries []domain.PathEntry, query string) []domain.PathEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return entries
	}

	out := make([]domain.PathEntry, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Path), q) {
			out = append(out, e)
		}
	}
	return out
}
