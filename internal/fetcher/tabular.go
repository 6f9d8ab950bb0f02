package fetcher

import (
	"strings"

	"github.com/sells-group/arr-heatmap/internal/model"
)

// RowsFromValues converts a value grid (header row followed by data rows)
// into raw rows keyed by the trimmed header labels. Cells missing from
// short rows default to "". Labels in excluded are stripped from every
// row before it leaves the fetch boundary, so sensitive columns never
// pass through to consumers. Nil or header-only input yields no rows.
func RowsFromValues(values [][]string, excluded []string) []model.RawRow {
	if len(values) < 2 {
		return nil
	}

	drop := make(map[string]bool, len(excluded))
	for _, label := range excluded {
		drop[strings.TrimSpace(label)] = true
	}

	header := make([]string, len(values[0]))
	for i, label := range values[0] {
		header[i] = strings.TrimSpace(label)
	}

	rows := make([]model.RawRow, 0, len(values)-1)
	for _, cells := range values[1:] {
		row := make(model.RawRow, len(header))
		for i, label := range header {
			if label == "" || drop[label] {
				continue
			}
			if i < len(cells) {
				row[label] = cells[i]
			} else {
				row[label] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
