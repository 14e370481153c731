package pdf

import (
	"regexp"
	"strings"
)

// Table detection thresholds. A candidate region must have at least
// this many rows and columns to be reported as a table.
const (
	minTableRows = 2
	minTableCols = 2
)

// cellGapRe splits a layout-preserved line into cells on runs of two or
// more spaces, or tabs.
var cellGapRe = regexp.MustCompile(`\t|[ ]{2,}`)

// detectTables finds whitespace-aligned tables in layout-preserved page
// text. It is a heuristic: consecutive lines that each split into two
// or more cells form a candidate, kept when it spans at least
// minTableRows rows.
func detectTables(text string) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= minTableRows {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitCells(line)
		if len(cells) >= minTableCols {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()

	return tables
}

// splitCells splits one line into trimmed cells, dropping empties.
func splitCells(line string) []string {
	var cells []string
	for _, cell := range cellGapRe.Split(line, -1) {
		cell = strings.TrimSpace(cell)
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}
