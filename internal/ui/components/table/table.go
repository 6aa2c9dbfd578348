// Package table lays out small, ANSI aware text columns.
package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// ComputeMaxWidth returns the widest row width, ignoring escape sequences.
func ComputeMaxWidth(rows []string) int {
	maxWidth := 0
	for _, row := range rows {
		if w := ansi.StringWidth(row); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// ClipRows cuts each row to the cells in [xOffset, xOffset+width).
func ClipRows(rows []string, xOffset, width int) []string {
	if width <= 0 {
		width = 1
	}
	clipped := make([]string, len(rows))
	for i, row := range rows {
		clipped[i] = ansi.Cut(row, xOffset, xOffset+width)
	}
	return clipped
}

// Columns aligns cells into rows joined by sep. The last column is not padded.
func Columns(cells [][]string, sep string) []string {
	var widths []int
	for _, row := range cells {
		for idx, cell := range row {
			if idx >= len(widths) {
				widths = append(widths, 0)
			}
			if w := ansi.StringWidth(cell); w > widths[idx] {
				widths[idx] = w
			}
		}
	}

	rows := make([]string, len(cells))
	for r, row := range cells {
		parts := make([]string, len(row))
		for idx, cell := range row {
			if idx < len(row)-1 {
				cell += strings.Repeat(" ", widths[idx]-ansi.StringWidth(cell))
			}
			parts[idx] = cell
		}
		rows[r] = strings.Join(parts, sep)
	}
	return rows
}
