// Package render writes birthday lists for the terminal: aligned tables,
// JSON, validation failures and the daily greeting.
package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	columnGap      = 4
	separatorWidth = 40
)

// ListWriter builds a column-aligned tabular list view.
//
// Usage:
//
//	lw := render.NewListWriter(w, "NAME", "NEXT")
//	lw.Row("Ada", "2025-12-10")
//	lw.FlushWithFooter("Total: 1 birthday")
type ListWriter struct {
	w       io.Writer
	headers []string
	rows    [][]string
}

// NewListWriter creates a ListWriter with the given column headers.
func NewListWriter(w io.Writer, headers ...string) *ListWriter {
	return &ListWriter{
		w:       w,
		headers: headers,
	}
}

// Row adds a row of values. Missing trailing values render empty.
func (lw *ListWriter) Row(values ...string) {
	lw.rows = append(lw.rows, values)
}

// Flush renders the table without a footer.
func (lw *ListWriter) Flush() {
	lw.FlushWithFooter("")
}

// FlushWithFooter renders headers, a separator, the rows and, unless empty,
// a footer line.
func (lw *ListWriter) FlushWithFooter(footer string) {
	colCount := len(lw.headers)
	if colCount == 0 {
		return
	}

	// Widths count runes so umlauts in names and headers do not skew columns.
	widths := make([]int, colCount)
	for i, h := range lw.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range lw.rows {
		for i := 0; i < colCount && i < len(row); i++ {
			widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
		}
	}

	lw.printRow(lw.headers, widths)

	totalWidth := (colCount - 1) * columnGap
	for _, w := range widths {
		totalWidth += w
	}
	fmt.Fprintln(lw.w, strings.Repeat("─", max(totalWidth, separatorWidth)))

	for _, row := range lw.rows {
		lw.printRow(row, widths)
	}

	if footer != "" {
		fmt.Fprintln(lw.w)
		fmt.Fprintln(lw.w, footer)
	}
}

func (lw *ListWriter) printRow(values []string, widths []int) {
	var b strings.Builder
	last := len(widths) - 1
	for i := range widths {
		val := ""
		if i < len(values) {
			val = values[i]
		}
		b.WriteString(val)
		if i < last {
			b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(val)+columnGap))
		}
	}
	fmt.Fprintln(lw.w, strings.TrimRight(b.String(), " "))
}
