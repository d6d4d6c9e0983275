package view

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Text renders a table as aligned plain text with a summary strip, for CLI
// output.
func Text(t Table) string {
	var b strings.Builder

	if len(t.Headers) == 0 {
		b.WriteString("No visible columns.\n")
		return b.String()
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = utf8.RuneCountInString(h.Label)
	}
	for _, row := range t.Rows {
		for i, cell := range row.Cells {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if pad := widths[i] - utf8.RuneCountInString(cell); pad > 0 && i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", pad))
			}
		}
		b.WriteString("\n")
	}

	labels := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		labels[i] = h.Label
	}
	writeRow(labels)

	rule := make([]string, len(t.Headers))
	for i := range rule {
		rule[i] = strings.Repeat("-", widths[i])
	}
	writeRow(rule)

	if len(t.Rows) == 0 {
		b.WriteString("(no rows)\n")
	}
	for _, row := range t.Rows {
		writeRow(row.Cells)
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%d matching, page %d", t.TotalFiltered, t.Page)
	if t.PageCount > 0 {
		fmt.Fprintf(&b, " of %d", t.PageCount)
	}
	b.WriteString("\n")

	if len(t.Aggregates) > 0 {
		parts := make([]string, len(t.Aggregates))
		for i, agg := range t.Aggregates {
			parts[i] = fmt.Sprintf("%s: %s", agg.Label, formatTotal(agg.Total))
		}
		b.WriteString(strings.Join(parts, " · "))
		b.WriteString("\n")
	}

	return b.String()
}

// formatTotal drops the decimal point for whole totals.
func formatTotal(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
