package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// table is a plain-text grid: the first column is a left-aligned row label, the rest are
// right-aligned and separated by two spaces.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(row ...string) { t.rows = append(t.rows, row) }

func (t *table) widths() []int {
	n := len(t.header)
	for _, r := range t.rows {
		if len(r) > n {
			n = len(r)
		}
	}
	w := make([]int, n)
	measure := func(row []string) {
		for i, cell := range row {
			if sw := runewidth.StringWidth(cell); sw > w[i] {
				w[i] = sw
			}
		}
	}
	measure(t.header)
	for _, r := range t.rows {
		measure(r)
	}
	return w
}

func (t *table) String() string {
	w := t.widths()
	var b strings.Builder
	write := func(row []string) {
		var line strings.Builder
		for i := range w {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == 0 {
				line.WriteString(padRight(cell, w[i]))
				continue
			}
			line.WriteString("  ")
			line.WriteString(padLeft(cell, w[i]))
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}
	if len(t.header) > 0 {
		write(t.header)
	}
	for _, r := range t.rows {
		write(r)
	}
	return b.String()
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}
