// Package report renders a dataset summary as a fixed-order plain-text document.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/KaramelBytes/tabstat-cli/internal/analysis"
	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
	"github.com/KaramelBytes/tabstat-cli/internal/utils"
)

// Section headers, in output order.
const (
	HeaderDescribe    = "Descriptive Statistics:"
	HeaderMissing     = "Missing Values:"
	HeaderCorrelation = "Correlation:"
)

// Options controls optional report decorations.
type Options struct {
	// Header prepends run metadata lines.
	Header      bool
	RunID       string
	GeneratedAt time.Time
}

// Render builds the full report text. Sections appear in fixed order: descriptive statistics,
// missing values, outliers, correlation, class counts.
func Render(ds *dataset.Dataset, sum *analysis.Summary, opt Options) string {
	var b strings.Builder
	if opt.Header {
		b.WriteString(fmt.Sprintf("Source: %s\n", ds.Name()))
		if opt.RunID != "" {
			b.WriteString(fmt.Sprintf("Run: %s\n", opt.RunID))
		}
		if !opt.GeneratedAt.IsZero() {
			b.WriteString(fmt.Sprintf("Generated: %s\n", opt.GeneratedAt.UTC().Format(time.RFC3339)))
		}
		b.WriteString("\n")
	}

	b.WriteString(HeaderDescribe + "\n")
	b.WriteString(describeTable(sum.Describe).String())

	b.WriteString("\n" + HeaderMissing + "\n")
	b.WriteString(missingTable(sum.Missing).String())

	b.WriteString("\n" + OutliersHeader(sum.Outliers.Threshold) + "\n")
	if sum.Outliers.Count() == 0 {
		b.WriteString("Empty: no records flagged\n")
	} else {
		b.WriteString(outlierTable(ds, sum.Outliers).String())
	}

	b.WriteString("\n" + HeaderCorrelation + "\n")
	b.WriteString(corrTable(sum.Correlation).String())

	b.WriteString("\n" + ClassesHeader(ds.Schema().Label) + "\n")
	b.WriteString(classTable(sum.Classes).String())
	return b.String()
}

// Write persists a rendered report atomically.
func Write(path, text string) error {
	if err := utils.SafeWriteFile(path, []byte(text)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// OutliersHeader is the outlier section title for a threshold.
func OutliersHeader(threshold float64) string {
	return fmt.Sprintf("Outliers (values beyond %s standard deviations):", strconv.FormatFloat(threshold, 'f', -1, 64))
}

// ClassesHeader is the class distribution section title, e.g. "Species Counts:".
func ClassesHeader(label string) string {
	r, size := utf8.DecodeRuneInString(label)
	if r == utf8.RuneError {
		return "Class Counts:"
	}
	return string(unicode.ToUpper(r)) + label[size:] + " Counts:"
}

func describeTable(d *analysis.Description) *table {
	t := &table{header: []string{""}}
	for _, c := range d.Columns {
		t.header = append(t.header, c.Name)
	}
	for _, name := range analysis.Statistics {
		row := []string{name}
		for _, c := range d.Columns {
			row = append(row, formatStat(c.Get(name)))
		}
		t.add(row...)
	}
	return t
}

func missingTable(m []analysis.ColumnCount) *table {
	t := &table{}
	for _, c := range m {
		t.add(c.Name, strconv.Itoa(c.Count))
	}
	return t
}

func outlierTable(ds *dataset.Dataset, o *analysis.Outliers) *table {
	schema := ds.Schema()
	t := &table{header: append([]string{""}, schema.Columns...)}
	labelIdx := schema.LabelIndex()
	for _, r := range o.Rows {
		row := []string{strconv.Itoa(r.Index)}
		num := 0
		for i := range schema.Columns {
			if i == labelIdx {
				row = append(row, displayLabel(r.Label))
				continue
			}
			row = append(row, formatValue(r.Values[num]))
			num++
		}
		t.add(row...)
	}
	return t
}

func corrTable(c *analysis.CorrMatrix) *table {
	t := &table{header: append([]string{""}, c.Columns...)}
	for i, name := range c.Columns {
		row := []string{name}
		for j := range c.Columns {
			row = append(row, formatStat(c.At(i, j)))
		}
		t.add(row...)
	}
	return t
}

func classTable(classes []analysis.ClassCount) *table {
	t := &table{}
	for _, c := range classes {
		t.add(c.Value, strconv.Itoa(c.Count))
	}
	return t
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func displayLabel(s string) string {
	if s == "" {
		return "NaN"
	}
	return s
}
