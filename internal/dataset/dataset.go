// Package dataset loads fixed-schema delimited text into an immutable in-memory table.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// IrisColumns is the column layout of the UCI Iris data file.
var IrisColumns = []string{"sepal_length", "sepal_width", "petal_length", "petal_width", "species"}

// Schema names the columns of a headerless file in order and marks the label column.
// Every column other than the label is numeric.
type Schema struct {
	Columns []string
	Label   string
}

// IrisSchema returns the default schema for the Iris dataset.
func IrisSchema() Schema {
	cols := make([]string, len(IrisColumns))
	copy(cols, IrisColumns)
	return Schema{Columns: cols, Label: "species"}
}

// Validate checks that the schema has unique names, exactly one label column and
// at least one numeric column.
func (s Schema) Validate() error {
	if len(s.Columns) < 2 {
		return errors.New("schema needs at least one numeric column and a label column")
	}
	seen := make(map[string]bool, len(s.Columns))
	found := false
	for _, c := range s.Columns {
		name := strings.TrimSpace(c)
		if name == "" {
			return errors.New("schema column names cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = true
		if name == s.Label {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("label column %q not among columns %v", s.Label, s.Columns)
	}
	return nil
}

// LabelIndex returns the position of the label column in Columns, or -1.
func (s Schema) LabelIndex() int {
	for i, c := range s.Columns {
		if c == s.Label {
			return i
		}
	}
	return -1
}

// NumericColumns returns the numeric column names in file order.
func (s Schema) NumericColumns() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c != s.Label {
			out = append(out, c)
		}
	}
	return out
}

// Record is one observation. Values follow Schema.NumericColumns order.
type Record struct {
	values       []float64
	missing      []bool
	label        string
	labelMissing bool
}

// NewRecord builds a complete record. It copies values.
func NewRecord(values []float64, label string) Record {
	v := make([]float64, len(values))
	copy(v, values)
	return Record{values: v, missing: make([]bool, len(values)), label: label}
}

// Value returns the i-th numeric value and whether it is present.
func (r Record) Value(i int) (float64, bool) {
	if r.missing[i] {
		return math.NaN(), false
	}
	return r.values[i], true
}

// Values returns a copy of the numeric values; missing cells are NaN.
func (r Record) Values() []float64 {
	out := make([]float64, len(r.values))
	for i, v := range r.values {
		if r.missing[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

// Label returns the categorical label and whether it is present.
func (r Record) Label() (string, bool) { return r.label, !r.labelMissing }

// Dataset is an ordered, read-only sequence of records sharing one schema.
type Dataset struct {
	name    string
	schema  Schema
	numeric []string
	records []Record
}

// New builds a Dataset from already parsed records. Record widths must match the schema.
func New(name string, schema Schema, records []Record) (*Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	numeric := schema.NumericColumns()
	for i, r := range records {
		if len(r.values) != len(numeric) {
			return nil, fmt.Errorf("record %d has %d numeric values, schema has %d", i, len(r.values), len(numeric))
		}
	}
	recs := make([]Record, len(records))
	copy(recs, records)
	return &Dataset{name: name, schema: schema, numeric: numeric, records: recs}, nil
}

// Name is the source name (usually the file base name).
func (d *Dataset) Name() string { return d.name }

// Schema returns the dataset schema.
func (d *Dataset) Schema() Schema { return d.schema }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns the i-th record in file order.
func (d *Dataset) Record(i int) Record { return d.records[i] }

// NumericColumns returns the numeric column names in file order.
func (d *Dataset) NumericColumns() []string {
	out := make([]string, len(d.numeric))
	copy(out, d.numeric)
	return out
}

// Column returns the values of the i-th numeric column; missing cells are NaN.
func (d *Dataset) Column(i int) []float64 {
	out := make([]float64, len(d.records))
	for j, r := range d.records {
		out[j], _ = r.Value(i)
	}
	return out
}

// Present returns the non-missing values of the i-th numeric column.
func (d *Dataset) Present(i int) []float64 {
	out := make([]float64, 0, len(d.records))
	for _, r := range d.records {
		if v, ok := r.Value(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Labels returns the label of every record; missing labels are empty strings.
func (d *Dataset) Labels() []string {
	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i] = r.label
	}
	return out
}

// Classes returns the distinct present labels in first-seen order.
func (d *Dataset) Classes() []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range d.records {
		if r.labelMissing || seen[r.label] {
			continue
		}
		seen[r.label] = true
		out = append(out, r.label)
	}
	return out
}

// ByClass groups the present values of the i-th numeric column by label.
func (d *Dataset) ByClass(i int) map[string][]float64 {
	out := map[string][]float64{}
	for _, r := range d.records {
		if r.labelMissing {
			continue
		}
		if v, ok := r.Value(i); ok {
			out[r.label] = append(out[r.label], v)
		}
	}
	return out
}
