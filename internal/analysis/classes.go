package analysis

import (
	"sort"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
)

// ColumnCount pairs a column name with a count.
type ColumnCount struct {
	Name  string
	Count int
}

// ClassCount pairs a label value with the number of records bearing it.
type ClassCount struct {
	Value string
	Count int
}

// MissingCounts counts missing cells per column, in schema order (label included).
// On a strict load this is all zeros.
func MissingCounts(ds *dataset.Dataset) []ColumnCount {
	schema := ds.Schema()
	out := make([]ColumnCount, 0, len(schema.Columns))
	numIdx := 0
	for _, name := range schema.Columns {
		cc := ColumnCount{Name: name}
		if name == schema.Label {
			for i := 0; i < ds.Len(); i++ {
				if _, ok := ds.Record(i).Label(); !ok {
					cc.Count++
				}
			}
		} else {
			for i := 0; i < ds.Len(); i++ {
				if _, ok := ds.Record(i).Value(numIdx); !ok {
					cc.Count++
				}
			}
			numIdx++
		}
		out = append(out, cc)
	}
	return out
}

// ClassDistribution counts records per label, ordered by descending count with ties kept in
// first-seen order. Missing labels are not counted.
func ClassDistribution(ds *dataset.Dataset) []ClassCount {
	counts := map[string]int{}
	order := ds.Classes()
	for i := 0; i < ds.Len(); i++ {
		if lbl, ok := ds.Record(i).Label(); ok {
			counts[lbl]++
		}
	}
	out := make([]ClassCount, len(order))
	for i, v := range order {
		out[i] = ClassCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
