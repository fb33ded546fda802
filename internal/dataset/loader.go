package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingValue is wrapped by TypeError when a strict load meets an empty or NA field.
var ErrMissingValue = errors.New("missing value")

// ErrNonFinite is wrapped by TypeError for fields such as "inf" or "-Infinity".
var ErrNonFinite = errors.New("non-finite value")

// Options controls how delimited text is read.
type Options struct {
	// Delimiter between fields. If 0, ',' is used.
	Delimiter rune
	// AllowMissing turns empty/NA fields into missing cells instead of failing the load.
	AllowMissing bool
}

// DefaultOptions returns strict comma-separated loading.
func DefaultOptions() Options {
	return Options{Delimiter: ','}
}

// Load reads a headerless delimited file at path into a Dataset.
func Load(path string, schema Schema, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path), schema, opt)
}

// Read parses headerless delimited text from r. Blank lines are skipped; every other line
// must carry exactly len(schema.Columns) fields.
func Read(r io.Reader, name string, schema Schema, opt Options) (*Dataset, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	want := len(schema.Columns)
	labelIdx := schema.LabelIndex()
	var records []Record
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, &ParseError{Line: perr.StartLine, Err: perr.Err}
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != want {
			return nil, &ParseError{Line: line, Got: len(rec), Want: want}
		}
		row := Record{
			values:  make([]float64, 0, want-1),
			missing: make([]bool, 0, want-1),
		}
		for j, raw := range rec {
			v := strings.TrimSpace(raw)
			if j == labelIdx {
				switch {
				case opt.AllowMissing && isMissingToken(v):
					row.labelMissing = true
				case v == "":
					return nil, &ParseError{Line: line, Err: fmt.Errorf("column %s: %w", schema.Columns[j], ErrMissingValue)}
				default:
					row.label = v
				}
				continue
			}
			if isMissingToken(v) {
				if !opt.AllowMissing {
					return nil, &TypeError{Line: line, Column: schema.Columns[j], Value: v, Err: ErrMissingValue}
				}
				row.values = append(row.values, 0)
				row.missing = append(row.missing, true)
				continue
			}
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, &TypeError{Line: line, Column: schema.Columns[j], Value: v, Err: err}
			}
			if math.IsInf(x, 0) {
				return nil, &TypeError{Line: line, Column: schema.Columns[j], Value: v, Err: ErrNonFinite}
			}
			row.values = append(row.values, x)
			row.missing = append(row.missing, false)
		}
		records = append(records, row)
	}
	return &Dataset{name: name, schema: schema, numeric: schema.NumericColumns(), records: records}, nil
}

func isMissingToken(v string) bool {
	switch strings.ToUpper(v) {
	case "", "NA", "N/A", "NAN", "NULL", "?":
		return true
	}
	return false
}
