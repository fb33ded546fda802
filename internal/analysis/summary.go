// Package analysis computes the descriptive summary of a loaded dataset: missing values,
// z-score outliers, Pearson correlations, class distribution and per-column statistics.
//
// Every computation reads the same immutable dataset and returns an independent value.
package analysis

import (
	"errors"

	"github.com/KaramelBytes/tabstat-cli/internal/dataset"
)

// DefaultOutlierThreshold is the |z| above which a value is considered an outlier.
const DefaultOutlierThreshold = 3.0

// ErrEmptyDataset is returned when a summary is requested for a dataset without records.
var ErrEmptyDataset = errors.New("dataset has no records")

// Options controls summary behavior.
type Options struct {
	// OutlierThreshold is the |z| cutoff; values <= 0 mean DefaultOutlierThreshold.
	OutlierThreshold float64
}

// DefaultOptions returns the standard 3-sigma summary options.
func DefaultOptions() Options {
	return Options{OutlierThreshold: DefaultOutlierThreshold}
}

// Summary is the write-once aggregate computed from a dataset.
type Summary struct {
	Records     int
	Describe    *Description
	Missing     []ColumnCount
	Outliers    *Outliers
	Correlation *CorrMatrix
	Classes     []ClassCount
}

// Summarize runs every computation over ds.
func Summarize(ds *dataset.Dataset, opt Options) (*Summary, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = DefaultOutlierThreshold
	}
	return &Summary{
		Records:     ds.Len(),
		Describe:    Describe(ds),
		Missing:     MissingCounts(ds),
		Outliers:    DetectOutliers(ds, thr),
		Correlation: Correlate(ds),
		Classes:     ClassDistribution(ds),
	}, nil
}
