package types

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// AugmentedSeries is a bar series extended with named indicator columns.
// It is built once per strategy and instrument by Set calls inside
// ComputeIndicators and is read-only afterwards: Column hands out copies.
//
// Every column value at index i depends on bars 0..i only.
type AugmentedSeries struct {
	Series  Series
	columns map[IndicatorType][]float64
	names   []IndicatorType
}

// NewAugmentedSeries wraps a series with no derived columns.
func NewAugmentedSeries(series Series) *AugmentedSeries {
	return &AugmentedSeries{
		Series:  series,
		columns: make(map[IndicatorType][]float64),
		names:   nil,
	}
}

// Len returns the number of bars.
func (a *AugmentedSeries) Len() int {
	return a.Series.Len()
}

// Symbol returns the instrument code.
func (a *AugmentedSeries) Symbol() string {
	return a.Series.Symbol
}

// Set stores a derived column. The column must be bar-aligned.
func (a *AugmentedSeries) Set(name IndicatorType, values []float64) error {
	if len(values) != a.Len() {
		return errors.Newf(errors.ErrCodeMisalignedData, "column %s has %d values, series has %d bars", name, len(values), a.Len())
	}

	if _, exists := a.columns[name]; !exists {
		a.names = append(a.names, name)
	}

	a.columns[name] = values

	return nil
}

// Has reports whether a column exists.
func (a *AugmentedSeries) Has(name IndicatorType) bool {
	_, ok := a.columns[name]

	return ok
}

// Column returns a copy of the named column.
func (a *AugmentedSeries) Column(name IndicatorType) ([]float64, error) {
	values, ok := a.columns[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeColumnNotFound, "column %s not found", name)
	}

	return slices.Clone(values), nil
}

// Value returns the column value at bar i, or NaN when the column or index
// does not exist.
func (a *AugmentedSeries) Value(name IndicatorType, i int) float64 {
	values, ok := a.columns[name]
	if !ok || i < 0 || i >= len(values) {
		return math.NaN()
	}

	return values[i]
}

// Names returns the column names in insertion order.
func (a *AugmentedSeries) Names() []IndicatorType {
	return slices.Clone(a.names)
}

// Bar returns bar i.
func (a *AugmentedSeries) Bar(i int) Bar {
	return a.Series.Bars[i]
}
