// Package indicator holds the pure series functions strategies build their
// AugmentedSeries from. Every function scans left to right: the value at
// index i depends on inputs at indices <= i only. Undefined values (window
// not filled yet, NaN input inside the window) are NaN.
package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// DeviationType selects the standard deviation divisor, matching the
// DataType argument of the classic StandardDev function.
type DeviationType int

const (
	// Population divides by n.
	Population DeviationType = 1
	// Sample divides by n-1.
	Sample DeviationType = 2
)

func validatePeriod(name string, period int) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s: period must be a positive integer, got %d", name, period)
	}

	return nil
}

func validateAligned(name string, columns ...[]float64) error {
	for _, column := range columns[1:] {
		if len(column) != len(columns[0]) {
			return errors.Newf(errors.ErrCodeMisalignedData, "%s: input columns have different lengths", name)
		}
	}

	return nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// window returns values[i-period+1 : i+1] and whether it is complete and NaN free.
func window(values []float64, i int, period int) ([]float64, bool) {
	if period <= 0 || i < period-1 || i >= len(values) {
		return nil, false
	}

	w := values[i-period+1 : i+1]
	for _, v := range w {
		if math.IsNaN(v) {
			return nil, false
		}
	}

	return w, true
}

// Shift lags values by k >= 0 bars; the first k values are NaN.
// A negative k would read the future and yields an all-NaN column.
func Shift(values []float64, k int) []float64 {
	out := nanSlice(len(values))
	if k < 0 {
		return out
	}

	for i := k; i < len(values); i++ {
		out[i] = values[i-k]
	}

	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
