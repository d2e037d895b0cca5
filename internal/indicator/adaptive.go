package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// DeltaVolatility is the relative one-bar change of a volatility column,
// (v[i] - v[i-1]) / v[i], clipped to [-1, 1]. Bars where v[i] <= 0 or either
// value is undefined yield 0.
func DeltaVolatility(volatility []float64) []float64 {
	out := make([]float64, len(volatility))
	for i := 1; i < len(volatility); i++ {
		today, yesterday := volatility[i], volatility[i-1]
		if math.IsNaN(today) || math.IsNaN(yesterday) || today <= 0 {
			continue
		}

		out[i] = Clamp((today-yesterday)/today, -1, 1)
	}

	return out
}

// AdaptiveLookback runs the bounded window recurrence
//
//	window[0] = seed
//	window[i] = clamp(round(window[i-1] * (1 + delta[i])), floor, ceiling)
//
// Rounding is half-to-even.
func AdaptiveLookback(delta []float64, seed int, floor int, ceiling int) ([]float64, error) {
	if err := validatePeriod("AdaptiveLookback", seed); err != nil {
		return nil, err
	}

	if floor <= 0 || ceiling < floor {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "AdaptiveLookback: invalid bounds floor=%d ceiling=%d", floor, ceiling)
	}

	out := make([]float64, len(delta))
	if len(out) == 0 {
		return out, nil
	}

	out[0] = float64(seed)
	for i := 1; i < len(delta); i++ {
		next := math.RoundToEven(out[i-1] * (1 + delta[i]))
		out[i] = Clamp(next, float64(floor), float64(ceiling))
	}

	return out, nil
}

// WindowedAverage is MovingAverage with a per-bar window length.
func WindowedAverage(values []float64, windows []float64) ([]float64, error) {
	return windowed("WindowedAverage", values, windows, mean)
}

// WindowedStandardDeviation is StandardDeviation with a per-bar window length.
func WindowedStandardDeviation(values []float64, windows []float64, kind DeviationType) ([]float64, error) {
	if kind != Population && kind != Sample {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "WindowedStandardDeviation: unknown deviation type %d", kind)
	}

	return windowed("WindowedStandardDeviation", values, windows, func(w []float64) float64 {
		return deviation(w, kind)
	})
}

// WindowedHighest is Highest with a per-bar window length.
func WindowedHighest(values []float64, windows []float64) ([]float64, error) {
	return windowed("WindowedHighest", values, windows, maxOf)
}

// WindowedLowest is Lowest with a per-bar window length.
func WindowedLowest(values []float64, windows []float64) ([]float64, error) {
	return windowed("WindowedLowest", values, windows, minOf)
}

func windowed(name string, values []float64, windows []float64, reduce func([]float64) float64) ([]float64, error) {
	if err := validateAligned(name, values, windows); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := range values {
		if math.IsNaN(windows[i]) {
			continue
		}

		if w, ok := window(values, i, int(windows[i])); ok {
			out[i] = reduce(w)
		}
	}

	return out, nil
}
