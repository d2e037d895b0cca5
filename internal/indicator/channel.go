package indicator

import "math"

// Highest is the rolling maximum over a trailing window of period bars (Donchian high).
func Highest(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("Highest", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := range values {
		if w, ok := window(values, i, period); ok {
			out[i] = maxOf(w)
		}
	}

	return out, nil
}

// Lowest is the rolling minimum over a trailing window of period bars (Donchian low).
func Lowest(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("Lowest", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := range values {
		if w, ok := window(values, i, period); ok {
			out[i] = minOf(w)
		}
	}

	return out, nil
}

func maxOf(w []float64) float64 {
	m := math.Inf(-1)
	for _, v := range w {
		m = math.Max(m, v)
	}

	return m
}

func minOf(w []float64) float64 {
	m := math.Inf(1)
	for _, v := range w {
		m = math.Min(m, v)
	}

	return m
}
