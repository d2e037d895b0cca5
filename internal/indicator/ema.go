package indicator

import "math"

// ExponentialAverage is the recursive exponential average with alpha = 2/(span+1),
// seeded with the first defined value (pandas ewm(span, adjust=False)).
// A NaN input carries the previous average forward.
func ExponentialAverage(values []float64, span int) ([]float64, error) {
	if err := validatePeriod("ExponentialAverage", span); err != nil {
		return nil, err
	}

	alpha := 2.0 / float64(span+1)
	out := nanSlice(len(values))
	prev := math.NaN()

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			// keep prev
		case math.IsNaN(prev):
			prev = v
		default:
			prev = v*alpha + prev*(1-alpha)
		}

		out[i] = prev
	}

	return out, nil
}
