package indicator

// MovingAverage is the simple moving average over a trailing window of period bars.
func MovingAverage(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("MovingAverage", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := range values {
		if w, ok := window(values, i, period); ok {
			out[i] = mean(w)
		}
	}

	return out, nil
}

// RollingSum sums a trailing window of period bars.
func RollingSum(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("RollingSum", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := range values {
		if w, ok := window(values, i, period); ok {
			out[i] = sum(w)
		}
	}

	return out, nil
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}

	return total
}

func mean(values []float64) float64 {
	return sum(values) / float64(len(values))
}
