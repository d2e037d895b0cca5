package indicator

import "math"

// TrueRange is max(high, prevClose) - min(low, prevClose); bar 0 uses high - low.
func TrueRange(high, low, closes []float64) ([]float64, error) {
	if err := validateAligned("TrueRange", high, low, closes); err != nil {
		return nil, err
	}

	out := make([]float64, len(high))
	for i := range high {
		if i == 0 {
			out[i] = high[i] - low[i]

			continue
		}

		prevClose := closes[i-1]
		out[i] = math.Max(high[i], prevClose) - math.Min(low[i], prevClose)
	}

	return out, nil
}

// AverageTrueRange is the simple average of the true range over period bars.
func AverageTrueRange(high, low, closes []float64, period int) ([]float64, error) {
	if err := validatePeriod("AverageTrueRange", period); err != nil {
		return nil, err
	}

	tr, err := TrueRange(high, low, closes)
	if err != nil {
		return nil, err
	}

	return MovingAverage(tr, period)
}
