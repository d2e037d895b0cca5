package indicator

// Momentum is values[i] - values[i-period].
func Momentum(values []float64, period int) ([]float64, error) {
	if err := validatePeriod("Momentum", period); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	for i := period; i < len(values); i++ {
		out[i] = values[i] - values[i-period]
	}

	return out, nil
}

// CrossOver is true at i when a moves from at-or-below b at i-1 to above b at i.
func CrossOver(a, b []float64) ([]bool, error) {
	if err := validateAligned("CrossOver", a, b); err != nil {
		return nil, err
	}

	out := make([]bool, len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i] > b[i] && a[i-1] <= b[i-1]
	}

	return out, nil
}

// CrossUnder is true at i when a moves from at-or-above b at i-1 to below b at i.
func CrossUnder(a, b []float64) ([]bool, error) {
	if err := validateAligned("CrossUnder", a, b); err != nil {
		return nil, err
	}

	out := make([]bool, len(a))
	for i := 1; i < len(a); i++ {
		out[i] = a[i] < b[i] && a[i-1] >= b[i-1]
	}

	return out, nil
}

// BoolColumn encodes booleans as 1/0 so they can live in an AugmentedSeries.
func BoolColumn(flags []bool) []float64 {
	out := make([]float64, len(flags))
	for i, f := range flags {
		if f {
			out[i] = 1
		}
	}

	return out
}

// ConsecutiveRises counts, over a trailing window of period bars, the bars
// whose close is above the previous close.
func ConsecutiveRises(closes []float64, period int) ([]float64, error) {
	rises := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i] > closes[i-1] {
			rises[i] = 1
		}
	}

	return RollingSum(rises, period)
}
