package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// DMI holds the directional movement columns.
type DMI struct {
	Plus  []float64
	Minus []float64
	DX    []float64
	ADX   []float64
	ADXR  []float64
}

// DirectionalMovement computes +DI, -DI, DX, ADX and ADXR with Wilder style
// smoothing (factor 1/n). The first defined bar is n, seeded by plain
// averages of the previous n moves. ADX at bar n is the DX sum over bars
// 0..n divided by n+1, so it starts low and converges; ADXR averages ADX
// with its value m bars earlier.
func DirectionalMovement(high, low, closes []float64, n int, m int) (DMI, error) {
	if err := validatePeriod("DirectionalMovement", n); err != nil {
		return DMI{}, err
	}

	if err := validatePeriod("DirectionalMovement", m); err != nil {
		return DMI{}, err
	}

	if err := validateAligned("DirectionalMovement", high, low, closes); err != nil {
		return DMI{}, err
	}

	size := len(high)
	out := DMI{
		Plus:  nanSlice(size),
		Minus: nanSlice(size),
		DX:    nanSlice(size),
		ADX:   nanSlice(size),
		ADXR:  nanSlice(size),
	}

	if size <= n {
		return out, nil
	}

	tr, err := TrueRange(high, low, closes)
	if err != nil {
		return DMI{}, errors.Wrap(errors.ErrCodeIndicatorCalculation, "DirectionalMovement: true range", err)
	}

	sf := 1.0 / float64(n)

	var avgPlus, avgMinus, volty float64

	for i := n; i < size; i++ {
		if i == n {
			var sumPlus, sumMinus, sumTR float64

			for j := 0; j < n; j++ {
				plus, minus := directionalMoves(high, low, i-j)
				sumPlus += plus
				sumMinus += minus
				sumTR += tr[i-j]
			}

			avgPlus = sumPlus / float64(n)
			avgMinus = sumMinus / float64(n)
			volty = sumTR / float64(n)
		} else {
			plus, minus := directionalMoves(high, low, i)
			avgPlus += sf * (plus - avgPlus)
			avgMinus += sf * (minus - avgMinus)
			volty += sf * (tr[i] - volty)
		}

		if volty > 0 {
			out.Plus[i] = 100 * avgPlus / volty
			out.Minus[i] = 100 * avgMinus / volty
		} else {
			out.Plus[i] = 0
			out.Minus[i] = 0
		}

		dx := 0.0
		if divisor := out.Plus[i] + out.Minus[i]; divisor > 0 {
			dx = 100 * math.Abs(out.Plus[i]-out.Minus[i]) / divisor
		}

		out.DX[i] = dx

		if i == n {
			out.ADX[i] = dx / float64(i+1)
		} else {
			out.ADX[i] = out.ADX[i-1] + sf*(dx-out.ADX[i-1])
		}

		if i-m >= 0 {
			out.ADXR[i] = (out.ADX[i] + out.ADX[i-m]) * 0.5
		}
	}

	return out, nil
}

// directionalMoves returns +DM and -DM between bar i-1 and bar i.
func directionalMoves(high, low []float64, i int) (float64, float64) {
	upper := high[i] - high[i-1]
	lower := low[i-1] - low[i]

	plus, minus := 0.0, 0.0
	if upper > lower && upper > 0 {
		plus = upper
	}

	if lower > upper && lower > 0 {
		minus = lower
	}

	return plus, minus
}
