package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// StandardDeviation over a trailing window of period bars.
func StandardDeviation(values []float64, period int, kind DeviationType) ([]float64, error) {
	if err := validatePeriod("StandardDeviation", period); err != nil {
		return nil, err
	}

	if kind != Population && kind != Sample {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "StandardDeviation: unknown deviation type %d", kind)
	}

	out := nanSlice(len(values))
	for i := range values {
		if w, ok := window(values, i, period); ok {
			out[i] = deviation(w, kind)
		}
	}

	return out, nil
}

func deviation(w []float64, kind DeviationType) float64 {
	n := float64(len(w))

	divisor := n
	if kind == Sample {
		divisor = n - 1
	}

	if divisor <= 0 {
		return math.NaN()
	}

	m := mean(w)
	sq := 0.0

	for _, v := range w {
		sq += (v - m) * (v - m)
	}

	return math.Sqrt(sq / divisor)
}
