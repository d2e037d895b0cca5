// Package strategy holds the strategy contract, the shared position state
// machine and the built-in strategies.
package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Strategy turns the bars of one instrument into a signal series.
// Implementations are immutable after construction and safe for concurrent use.
type Strategy interface {
	// Name returns the registry name of the strategy.
	Name() string
	// RequiredLookback is the largest window or shift any indicator of the
	// strategy needs. Shorter series fail with InsufficientHistoryError.
	RequiredLookback() int
	// Lots is the fixed position size.
	Lots() float64
	// Params returns the resolved parameter set.
	Params() any
	// ComputeIndicators derives the strategy's indicator columns.
	ComputeIndicators(series types.Series) (*types.AugmentedSeries, error)
	// GenerateSignals runs the state machine over the augmented series.
	GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error)
}

// checkHistory fails when series cannot feed the strategy's indicators.
func checkHistory(s Strategy, series types.Series) error {
	if !series.IsOrdered() {
		return errors.Newf(errors.ErrCodeMisalignedData, "%s: bars of %q are not in time order", s.Name(), series.Symbol)
	}

	if series.Len() < s.RequiredLookback() {
		return errors.NewInsufficientHistoryError(s.RequiredLookback(), series.Len(), series.Symbol)
	}

	return nil
}

// Run computes indicators and signals for one series.
func Run(s Strategy, series types.Series) (*types.AugmentedSeries, []types.SignalEvent, error) {
	augmented, err := s.ComputeIndicators(series)
	if err != nil {
		return nil, nil, err
	}

	events, err := s.GenerateSignals(augmented)
	if err != nil {
		return nil, nil, err
	}

	return augmented, events, nil
}

// setColumn stores a column or returns the error that prevented computing it.
func setColumn(augmented *types.AugmentedSeries, name types.IndicatorType, values []float64, err error) error {
	if err != nil {
		return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "failed to compute %s", name)
	}

	return augmented.Set(name, values)
}
