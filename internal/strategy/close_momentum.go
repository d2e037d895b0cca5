package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const CloseMomentumName = "close_momentum"

const colCloseChange types.IndicatorType = "close_change"

// CloseMomentumParams configures CloseMomentum.
type CloseMomentumParams struct {
	Lots float64 `yaml:"lots" jsonschema:"title=Lots,description=Position size,default=1" validate:"gt=0"`
}

// DefaultCloseMomentumParams returns the default parameters.
func DefaultCloseMomentumParams() CloseMomentumParams {
	return CloseMomentumParams{Lots: 1}
}

// CloseMomentum goes long at the open after a rising close and back to flat
// at the open after a falling close.
type CloseMomentum struct {
	params CloseMomentumParams
}

// NewCloseMomentum builds the strategy from parameter overrides.
func NewCloseMomentum(overrides map[string]any) (*CloseMomentum, error) {
	params, err := DecodeParams(DefaultCloseMomentumParams(), overrides)
	if err != nil {
		return nil, err
	}

	return &CloseMomentum{params: params}, nil
}

func (s *CloseMomentum) Name() string          { return CloseMomentumName }
func (s *CloseMomentum) RequiredLookback() int { return 2 }
func (s *CloseMomentum) Lots() float64         { return s.params.Lots }
func (s *CloseMomentum) Params() any           { return s.params }

func (s *CloseMomentum) ComputeIndicators(series types.Series) (*types.AugmentedSeries, error) {
	if err := checkHistory(s, series); err != nil {
		return nil, err
	}

	augmented := types.NewAugmentedSeries(series)

	change, err := indicator.Momentum(series.Field(types.FieldClose), 1)
	if err := setColumn(augmented, colCloseChange, change, err); err != nil {
		return nil, err
	}

	return augmented, nil
}

func (s *CloseMomentum) GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error) {
	if err := checkHistory(s, augmented.Series); err != nil {
		return nil, err
	}

	return s.machine().Run(augmented)
}

func (s *CloseMomentum) machine() Machine {
	return Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			return types.ActionEnterLong, AtOpen(b), b.Prev(colCloseChange) > 0
		},
		Exits: []ExitRule{
			{
				Name: "close_fell",
				Check: func(b BarView, _ State) (Fill, bool) {
					return AtOpen(b), b.Prev(colCloseChange) < 0
				},
			},
		},
		OnEntry:  nil,
		AfterBar: nil,
	}
}
