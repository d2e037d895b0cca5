package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const ThreeEMACrossoverName = "three_ema_crossover_long"

const (
	colAvg1      types.IndicatorType = "avg1"
	colAvg2      types.IndicatorType = "avg2"
	colAvg3      types.IndicatorType = "avg3"
	colRangeAvg  types.IndicatorType = "range_avg"
	colCrossUp12 types.IndicatorType = "cross_up_1_2"
)

// ThreeEMACrossoverParams configures ThreeEMACrossover.
type ThreeEMACrossoverParams struct {
	AvgLen1    int     `yaml:"avgLen1" jsonschema:"title=Fast EMA,default=6" validate:"gt=0"`
	AvgLen2    int     `yaml:"avgLen2" jsonschema:"title=Medium EMA,default=12" validate:"gt=0"`
	AvgLen3    int     `yaml:"avgLen3" jsonschema:"title=Slow EMA,default=28" validate:"gt=0"`
	RLength    int     `yaml:"rLength" jsonschema:"title=Range length,description=Bars averaged for the initial stop distance,default=4" validate:"gt=0"`
	TrailAccel float64 `yaml:"trailAccel" jsonschema:"title=Trailing acceleration,description=Share of the gap between low and stop closed each bar,default=0.25" validate:"gt=0,lte=1"`
	AccelStep  float64 `yaml:"accelStep" jsonschema:"title=Acceleration step,description=Added to the acceleration on every new high since entry,default=0" validate:"gte=0"`
	AccelMax   float64 `yaml:"accelMax" jsonschema:"title=Maximum acceleration,default=0.5" validate:"gtefield=TrailAccel,lte=1"`
	Lots       float64 `yaml:"lots" jsonschema:"title=Lots,description=Position size,default=1" validate:"gt=0"`
}

// DefaultThreeEMACrossoverParams returns the default parameters.
func DefaultThreeEMACrossoverParams() ThreeEMACrossoverParams {
	return ThreeEMACrossoverParams{
		AvgLen1:    6,
		AvgLen2:    12,
		AvgLen3:    28,
		RLength:    4,
		TrailAccel: 0.25,
		AccelStep:  0,
		AccelMax:   0.5,
		Lots:       1,
	}
}

// ThreeEMACrossover goes long at the open after the fast EMA crosses above
// the medium one while the medium EMA is above the slow one.
//
// It leaves on the reverse crossover, or on a trailing stop placed RangeL
// below the entry bar's low that closes a share of the distance to each
// later low. The stop tested on bar i was set after bar i-1.
type ThreeEMACrossover struct {
	params ThreeEMACrossoverParams
}

// NewThreeEMACrossover builds the strategy from parameter overrides.
func NewThreeEMACrossover(overrides map[string]any) (*ThreeEMACrossover, error) {
	params, err := DecodeParams(DefaultThreeEMACrossoverParams(), overrides)
	if err != nil {
		return nil, err
	}

	return &ThreeEMACrossover{params: params}, nil
}

func (s *ThreeEMACrossover) Name() string  { return ThreeEMACrossoverName }
func (s *ThreeEMACrossover) Lots() float64 { return s.params.Lots }
func (s *ThreeEMACrossover) Params() any   { return s.params }

func (s *ThreeEMACrossover) RequiredLookback() int {
	p := s.params

	return max(p.AvgLen1, p.AvgLen2, p.AvgLen3, p.RLength) + 1
}

func (s *ThreeEMACrossover) ComputeIndicators(series types.Series) (*types.AugmentedSeries, error) {
	if err := checkHistory(s, series); err != nil {
		return nil, err
	}

	augmented := types.NewAugmentedSeries(series)
	closes := series.Field(types.FieldClose)

	avg1, err := indicator.ExponentialAverage(closes, s.params.AvgLen1)
	if err := setColumn(augmented, colAvg1, avg1, err); err != nil {
		return nil, err
	}

	avg2, err := indicator.ExponentialAverage(closes, s.params.AvgLen2)
	if err := setColumn(augmented, colAvg2, avg2, err); err != nil {
		return nil, err
	}

	avg3, err := indicator.ExponentialAverage(closes, s.params.AvgLen3)
	if err := setColumn(augmented, colAvg3, avg3, err); err != nil {
		return nil, err
	}

	high := series.Field(types.FieldHigh)
	low := series.Field(types.FieldLow)
	barRange := make([]float64, len(high))

	for i := range high {
		barRange[i] = high[i] - low[i]
	}

	rangeAvg, err := indicator.MovingAverage(barRange, s.params.RLength)
	if err := setColumn(augmented, colRangeAvg, rangeAvg, err); err != nil {
		return nil, err
	}

	crossUp, err := indicator.CrossOver(avg1, avg2)
	if err != nil {
		return nil, err
	}

	if err := augmented.Set(colCrossUp12, indicator.BoolColumn(crossUp)); err != nil {
		return nil, err
	}

	return augmented, nil
}

func (s *ThreeEMACrossover) GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error) {
	if err := checkHistory(s, augmented.Series); err != nil {
		return nil, err
	}

	return s.machine().Run(augmented)
}

func (s *ThreeEMACrossover) machine() Machine {
	p := s.params

	return Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			ok := b.Prev(colCrossUp12) == 1 && b.Prev(colAvg2) > b.Prev(colAvg3)

			return types.ActionEnterLong, AtOpen(b), ok
		},
		Exits: []ExitRule{
			{
				Name: "ema_cross_down",
				Check: func(b BarView, _ State) (Fill, bool) {
					return AtOpen(b), b.Prev(colAvg1) < b.Prev(colAvg2)
				},
			},
			{
				Name: "trailing_stop",
				Check: func(b BarView, state State) (Fill, bool) {
					return SellStop(b, state.Stop), b.Low <= state.Stop
				},
			},
		},
		OnEntry: func(series *types.AugmentedSeries, i int, state *State) {
			bar := series.Bar(i)
			state.Stop = bar.Low - series.Value(colRangeAvg, i)
			state.Extreme = bar.High
			state.Accel = p.TrailAccel
		},
		AfterBar: func(series *types.AugmentedSeries, i int, state *State) {
			bar := series.Bar(i)
			if bar.High > state.Extreme {
				state.Extreme = bar.High
				state.Accel = math.Min(state.Accel+p.AccelStep, p.AccelMax)
			}

			state.Stop += state.Accel * (bar.Low - state.Stop)
		},
	}
}
