package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const TrafficJamName = "traffic_jam_short"

const (
	colConsecRises types.IndicatorType = "consec_rises"
	colProtectStop types.IndicatorType = "protect_stop"
)

// TrafficJamParams configures TrafficJam.
type TrafficJamParams struct {
	DMIN                int     `yaml:"dmiN" jsonschema:"title=DMI length,default=14" validate:"gt=0"`
	DMIM                int     `yaml:"dmiM" jsonschema:"title=ADXR lag,default=6" validate:"gt=0"`
	ADXLevel            float64 `yaml:"adxLevel" jsonschema:"title=ADX level,description=ADX below this level marks a ranging market,default=25" validate:"gt=0"`
	ADXLowThanBefore    int     `yaml:"adxLowThanBefore" jsonschema:"title=ADX comparison lag,description=ADX must be below its value this many bars earlier,default=3" validate:"gt=0"`
	ConsecBars          int     `yaml:"consecBars" jsonschema:"title=Consecutive rising closes,default=3" validate:"gt=0"`
	ATRLength           int     `yaml:"atrLength" jsonschema:"title=ATR length,default=10" validate:"gt=0"`
	ProtectStopATRMulti float64 `yaml:"protectStopATRMulti" jsonschema:"title=Protective stop ATRs,default=0.5" validate:"gte=0"`
	ProactiveStopBars   int     `yaml:"proactiveStopBars" jsonschema:"title=Holding bars,description=Traded bars after which the position is closed at the open,default=10" validate:"gt=0"`
	Lots                float64 `yaml:"lots" jsonschema:"title=Lots,description=Position size,default=1" validate:"gt=0"`
}

// DefaultTrafficJamParams returns the default parameters.
func DefaultTrafficJamParams() TrafficJamParams {
	return TrafficJamParams{
		DMIN:                14,
		DMIM:                6,
		ADXLevel:            25,
		ADXLowThanBefore:    3,
		ConsecBars:          3,
		ATRLength:           10,
		ProtectStopATRMulti: 0.5,
		ProactiveStopBars:   10,
		Lots:                1,
	}
}

// TrafficJam fades a run of rising closes while a weak, falling ADX says the
// market is ranging. The short is covered on a stop above the prior high or
// after a fixed number of traded bars.
type TrafficJam struct {
	params TrafficJamParams
}

// NewTrafficJam builds the strategy from parameter overrides.
func NewTrafficJam(overrides map[string]any) (*TrafficJam, error) {
	params, err := DecodeParams(DefaultTrafficJamParams(), overrides)
	if err != nil {
		return nil, err
	}

	return &TrafficJam{params: params}, nil
}

func (s *TrafficJam) Name() string  { return TrafficJamName }
func (s *TrafficJam) Lots() float64 { return s.params.Lots }
func (s *TrafficJam) Params() any   { return s.params }

// RequiredLookback covers the first defined ADX and its comparison lag, the
// ATR window with the stop's shift, and the rising close count.
func (s *TrafficJam) RequiredLookback() int {
	p := s.params

	return max(p.DMIN+p.ADXLowThanBefore+2, p.DMIN+p.DMIM+1, p.ATRLength+2, p.ConsecBars+1)
}

func (s *TrafficJam) ComputeIndicators(series types.Series) (*types.AugmentedSeries, error) {
	if err := checkHistory(s, series); err != nil {
		return nil, err
	}

	p := s.params
	augmented := types.NewAugmentedSeries(series)
	high := series.Field(types.FieldHigh)
	low := series.Field(types.FieldLow)
	closes := series.Field(types.FieldClose)

	dmi, err := indicator.DirectionalMovement(high, low, closes, p.DMIN, p.DMIM)
	if err != nil {
		return nil, err
	}

	columns := []struct {
		name   types.IndicatorType
		values []float64
	}{
		{types.IndicatorTypeDMIPlus, dmi.Plus},
		{types.IndicatorTypeDMIMinus, dmi.Minus},
		{types.IndicatorTypeDX, dmi.DX},
		{types.IndicatorTypeADX, dmi.ADX},
		{types.IndicatorTypeADXR, dmi.ADXR},
	}

	for _, column := range columns {
		if err := augmented.Set(column.name, column.values); err != nil {
			return nil, err
		}
	}

	atr, err := indicator.AverageTrueRange(high, low, closes, p.ATRLength)
	if err := setColumn(augmented, types.IndicatorTypeATR, atr, err); err != nil {
		return nil, err
	}

	rises, err := indicator.ConsecutiveRises(closes, p.ConsecBars)
	if err := setColumn(augmented, colConsecRises, rises, err); err != nil {
		return nil, err
	}

	// protect_stop[i] is built from bar i-1, so the level tested on bar i
	// comes from bar i-2
	prevHigh := indicator.Shift(high, 1)
	prevATR := indicator.Shift(atr, 1)
	stop := make([]float64, len(high))

	for i := range stop {
		stop[i] = prevHigh[i] + p.ProtectStopATRMulti*prevATR[i]
	}

	if err := augmented.Set(colProtectStop, stop); err != nil {
		return nil, err
	}

	return augmented, nil
}

func (s *TrafficJam) GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error) {
	if err := checkHistory(s, augmented.Series); err != nil {
		return nil, err
	}

	return s.machine().Run(augmented)
}

func (s *TrafficJam) machine() Machine {
	p := s.params

	return Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			adx := b.Prev(types.IndicatorTypeADX)
			ranging := adx < p.ADXLevel && adx < b.Lag(types.IndicatorTypeADX, p.ADXLowThanBefore+1)
			rising := b.Prev(colConsecRises) == float64(p.ConsecBars)

			return types.ActionEnterShort, AtOpen(b), ranging && rising
		},
		Exits: []ExitRule{
			{
				Name: "protective_stop",
				Check: func(b BarView, _ State) (Fill, bool) {
					level := b.Prev(colProtectStop)

					return BuyStop(b, level), b.High >= level
				},
			},
			{
				Name: "proactive_stop",
				Check: func(b BarView, state State) (Fill, bool) {
					return AtOpen(b), state.BarsHeld >= p.ProactiveStopBars
				},
			},
		},
		OnEntry:  nil,
		AfterBar: nil,
	}
}
