package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const RangeBreakoutName = "range_breakout_short"

const (
	colRangeHigh    types.IndicatorType = "range_high"
	colRangeLow     types.IndicatorType = "range_low"
	colTradingRange types.IndicatorType = "trading_range"
	colATRMA        types.IndicatorType = "atr_ma"
	colNoTrades     types.IndicatorType = "no_trades"
	colMidPrice     types.IndicatorType = "mid_price"
)

// RangeBreakoutParams configures RangeBreakout.
type RangeBreakoutParams struct {
	RangeLen int     `yaml:"rangeLen" jsonschema:"title=Range length,description=Bars forming the trading range,default=7" validate:"gt=0"`
	RngPcnt  float64 `yaml:"rngPcnt" jsonschema:"title=Congestion percent,description=Congestion sum needed as a percent of the range height,default=200" validate:"gt=0"`
	ATRs     float64 `yaml:"atrs" jsonschema:"title=Trailing ATRs,description=ATR multiples the price may rise off its low since entry,default=8" validate:"gt=0"`
	ATRLen   int     `yaml:"atrLen" jsonschema:"title=ATR length,default=2" validate:"gt=0"`
	Lots     float64 `yaml:"lots" jsonschema:"title=Lots,description=Position size,default=1" validate:"gt=0"`
}

// DefaultRangeBreakoutParams returns the default parameters.
func DefaultRangeBreakoutParams() RangeBreakoutParams {
	return RangeBreakoutParams{
		RangeLen: 7,
		RngPcnt:  200,
		ATRs:     8,
		ATRLen:   2,
		Lots:     1,
	}
}

// RangeBreakout shorts a breakdown out of a congested trading range.
//
// The range is the highest high and lowest low of the RangeLen bars before
// the current one. A range counts as congested when the summed distances of
// its bars from the range edges reach RngPcnt percent of its height.
//
// Exits are tested in order: a close back above the range, then the range
// high at entry as a protective stop, then a trailing stop ATRs average true
// ranges above the lowest low since entry.
type RangeBreakout struct {
	params RangeBreakoutParams
}

// NewRangeBreakout builds the strategy from parameter overrides.
func NewRangeBreakout(overrides map[string]any) (*RangeBreakout, error) {
	params, err := DecodeParams(DefaultRangeBreakoutParams(), overrides)
	if err != nil {
		return nil, err
	}

	return &RangeBreakout{params: params}, nil
}

func (s *RangeBreakout) Name() string  { return RangeBreakoutName }
func (s *RangeBreakout) Lots() float64 { return s.params.Lots }
func (s *RangeBreakout) Params() any   { return s.params }

// RequiredLookback covers the range window and the two bar shift of the
// true range filter.
func (s *RangeBreakout) RequiredLookback() int {
	return max(s.params.RangeLen, s.params.ATRLen) + 2
}

func (s *RangeBreakout) ComputeIndicators(series types.Series) (*types.AugmentedSeries, error) {
	if err := checkHistory(s, series); err != nil {
		return nil, err
	}

	p := s.params
	augmented := types.NewAugmentedSeries(series)
	high := series.Field(types.FieldHigh)
	low := series.Field(types.FieldLow)
	closes := series.Field(types.FieldClose)

	rangeHigh, err := indicator.Highest(indicator.Shift(high, 1), p.RangeLen)
	if err := setColumn(augmented, colRangeHigh, rangeHigh, err); err != nil {
		return nil, err
	}

	rangeLow, err := indicator.Lowest(indicator.Shift(low, 1), p.RangeLen)
	if err := setColumn(augmented, colRangeLow, rangeLow, err); err != nil {
		return nil, err
	}

	height := make([]float64, len(high))
	for i := range height {
		height[i] = rangeHigh[i] - rangeLow[i]
	}

	if err := augmented.Set(colTradingRange, height); err != nil {
		return nil, err
	}

	trueRange, err := indicator.TrueRange(high, low, closes)
	if err := setColumn(augmented, types.IndicatorTypeTrueRange, trueRange, err); err != nil {
		return nil, err
	}

	atr, err := indicator.AverageTrueRange(high, low, closes, p.ATRLen)
	if err := setColumn(augmented, types.IndicatorTypeATR, atr, err); err != nil {
		return nil, err
	}

	atrMA, err := indicator.AverageTrueRange(high, low, closes, p.RangeLen)
	if err := setColumn(augmented, colATRMA, atrMA, err); err != nil {
		return nil, err
	}

	if err := augmented.Set(colNoTrades, congestion(high, low, rangeHigh, rangeLow, p.RangeLen)); err != nil {
		return nil, err
	}

	mid := make([]float64, len(high))
	for i := range mid {
		mid[i] = (high[i] + low[i]) * 0.5
	}

	if err := augmented.Set(colMidPrice, mid); err != nil {
		return nil, err
	}

	return augmented, nil
}

// congestion sums, over the n bars before i, how far each high sits below
// the range high and each low above the range low.
func congestion(high, low, rangeHigh, rangeLow []float64, n int) []float64 {
	out := make([]float64, len(high))

	for i := range out {
		if math.IsNaN(rangeHigh[i]) || math.IsNaN(rangeLow[i]) || i < n {
			out[i] = math.NaN()

			continue
		}

		total := 0.0
		for k := 1; k <= n; k++ {
			total += math.Max(0, rangeHigh[i]-high[i-k])
			total += math.Max(0, low[i-k]-rangeLow[i])
		}

		out[i] = total
	}

	return out
}

func (s *RangeBreakout) GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error) {
	if err := checkHistory(s, augmented.Series); err != nil {
		return nil, err
	}

	return s.machine().Run(augmented)
}

func (s *RangeBreakout) machine() Machine {
	p := s.params

	return Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			congested := b.Prev(colNoTrades) >= b.Prev(colTradingRange)*p.RngPcnt*0.01
			expanding := b.Prev(types.IndicatorTypeTrueRange) > b.Lag(colATRMA, 2)
			breakdown := b.PrevPrice(types.FieldClose, 1) < b.Prev(colRangeLow) &&
				b.Prev(colMidPrice) < b.PrevPrice(types.FieldLow, 2)

			return types.ActionEnterShort, AtOpen(b), congested && expanding && breakdown
		},
		Exits: []ExitRule{
			{
				Name: "range_reversal",
				Check: func(b BarView, _ State) (Fill, bool) {
					ok := b.PrevPrice(types.FieldClose, 1) > b.Prev(colRangeHigh) &&
						b.Prev(colMidPrice) > b.PrevPrice(types.FieldHigh, 2)

					return AtOpen(b), ok
				},
			},
			{
				Name: "protective_stop",
				Check: func(b BarView, state State) (Fill, bool) {
					return BuyStop(b, state.Risk), b.High >= state.Risk
				},
			},
			{
				Name: "trailing_stop",
				Check: func(b BarView, state State) (Fill, bool) {
					level := state.Extreme + p.ATRs*b.Prev(types.IndicatorTypeATR)

					return BuyStop(b, level), b.High >= level
				},
			},
		},
		OnEntry: func(series *types.AugmentedSeries, i int, state *State) {
			// the range high at i only spans bars before i
			state.Risk = series.Value(colRangeHigh, i)
			state.Extreme = series.Bar(i).Low
		},
		AfterBar: func(series *types.AugmentedSeries, i int, state *State) {
			state.Extreme = math.Min(state.Extreme, series.Bar(i).Low)
		},
	}
}
