package strategy

import (
	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
)

const DynamicBreakoutName = "dynamic_breakout_ii_long"

const (
	dynamicVolatilityLength = 30
	dynamicSeedLookback     = 20
)

const (
	colVolatility      types.IndicatorType = "volatility"
	colDeltaVolatility types.IndicatorType = "delta_volatility"
	colBandWidth       types.IndicatorType = "band_width"
	colBuyPoint        types.IndicatorType = "buy_point"
	colSellPoint       types.IndicatorType = "sell_point"
)

// DynamicBreakoutParams configures DynamicBreakout.
type DynamicBreakoutParams struct {
	CeilingAmt  int     `yaml:"ceilingAmt" jsonschema:"title=Ceiling,description=Upper bound of the adaptive lookback,default=60" validate:"gtefield=FloorAmt"`
	FloorAmt    int     `yaml:"floorAmt" jsonschema:"title=Floor,description=Lower bound of the adaptive lookback,minimum=2,default=20" validate:"gte=2"`
	BolBandTrig float64 `yaml:"bolBandTrig" jsonschema:"title=Band multiplier,description=Standard deviations between the middle line and the bands,default=2" validate:"gt=0"`
	Lots        float64 `yaml:"lots" jsonschema:"title=Lots,description=Position size,default=1" validate:"gt=0"`
}

// DefaultDynamicBreakoutParams returns the default parameters.
func DefaultDynamicBreakoutParams() DynamicBreakoutParams {
	return DynamicBreakoutParams{
		CeilingAmt:  60,
		FloorAmt:    20,
		BolBandTrig: 2,
		Lots:        1,
	}
}

// DynamicBreakout is a long-only channel breakout whose lookback widens when
// volatility rises and narrows when it falls.
//
// The lookback starts at 20 bars and follows
// lookback[i] = clamp(round(lookback[i-1] * (1 + deltaVol[i])), floor, ceiling)
// where deltaVol is the relative change of the 30 bar close deviation. The
// middle line, band and Donchian points at bar i all use lookback[i] bars.
type DynamicBreakout struct {
	params DynamicBreakoutParams
}

// NewDynamicBreakout builds the strategy from parameter overrides.
func NewDynamicBreakout(overrides map[string]any) (*DynamicBreakout, error) {
	params, err := DecodeParams(DefaultDynamicBreakoutParams(), overrides)
	if err != nil {
		return nil, err
	}

	return &DynamicBreakout{params: params}, nil
}

func (s *DynamicBreakout) Name() string  { return DynamicBreakoutName }
func (s *DynamicBreakout) Lots() float64 { return s.params.Lots }
func (s *DynamicBreakout) Params() any   { return s.params }

// RequiredLookback covers the volatility window plus its one bar change, or
// the lookback floor when that is longer.
func (s *DynamicBreakout) RequiredLookback() int {
	return max(dynamicVolatilityLength+1, s.params.FloorAmt)
}

func (s *DynamicBreakout) ComputeIndicators(series types.Series) (*types.AugmentedSeries, error) {
	if err := checkHistory(s, series); err != nil {
		return nil, err
	}

	augmented := types.NewAugmentedSeries(series)
	closes := series.Field(types.FieldClose)

	volatility, err := indicator.StandardDeviation(closes, dynamicVolatilityLength, indicator.Population)
	if err := setColumn(augmented, colVolatility, volatility, err); err != nil {
		return nil, err
	}

	delta := indicator.DeltaVolatility(volatility)
	if err := augmented.Set(colDeltaVolatility, delta); err != nil {
		return nil, err
	}

	lookback, err := indicator.AdaptiveLookback(delta, dynamicSeedLookback, s.params.FloorAmt, s.params.CeilingAmt)
	if err := setColumn(augmented, types.IndicatorTypeLookback, lookback, err); err != nil {
		return nil, err
	}

	mid, err := indicator.WindowedAverage(closes, lookback)
	if err := setColumn(augmented, types.IndicatorTypeMiddleBand, mid, err); err != nil {
		return nil, err
	}

	band, err := indicator.WindowedStandardDeviation(closes, lookback, indicator.Sample)
	if err := setColumn(augmented, colBandWidth, band, err); err != nil {
		return nil, err
	}

	buyPoint, err := indicator.WindowedHighest(series.Field(types.FieldHigh), lookback)
	if err := setColumn(augmented, colBuyPoint, buyPoint, err); err != nil {
		return nil, err
	}

	sellPoint, err := indicator.WindowedLowest(series.Field(types.FieldLow), lookback)
	if err := setColumn(augmented, colSellPoint, sellPoint, err); err != nil {
		return nil, err
	}

	upper := make([]float64, len(mid))
	lower := make([]float64, len(mid))

	for i := range mid {
		upper[i] = mid[i] + s.params.BolBandTrig*band[i]
		lower[i] = mid[i] - s.params.BolBandTrig*band[i]
	}

	if err := augmented.Set(types.IndicatorTypeUpperBand, upper); err != nil {
		return nil, err
	}

	if err := augmented.Set(types.IndicatorTypeLowerBand, lower); err != nil {
		return nil, err
	}

	return augmented, nil
}

func (s *DynamicBreakout) GenerateSignals(augmented *types.AugmentedSeries) ([]types.SignalEvent, error) {
	if err := checkHistory(s, augmented.Series); err != nil {
		return nil, err
	}

	return s.machine().Run(augmented)
}

func (s *DynamicBreakout) machine() Machine {
	return Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			buyPoint := b.Prev(colBuyPoint)
			ok := b.PrevPrice(types.FieldClose, 1) > b.Prev(types.IndicatorTypeUpperBand) && b.High >= buyPoint

			return types.ActionEnterLong, BuyStop(b, buyPoint), ok
		},
		Exits: []ExitRule{
			{
				// the middle line doubles as the liquidation point
				Name: "liquidation_point",
				Check: func(b BarView, _ State) (Fill, bool) {
					liq := b.Prev(types.IndicatorTypeMiddleBand)

					return SellStop(b, liq), b.Low <= liq
				},
			},
			{
				Name: "lower_band_breakdown",
				Check: func(b BarView, _ State) (Fill, bool) {
					sellPoint := b.Prev(colSellPoint)
					ok := b.PrevPrice(types.FieldClose, 1) < b.Prev(types.IndicatorTypeLowerBand) && b.Low <= sellPoint

					return SellStop(b, sellPoint), ok
				},
			},
		},
		OnEntry:  nil,
		AfterBar: nil,
	}
}
