package strategy

import (
	"testing"

	"github.com/rxtech-lab/argo-quant/internal/indicator"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/mocks"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategiesTestSuite struct {
	suite.Suite
	registry *Registry
	basket   []types.Series
}

func TestStrategiesSuite(t *testing.T) {
	suite.Run(t, new(StrategiesTestSuite))
}

func (suite *StrategiesTestSuite) SetupSuite() {
	suite.registry = DefaultRegistry()

	config := mocks.DefaultConfig()
	config.Count = 600
	config.HaltRate = 0.03

	for _, seed := range []int64{1, 2, 3} {
		gen := mocks.NewDataGenerator(seed)
		suite.basket = append(suite.basket, gen.GenerateBasket([]string{"RB", "CU"}, config)...)
	}
}

func (suite *StrategiesTestSuite) strategies() []Strategy {
	out := make([]Strategy, 0)

	for _, name := range suite.registry.Names() {
		s, err := suite.registry.New(name, nil)
		suite.Require().NoError(err)
		out = append(out, s)
	}

	return out
}

// assertWellFormed checks the sequence invariants every strategy must hold.
func (suite *StrategiesTestSuite) assertWellFormed(s Strategy, series types.Series, events []types.SignalEvent) {
	position := types.PositionFlat
	lastBar := 0
	entries, exits := 0, 0

	for _, event := range events {
		suite.Greater(event.BarIndex, lastBar, "%s: bar indices must increase", s.Name())
		lastBar = event.BarIndex

		bar := series.Bars[event.BarIndex]
		suite.Equal(bar.Time, event.Time)

		isLast := event.BarIndex == series.Len()-1
		if !isLast {
			suite.NotZero(bar.Volume, "%s: event on halted bar %d", s.Name(), event.BarIndex)
		}

		if event.Action.IsEntry() {
			suite.Equal(types.PositionFlat, position, "%s: entry while holding at bar %d", s.Name(), event.BarIndex)
			suite.False(isLast, "%s: entry on the last bar", s.Name())
			position = event.Action.Target()
			entries++

			if event.Threshold != 0 {
				if event.Action == types.ActionEnterLong {
					suite.GreaterOrEqual(event.FillPrice, event.Threshold)
				} else {
					suite.LessOrEqual(event.FillPrice, event.Threshold)
				}
			}

			continue
		}

		suite.NotEqual(types.PositionFlat, position, "%s: exit while flat at bar %d", s.Name(), event.BarIndex)
		position = types.PositionFlat
		exits++
	}

	suite.Equal(entries, exits, "%s: series must end flat", s.Name())
	suite.Equal(types.PositionFlat, position)
}

func (suite *StrategiesTestSuite) TestSignalInvariants() {
	for _, s := range suite.strategies() {
		for _, series := range suite.basket {
			_, events, err := Run(s, series)
			suite.Require().NoError(err, s.Name())
			suite.assertWellFormed(s, series, events)
		}
	}
}

func (suite *StrategiesTestSuite) TestCloseMomentumTrades() {
	s, err := NewCloseMomentum(nil)
	suite.Require().NoError(err)

	_, events, err := Run(s, suite.basket[0])
	suite.Require().NoError(err)
	suite.NotEmpty(events)
}

func (suite *StrategiesTestSuite) TestCausality() {
	for _, s := range suite.strategies() {
		series := suite.basket[0]

		_, base, err := Run(s, series)
		suite.Require().NoError(err)

		for _, k := range []int{200, 350, 500} {
			perturbed := types.Series{Symbol: series.Symbol, Bars: append([]types.Bar(nil), series.Bars...)}
			perturbed.Bars[k].High *= 1.3
			perturbed.Bars[k].Low *= 0.7
			perturbed.Bars[k].Close *= 0.8
			perturbed.Bars[k].Open *= 1.1

			_, changed, err := Run(s, perturbed)
			suite.Require().NoError(err)

			suite.Equal(before(base, k), before(changed, k), "%s: perturbing bar %d changed earlier signals", s.Name(), k)
		}
	}
}

func before(events []types.SignalEvent, k int) []types.SignalEvent {
	out := make([]types.SignalEvent, 0)

	for _, e := range events {
		if e.BarIndex < k {
			out = append(out, e)
		}
	}

	return out
}

func (suite *StrategiesTestSuite) TestDeterministic() {
	for _, s := range suite.strategies() {
		_, first, err := Run(s, suite.basket[1])
		suite.Require().NoError(err)

		_, second, err := Run(s, suite.basket[1])
		suite.Require().NoError(err)

		suite.Equal(first, second, s.Name())
	}
}

func (suite *StrategiesTestSuite) TestInsufficientHistory() {
	for _, s := range suite.strategies() {
		short := types.Series{Symbol: "SHORT", Bars: suite.basket[0].Bars[:s.RequiredLookback()-1]}

		_, err := s.ComputeIndicators(short)
		suite.True(errors.IsInsufficientHistoryError(err), s.Name())

		_, err = s.GenerateSignals(types.NewAugmentedSeries(short))
		suite.True(errors.IsInsufficientHistoryError(err), s.Name())
		suite.Equal(errors.KindInsufficientHistory, errors.KindOf(err))

		exact := types.Series{Symbol: "EXACT", Bars: suite.basket[0].Bars[:s.RequiredLookback()]}
		_, _, err = Run(s, exact)
		suite.NoError(err, s.Name())
	}
}

func (suite *StrategiesTestSuite) TestUnorderedBarsRejected() {
	s, err := NewCloseMomentum(nil)
	suite.Require().NoError(err)

	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3})
	series.Bars[1], series.Bars[2] = series.Bars[2], series.Bars[1]

	_, err = s.ComputeIndicators(series)
	suite.True(errors.HasCode(err, errors.ErrCodeMisalignedData))
}

func (suite *StrategiesTestSuite) TestDynamicBreakoutLookback() {
	s, err := NewDynamicBreakout(map[string]any{"floorAmt": 10, "ceilingAmt": 40})
	suite.Require().NoError(err)

	augmented, err := s.ComputeIndicators(suite.basket[2])
	suite.Require().NoError(err)

	lookback, err := augmented.Column(types.IndicatorTypeLookback)
	suite.Require().NoError(err)
	suite.Equal(20.0, lookback[0])

	for i := 1; i < len(lookback); i++ {
		suite.GreaterOrEqual(lookback[i], 10.0)
		suite.LessOrEqual(lookback[i], 40.0)
		suite.Equal(float64(int(lookback[i])), lookback[i])
	}

	closes := suite.basket[2].Field(types.FieldClose)
	mid, err := augmented.Column(types.IndicatorTypeMiddleBand)
	suite.Require().NoError(err)

	for _, i := range []int{100, 300, 599} {
		w := int(lookback[i])
		expected, err := indicator.MovingAverage(closes[i-w+1:i+1], w)
		suite.Require().NoError(err)
		suite.InDelta(expected[w-1], mid[i], 1e-9)
	}
}

func (suite *StrategiesTestSuite) TestDynamicBreakoutRequiredLookbackIgnoresCeiling() {
	s, err := NewDynamicBreakout(nil)
	suite.Require().NoError(err)
	suite.Equal(31, s.RequiredLookback())

	wideFloor, err := NewDynamicBreakout(map[string]any{"floorAmt": 45, "ceilingAmt": 90})
	suite.Require().NoError(err)
	suite.Equal(45, wideFloor.RequiredLookback())

	// fewer bars than the ceiling still run, undefined columns never fire
	series := types.Series{Symbol: "SHORT", Bars: suite.basket[0].Bars[:s.RequiredLookback()]}
	_, events, err := Run(s, series)
	suite.Require().NoError(err)
	suite.assertWellFormed(s, series, events)
}

func (suite *StrategiesTestSuite) TestStopExitsRespectThresholds() {
	for _, s := range suite.strategies() {
		for _, series := range suite.basket {
			_, events, err := Run(s, series)
			suite.Require().NoError(err)

			var position types.PositionState
			for _, event := range events {
				if event.Action.IsEntry() {
					position = event.Action.Target()

					continue
				}

				if event.Threshold != 0 {
					// a long sells on a stop, a short buys on one
					if position == types.PositionLong {
						suite.LessOrEqual(event.FillPrice, event.Threshold, s.Name())
					} else {
						suite.GreaterOrEqual(event.FillPrice, event.Threshold, s.Name())
					}
				}
			}
		}
	}
}

func (suite *StrategiesTestSuite) TestTrafficJamProactiveExit() {
	s, err := NewTrafficJam(map[string]any{"proactiveStopBars": 4, "adxLevel": 60})
	suite.Require().NoError(err)

	for _, series := range suite.basket {
		_, events, err := Run(s, series)
		suite.Require().NoError(err)

		for i, event := range events {
			if event.Reason == "proactive_stop" {
				suite.GreaterOrEqual(event.BarIndex-events[i-1].BarIndex, 4)
			}
		}
	}
}
