package strategy

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/mocks"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MachineTestSuite struct {
	suite.Suite
}

func TestMachineSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}

func (suite *MachineTestSuite) runCloseMomentum(series types.Series) []types.SignalEvent {
	s, err := NewCloseMomentum(nil)
	suite.Require().NoError(err)

	_, events, err := Run(s, series)
	suite.Require().NoError(err)

	return events
}

func (suite *MachineTestSuite) TestFiveBarScenario() {
	series := mocks.SeriesFromCloses("X", []float64{10, 11, 9, 12, 8})

	events := suite.runCloseMomentum(series)

	suite.Require().Len(events, 2)
	suite.Equal(2, events[0].BarIndex)
	suite.Equal(types.ActionEnterLong, events[0].Action)
	suite.Equal(9.0, events[0].FillPrice)
	suite.Equal(3, events[1].BarIndex)
	suite.Equal(types.ActionExit, events[1].Action)
	suite.Equal(12.0, events[1].FillPrice)
	suite.Equal("close_fell", events[1].Reason)
}

func (suite *MachineTestSuite) TestForcedLiquidationAtLastClose() {
	series := mocks.SeriesFromCloses("X", []float64{10, 11, 12, 13, 14})
	series.Bars[4].Open = 13.5

	events := suite.runCloseMomentum(series)

	suite.Require().Len(events, 2)
	suite.Equal(2, events[0].BarIndex)
	suite.Equal(4, events[1].BarIndex)
	suite.Equal(14.0, events[1].FillPrice)
	suite.Equal(types.ReasonForcedLiquidation, events[1].Reason)
}

func (suite *MachineTestSuite) TestVolumeGateDelaysEntry() {
	series := mocks.SeriesFromCloses("X", []float64{10, 11, 12, 13, 14})
	series.Bars[2].Volume = 0

	events := suite.runCloseMomentum(series)

	suite.Require().Len(events, 2)
	suite.Equal(3, events[0].BarIndex)
	suite.Equal(types.ActionEnterLong, events[0].Action)
	suite.Equal(4, events[1].BarIndex)
}

func (suite *MachineTestSuite) TestVolumeGateHoldsPosition() {
	// the falling close of bar 3 would exit on bar 4, which is halted
	series := mocks.SeriesFromCloses("X", []float64{10, 11, 12, 9, 9, 9, 9})
	series.Bars[4].Volume = 0

	events := suite.runCloseMomentum(series)

	suite.Require().Len(events, 2)
	suite.Equal(2, events[0].BarIndex)
	// bar 5 still sees close[4] == close[3], so only the forced exit remains
	suite.Equal(6, events[1].BarIndex)
	suite.Equal(types.ReasonForcedLiquidation, events[1].Reason)
}

func (suite *MachineTestSuite) TestForcedExitIgnoresVolumeGate() {
	series := mocks.SeriesFromCloses("X", []float64{10, 11, 12, 13, 14})
	series.Bars[4].Volume = 0

	events := suite.runCloseMomentum(series)

	suite.Require().Len(events, 2)
	suite.Equal(4, events[1].BarIndex)
	suite.Equal(types.ReasonForcedLiquidation, events[1].Reason)
}

func (suite *MachineTestSuite) TestNoEventsOnShortSeries() {
	for _, closes := range [][]float64{nil, {10}, {10, 11}} {
		series := mocks.SeriesFromCloses("X", closes)
		events, err := Machine{
			Entry: func(b BarView) (types.Action, Fill, bool) {
				return types.ActionEnterLong, AtOpen(b), true
			},
		}.Run(types.NewAugmentedSeries(series))
		suite.NoError(err)
		suite.Empty(events)
	}
}

func (suite *MachineTestSuite) TestExitPriorityAndReentry() {
	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3, 4, 5, 6})
	always := func(b BarView) (types.Action, Fill, bool) {
		return types.ActionEnterShort, AtOpen(b), true
	}

	events, err := Machine{
		Entry: always,
		Exits: []ExitRule{
			{Name: "first", Check: func(b BarView, _ State) (Fill, bool) { return AtOpen(b), true }},
			{Name: "second", Check: func(b BarView, _ State) (Fill, bool) { return AtOpen(b), true }},
		},
	}.Run(types.NewAugmentedSeries(series))
	suite.Require().NoError(err)

	suite.Require().Len(events, 4)

	expected := []struct {
		bar    int
		action types.Action
	}{
		{1, types.ActionEnterShort},
		{2, types.ActionExit},
		{3, types.ActionEnterShort},
		{4, types.ActionExit},
	}

	for i, e := range expected {
		suite.Equal(e.bar, events[i].BarIndex)
		suite.Equal(e.action, events[i].Action)
	}

	suite.Equal("first", events[1].Reason)
	suite.Equal("first", events[3].Reason)
}

func (suite *MachineTestSuite) TestHooks() {
	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3, 4, 5, 6})
	entered := 0
	var after []int
	var held []int

	_, err := Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			return types.ActionEnterLong, AtOpen(b), b.Index == 1
		},
		Exits: []ExitRule{
			{Name: "never", Check: func(b BarView, state State) (Fill, bool) {
				held = append(held, state.BarsHeld)

				return AtOpen(b), false
			}},
		},
		OnEntry: func(_ *types.AugmentedSeries, i int, state *State) {
			entered++
			suite.Equal(1, i)
			suite.Equal(types.PositionLong, state.Position)
			suite.Equal(2.0, state.EntryPrice)
		},
		AfterBar: func(_ *types.AugmentedSeries, i int, _ *State) {
			after = append(after, i)
		},
	}.Run(types.NewAugmentedSeries(series))
	suite.Require().NoError(err)

	suite.Equal(1, entered)
	suite.Equal([]int{2, 3, 4}, after)
	suite.Equal([]int{1, 2, 3}, held)
}

func (suite *MachineTestSuite) TestNonEntryActionIsRejected() {
	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3})

	_, err := Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			return types.ActionExit, AtOpen(b), true
		},
	}.Run(types.NewAugmentedSeries(series))
	suite.True(errors.IsInvalidSignalSequenceError(err))
}

func (suite *MachineTestSuite) TestUndefinedFillIsRejected() {
	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3})

	_, err := Machine{
		Entry: func(b BarView) (types.Action, Fill, bool) {
			return types.ActionEnterLong, BuyStop(b, math.NaN()), true
		},
	}.Run(types.NewAugmentedSeries(series))
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}

func (suite *MachineTestSuite) TestBarViewCannotReadCurrentBar() {
	series := mocks.SeriesFromCloses("X", []float64{1, 2, 3})
	augmented := types.NewAugmentedSeries(series)
	suite.Require().NoError(augmented.Set("x", []float64{10, 20, 30}))

	view := newBarView(augmented, 2)
	suite.Equal(20.0, view.Prev("x"))
	suite.Equal(10.0, view.Lag("x", 2))
	suite.True(math.IsNaN(view.Lag("x", 0)))
	suite.True(math.IsNaN(view.Lag("x", 3)))
	suite.Equal(2.0, view.PrevPrice(types.FieldClose, 1))
	suite.True(math.IsNaN(view.PrevPrice(types.FieldClose, 0)))
	suite.True(math.IsNaN(view.PrevPrice(types.FieldClose, 3)))
}

func (suite *MachineTestSuite) TestStopFills() {
	b := BarView{Index: 1, Open: 10, High: 12, Low: 8, Volume: 1}

	suite.Equal(Fill{Price: 11, Threshold: 11}, BuyStop(b, 11))
	suite.Equal(Fill{Price: 10, Threshold: 9}, BuyStop(b, 9))
	suite.Equal(Fill{Price: 9, Threshold: 9}, SellStop(b, 9))
	suite.Equal(Fill{Price: 10, Threshold: 11}, SellStop(b, 11))
	suite.Equal(Fill{Price: 10, Threshold: 0}, AtOpen(b))
}
