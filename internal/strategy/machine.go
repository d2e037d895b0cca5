package strategy

import (
	"math"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// State is the per-instrument position state threaded through one pass over
// the bars. Rules read it, hooks update it after a bar is complete.
type State struct {
	Position   types.PositionState
	EntryBar   int
	EntryPrice float64
	// BarsHeld counts traded bars evaluated since entry.
	BarsHeld int
	// Risk is a protective level fixed at entry.
	Risk float64
	// Stop is the trailing level to test on the next bar.
	Stop float64
	// Extreme is the highest high of a long or the lowest low of a short since entry.
	Extreme float64
	Accel   float64
}

func flatState() State {
	return State{
		Position:   types.PositionFlat,
		EntryBar:   -1,
		EntryPrice: math.NaN(),
		BarsHeld:   0,
		Risk:       math.NaN(),
		Stop:       math.NaN(),
		Extreme:    math.NaN(),
		Accel:      0,
	}
}

// BarView is what entry and exit rules may look at on bar i: indicator and
// price values of earlier bars, plus bar i's open, high, low and volume for
// the fill. Bar i's close and indicators are not reachable.
type BarView struct {
	Index  int
	Open   float64
	High   float64
	Low    float64
	Volume float64

	series *types.AugmentedSeries
}

func newBarView(series *types.AugmentedSeries, i int) BarView {
	bar := series.Bar(i)

	return BarView{
		Index:  i,
		Open:   bar.Open,
		High:   bar.High,
		Low:    bar.Low,
		Volume: bar.Volume,
		series: series,
	}
}

// Prev returns the indicator value of the previous bar.
func (b BarView) Prev(name types.IndicatorType) float64 {
	return b.Lag(name, 1)
}

// Lag returns the indicator value k >= 1 bars back, NaN otherwise.
func (b BarView) Lag(name types.IndicatorType, k int) float64 {
	if k < 1 {
		return math.NaN()
	}

	return b.series.Value(name, b.Index-k)
}

// PrevPrice returns a raw price field k >= 1 bars back, NaN otherwise.
func (b BarView) PrevPrice(field types.Field, k int) float64 {
	j := b.Index - k
	if k < 1 || j < 0 {
		return math.NaN()
	}

	return b.series.Bar(j).Value(field)
}

// Fill is the execution price of a transition. Threshold is the trigger a
// stop-style fill is bounded by, 0 for market fills at the open.
type Fill struct {
	Price     float64
	Threshold float64
}

// AtOpen fills at the bar's open.
func AtOpen(b BarView) Fill {
	return Fill{Price: b.Open, Threshold: 0}
}

// BuyStop fills a buy triggered at level: never below the level, at the open
// when the bar gaps through it.
func BuyStop(b BarView, level float64) Fill {
	return Fill{Price: math.Max(b.Open, level), Threshold: level}
}

// SellStop fills a sell triggered at level: never above the level, at the
// open when the bar gaps through it.
func SellStop(b BarView, level float64) Fill {
	return Fill{Price: math.Min(b.Open, level), Threshold: level}
}

// EntryRule decides whether a flat position opens on bar b.
type EntryRule func(b BarView) (types.Action, Fill, bool)

// ExitRule is one exit condition. Machine evaluates exits in slice order and
// the first one that fires closes the position.
type ExitRule struct {
	Name  string
	Check func(b BarView, state State) (Fill, bool)
}

// BarHook sees the completed bar i, close and indicators included, and
// prepares the state the next bar is tested against.
type BarHook func(series *types.AugmentedSeries, i int, state *State)

// Machine is the flat / long / short state machine shared by all strategies.
//
// For every bar i >= 1 it applies, in order: the volume gate (no transition
// on a zero volume bar), the exit rules when a position is open or the entry
// rule when flat, then the hooks. At most one event is emitted per bar and an
// exit on bar i allows a re-entry on bar i+1 at the earliest. On the last bar
// entries are suppressed and an open position is closed at the close.
type Machine struct {
	Entry EntryRule
	Exits []ExitRule
	// OnEntry runs after the entry bar completes.
	OnEntry BarHook
	// AfterBar runs after every later traded bar the position survives.
	AfterBar BarHook
}

// Run folds the machine over the series and returns its signal events.
func (m Machine) Run(series *types.AugmentedSeries) ([]types.SignalEvent, error) {
	n := series.Len()
	last := n - 1
	state := flatState()
	events := make([]types.SignalEvent, 0)

	for i := 1; i < n; i++ {
		bar := series.Bar(i)

		if i == last {
			if state.Position != types.PositionFlat {
				events = append(events, types.SignalEvent{
					BarIndex:  i,
					Time:      bar.Time,
					Action:    types.ActionExit,
					FillPrice: bar.Close,
					Threshold: 0,
					Reason:    types.ReasonForcedLiquidation,
				})
			}

			break
		}

		if bar.Volume == 0 {
			continue
		}

		view := newBarView(series, i)

		if state.Position == types.PositionFlat {
			if m.Entry == nil {
				continue
			}

			action, fill, ok := m.Entry(view)
			if !ok {
				continue
			}

			if !action.IsEntry() {
				return nil, errors.NewInvalidSignalSequenceError(series.Symbol(), i, string(action), "entry rule returned a non-entry action")
			}

			if math.IsNaN(fill.Price) {
				return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s: undefined entry fill at bar %d", series.Symbol(), i)
			}

			events = append(events, newEvent(bar, i, action, fill, string(action)))

			state = flatState()
			state.Position = action.Target()
			state.EntryBar = i
			state.EntryPrice = fill.Price

			if m.OnEntry != nil {
				m.OnEntry(series, i, &state)
			}

			continue
		}

		state.BarsHeld++

		exited := false

		for _, rule := range m.Exits {
			fill, ok := rule.Check(view, state)
			if !ok {
				continue
			}

			if math.IsNaN(fill.Price) {
				return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "%s: undefined %s fill at bar %d", series.Symbol(), rule.Name, i)
			}

			events = append(events, newEvent(bar, i, types.ActionExit, fill, rule.Name))
			state = flatState()
			exited = true

			break
		}

		if !exited && m.AfterBar != nil {
			m.AfterBar(series, i, &state)
		}
	}

	return events, nil
}

func newEvent(bar types.Bar, i int, action types.Action, fill Fill, reason string) types.SignalEvent {
	return types.SignalEvent{
		BarIndex:  i,
		Time:      bar.Time,
		Action:    action,
		FillPrice: fill.Price,
		Threshold: fill.Threshold,
		Reason:    reason,
	}
}
