package types

import "time"

// PositionState is the position held by one strategy on one instrument.
type PositionState string

const (
	PositionFlat  PositionState = "flat"
	PositionLong  PositionState = "long"
	PositionShort PositionState = "short"
)

// Direction returns +1 for long, -1 for short and 0 for flat.
func (p PositionState) Direction() Direction {
	switch p {
	case PositionLong:
		return DirectionLong
	case PositionShort:
		return DirectionShort
	default:
		return 0
	}
}

// Action is a position transition.
type Action string

const (
	// ActionEnterLong opens a long position from flat.
	ActionEnterLong Action = "enter_long"
	// ActionEnterShort opens a short position from flat.
	ActionEnterShort Action = "enter_short"
	// ActionExit closes the open position.
	ActionExit Action = "exit"
)

// IsEntry reports whether the action opens a position.
func (a Action) IsEntry() bool {
	return a == ActionEnterLong || a == ActionEnterShort
}

// Target returns the state the action moves to.
func (a Action) Target() PositionState {
	switch a {
	case ActionEnterLong:
		return PositionLong
	case ActionEnterShort:
		return PositionShort
	default:
		return PositionFlat
	}
}

// Exit reasons emitted by the state machine.
const (
	ReasonForcedLiquidation = "forced_liquidation"
)

// SignalEvent is one transition at one bar. A signal series has strictly
// increasing BarIndex and at most one event per bar.
type SignalEvent struct {
	BarIndex  int       `yaml:"bar_index" json:"bar_index"`
	Time      time.Time `yaml:"time" json:"time"`
	Action    Action    `yaml:"action" json:"action"`
	FillPrice float64   `yaml:"fill_price" json:"fill_price"`
	// Threshold is the trigger level a stop-style fill was bounded by, 0 for market fills.
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Reason    string  `yaml:"reason" json:"reason"`
}
