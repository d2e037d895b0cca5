package types

import "time"

// Direction is +1 for long and -1 for short exposure.
type Direction int

const (
	DirectionLong  Direction = 1
	DirectionShort Direction = -1
)

// String returns "long" or "short".
func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return string(PositionLong)
	case DirectionShort:
		return string(PositionShort)
	default:
		return string(PositionFlat)
	}
}

// Trade is a closed round trip. Trades are appended during replay and never modified.
type Trade struct {
	Symbol     string    `yaml:"symbol" json:"symbol"`
	Direction  Direction `yaml:"direction" json:"direction"`
	EntryBar   int       `yaml:"entry_bar" json:"entry_bar"`
	EntryTime  time.Time `yaml:"entry_time" json:"entry_time"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price"`
	ExitBar    int       `yaml:"exit_bar" json:"exit_bar"`
	ExitTime   time.Time `yaml:"exit_time" json:"exit_time"`
	ExitPrice  float64   `yaml:"exit_price" json:"exit_price"`
	Quantity   float64   `yaml:"quantity" json:"quantity"`
	// RealizedPnL is (exit - entry) * direction * quantity, before fees.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Fee is the commission paid on both legs.
	Fee        float64 `yaml:"fee" json:"fee"`
	ExitReason string  `yaml:"exit_reason" json:"exit_reason"`
}

// NetPnL returns the realized PnL after fees.
func (t Trade) NetPnL() float64 {
	return t.RealizedPnL - t.Fee
}

// HoldingBars returns the number of bars between entry and exit.
func (t Trade) HoldingBars() int {
	return t.ExitBar - t.EntryBar
}
