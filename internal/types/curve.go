package types

import "time"

// EquityPoint is the mark-to-market state of one instrument at one bar close.
type EquityPoint struct {
	Time     time.Time `yaml:"time" json:"time"`
	BarIndex int       `yaml:"bar_index" json:"bar_index"`
	// Realized is the sum of closed trade PnL up to this bar.
	Realized float64 `yaml:"realized" json:"realized"`
	// Unrealized is the open position valued at this bar's close.
	Unrealized float64 `yaml:"unrealized" json:"unrealized"`
	// Fees is the cumulative commission paid.
	Fees float64 `yaml:"fees" json:"fees"`
	// Equity is Realized + Unrealized - Fees.
	Equity float64 `yaml:"equity" json:"equity"`
}

// PortfolioPoint is one date of the combined portfolio curve.
type PortfolioPoint struct {
	Time time.Time `yaml:"time" json:"time"`
	// PnL is the cumulative PnL of all instruments up to this date.
	PnL float64 `yaml:"pnl" json:"pnl"`
	// Balance is the initial balance plus PnL.
	Balance float64 `yaml:"balance" json:"balance"`
	// Return is Balance / initial balance - 1.
	Return float64 `yaml:"return" json:"return"`
}
