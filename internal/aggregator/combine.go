package aggregator

import (
	"slices"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/shopspring/decimal"
)

// Combine builds the portfolio curve from per-instrument equity curves.
//
// Each instrument contributes its equity change on every date it traded.
// Curves are aligned on the UTC calendar date with an outer join, so a date
// missing from one curve adds nothing for that instrument, and intraday
// points of one date fall into a single portfolio point stamped at midnight. Sums use exact decimal
// arithmetic, which makes the result independent of the order of curves.
// Combine never modifies its inputs.
func Combine(curves [][]types.EquityPoint, initialBalance float64) []types.PortfolioPoint {
	deltas := make(map[time.Time]decimal.Decimal)

	for _, curve := range curves {
		previous := decimal.Zero

		for _, point := range curve {
			equity := decimal.NewFromFloat(point.Equity)
			key := calendarDate(point.Time)

			deltas[key] = deltas[key].Add(equity.Sub(previous))

			previous = equity
		}
	}

	keys := make([]time.Time, 0, len(deltas))
	for key := range deltas {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b time.Time) int { return a.Compare(b) })

	initial := decimal.NewFromFloat(initialBalance)
	pnl := decimal.Zero
	portfolio := make([]types.PortfolioPoint, 0, len(keys))

	for _, key := range keys {
		pnl = pnl.Add(deltas[key])
		balance := initial.Add(pnl)

		point := types.PortfolioPoint{
			Time:    key,
			PnL:     pnl.InexactFloat64(),
			Balance: balance.InexactFloat64(),
		}
		if !initial.IsZero() {
			point.Return = balance.Div(initial).Sub(decimal.NewFromInt(1)).InexactFloat64()
		}

		portfolio = append(portfolio, point)
	}

	return portfolio
}

// calendarDate truncates t to midnight of its UTC date.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
