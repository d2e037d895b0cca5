// Package backtest replays signal series into trade ledgers and
// mark-to-market equity curves.
package backtest

import (
	"github.com/rxtech-lab/argo-quant/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"github.com/shopspring/decimal"
)

// Config holds the replay settings shared by every instrument of a batch.
type Config struct {
	// Quantity is the fixed position size in lots.
	Quantity float64
	// Commission is charged on each leg. Nil means zero commission.
	Commission commission_fee.CommissionFee
}

// Result is the replay output of one instrument. It is not modified after
// Replay returns.
type Result struct {
	Symbol string
	Trades []types.Trade
	Equity []types.EquityPoint
}

// FinalEquity returns the equity after the last bar.
func (r Result) FinalEquity() float64 {
	if len(r.Equity) == 0 {
		return 0
	}

	return r.Equity[len(r.Equity)-1].Equity
}

type openPosition struct {
	direction  types.Direction
	entryBar   int
	entryPrice decimal.Decimal
	entryFee   decimal.Decimal
}

// Replay applies events to the bars of series in bar order.
//
// Entries open a position of config.Quantity at the event's fill price and
// exits close it, appending a Trade with realized PnL
// (exit - entry) * direction * quantity. Every bar close gets an equity point
// holding realized PnL, the open position marked at the close, and fees.
//
// An entry while a position is open, an exit while flat, a bar index that
// does not increase or lies outside the series, and a position still open
// after the last bar are reported as InvalidSignalSequenceError.
func Replay(series types.Series, events []types.SignalEvent, config Config) (Result, error) {
	if series.Len() == 0 {
		return Result{}, errors.Newf(errors.ErrCodeBacktestNoBars, "no bars to replay for %q", series.Symbol)
	}

	if config.Quantity <= 0 {
		return Result{}, errors.Newf(errors.ErrCodeBacktestInvalidLots, "quantity must be positive, got %v", config.Quantity)
	}

	commission := config.Commission
	if commission == nil {
		commission = commission_fee.NewZeroCommissionFee()
	}

	if err := validateOrder(series, events); err != nil {
		return Result{}, err
	}

	quantity := decimal.NewFromFloat(config.Quantity)
	realized := decimal.Zero
	fees := decimal.Zero

	var position *openPosition

	trades := make([]types.Trade, 0)
	equity := make([]types.EquityPoint, 0, series.Len())
	next := 0

	for i, bar := range series.Bars {
		if next < len(events) && events[next].BarIndex == i {
			event := events[next]
			next++

			switch {
			case event.Action.IsEntry():
				if position != nil {
					return Result{}, errors.NewInvalidSignalSequenceError(series.Symbol, i, string(event.Action), "position already open")
				}

				fee := decimal.NewFromFloat(commission.Calculate(config.Quantity))
				fees = fees.Add(fee)
				position = &openPosition{
					direction:  event.Action.Target().Direction(),
					entryBar:   i,
					entryPrice: decimal.NewFromFloat(event.FillPrice),
					entryFee:   fee,
				}
			case event.Action == types.ActionExit:
				if position == nil {
					return Result{}, errors.NewInvalidSignalSequenceError(series.Symbol, i, string(event.Action), "no open position")
				}

				fee := decimal.NewFromFloat(commission.Calculate(config.Quantity))
				fees = fees.Add(fee)

				exitPrice := decimal.NewFromFloat(event.FillPrice)
				pnl := exitPrice.Sub(position.entryPrice).
					Mul(decimal.NewFromInt(int64(position.direction))).
					Mul(quantity)
				realized = realized.Add(pnl)

				trades = append(trades, types.Trade{
					Symbol:      series.Symbol,
					Direction:   position.direction,
					EntryBar:    position.entryBar,
					EntryTime:   series.Bars[position.entryBar].Time,
					EntryPrice:  position.entryPrice.InexactFloat64(),
					ExitBar:     i,
					ExitTime:    bar.Time,
					ExitPrice:   event.FillPrice,
					Quantity:    config.Quantity,
					RealizedPnL: pnl.InexactFloat64(),
					Fee:         position.entryFee.Add(fee).InexactFloat64(),
					ExitReason:  event.Reason,
				})
				position = nil
			default:
				return Result{}, errors.NewInvalidSignalSequenceError(series.Symbol, i, string(event.Action), "unknown action")
			}
		}

		unrealized := decimal.Zero
		if position != nil {
			unrealized = decimal.NewFromFloat(bar.Close).
				Sub(position.entryPrice).
				Mul(decimal.NewFromInt(int64(position.direction))).
				Mul(quantity)
		}

		equity = append(equity, types.EquityPoint{
			Time:       bar.Time,
			BarIndex:   i,
			Realized:   realized.InexactFloat64(),
			Unrealized: unrealized.InexactFloat64(),
			Fees:       fees.InexactFloat64(),
			Equity:     realized.Add(unrealized).Sub(fees).InexactFloat64(),
		})
	}

	if position != nil {
		return Result{}, errors.NewInvalidSignalSequenceError(series.Symbol, series.Len()-1, "end", "position still open after the last bar")
	}

	return Result{
		Symbol: series.Symbol,
		Trades: trades,
		Equity: equity,
	}, nil
}

// validateOrder checks that bar indices increase strictly and stay in range.
func validateOrder(series types.Series, events []types.SignalEvent) error {
	last := -1

	for _, event := range events {
		if event.BarIndex < 0 || event.BarIndex >= series.Len() {
			return errors.NewInvalidSignalSequenceError(series.Symbol, event.BarIndex, string(event.Action), "bar index out of range")
		}

		if event.BarIndex <= last {
			return errors.NewInvalidSignalSequenceError(series.Symbol, event.BarIndex, string(event.Action), "bar indices must strictly increase")
		}

		last = event.BarIndex
	}

	return nil
}
