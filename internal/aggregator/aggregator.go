// Package aggregator runs one strategy over many instruments and combines
// the per-instrument equity curves into a portfolio curve.
//
// Every instrument is an independent task. A task that fails is logged and
// reported in the failure list, its siblings keep running. Only
// configuration errors abort a batch, and they do so before any task starts.
package aggregator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-quant/internal/backtest"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// Config holds the batch settings shared by every instrument.
type Config struct {
	// InitialBalance scales the portfolio curve.
	InitialBalance float64
	// Backtest is the replay configuration of each instrument.
	Backtest backtest.Config
}

// InstrumentResult is the output of one successful instrument. It is owned
// by the report and never modified after the task that produced it returns.
type InstrumentResult struct {
	Symbol    string
	Augmented *types.AugmentedSeries
	Signals   []types.SignalEvent
	Trades    []types.Trade
	Equity    []types.EquityPoint
}

// Outcome is what a task hands back to the aggregator.
type Outcome struct {
	Symbol   string
	Result   InstrumentResult
	Err      error
	Duration time.Duration
}

// Prepared is an instrument whose signals were generated elsewhere.
type Prepared struct {
	Augmented *types.AugmentedSeries
	Signals   []types.SignalEvent
}

// Report is the result of one batch. Failures are always returned next to
// the successful instruments.
type Report struct {
	RunID          string
	Strategy       types.StrategyInfo
	InitialBalance float64
	// Instruments is sorted by symbol.
	Instruments []InstrumentResult
	Portfolio   []types.PortfolioPoint
	// Failures is sorted by instrument code.
	Failures []types.Failure
}

// Curves returns the equity curve of every successful instrument.
func (r *Report) Curves() [][]types.EquityPoint {
	curves := make([][]types.EquityPoint, len(r.Instruments))
	for i, instrument := range r.Instruments {
		curves[i] = instrument.Equity
	}

	return curves
}

// Aggregator schedules per-instrument pipelines on an Executor.
type Aggregator struct {
	config   Config
	executor Executor
	metrics  *Metrics
	log      *logger.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithExecutor sets the executor. The default runs tasks inline.
func WithExecutor(executor Executor) Option {
	return func(a *Aggregator) {
		a.executor = executor
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *logger.Logger) Option {
	return func(a *Aggregator) {
		a.log = log
	}
}

// WithMetrics records batch metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// NewAggregator validates config and returns an aggregator.
func NewAggregator(config Config, opts ...Option) (*Aggregator, error) {
	if config.InitialBalance <= 0 {
		return nil, errors.NewConfigurationError("initial_balance", fmt.Sprintf("must be positive, got %v", config.InitialBalance), nil)
	}

	if config.Backtest.Quantity <= 0 {
		return nil, errors.NewConfigurationError("lots", fmt.Sprintf("must be positive, got %v", config.Backtest.Quantity), nil)
	}

	a := &Aggregator{
		config:   config,
		executor: NewInlineExecutor(),
		log:      logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.executor == nil {
		a.executor = NewInlineExecutor()
	}

	if a.log == nil {
		a.log = logger.NewNopLogger()
	}

	a.log = a.log.Named("aggregator")

	return a, nil
}

// Run computes indicators, signals and the replay of every series with s.
func (a *Aggregator) Run(ctx context.Context, s strategy.Strategy, series []types.Series, callbacks LifecycleCallbacks) (*Report, error) {
	if s == nil {
		return nil, a.abort(callbacks, errors.NewConfigurationError("strategy", "a strategy is required", nil))
	}

	symbols := make([]string, len(series))
	tasks := make([]Task, len(series))

	for i, instrument := range series {
		symbols[i] = instrument.Symbol
		tasks[i] = func(context.Context) Outcome {
			augmented, signals, err := strategy.Run(s, instrument)
			if err != nil {
				return Outcome{Err: err}
			}

			return a.replay(augmented, signals)
		}
	}

	info := types.StrategyInfo{
		Name:   s.Name(),
		Params: strategy.ParamsMap(s.Params()),
	}

	return a.execute(ctx, info, symbols, tasks, callbacks)
}

// Replay backtests instruments whose signals are already generated.
func (a *Aggregator) Replay(ctx context.Context, info types.StrategyInfo, prepared []Prepared, callbacks LifecycleCallbacks) (*Report, error) {
	symbols := make([]string, len(prepared))
	tasks := make([]Task, len(prepared))

	for i, instrument := range prepared {
		if instrument.Augmented == nil {
			return nil, a.abort(callbacks, errors.NewConfigurationError("instruments", fmt.Sprintf("instrument %d has no bars", i), nil))
		}

		symbols[i] = instrument.Augmented.Symbol()
		tasks[i] = func(context.Context) Outcome {
			return a.replay(instrument.Augmented, instrument.Signals)
		}
	}

	return a.execute(ctx, info, symbols, tasks, callbacks)
}

func (a *Aggregator) replay(augmented *types.AugmentedSeries, signals []types.SignalEvent) Outcome {
	result, err := backtest.Replay(augmented.Series, signals, a.config.Backtest)
	if err != nil {
		return Outcome{Err: err}
	}

	return Outcome{
		Result: InstrumentResult{
			Symbol:    augmented.Symbol(),
			Augmented: augmented,
			Signals:   signals,
			Trades:    result.Trades,
			Equity:    result.Equity,
		},
	}
}

func (a *Aggregator) execute(ctx context.Context, info types.StrategyInfo, symbols []string, tasks []Task, callbacks LifecycleCallbacks) (report *Report, err error) {
	defer func() {
		if callbacks.OnBatchEnd != nil {
			(*callbacks.OnBatchEnd)(err)
		}
	}()

	if err := checkSymbols(symbols); err != nil {
		return nil, err
	}

	runID := uuid.New().String()

	if callbacks.OnBatchStart != nil {
		if err := (*callbacks.OnBatchStart)(runID, len(tasks)); err != nil {
			return nil, fmt.Errorf("batch start callback failed: %w", err)
		}
	}

	a.log.Info("Starting batch",
		zap.String("run_id", runID),
		zap.String("strategy", info.Name),
		zap.Int("instruments", len(tasks)),
		zap.Int("workers", a.executor.Workers()),
	)

	guarded := make([]Task, len(tasks))
	for i, task := range tasks {
		guarded[i] = a.guard(symbols[i], task, callbacks)
	}

	outcomes := a.executor.Run(ctx, guarded)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch %s cancelled: %w", runID, err)
	}

	report = &Report{
		RunID:          runID,
		Strategy:       info,
		InitialBalance: a.config.InitialBalance,
		Instruments:    make([]InstrumentResult, 0, len(outcomes)),
		Failures:       make([]types.Failure, 0),
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil {
			report.Failures = append(report.Failures, types.NewFailure(outcome.Symbol, outcome.Err))

			continue
		}

		report.Instruments = append(report.Instruments, outcome.Result)
	}

	slices.SortFunc(report.Instruments, func(x, y InstrumentResult) int {
		return strings.Compare(x.Symbol, y.Symbol)
	})
	slices.SortFunc(report.Failures, func(x, y types.Failure) int {
		return strings.Compare(x.InstrumentCode, y.InstrumentCode)
	})

	report.Portfolio = Combine(report.Curves(), a.config.InitialBalance)

	if a.metrics != nil && len(report.Portfolio) > 0 {
		a.metrics.PortfolioPnL.Set(report.Portfolio[len(report.Portfolio)-1].PnL)
	}

	a.log.Info("Batch completed",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(report.Instruments)),
		zap.Int("failed", len(report.Failures)),
	)

	return report, nil
}

// guard isolates one task: it recovers panics, records the outcome and
// never lets a failure escape to sibling tasks.
func (a *Aggregator) guard(symbol string, task Task, callbacks LifecycleCallbacks) Task {
	return func(ctx context.Context) (outcome Outcome) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				outcome = Outcome{Err: errors.Newf(errors.ErrCodeInstrumentPanic, "instrument task panicked: %v", r)}
			}

			outcome.Symbol = symbol
			outcome.Duration = time.Since(start)
			a.record(outcome)

			if callbacks.OnInstrumentEnd != nil {
				(*callbacks.OnInstrumentEnd)(symbol, outcome.Err)
			}
		}()

		if err := ctx.Err(); err != nil {
			return Outcome{Err: err}
		}

		return task(ctx)
	}
}

func (a *Aggregator) record(outcome Outcome) {
	status := StatusOK
	if outcome.Err != nil {
		status = string(errors.KindOf(outcome.Err))
	}

	if a.metrics != nil {
		a.metrics.Instruments.WithLabelValues(status).Inc()
		a.metrics.TaskDuration.Observe(outcome.Duration.Seconds())
	}

	fields := []zap.Field{
		zap.String("instrument", outcome.Symbol),
		zap.Duration("duration", outcome.Duration),
	}

	switch {
	case outcome.Err == nil:
		a.log.Debug("Instrument completed", append(fields, zap.Int("trades", len(outcome.Result.Trades)))...)
	case errors.IsInsufficientHistoryError(outcome.Err):
		a.log.Warn("Instrument excluded", append(fields, zap.String("kind", status), zap.Error(outcome.Err))...)
	default:
		// invalid signal sequences are strategy bugs and must stay visible
		a.log.Error("Instrument failed", append(fields, zap.String("kind", status), zap.Error(outcome.Err))...)
	}
}

// abort reports a configuration error raised before the batch started.
func (a *Aggregator) abort(callbacks LifecycleCallbacks, err error) error {
	if callbacks.OnBatchEnd != nil {
		(*callbacks.OnBatchEnd)(err)
	}

	return err
}

func checkSymbols(symbols []string) error {
	if len(symbols) == 0 {
		return errors.NewConfigurationError("instrument_codes", "at least one instrument is required",
			errors.New(errors.ErrCodeNoInstruments, "empty instrument list"))
	}

	seen := make(map[string]struct{}, len(symbols))
	for _, symbol := range symbols {
		if symbol == "" {
			return errors.NewConfigurationError("instrument_codes", "instrument code must not be empty", nil)
		}

		if _, ok := seen[symbol]; ok {
			return errors.NewConfigurationError("instrument_codes", fmt.Sprintf("duplicate instrument %q", symbol), nil)
		}

		seen[symbol] = struct{}{}
	}

	return nil
}
