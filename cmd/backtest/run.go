package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-quant/internal/aggregator"
	"github.com/rxtech-lab/argo-quant/internal/config"
	"github.com/rxtech-lab/argo-quant/internal/datasource"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/report"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// MetricsFile is the Prometheus text file written next to the report.
const MetricsFile = "metrics.prom"

// batch wires a configuration to its collaborators.
type batch struct {
	config   config.Config
	registry *strategy.Registry
	loader   datasource.Loader
	log      *logger.Logger
	// progress receives the progress bar, nil disables it
	progress io.Writer
}

// run executes the batch and writes its report under outputDir/<run id>.
func (b *batch) run(ctx context.Context, outputDir string) (types.RunReport, error) {
	// configuration errors abort before any data is read
	s, err := b.config.NewStrategy(b.registry)
	if err != nil {
		return types.RunReport{}, err
	}

	executor, err := b.config.Executor()
	if err != nil {
		return types.RunReport{}, err
	}

	registry := prometheus.NewRegistry()
	metrics := aggregator.NewMetrics()

	if err := metrics.Register(registry); err != nil {
		return types.RunReport{}, fmt.Errorf("failed to register metrics: %w", err)
	}

	agg, err := aggregator.NewAggregator(b.config.Aggregator(s),
		aggregator.WithExecutor(executor),
		aggregator.WithLogger(b.log),
		aggregator.WithMetrics(metrics),
	)
	if err != nil {
		return types.RunReport{}, err
	}

	series, err := b.loader.Load(ctx, b.config.InstrumentCodes, b.config.StartDate, b.config.EndDate)
	if err != nil {
		return types.RunReport{}, fmt.Errorf("failed to load bars: %w", err)
	}

	result, err := agg.Run(ctx, s, series, b.callbacks())
	if err != nil {
		return types.RunReport{}, err
	}

	dir := filepath.Join(outputDir, result.RunID)

	run, err := report.Export(result, dir, b.log)
	if err != nil {
		return types.RunReport{}, err
	}

	if err := prometheus.WriteToTextfile(filepath.Join(dir, MetricsFile), registry); err != nil {
		b.log.Warn("Failed to write metrics", zap.Error(err))
	}

	return run, nil
}

func (b *batch) callbacks() aggregator.LifecycleCallbacks {
	if b.progress == nil {
		return aggregator.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onStart := aggregator.OnBatchStartCallback(func(runID string, total int) error {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.progress),
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", b.config.StrategyName)),
			progressbar.OptionShowCount(),
		)

		return nil
	})
	onInstrument := aggregator.OnInstrumentEndCallback(func(string, error) {
		_ = bar.Add(1)
	})
	onEnd := aggregator.OnBatchEndCallback(func(error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return aggregator.LifecycleCallbacks{
		OnBatchStart:    &onStart,
		OnInstrumentEnd: &onInstrument,
		OnBatchEnd:      &onEnd,
	}
}
