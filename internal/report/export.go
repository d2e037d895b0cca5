package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-quant/internal/aggregator"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// StatsFile is the name of the YAML summary written by Export.
const StatsFile = "stats.yaml"

// Build summarizes report. Instruments are listed in report order, the
// failure report is carried over unchanged.
func Build(store *Store, report *aggregator.Report) (types.RunReport, error) {
	timestamp := time.Now().UTC()

	run := types.RunReport{
		ID:             report.RunID,
		Timestamp:      timestamp,
		Strategy:       report.Strategy,
		InitialBalance: report.InitialBalance,
		FinalBalance:   report.InitialBalance,
		Instruments:    make([]types.TradeStats, 0, len(report.Instruments)),
		Failures:       report.Failures,
	}

	if len(report.Portfolio) > 0 {
		run.FinalBalance = report.Portfolio[len(report.Portfolio)-1].Balance
	}

	for _, instrument := range report.Instruments {
		stats, err := store.Stats(instrument.Symbol)
		if err != nil {
			return types.RunReport{}, err
		}

		stats.ID = report.RunID
		stats.Timestamp = timestamp
		stats.Strategy = report.Strategy
		run.Instruments = append(run.Instruments, stats)
	}

	portfolio, err := store.PortfolioStats()
	if err != nil {
		return types.RunReport{}, err
	}

	portfolio.ID = report.RunID
	portfolio.Timestamp = timestamp
	portfolio.Strategy = report.Strategy
	run.Portfolio = portfolio

	return run, nil
}

// Export writes stats.yaml and the parquet curves of report into dir.
func Export(report *aggregator.Report, dir string, log *logger.Logger) (types.RunReport, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.RunReport{}, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create output directory", err)
	}

	store, err := NewStore(log)
	if err != nil {
		return types.RunReport{}, err
	}
	defer store.Close()

	if err := store.Insert(report); err != nil {
		return types.RunReport{}, err
	}

	run, err := Build(store, report)
	if err != nil {
		return types.RunReport{}, err
	}

	statsPath := filepath.Join(dir, StatsFile)
	if err := types.WriteRunReport(statsPath, run); err != nil {
		return types.RunReport{}, errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to write stats", err)
	}

	if err := store.Write(dir); err != nil {
		return types.RunReport{}, err
	}

	log.Info("Run report written",
		zap.String("run_id", report.RunID),
		zap.String("stats", statsPath),
		zap.Int("failures", len(report.Failures)),
	)

	return run, nil
}
