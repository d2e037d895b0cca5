// Package report exports the outputs of an aggregation run: trade
// statistics as YAML and the trade ledgers and curves as parquet.
package report

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/aggregator"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// PortfolioSymbol labels the statistics of the combined portfolio.
const PortfolioSymbol = "portfolio"

// Store holds the ledgers and curves of one run in an in-memory DuckDB.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens an empty store.
func NewStore(log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	store := &Store{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			symbol TEXT,
			direction INTEGER,
			entry_bar INTEGER,
			entry_time TIMESTAMP,
			entry_price DOUBLE,
			exit_bar INTEGER,
			exit_time TIMESTAMP,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			fee DOUBLE,
			exit_reason TEXT
		);
		CREATE TABLE IF NOT EXISTS equity (
			symbol TEXT,
			time TIMESTAMP,
			bar_index INTEGER,
			realized DOUBLE,
			unrealized DOUBLE,
			fees DOUBLE,
			equity DOUBLE
		);
		CREATE TABLE IF NOT EXISTS portfolio (
			time TIMESTAMP,
			pnl DOUBLE,
			balance DOUBLE,
			total_return DOUBLE
		);
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create report tables", err)
	}

	return nil
}

// Insert adds every ledger and curve of report.
func (s *Store) Insert(report *aggregator.Report) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	for _, instrument := range report.Instruments {
		if len(instrument.Trades) > 0 {
			insert := s.sq.Insert("trades").Columns(
				"symbol", "direction", "entry_bar", "entry_time", "entry_price",
				"exit_bar", "exit_time", "exit_price", "quantity", "pnl", "fee", "exit_reason",
			)

			for _, trade := range instrument.Trades {
				insert = insert.Values(
					trade.Symbol, int(trade.Direction), trade.EntryBar, trade.EntryTime, trade.EntryPrice,
					trade.ExitBar, trade.ExitTime, trade.ExitPrice, trade.Quantity, trade.RealizedPnL, trade.Fee, trade.ExitReason,
				)
			}

			if _, err := insert.RunWith(tx).Exec(); err != nil {
				tx.Rollback()

				return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert trades of %s", instrument.Symbol)
			}
		}

		if len(instrument.Equity) > 0 {
			insert := s.sq.Insert("equity").Columns(
				"symbol", "time", "bar_index", "realized", "unrealized", "fees", "equity",
			)

			for _, point := range instrument.Equity {
				insert = insert.Values(
					instrument.Symbol, point.Time, point.BarIndex, point.Realized, point.Unrealized, point.Fees, point.Equity,
				)
			}

			if _, err := insert.RunWith(tx).Exec(); err != nil {
				tx.Rollback()

				return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert equity of %s", instrument.Symbol)
			}
		}
	}

	if len(report.Portfolio) > 0 {
		insert := s.sq.Insert("portfolio").Columns("time", "pnl", "balance", "total_return")
		for _, point := range report.Portfolio {
			insert = insert.Values(point.Time, point.PnL, point.Balance, point.Return)
		}

		if _, err := insert.RunWith(tx).Exec(); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert portfolio curve", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit report", err)
	}

	return nil
}

// Stats computes the trade statistics of one instrument.
func (s *Store) Stats(symbol string) (types.TradeStats, error) {
	stats, err := s.tradeStats(optional.Some(symbol))
	if err != nil {
		return types.TradeStats{}, err
	}

	drawdown, err := s.maxDrawdown(`
		WITH curve AS (
			SELECT
				equity AS value,
				GREATEST(MAX(equity) OVER (ORDER BY time ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW), 0) AS peak
			FROM equity
			WHERE symbol = ?
		)
		SELECT COALESCE(MAX(peak - value), 0) FROM curve
	`, symbol)
	if err != nil {
		return types.TradeStats{}, err
	}

	stats.Symbol = symbol
	stats.TradeResult.MaxDrawdown = drawdown

	return stats, nil
}

// PortfolioStats computes the statistics over all trades, with the
// drawdown taken from the portfolio curve.
func (s *Store) PortfolioStats() (types.TradeStats, error) {
	stats, err := s.tradeStats(optional.None[string]())
	if err != nil {
		return types.TradeStats{}, err
	}

	drawdown, err := s.maxDrawdown(`
		WITH curve AS (
			SELECT
				pnl AS value,
				GREATEST(MAX(pnl) OVER (ORDER BY time ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW), 0) AS peak
			FROM portfolio
		)
		SELECT COALESCE(MAX(peak - value), 0) FROM curve
	`)
	if err != nil {
		return types.TradeStats{}, err
	}

	stats.Symbol = PortfolioSymbol
	stats.TradeResult.MaxDrawdown = drawdown

	return stats, nil
}

func (s *Store) tradeStats(symbol optional.Option[string]) (types.TradeStats, error) {
	query := s.sq.
		Select(
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE pnl > 0)",
			"COUNT(*) FILTER (WHERE pnl < 0)",
			"COALESCE(SUM(pnl), 0)",
			"COALESCE(SUM(pnl - fee), 0)",
			"LEAST(COALESCE(MIN(pnl), 0), 0)",
			"GREATEST(COALESCE(MAX(pnl), 0), 0)",
			"COALESCE(SUM(fee), 0)",
			"CAST(COALESCE(MIN(exit_bar - entry_bar), 0) AS BIGINT)",
			"CAST(COALESCE(MAX(exit_bar - entry_bar), 0) AS BIGINT)",
			"COALESCE(AVG(exit_bar - entry_bar), 0)",
		).
		From("trades")

	if symbol.IsSome() {
		query = query.Where(squirrel.Eq{"symbol": symbol.Unwrap()})
	}

	var stats types.TradeStats

	err := query.RunWith(s.db).QueryRow().Scan(
		&stats.TradeResult.NumberOfTrades,
		&stats.TradeResult.NumberOfWinningTrades,
		&stats.TradeResult.NumberOfLosingTrades,
		&stats.TradePnl.RealizedPnL,
		&stats.TradePnl.NetPnL,
		&stats.TradePnl.MaximumLoss,
		&stats.TradePnl.MaximumProfit,
		&stats.TotalFees,
		&stats.TradeHoldingTime.Min,
		&stats.TradeHoldingTime.Max,
		&stats.TradeHoldingTime.Avg,
	)
	if err != nil {
		return types.TradeStats{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate trade stats", err)
	}

	if stats.TradeResult.NumberOfTrades > 0 {
		stats.TradeResult.WinRate = float64(stats.TradeResult.NumberOfWinningTrades) / float64(stats.TradeResult.NumberOfTrades)
	}

	return stats, nil
}

func (s *Store) maxDrawdown(query string, args ...any) (float64, error) {
	var drawdown float64
	if err := s.db.QueryRow(query, args...).Scan(&drawdown); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to calculate max drawdown", err)
	}

	return drawdown, nil
}

// Write exports trades, equity curves and the portfolio curve to parquet
// files in dir.
func (s *Store) Write(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to create directory", err)
	}

	for _, table := range []string{"trades", "equity", "portfolio"} {
		path := filepath.Join(dir, table+".parquet")

		// COPY is not expressible with squirrel
		_, err := s.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s ORDER BY ALL) TO '%s' (FORMAT PARQUET)`,
			table, strings.ReplaceAll(path, "'", "''")))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeReportWriteFailed, err, "failed to export %s to parquet", table)
		}
	}

	s.logger.Info("Exported run curves to parquet", zap.String("dir", dir))

	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
