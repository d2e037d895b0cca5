package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Minimum holding time of a trade in bars
	Min int `yaml:"min"`
	// Maximum holding time of a trade in bars
	Max int `yaml:"max"`
	// Average holding time of a trade in bars
	Avg float64 `yaml:"avg"`
}

type TradePnl struct {
	// Realized PnL. Sum of all closed trades' gross pnl.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// Net PnL. Realized PnL minus fees.
	NetPnL float64 `yaml:"net_pnl"`
	// Maximum loss. Smallest single trade pnl, 0 when no trade lost.
	MaximumLoss float64 `yaml:"maximum_loss"`
	// Maximum profit. Largest single trade pnl, 0 when no trade won.
	MaximumProfit float64 `yaml:"maximum_profit"`
}

type TradeResult struct {
	// Count of all trades.
	NumberOfTrades int `yaml:"number_of_trades"`
	// Count of winning trades that has positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades"`
	// Count of losing trades that has negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades"`
	// Win rate.
	WinRate float64 `yaml:"win_rate"`
	// Maximum drawdown of the equity curve, in currency.
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

// StrategyInfo contains metadata about the strategy that generated stats.
type StrategyInfo struct {
	// Name is the registry name of the strategy (e.g. "dynamic_breakout_ii_long")
	Name string `yaml:"name" json:"name"`
	// Params is the resolved parameter set
	Params map[string]any `yaml:"params" json:"params"`
}

type TradeStats struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Symbol of the instrument, or "portfolio".
	Symbol string `yaml:"symbol"`
	// Result of all trades.
	TradeResult TradeResult `yaml:"trade_result"`
	// Total fees.
	TotalFees float64 `yaml:"total_fees"`
	// Holding time of all trades.
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time"`
	// PnL of all trades.
	TradePnl TradePnl `yaml:"trade_pnl"`
	// Strategy contains metadata about the strategy that generated these stats.
	Strategy StrategyInfo `yaml:"strategy" json:"strategy"`
}

// RunReport is the exported summary of one aggregation run.
type RunReport struct {
	ID             string       `yaml:"id"`
	Timestamp      time.Time    `yaml:"timestamp"`
	Strategy       StrategyInfo `yaml:"strategy"`
	InitialBalance float64      `yaml:"initial_balance"`
	FinalBalance   float64      `yaml:"final_balance"`
	Instruments    []TradeStats `yaml:"instruments"`
	Portfolio      TradeStats   `yaml:"portfolio"`
	Failures       []Failure    `yaml:"failures"`
}

// WriteRunReport writes the run summary as YAML.
func WriteRunReport(path string, report RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal run report to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report to file: %w", err)
	}

	return nil
}

// ReadRunReport reads a run summary written by WriteRunReport.
func ReadRunReport(path string) (RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunReport{}, fmt.Errorf("failed to read run report file: %w", err)
	}

	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return RunReport{}, fmt.Errorf("failed to unmarshal run report: %w", err)
	}

	return report, nil
}
