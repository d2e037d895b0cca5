package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatusOK labels instruments that made it into the portfolio.
const StatusOK = "ok"

// Metrics holds the Prometheus collectors of the aggregator.
type Metrics struct {
	// Instruments counts finished instruments by status: ok or the error kind
	Instruments *prometheus.CounterVec
	// TaskDuration observes the pipeline time of one instrument
	TaskDuration prometheus.Histogram
	// PortfolioPnL is the final cumulative PnL of the last batch
	PortfolioPnL prometheus.Gauge
}

// NewMetrics creates the aggregator collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		Instruments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "argo_quant_instruments_total",
				Help: "Instruments processed by status",
			},
			[]string{"status"},
		),
		TaskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "argo_quant_instrument_duration_seconds",
				Help:    "Strategy and replay time of one instrument in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		PortfolioPnL: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "argo_quant_portfolio_pnl",
				Help: "Cumulative portfolio PnL at the end of the last batch",
			},
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{m.Instruments, m.TaskDuration, m.PortfolioPnL} {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}

	return nil
}
