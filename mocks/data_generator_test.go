package mocks

import (
	"testing"
)

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := DefaultConfig()
	config.Count = 100

	series := gen.Generate(config)

	if series.Len() != 100 {
		t.Errorf("expected 100 bars, got %d", series.Len())
	}

	if series.Symbol != config.Symbol {
		t.Errorf("expected symbol %s, got %s", config.Symbol, series.Symbol)
	}

	if !series.IsOrdered() {
		t.Errorf("bars not in chronological order")
	}

	for i, bar := range series.Bars {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			t.Errorf("invalid OHLC values at index %d: O=%f H=%f L=%f C=%f",
				i, bar.Open, bar.High, bar.Low, bar.Close)
		}

		if bar.High < bar.Low {
			t.Errorf("High < Low at index %d: H=%f L=%f", i, bar.High, bar.Low)
		}

		if bar.Volume <= 0 {
			t.Errorf("expected traded bar at index %d, got volume %f", i, bar.Volume)
		}
	}

	for i := 1; i < series.Len(); i++ {
		actualInterval := series.Bars[i].Time.Sub(series.Bars[i-1].Time)
		if actualInterval != config.Interval {
			t.Errorf("unexpected interval at index %d: expected %v, got %v",
				i, config.Interval, actualInterval)
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	first := NewDataGenerator(42).Generate(config)
	second := NewDataGenerator(42).Generate(config)

	for i := range first.Bars {
		if first.Bars[i] != second.Bars[i] {
			t.Errorf("data not reproducible at index %d", i)
		}
	}
}

func TestDataGenerator_Halts(t *testing.T) {
	config := DefaultConfig()
	config.Count = 1000
	config.HaltRate = 0.2

	series := NewDataGenerator(7).Generate(config)

	halted := 0
	for _, bar := range series.Bars {
		if bar.Volume == 0 {
			halted++

			if bar.High != bar.Low {
				t.Errorf("halted bar should be flat: H=%f L=%f", bar.High, bar.Low)
			}
		}
	}

	if halted == 0 || halted == config.Count {
		t.Errorf("expected some halted bars, got %d of %d", halted, config.Count)
	}
}

func TestDataGenerator_GenerateBasket(t *testing.T) {
	symbols := []string{"RB", "CU", "AU"}
	config := DefaultConfig()
	config.Count = 50

	basket := NewDataGenerator(1).GenerateBasket(symbols, config)

	if len(basket) != len(symbols) {
		t.Fatalf("expected %d series, got %d", len(symbols), len(basket))
	}

	for i, series := range basket {
		if series.Symbol != symbols[i] {
			t.Errorf("expected symbol %s, got %s", symbols[i], series.Symbol)
		}

		if series.Len() != 50 {
			t.Errorf("expected 50 bars for %s, got %d", series.Symbol, series.Len())
		}
	}
}

func TestSeriesFromCloses(t *testing.T) {
	series := SeriesFromCloses("X", []float64{10, 11, 9})

	if series.Len() != 3 || series.Bars[1].Close != 11 || series.Bars[1].Volume != 1 {
		t.Errorf("unexpected series %+v", series)
	}

	if !series.IsOrdered() {
		t.Errorf("bars not in chronological order")
	}
}
