package types

import "time"

// Field names one OHLCV column of the bar matrices.
type Field string

const (
	FieldOpen   Field = "open"
	FieldHigh   Field = "high"
	FieldLow    Field = "low"
	FieldClose  Field = "close"
	FieldVolume Field = "vol"
)

// AllFields lists the per-field matrices a loader must provide.
var AllFields = []Field{FieldOpen, FieldHigh, FieldLow, FieldClose, FieldVolume}

// Bar is one OHLCV observation for one instrument. Bars are immutable once loaded.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// Value returns the bar's value for the given field.
func (b Bar) Value(field Field) float64 {
	switch field {
	case FieldOpen:
		return b.Open
	case FieldHigh:
		return b.High
	case FieldLow:
		return b.Low
	case FieldClose:
		return b.Close
	case FieldVolume:
		return b.Volume
	default:
		return 0
	}
}

// Series is the calendar-ordered bar sequence of one instrument.
// Index i always refers to the i-th trading date of that instrument.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.Bars)
}

// Field extracts one column as a new slice.
func (s Series) Field(field Field) []float64 {
	out := make([]float64, len(s.Bars))
	for i, bar := range s.Bars {
		out[i] = bar.Value(field)
	}

	return out
}

// Times returns the bar timestamps.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Bars))
	for i, bar := range s.Bars {
		out[i] = bar.Time
	}

	return out
}

// IsOrdered reports whether timestamps strictly increase.
func (s Series) IsOrdered() bool {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Time.After(s.Bars[i-1].Time) {
			return false
		}
	}

	return true
}
