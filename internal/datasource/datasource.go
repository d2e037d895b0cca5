// Package datasource turns per-field bar matrices into per-instrument series.
package datasource

import (
	"context"
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
)

// Level is the bar interval of the matrices. Rows of intraday levels carry
// their time of day.
type Level string

const (
	LevelMin5  Level = "min5"
	LevelMin15 Level = "min15"
	LevelMin30 Level = "min30"
	LevelMin60 Level = "min60"
	LevelDay   Level = "day"
)

// Format is the file format of the field matrices.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Loader reads the bars of the given instruments between optional inclusive dates.
type Loader interface {
	Load(ctx context.Context, codes []string, start, end optional.Option[time.Time]) ([]types.Series, error)
}

// Matrix is one field of many instruments: rows are trading dates, columns
// are instrument codes. Missing values are NaN.
type Matrix struct {
	Dates  []time.Time
	Codes  []string
	Values [][]float64
}

// Validate checks the shape of the matrix.
func (m Matrix) Validate() error {
	if len(m.Values) != len(m.Dates) {
		return errors.Newf(errors.ErrCodeMisalignedData, "matrix has %d rows but %d dates", len(m.Values), len(m.Dates))
	}

	for i, row := range m.Values {
		if len(row) != len(m.Codes) {
			return errors.Newf(errors.ErrCodeMisalignedData, "row %d has %d values but %d codes", i, len(row), len(m.Codes))
		}
	}

	for i := 1; i < len(m.Dates); i++ {
		if !m.Dates[i].After(m.Dates[i-1]) {
			return errors.Newf(errors.ErrCodeMisalignedData, "dates must increase, %s follows %s",
				m.Dates[i].Format(time.DateTime), m.Dates[i-1].Format(time.DateTime))
		}
	}

	seen := make(map[string]struct{}, len(m.Codes))
	for _, code := range m.Codes {
		if _, ok := seen[code]; ok {
			return errors.Newf(errors.ErrCodeMisalignedData, "duplicate instrument column %q", code)
		}

		seen[code] = struct{}{}
	}

	return nil
}

// lookup returns the value of code at date, NaN when absent.
type lookup struct {
	rows    map[int64]int
	columns map[string]int
	matrix  Matrix
}

func newLookup(m Matrix) lookup {
	l := lookup{
		rows:    make(map[int64]int, len(m.Dates)),
		columns: make(map[string]int, len(m.Codes)),
		matrix:  m,
	}

	for i, date := range m.Dates {
		l.rows[date.UnixNano()] = i
	}

	for j, code := range m.Codes {
		l.columns[code] = j
	}

	return l
}

func (l lookup) value(code string, date time.Time) float64 {
	row, ok := l.rows[date.UnixNano()]
	if !ok {
		return math.NaN()
	}

	column, ok := l.columns[code]
	if !ok {
		return math.NaN()
	}

	return l.matrix.Values[row][column]
}

// FieldMatrices holds one matrix per bar field. Close defines the calendar,
// the other fields are matched to it by date.
type FieldMatrices struct {
	Open   Matrix
	High   Matrix
	Low    Matrix
	Close  Matrix
	Volume Matrix
}

// Split builds one series per requested code. A row on which any field of a
// code is missing is dropped for that code only, so every instrument keeps
// its own trading calendar. A code absent from the matrices yields an empty
// series. Start and end are inclusive calendar dates, so intraday rows of the
// end date are kept.
func (f FieldMatrices) Split(codes []string, start, end optional.Option[time.Time]) ([]types.Series, error) {
	if start.IsSome() && end.IsSome() && start.Unwrap().After(end.Unwrap()) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "start %s is after end %s",
			start.Unwrap().Format(time.DateOnly), end.Unwrap().Format(time.DateOnly))
	}

	for _, m := range []Matrix{f.Open, f.High, f.Low, f.Close, f.Volume} {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}

	open, high, low, closes, volume := newLookup(f.Open), newLookup(f.High), newLookup(f.Low), newLookup(f.Close), newLookup(f.Volume)

	series := make([]types.Series, 0, len(codes))

	for _, code := range codes {
		bars := make([]types.Bar, 0, len(f.Close.Dates))

		for _, date := range f.Close.Dates {
			if !inRange(date, start, end) {
				continue
			}

			bar := types.Bar{
				Time:   date,
				Open:   open.value(code, date),
				High:   high.value(code, date),
				Low:    low.value(code, date),
				Close:  closes.value(code, date),
				Volume: volume.value(code, date),
			}

			if math.IsNaN(bar.Open) || math.IsNaN(bar.High) || math.IsNaN(bar.Low) ||
				math.IsNaN(bar.Close) || math.IsNaN(bar.Volume) {
				continue
			}

			bars = append(bars, bar)
		}

		series = append(series, types.Series{Symbol: code, Bars: bars})
	}

	return series, nil
}

// inRange compares the UTC calendar date of t with the optional bounds.
func inRange(t time.Time, start, end optional.Option[time.Time]) bool {
	day := calendarDate(t)

	if start.IsSome() && day.Before(calendarDate(start.Unwrap())) {
		return false
	}

	return !end.IsSome() || !day.After(calendarDate(end.Unwrap()))
}

func calendarDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
