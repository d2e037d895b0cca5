package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/types"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap"
)

// DateColumn is the name of the first column of every matrix file.
const DateColumn = "date"

// DuckDBLoader reads wide field matrices (open, high, low, close, vol) from
// a directory through an in-memory DuckDB. Each file has a date column
// followed by one column per instrument code. Dates may carry a time of day
// for intraday levels.
type DuckDBLoader struct {
	db     *sql.DB
	dir    string
	format Format
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBLoader opens an in-memory DuckDB reading matrices from dir.
func NewDuckDBLoader(dir string, format Format, log *logger.Logger) (*DuckDBLoader, error) {
	switch format {
	case "":
		format = FormatCSV
	case FormatCSV, FormatParquet:
	default:
		return nil, errors.NewConfigurationError("data.format", "must be csv or parquet",
			errors.Newf(errors.ErrCodeInvalidParameter, "unknown format %q", format))
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBLoader{
		db:     db,
		dir:    dir,
		format: format,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Path returns the file holding field.
func (d *DuckDBLoader) Path(field types.Field) string {
	return filepath.Join(d.dir, string(field)+"."+string(d.format))
}

// Load implements Loader.
func (d *DuckDBLoader) Load(ctx context.Context, codes []string, start, end optional.Option[time.Time]) ([]types.Series, error) {
	var matrices FieldMatrices

	targets := []struct {
		field  types.Field
		matrix *Matrix
	}{
		{types.FieldOpen, &matrices.Open},
		{types.FieldHigh, &matrices.High},
		{types.FieldLow, &matrices.Low},
		{types.FieldClose, &matrices.Close},
		{types.FieldVolume, &matrices.Volume},
	}

	for _, target := range targets {
		matrix, err := d.readMatrix(ctx, target.field, start, end)
		if err != nil {
			return nil, err
		}

		*target.matrix = matrix
	}

	available := make(map[string]struct{}, len(matrices.Close.Codes))
	for _, code := range matrices.Close.Codes {
		available[code] = struct{}{}
	}

	for _, code := range codes {
		if _, ok := available[code]; !ok {
			d.logger.Warn("Instrument not found in close matrix",
				zap.String("instrument", code),
				zap.String("path", d.Path(types.FieldClose)),
			)
		}
	}

	series, err := matrices.Split(codes, start, end)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("Loaded field matrices",
		zap.String("dir", d.dir),
		zap.Int("dates", len(matrices.Close.Dates)),
		zap.Int("instruments", len(series)),
	)

	return series, nil
}

func (d *DuckDBLoader) readMatrix(ctx context.Context, field types.Field, start, end optional.Option[time.Time]) (Matrix, error) {
	path := d.Path(field)
	if _, err := os.Stat(path); err != nil {
		return Matrix{}, errors.Wrapf(errors.ErrCodeDataNotFound, err, "missing %s matrix", field)
	}

	escaped := strings.ReplaceAll(path, "'", "''")

	source := fmt.Sprintf("read_csv_auto('%s', header = true)", escaped)
	if d.format == FormatParquet {
		source = fmt.Sprintf("read_parquet('%s')", escaped)
	}

	query := d.sq.
		Select(fmt.Sprintf("* REPLACE (CAST(%s AS TIMESTAMP) AS %s)", DateColumn, DateColumn)).
		From(source).
		OrderBy(DateColumn + " ASC")

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{fmt.Sprintf("CAST(%s AS DATE)", DateColumn): start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{fmt.Sprintf("CAST(%s AS DATE)", DateColumn): end.Unwrap()})
	}

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return Matrix{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return Matrix{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return Matrix{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to read columns of %s", path)
	}

	if len(columns) == 0 || !strings.EqualFold(columns[0], DateColumn) {
		return Matrix{}, errors.Newf(errors.ErrCodeMisalignedData, "%s: first column must be %q", path, DateColumn)
	}

	matrix := Matrix{
		Dates:  make([]time.Time, 0),
		Codes:  columns[1:],
		Values: make([][]float64, 0),
	}

	raw := make([]any, len(columns))
	pointers := make([]any, len(columns))

	for i := range raw {
		pointers[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return Matrix{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to scan %s", path)
		}

		date, ok := raw[0].(time.Time)
		if !ok {
			return Matrix{}, errors.Newf(errors.ErrCodeMisalignedData, "%s: unexpected date value %v", path, raw[0])
		}

		row := make([]float64, len(columns)-1)
		for j := 1; j < len(columns); j++ {
			row[j-1] = toFloat(raw[j])
		}

		matrix.Dates = append(matrix.Dates, date.UTC())
		matrix.Values = append(matrix.Values, row)
	}

	if err := rows.Err(); err != nil {
		return Matrix{}, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to iterate %s", path)
	}

	return matrix, nil
}

// Close releases the database.
func (d *DuckDBLoader) Close() error {
	return d.db.Close()
}

// toFloat converts a scanned cell, NULL and unparsable cells become NaN.
func toFloat(value any) float64 {
	switch v := value.(type) {
	case nil:
		return math.NaN()
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int16:
		return float64(v)
	case int8:
		return float64(v)
	case int:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN()
		}

		return f
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		if err != nil {
			return math.NaN()
		}

		return f
	}
}
