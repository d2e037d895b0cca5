// Package config loads and validates batch configurations.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-quant/internal/aggregator"
	"github.com/rxtech-lab/argo-quant/internal/backtest"
	"github.com/rxtech-lab/argo-quant/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-quant/internal/datasource"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/version"
	"github.com/rxtech-lab/argo-quant/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a batch configuration.
type File struct {
	Version         string                `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Semver constraint the binary must satisfy (e.g. ~0.4)"`
	InstrumentCodes []string              `yaml:"instrument_codes" json:"instrument_codes" jsonschema:"title=Instrument Codes,description=Instruments to backtest,minItems=1" validate:"required,min=1,unique,dive,required"`
	StartDate       string                `yaml:"start_date,omitempty" json:"start_date,omitempty" jsonschema:"title=Start Date,description=Optional first date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string                `yaml:"end_date,omitempty" json:"end_date,omitempty" jsonschema:"title=End Date,description=Optional last date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	InitialBalance  float64               `yaml:"initial_balance" json:"initial_balance" jsonschema:"title=Initial Balance,description=Starting balance of the portfolio,minimum=0" validate:"gt=0"`
	Lots            *float64              `yaml:"lots,omitempty" json:"lots,omitempty" jsonschema:"title=Lots,description=Overrides the position size of the strategy" validate:"omitempty,gt=0"`
	Broker          commission_fee.Broker `yaml:"broker,omitempty" json:"broker,omitempty" jsonschema:"title=Broker,description=The commission model" validate:"omitempty,oneof=interactive_broker per_lot zero_commission"`
	PerLotFee       float64               `yaml:"per_lot_fee,omitempty" json:"per_lot_fee,omitempty" jsonschema:"title=Per Lot Fee,description=Fee per lot and side for the per_lot broker,minimum=0" validate:"gte=0"`
	Strategy        StrategyFile          `yaml:"strategy" json:"strategy" jsonschema:"title=Strategy"`
	Parallelism     ParallelismFile       `yaml:"parallelism,omitempty" json:"parallelism,omitempty" jsonschema:"title=Parallelism"`
	Data            DataFile              `yaml:"data" json:"data" jsonschema:"title=Data"`
	OutputDir       string                `yaml:"output_dir,omitempty" json:"output_dir,omitempty" jsonschema:"title=Output Directory,description=Where reports are written"`
	LogLevel        string                `yaml:"log_level,omitempty" json:"log_level,omitempty" jsonschema:"title=Log Level,enum=debug,enum=info,enum=warn,enum=error" validate:"omitempty,oneof=debug info warn error"`
}

type StrategyFile struct {
	Name   string         `yaml:"name" json:"name" jsonschema:"title=Name,description=Registered strategy name" validate:"required"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty" jsonschema:"title=Params,description=Overrides of the strategy defaults"`
}

type ParallelismFile struct {
	Mode    string `yaml:"mode,omitempty" json:"mode,omitempty" jsonschema:"title=Mode,enum=sequential,enum=parallel" validate:"omitempty,oneof=sequential parallel"`
	Workers int    `yaml:"workers,omitempty" json:"workers,omitempty" jsonschema:"title=Workers,description=Worker count in parallel mode (0 = one per CPU),minimum=0" validate:"gte=0"`
}

type DataFile struct {
	Dir    string `yaml:"dir" json:"dir" jsonschema:"title=Directory,description=Directory holding open/high/low/close/vol matrices" validate:"required"`
	Format string `yaml:"format,omitempty" json:"format,omitempty" jsonschema:"title=Format,enum=csv,enum=parquet" validate:"omitempty,oneof=csv parquet"`
	Level  string `yaml:"level,omitempty" json:"level,omitempty" jsonschema:"title=Level,description=Bar interval sub-directory of dir,enum=min5,enum=min15,enum=min30,enum=min60,enum=day" validate:"omitempty,oneof=min5 min15 min30 min60 day"`
}

// Config is a validated batch configuration.
type Config struct {
	Requirement     string
	InstrumentCodes []string
	StartDate       optional.Option[time.Time]
	EndDate         optional.Option[time.Time]
	InitialBalance  float64
	Lots            optional.Option[float64]
	Broker          commission_fee.Broker
	PerLotFee       float64
	StrategyName    string
	StrategyParams  map[string]any
	Mode            aggregator.Mode
	Workers         int
	DataDir         string
	DataFormat      datasource.Format
	DataLevel       datasource.Level
	OutputDir       string
	LogLevel        zapcore.Level
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Load reads the configuration at path. A relative data directory is
// resolved against the directory of the file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.NewConfigurationError("path", fmt.Sprintf("cannot read %s", path), err)
	}

	config, err := Parse(data)
	if err != nil {
		return Config{}, err
	}

	if !filepath.IsAbs(config.DataDir) {
		config.DataDir = filepath.Join(filepath.Dir(path), config.DataDir)
	}

	return config, nil
}

// Parse decodes and validates a YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var file File

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&file); err != nil {
		if err == io.EOF {
			return Config{}, errors.NewConfigurationError("", "configuration is empty", nil)
		}

		return Config{}, errors.NewConfigurationError("", "cannot decode configuration",
			errors.Wrap(errors.ErrCodeUnknownParameter, "decode yaml", err))
	}

	return file.Resolve()
}

// Resolve validates the file and converts it to a Config.
func (f File) Resolve() (Config, error) {
	if err := validate.Struct(f); err != nil {
		return Config{}, validationError(err)
	}

	if err := version.CheckRequirement(version.GetVersion(), f.Version); err != nil {
		return Config{}, errors.NewConfigurationError("version", "binary does not satisfy the version requirement", err)
	}

	start, err := parseDate("start_date", f.StartDate)
	if err != nil {
		return Config{}, err
	}

	end, err := parseDate("end_date", f.EndDate)
	if err != nil {
		return Config{}, err
	}

	if start.IsSome() && end.IsSome() && start.Unwrap().After(end.Unwrap()) {
		return Config{}, errors.NewConfigurationError("start_date", "must not be after end_date",
			errors.Newf(errors.ErrCodeInvalidDateRange, "%s > %s", f.StartDate, f.EndDate))
	}

	broker, err := commission_fee.ParseBroker(string(f.Broker))
	if err != nil {
		return Config{}, err
	}

	level := zapcore.InfoLevel
	if f.LogLevel != "" {
		if level, err = zapcore.ParseLevel(f.LogLevel); err != nil {
			return Config{}, errors.NewConfigurationError("log_level", "unknown level", err)
		}
	}

	lots := optional.None[float64]()
	if f.Lots != nil {
		lots = optional.Some(*f.Lots)
	}

	mode := aggregator.Mode(f.Parallelism.Mode)
	if mode == "" {
		mode = aggregator.ModeSequential
	}

	format := datasource.Format(f.Data.Format)
	if format == "" {
		format = datasource.FormatCSV
	}

	return Config{
		Requirement:     f.Version,
		InstrumentCodes: f.InstrumentCodes,
		StartDate:       start,
		EndDate:         end,
		InitialBalance:  f.InitialBalance,
		Lots:            lots,
		Broker:          broker,
		PerLotFee:       f.PerLotFee,
		StrategyName:    f.Strategy.Name,
		StrategyParams:  f.Strategy.Params,
		Mode:            mode,
		Workers:         f.Parallelism.Workers,
		DataDir:         f.Data.Dir,
		DataFormat:      format,
		DataLevel:       datasource.Level(f.Data.Level),
		OutputDir:       f.OutputDir,
		LogLevel:        level,
	}, nil
}

// NewStrategy builds the configured strategy from registry.
func (c Config) NewStrategy(registry *strategy.Registry) (strategy.Strategy, error) {
	return registry.New(c.StrategyName, c.StrategyParams)
}

// DataPath is the directory the matrices are read from: dir, or dir/level
// when a bar level is configured.
func (c Config) DataPath() string {
	return filepath.Join(c.DataDir, string(c.DataLevel))
}

// Commission returns the configured fee model.
func (c Config) Commission() commission_fee.CommissionFee {
	return commission_fee.GetCommissionFeeHandler(c.Broker, c.PerLotFee)
}

// Executor returns the configured task executor.
func (c Config) Executor() (aggregator.Executor, error) {
	return aggregator.NewExecutor(c.Mode, c.Workers)
}

// Aggregator returns the aggregator settings. The configured lots override
// the position size of s.
func (c Config) Aggregator(s strategy.Strategy) aggregator.Config {
	return aggregator.Config{
		InitialBalance: c.InitialBalance,
		Backtest: backtest.Config{
			Quantity:   c.Lots.TakeOr(s.Lots()),
			Commission: c.Commission(),
		},
	}
}

func parseDate(field, value string) (optional.Option[time.Time], error) {
	if value == "" {
		return optional.None[time.Time](), nil
	}

	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, errors.NewConfigurationError(field, "must be YYYY-MM-DD", err)
	}

	return optional.Some(date), nil
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return errors.NewConfigurationError("", "validation failed", err)
	}

	first := validationErrors[0]
	field := strings.TrimPrefix(first.Namespace(), "File.")

	reason := fmt.Sprintf("failed %q validation", first.Tag())
	if first.Param() != "" {
		reason = fmt.Sprintf("failed %q validation (%s)", first.Tag(), first.Param())
	}

	return errors.NewConfigurationError(field, reason, errors.Wrap(errors.ErrCodeInvalidParameter, "validate config", err))
}

// GenerateSchema generates a JSON schema for the configuration file.
func GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		FieldNameTag:              "yaml",
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(commission_fee.Broker("")) {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(&File{})
	schema.Title = "argo-quant-batch-config"
	schema.Description = "Configuration schema for a multi-instrument backtest batch"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates the configuration schema as indented JSON.
func GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
