package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-quant/internal/aggregator"
	"github.com/rxtech-lab/argo-quant/internal/config"
	"github.com/rxtech-lab/argo-quant/internal/datasource"
	"github.com/rxtech-lab/argo-quant/internal/logger"
	"github.com/rxtech-lab/argo-quant/internal/strategy"
	"github.com/rxtech-lab/argo-quant/internal/version"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runAction loads the configuration, runs the batch and prints a summary.
func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	if cmd.IsSet("workers") {
		cfg.Mode = aggregator.ModeParallel
		cfg.Workers = int(cmd.Int("workers"))
	}

	outputDir := cmd.String("output")
	if !cmd.IsSet("output") && cfg.OutputDir != "" {
		outputDir = cfg.OutputDir
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	loader, err := datasource.NewDuckDBLoader(cfg.DataPath(), cfg.DataFormat, log)
	if err != nil {
		return err
	}
	defer loader.Close()

	b := &batch{
		config:   cfg,
		registry: strategy.DefaultRegistry(),
		loader:   loader,
		log:      log,
	}
	if !cmd.Bool("no-progress") {
		b.progress = os.Stderr
	}

	run, err := b.run(ctx, outputDir)
	if err != nil {
		return err
	}

	log.Info("Backtest finished",
		zap.String("run_id", run.ID),
		zap.Int("instruments", len(run.Instruments)),
		zap.Int("failures", len(run.Failures)),
		zap.Float64("final_balance", run.FinalBalance),
	)

	for _, failure := range run.Failures {
		fmt.Fprintf(cmd.Root().ErrWriter, "excluded %s (%s): %s\n", failure.InstrumentCode, failure.ErrorKind, failure.Message)
	}

	return nil
}

// schemaAction prints the configuration schema or a strategy's parameter schema.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	var (
		schema string
		err    error
	)

	if name := cmd.String("strategy"); name != "" {
		schema, err = strategy.DefaultRegistry().Schema(name)
	} else {
		schema, err = config.GenerateSchemaJSON()
	}

	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.Root().Writer, schema)

	return nil
}

func strategiesAction(_ context.Context, cmd *cli.Command) error {
	registry := strategy.DefaultRegistry()

	for _, name := range registry.Names() {
		reg, err := registry.Get(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Root().Writer, "%-28s %s\n", name, reg.Description)
	}

	return nil
}

func versionAction(_ context.Context, cmd *cli.Command) error {
	fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "backtest",
		Usage:     "Backtest a strategy over a basket of instruments",
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a batch configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the batch configuration `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for run reports (overrides output_dir)",
						Value:   "results",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Run in parallel with this many workers (0 = one per CPU)",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Do not draw the progress bar",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the configuration or of a strategy's parameters",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Strategy `NAME` whose parameter schema is printed",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "strategies",
				Usage:  "List the registered strategies",
				Action: strategiesAction,
			},
			{
				Name:   "version",
				Usage:  "Print the version",
				Action: versionAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
