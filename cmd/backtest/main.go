package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantfold/hedgesim/internal/agent"
	"github.com/quantfold/hedgesim/internal/backtest"
	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/pricing"
)

// backtestAction loads the config, opens the bar source, assembles the
// agents and runs the simulation, writing results to the output folder.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	resultsPath := cmd.String("results")

	zlog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer zlog.Sync()

	config, err := backtest.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	source, err := pricing.NewDuckDBSource(zlog)
	if err != nil {
		return fmt.Errorf("failed to open bar source: %w", err)
	}

	defer source.Close()

	if err := source.Initialize(dataPath); err != nil {
		return fmt.Errorf("failed to load bars from %s: %w", dataPath, err)
	}

	agents := []agent.Source{
		agent.NewMomentum(source),
		agent.NewMeanReversion(source),
		agent.NewVolumeSentiment(source),
	}

	engine, err := backtest.NewEngine(config, source, agents, zlog)
	if err != nil {
		return fmt.Errorf("failed to assemble engine: %w", err)
	}

	defer engine.Close()

	var bar *progressbar.ProgressBar

	engine.SetProgressCallback(func(current, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Simulating"),
				progressbar.OptionShowCount(),
			)
		}

		bar.Set(current)
	})

	result, runErr := engine.Run(ctx)

	if bar != nil {
		bar.Finish()
	}

	if result != nil && len(result.EquityCurve) > 0 {
		if err := engine.WriteResults(resultsPath, result); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}

		final := result.EquityCurve[len(result.EquityCurve)-1]
		fmt.Printf("\nSimulated %d dates, final equity %.2f (results in %s)\n",
			len(result.EquityCurve), final.TotalEquity, resultsPath)

		if len(result.Diagnostics) > 0 {
			fmt.Printf("%d diagnostic events recorded\n", len(result.Diagnostics))
		}
	}

	if runErr != nil {
		return fmt.Errorf("run stopped: %w", runErr)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay signal-driven decisions over historical daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML run configuration",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the Parquet file of daily bars",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Directory the results are written to",
				Value:   "results",
			},
		},
		Action: backtestAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
