package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/pkg/marketdata"
)

// downloadAction fetches daily bars for the requested symbols and writes
// them to a Parquet file the backtest command can consume.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbols := strings.Split(cmd.String("symbols"), ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")

	zlog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer zlog.Sync()

	config := marketdata.DefaultClientConfig()
	config.DataPath = cmd.String("data")
	config.PolygonAPIKey = os.Getenv("POLYGON_API_KEY")
	config.RequestsPerMinute = int(cmd.Int("rpm"))
	config.RequestsPerDay = int(cmd.Int("rpd"))

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
	)

	client, err := marketdata.NewClient(config, zlog, func(completed, _ int, _ string) {
		bar.Set(completed)
	})
	if err != nil {
		return fmt.Errorf("failed to create download client: %w", err)
	}

	path, err := client.Download(ctx, symbols, start, end)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	bar.Finish()
	fmt.Printf("\nBars written to %s\n", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download daily bars from Polygon into a Parquet file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "symbols",
				Aliases:  []string{"s"},
				Usage:    "Comma separated ticker symbols (e.g. AAPL,MSFT)",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:     "start",
				Usage:    "Start date in `YYYY-MM-DD` format",
				Required: true,
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.TimestampFlag{
				Name:  "end",
				Usage: "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value: time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
			&cli.IntFlag{
				Name:  "rpm",
				Usage: "Provider requests per minute",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  "rpd",
				Usage: "Provider requests per rolling 24 hours",
				Value: 5000,
			},
		},
		Action: downloadAction,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
