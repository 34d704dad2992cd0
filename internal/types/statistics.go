package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunStats summarizes one backtest run for the report surface.
type RunStats struct {
	// ID is the unique identifier for this run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Days is the number of simulated trading dates.
	Days int `yaml:"days"`
	// FinalEquity is the last snapshot's total equity.
	FinalEquity float64 `yaml:"final_equity"`
	// TotalReturn is final equity over first equity, minus one.
	TotalReturn float64 `yaml:"total_return"`
	// MaxDrawdown is the largest peak-to-trough equity decline, as a
	// negative fraction.
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// RealizedPnL is the cumulative realized profit/loss over all fills.
	RealizedPnL float64 `yaml:"realized_pnl"`
	// NumberOfFills counts executed (non-hold) fills.
	NumberOfFills int `yaml:"number_of_fills"`
	// WinRate is the share of closing fills with positive realized PnL.
	WinRate float64 `yaml:"win_rate"`
	// DataGaps counts symbol/dates skipped for missing prices.
	DataGaps int `yaml:"data_gaps"`
	// DegradedDecisions counts symbol/dates degraded to hold by errors.
	DegradedDecisions int `yaml:"degraded_decisions"`
}

// WriteRunStats writes the stats as YAML to the given path.
func WriteRunStats(path string, stats RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal run stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run stats to file: %w", err)
	}

	return nil
}
