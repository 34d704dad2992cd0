// Package backtest drives the simulation: it walks the trading calendar one
// date at a time, turns signals into risk-bounded actions and applies them to
// the ledger. The walk is deterministic and never reads data beyond the
// current date.
package backtest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quantfold/hedgesim/internal/agent"
	"github.com/quantfold/hedgesim/internal/decision"
	"github.com/quantfold/hedgesim/internal/ledger"
	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/pricing"
	"github.com/quantfold/hedgesim/internal/risk"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// EventKind classifies a diagnostic event.
type EventKind string

const (
	// EventDataGap marks a symbol/date skipped because no bar exists.
	EventDataGap EventKind = "data_gap"
	// EventAgentFailure marks a symbol degraded to hold because a signal
	// source failed.
	EventAgentFailure EventKind = "agent_failure"
	// EventSignalDiscarded marks a signal dropped for a symbol or date
	// mismatch.
	EventSignalDiscarded EventKind = "signal_discarded"
	// EventDecisionDegraded marks a symbol degraded to hold because the
	// decision step returned a non-fatal error.
	EventDecisionDegraded EventKind = "decision_degraded"
)

// Event is one diagnostic entry. Degradations never abort the run; they are
// reported here instead.
type Event struct {
	Date    time.Time `yaml:"date" json:"date"`
	Symbol  string    `yaml:"symbol" json:"symbol"`
	Kind    EventKind `yaml:"kind" json:"kind"`
	Message string    `yaml:"message" json:"message"`
}

// Result is the outcome of a run. When Partial is true the equity curve is a
// consistent prefix of the full run, cut at the date the run stopped.
type Result struct {
	EquityCurve []types.LedgerSnapshot
	Diagnostics []Event
	Partial     bool
}

// ProgressCallback reports dates processed out of the total.
type ProgressCallback func(current, total int)

// Engine wires the pricing source, signal agents, risk manager, decision
// engine and ledger into the simulation loop.
type Engine struct {
	config      Config
	source      pricing.Source
	agents      []agent.Source
	riskManager *risk.Manager
	decider     *decision.Engine
	ledger      *ledger.Ledger
	journal     *ledger.Journal
	log         *logger.Logger
	onProgress  optional.Option[ProgressCallback]
}

// NewEngine validates the config and assembles a ready-to-run engine.
func NewEngine(config Config, source pricing.Source, agents []agent.Source, log *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	riskManager, err := risk.NewManager(config.Risk)
	if err != nil {
		return nil, err
	}

	decider, err := decision.NewEngine(config.Decision)
	if err != nil {
		return nil, err
	}

	book, err := ledger.NewLedger(config.InitialCapital, log)
	if err != nil {
		return nil, err
	}

	journal, err := ledger.NewJournal(log)
	if err != nil {
		return nil, err
	}

	if err := journal.Initialize(); err != nil {
		return nil, err
	}

	return &Engine{
		config:      config,
		source:      source,
		agents:      agents,
		riskManager: riskManager,
		decider:     decider,
		ledger:      book,
		journal:     journal,
		log:         log,
		onProgress:  optional.None[ProgressCallback](),
	}, nil
}

// SetProgressCallback registers a callback invoked after each simulated date.
func (e *Engine) SetProgressCallback(callback ProgressCallback) {
	e.onProgress = optional.Some(callback)
}

// symbolSignals is the per-symbol outcome of the signal gathering step.
type symbolSignals struct {
	signals  []types.Signal
	events   []Event
	degraded bool
}

// Run walks the calendar and returns the equity curve with diagnostics.
// Cancellation is honored between dates only, so the returned curve is
// always a consistent prefix. A fatal error returns the partial result
// alongside the error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	dates, err := e.dates()
	if err != nil {
		return nil, err
	}

	if len(dates) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "no trading dates in the configured range")
	}

	symbols := append([]string(nil), e.config.Symbols...)
	sort.Strings(symbols)

	e.log.Info("starting run",
		zap.Int("dates", len(dates)),
		zap.Strings("symbols", symbols),
		zap.Float64("initial_capital", e.config.InitialCapital),
	)

	result := &Result{}
	// lastKnown carries the most recent close per symbol so open positions
	// stay valued across data gaps.
	lastKnown := make(map[string]float64)
	valuation := func(symbol string) float64 { return lastKnown[symbol] }
	prior := e.ledger.Snapshot(types.Day(dates[0]).AddDate(0, 0, -1), valuation)

	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			result.Partial = true

			return result, err
		}

		prices := e.resolvePrices(symbols, date, lastKnown, result)

		gathered, err := e.gatherSignals(ctx, symbols, date, prices)
		if err != nil {
			result.Partial = true

			return result, err
		}

		for idx, symbol := range symbols {
			result.Diagnostics = append(result.Diagnostics, gathered[idx].events...)

			price, tradable := prices[symbol]
			if !tradable || gathered[idx].degraded {
				continue
			}

			limit := e.riskManager.ComputeLimits(symbol, date, prior)

			action, err := e.decider.Decide(symbol, date, price, gathered[idx].signals, limit, prior.Position(symbol))
			if err != nil {
				if errors.IsFatal(err) {
					result.Partial = true

					return result, err
				}

				result.Diagnostics = append(result.Diagnostics, Event{
					Date:    date,
					Symbol:  symbol,
					Kind:    EventDecisionDegraded,
					Message: err.Error(),
				})

				continue
			}

			fill, err := e.ledger.Apply(action, price, date)
			if err != nil {
				if errors.IsFatal(err) {
					result.Partial = true

					return result, err
				}

				result.Diagnostics = append(result.Diagnostics, Event{
					Date:    date,
					Symbol:  symbol,
					Kind:    EventDecisionDegraded,
					Message: err.Error(),
				})

				continue
			}

			if err := e.journal.RecordFill(fill); err != nil {
				e.log.Warn("failed to record fill",
					zap.String("symbol", symbol),
					zap.Error(err),
				)
			}
		}

		snap := e.ledger.Snapshot(date, valuation)
		result.EquityCurve = append(result.EquityCurve, snap)

		if err := e.journal.RecordSnapshot(snap); err != nil {
			e.log.Warn("failed to record snapshot",
				zap.Time("date", date),
				zap.Error(err),
			)
		}

		prior = snap

		if e.onProgress.IsSome() {
			e.onProgress.Unwrap()(i+1, len(dates))
		}
	}

	e.log.Info("run finished",
		zap.Int("dates", len(dates)),
		zap.Float64("final_equity", prior.TotalEquity),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)

	return result, nil
}

// resolvePrices looks up each symbol's close for the date. A missing bar
// records a data-gap event and leaves the symbol untradable for the date;
// valuation falls back to the carried price.
func (e *Engine) resolvePrices(symbols []string, date time.Time, lastKnown map[string]float64, result *Result) map[string]float64 {
	prices := make(map[string]float64, len(symbols))

	for _, symbol := range symbols {
		price, err := e.source.Price(symbol, date)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Event{
				Date:    date,
				Symbol:  symbol,
				Kind:    EventDataGap,
				Message: err.Error(),
			})

			continue
		}

		if price.IsNone() {
			result.Diagnostics = append(result.Diagnostics, Event{
				Date:    date,
				Symbol:  symbol,
				Kind:    EventDataGap,
				Message: "no bar for date",
			})

			continue
		}

		prices[symbol] = price.Unwrap()
		lastKnown[symbol] = price.Unwrap()
	}

	return prices
}

// gatherSignals runs every agent for every tradable symbol, one goroutine
// per symbol. Agent failures degrade the symbol to hold; mismatched signals
// are discarded. Only fatal errors propagate.
func (e *Engine) gatherSignals(ctx context.Context, symbols []string, date time.Time, prices map[string]float64) ([]symbolSignals, error) {
	gathered := make([]symbolSignals, len(symbols))

	g, gctx := errgroup.WithContext(ctx)

	for idx, symbol := range symbols {
		if _, tradable := prices[symbol]; !tradable {
			continue
		}

		g.Go(func() error {
			for _, src := range e.agents {
				signal, err := src.Produce(gctx, symbol, date)
				if err != nil {
					if errors.IsFatal(err) {
						return err
					}

					gathered[idx].degraded = true
					gathered[idx].events = append(gathered[idx].events, Event{
						Date:    date,
						Symbol:  symbol,
						Kind:    EventAgentFailure,
						Message: src.Name() + ": " + err.Error(),
					})

					continue
				}

				if !signal.Matches(symbol, date) {
					gathered[idx].events = append(gathered[idx].events, Event{
						Date:    date,
						Symbol:  symbol,
						Kind:    EventSignalDiscarded,
						Message: src.Name() + ": signal for wrong symbol or date",
					})

					continue
				}

				gathered[idx].signals = append(gathered[idx].signals, signal)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return gathered, nil
}

// dates builds the simulation calendar from the configured policy.
func (e *Engine) dates() (types.Calendar, error) {
	start := e.config.StartTime.TakeOr(time.Time{})
	end := e.config.EndTime.TakeOr(time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))

	switch e.config.Calendar {
	case CalendarWeekdays:
		return types.WeekdayCalendar(start, end), nil
	case CalendarData:
		dates, err := e.source.Dates(start, end)
		if err != nil {
			return nil, err
		}

		return types.CalendarFromDates(dates), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidCalendar, "unknown calendar policy %q", e.config.Calendar)
	}
}

// Stats computes run statistics from the journal and the run diagnostics.
func (e *Engine) Stats(result *Result) (types.RunStats, error) {
	stats, err := e.journal.Stats()
	if err != nil {
		return types.RunStats{}, err
	}

	stats.ID = uuid.New().String()
	stats.Timestamp = time.Now()

	for _, event := range result.Diagnostics {
		switch event.Kind {
		case EventDataGap:
			stats.DataGaps++
		case EventAgentFailure, EventDecisionDegraded:
			stats.DegradedDecisions++
		}
	}

	return stats, nil
}

// WriteResults exports the journal to Parquet and the run stats to YAML in
// the given folder.
func (e *Engine) WriteResults(folder string, result *Result) error {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeUnknown, err, "failed to create results folder %s", folder)
	}

	stats, err := e.Stats(result)
	if err != nil {
		return err
	}

	if err := types.WriteRunStats(filepath.Join(folder, "stats.yaml"), stats); err != nil {
		return err
	}

	return e.journal.Write(folder)
}

// Close releases the journal's resources.
func (e *Engine) Close() error {
	return e.journal.Close()
}
