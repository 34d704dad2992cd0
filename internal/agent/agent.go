// Package agent holds the signal sources. Each source is one analysis that
// turns point-in-time price history into a directional opinion with a
// confidence. The set is closed: a new analysis is added by implementing
// Source, not by runtime registration.
package agent

import (
	"context"
	"time"

	"github.com/quantfold/hedgesim/internal/types"
)

// Source produces one signal for a symbol as of a date. Implementations must
// not read data dated after asOf; the pricing layer enforces this for
// history-based sources.
type Source interface {
	// Name identifies the source; it becomes the signal's SourceID.
	Name() string
	// Produce returns the source's opinion for symbol as of asOf. An error
	// degrades the symbol to hold for the date, it never aborts the run.
	Produce(ctx context.Context, symbol string, asOf time.Time) (types.Signal, error)
}

// scored builds a signal from a bounded score, mirroring how each analysis
// tallies points: lean follows the sign, confidence the magnitude relative
// to maxScore.
func scored(source, symbol string, asOf time.Time, score, maxScore float64, rationale string) types.Signal {
	normalized := 0.0
	if maxScore > 0 {
		normalized = score / maxScore
	}

	if normalized > 1 {
		normalized = 1
	} else if normalized < -1 {
		normalized = -1
	}

	lean := types.LeanNeutral
	if normalized > 0 {
		lean = types.LeanBullish
	} else if normalized < 0 {
		lean = types.LeanBearish
	}

	confidence := normalized
	if confidence < 0 {
		confidence = -confidence
	}

	return types.Signal{
		SourceID:   source,
		Symbol:     symbol,
		Date:       types.Day(asOf),
		Lean:       lean,
		Confidence: confidence,
		Rationale:  rationale,
	}
}

func sma(bars []types.Bar, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}

	sum := 0.0
	for _, bar := range bars[len(bars)-window:] {
		sum += bar.Close
	}

	return sum / float64(window)
}
