package agent

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/quantfold/hedgesim/internal/pricing"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// MeanReversion leans against stretched prices: a close far below its
// rolling mean reads bullish, far above reads bearish.
type MeanReversion struct {
	source pricing.Source
	window int
}

// NewMeanReversion returns a mean reversion source with a 20 bar window.
func NewMeanReversion(source pricing.Source) *MeanReversion {
	return &MeanReversion{
		source: source,
		window: 20,
	}
}

// Name implements Source.
func (m *MeanReversion) Name() string {
	return "mean_reversion"
}

// Produce implements Source.
func (m *MeanReversion) Produce(_ context.Context, symbol string, asOf time.Time) (types.Signal, error) {
	bars, err := m.source.History(symbol, asOf, m.window)
	if err != nil {
		return types.Signal{}, err
	}

	if len(bars) < m.window {
		return types.Signal{}, errors.Newf(errors.ErrCodeMissingHistory,
			"mean reversion needs %d bars for %s, have %d", m.window, symbol, len(bars))
	}

	mean := sma(bars, m.window)

	variance := 0.0
	for _, bar := range bars {
		diff := bar.Close - mean
		variance += diff * diff
	}

	stddev := math.Sqrt(variance / float64(m.window))
	if stddev == 0 {
		return scored(m.Name(), symbol, asOf, 0, 1, "flat price series"), nil
	}

	z := (bars[len(bars)-1].Close - mean) / stddev

	// Stretch beyond one standard deviation leans against the move,
	// scaling up to full confidence at two deviations.
	score := 0.0
	if z > 1 {
		score = -math.Min(z-1, 1)
	} else if z < -1 {
		score = math.Min(-z-1, 1)
	}

	rationale := fmt.Sprintf("z=%.2f mean=%.2f stddev=%.2f", z, mean, stddev)

	return scored(m.Name(), symbol, asOf, score, 1, rationale), nil
}
