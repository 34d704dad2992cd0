package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/hedgesim/internal/pricing"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Momentum scores trend strength from moving average posture and the rate of
// change over the short window.
type Momentum struct {
	source      pricing.Source
	shortWindow int
	longWindow  int
}

// NewMomentum returns a momentum source with 20/50 windows.
func NewMomentum(source pricing.Source) *Momentum {
	return &Momentum{
		source:      source,
		shortWindow: 20,
		longWindow:  50,
	}
}

// Name implements Source.
func (m *Momentum) Name() string {
	return "momentum"
}

// Produce implements Source.
func (m *Momentum) Produce(_ context.Context, symbol string, asOf time.Time) (types.Signal, error) {
	bars, err := m.source.History(symbol, asOf, m.longWindow+1)
	if err != nil {
		return types.Signal{}, err
	}

	if len(bars) < m.longWindow {
		return types.Signal{}, errors.Newf(errors.ErrCodeMissingHistory,
			"momentum needs %d bars for %s, have %d", m.longWindow, symbol, len(bars))
	}

	smaShort := sma(bars, m.shortWindow)
	smaLong := sma(bars, m.longWindow)
	last := bars[len(bars)-1].Close
	rocBase := bars[len(bars)-m.shortWindow].Close

	score := 0.0

	if smaShort > smaLong {
		score++
	} else if smaShort < smaLong {
		score--
	}

	if rocBase > 0 {
		roc := last/rocBase - 1
		if roc > 0.02 {
			score++
		} else if roc < -0.02 {
			score--
		}
	}

	if last > smaShort {
		score++
	} else if last < smaShort {
		score--
	}

	rationale := fmt.Sprintf("sma%d=%.2f sma%d=%.2f close=%.2f", m.shortWindow, smaShort, m.longWindow, smaLong, last)

	return scored(m.Name(), symbol, asOf, score, 3, rationale), nil
}
