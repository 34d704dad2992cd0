package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/quantfold/hedgesim/internal/pricing"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// VolumeSentiment reads crowd interest from volume spikes: unusual volume on
// an up day is bullish conviction, on a down day bearish.
type VolumeSentiment struct {
	source pricing.Source
	window int
	// spike is the volume-to-average ratio that counts as unusual.
	spike float64
}

// NewVolumeSentiment returns a volume sentiment source with a 20 bar window.
func NewVolumeSentiment(source pricing.Source) *VolumeSentiment {
	return &VolumeSentiment{
		source: source,
		window: 20,
		spike:  1.5,
	}
}

// Name implements Source.
func (v *VolumeSentiment) Name() string {
	return "volume_sentiment"
}

// Produce implements Source.
func (v *VolumeSentiment) Produce(_ context.Context, symbol string, asOf time.Time) (types.Signal, error) {
	bars, err := v.source.History(symbol, asOf, v.window+1)
	if err != nil {
		return types.Signal{}, err
	}

	if len(bars) < v.window+1 {
		return types.Signal{}, errors.Newf(errors.ErrCodeMissingHistory,
			"volume sentiment needs %d bars for %s, have %d", v.window+1, symbol, len(bars))
	}

	last := bars[len(bars)-1]
	lookback := bars[len(bars)-1-v.window : len(bars)-1]

	avgVolume := 0.0
	for _, bar := range lookback {
		avgVolume += bar.Volume
	}

	avgVolume /= float64(v.window)
	if avgVolume == 0 {
		return scored(v.Name(), symbol, asOf, 0, 1, "no volume history"), nil
	}

	ratio := last.Volume / avgVolume

	score := 0.0

	if ratio >= v.spike {
		// Confidence grows with the spike, full at 3x average volume.
		strength := (ratio - v.spike) / v.spike
		if strength > 1 {
			strength = 1
		}

		if last.Close > last.Open {
			score = strength
		} else if last.Close < last.Open {
			score = -strength
		}
	}

	rationale := fmt.Sprintf("volume=%.0f avg=%.0f ratio=%.2f", last.Volume, avgVolume, ratio)

	return scored(v.Name(), symbol, asOf, score, 1, rationale), nil
}
