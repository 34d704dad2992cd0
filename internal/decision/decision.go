// Package decision combines per-symbol signals and a risk limit into a
// single discrete trade action. The engine is stateless: ledger state comes
// in as an explicit snapshot position, never as shared mutable state, so the
// same inputs always produce the same action.
package decision

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantfold/hedgesim/internal/risk"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Config holds the score thresholds that separate buy, hold and sell/short
// territory. Both thresholds are non-negative; the defaults are symmetric.
type Config struct {
	ThresholdBuy  float64 `yaml:"threshold_buy" json:"threshold_buy" validate:"gte=0"`
	ThresholdSell float64 `yaml:"threshold_sell" json:"threshold_sell" validate:"gte=0"`
}

// DefaultConfig returns the symmetric 0.2/0.2 thresholds.
func DefaultConfig() Config {
	return Config{ThresholdBuy: 0.2, ThresholdSell: 0.2}
}

// Validate checks the threshold constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidThreshold, "thresholds must be non-negative", err)
	}

	return nil
}

// Engine maps aggregated signal scores to sized actions.
type Engine struct {
	config Config
}

// NewEngine validates the configuration and returns an engine.
func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{config: config}, nil
}

// Aggregate reduces the signals into one confidence-weighted score:
//
//	score = sum(confidence_i * lean_i) / sum(confidence_i)
//
// with lean mapped bullish:+1, neutral:0, bearish:-1. No signals, or all
// confidences zero, yields a zero score.
func Aggregate(signals []types.Signal) float64 {
	var weighted, total float64

	for _, s := range signals {
		weighted += s.Confidence * s.Lean.Value()
		total += s.Confidence
	}

	if total == 0 {
		return 0
	}

	return weighted / total
}

// Decide produces the action for one symbol on one date.
//
// Every signal must reference the requested symbol and date; a mismatch
// returns a conflicting-data error so the caller can discard the offender
// instead of letting it silently skew the score. The action quantity is the
// value gap between the score-sized target and the current position, clipped
// to the turnover limit and converted to whole shares at the given price. A
// single action never both closes a position and opens the opposite side:
// the leftover is deferred to the next date.
func (e *Engine) Decide(symbol string, date time.Time, price float64, signals []types.Signal, limit risk.Limit, position types.Position) (types.Action, error) {
	for _, s := range signals {
		if s.Symbol != symbol {
			return types.Hold(symbol, date), errors.Newf(errors.ErrCodeSymbolMismatch,
				"signal from %q references %s, requested %s", s.SourceID, s.Symbol, symbol)
		}

		if !types.SameDay(s.Date, date) {
			return types.Hold(symbol, date), errors.Newf(errors.ErrCodeDateMismatch,
				"signal from %q dated %s, requested %s", s.SourceID,
				s.Date.Format(time.DateOnly), date.Format(time.DateOnly))
		}
	}

	score := Aggregate(signals)

	action := types.Hold(symbol, date)
	action.Score = score

	if price <= 0 {
		return action, nil
	}

	var targetValue float64

	switch {
	case score > e.config.ThresholdBuy:
		targetValue = e.sizeFraction(score, e.config.ThresholdBuy) * limit.MaxPositionValue
	case score < -e.config.ThresholdSell:
		targetValue = -e.sizeFraction(-score, e.config.ThresholdSell) * limit.MaxPositionValue
	default:
		// Neutral territory leaves the existing position untouched.
		return action, nil
	}

	currentValue := position.MarketValue(price)

	delta := targetValue - currentValue
	if math.Abs(delta) > limit.MaxPositionChange {
		delta = math.Copysign(limit.MaxPositionChange, delta)
	}

	quantity := int64(math.Floor(math.Abs(delta) / price))
	if quantity == 0 {
		return action, nil
	}

	switch {
	case delta > 0 && position.Quantity < 0:
		// Closing a short comes first; any remaining long intent waits for
		// the next date.
		action.Dir = types.DirectionCover
		action.Quantity = min(quantity, -position.Quantity)
	case delta > 0:
		action.Dir = types.DirectionBuy
		action.Quantity = quantity
	case position.Quantity > 0:
		action.Dir = types.DirectionSell
		action.Quantity = min(quantity, position.Quantity)
	default:
		action.Dir = types.DirectionShort
		action.Quantity = quantity
	}

	if action.Quantity == 0 {
		return types.Action{Symbol: symbol, Date: date, Dir: types.DirectionHold, Quantity: 0, Score: score}, nil
	}

	return action, nil
}

// sizeFraction interpolates linearly between zero size at the threshold and
// full size at |score| = 1.
func (e *Engine) sizeFraction(score, threshold float64) float64 {
	if threshold >= 1 {
		return 0
	}

	fraction := (score - threshold) / (1 - threshold)

	return math.Min(math.Max(fraction, 0), 1)
}
