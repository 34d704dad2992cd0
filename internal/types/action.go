package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantfold/hedgesim/pkg/errors"
)

// Direction is the discrete trade decision for a symbol on a date.
type Direction string

const (
	DirectionBuy   Direction = "buy"
	DirectionSell  Direction = "sell"
	DirectionShort Direction = "short"
	DirectionCover Direction = "cover"
	DirectionHold  Direction = "hold"
)

// Action is produced once per symbol per simulated date and never mutated;
// a new Action on a later date supersedes it.
type Action struct {
	Symbol   string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Date     time.Time `yaml:"date" json:"date" csv:"date" validate:"required"`
	Dir      Direction `yaml:"direction" json:"direction" csv:"direction" validate:"required,oneof=buy sell short cover hold"`
	Quantity int64     `yaml:"quantity" json:"quantity" csv:"quantity" validate:"gte=0"`
	// Score is the aggregated signal score the action was derived from,
	// kept for the report surface.
	Score float64 `yaml:"score" json:"score" csv:"score"`
}

// Hold returns the canonical no-op action for a symbol/date.
func Hold(symbol string, date time.Time) Action {
	return Action{
		Symbol:   symbol,
		Date:     date,
		Dir:      DirectionHold,
		Quantity: 0,
		Score:    0,
	}
}

// IsHold reports whether the action changes nothing.
func (a *Action) IsHold() bool {
	return a.Dir == DirectionHold || a.Quantity == 0
}

// Validate checks the action's structural constraints.
func (a *Action) Validate() error {
	validate := validator.New()
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid action", err)
	}

	return nil
}
