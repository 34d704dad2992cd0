package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantfold/hedgesim/pkg/errors"
)

// Lean is the directional opinion carried by a signal.
type Lean string

const (
	LeanBullish Lean = "bullish"
	LeanBearish Lean = "bearish"
	LeanNeutral Lean = "neutral"
)

// Value maps the lean onto the numeric axis used for aggregation:
// bullish +1, neutral 0, bearish -1.
func (l Lean) Value() float64 {
	switch l {
	case LeanBullish:
		return 1
	case LeanBearish:
		return -1
	default:
		return 0
	}
}

// Signal is a single analysis source's opinion for one symbol on one date.
// Signals are immutable once produced; multiple signals per symbol per date
// are expected, one per source.
type Signal struct {
	SourceID   string    `yaml:"source_id" json:"source_id" csv:"source_id" validate:"required"`
	Symbol     string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Date       time.Time `yaml:"date" json:"date" csv:"date" validate:"required"`
	Lean       Lean      `yaml:"lean" json:"lean" csv:"lean" validate:"required,oneof=bullish bearish neutral"`
	Confidence float64   `yaml:"confidence" json:"confidence" csv:"confidence" validate:"gte=0,lte=1"`
	Rationale  string    `yaml:"rationale" json:"rationale" csv:"rationale"`
}

// Validate checks the signal's structural constraints.
func (s *Signal) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid signal", err)
	}

	return nil
}

// Matches reports whether the signal belongs to the requested symbol and
// date. The decision engine rejects mismatched signals instead of letting
// them corrupt the score.
func (s *Signal) Matches(symbol string, date time.Time) bool {
	return s.Symbol == symbol && SameDay(s.Date, date)
}
