// Package risk converts account state into bounded per-symbol exposure
// limits. The manager is pure: limits are a function of the snapshot and the
// configuration, with no side effects, so decisions replay deterministically.
package risk

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Limit bounds a single symbol's exposure for one date. It is valid only for
// the date it was computed for.
type Limit struct {
	Symbol string    `yaml:"symbol" json:"symbol"`
	Date   time.Time `yaml:"date" json:"date"`
	// MaxPositionValue is the largest absolute market value the symbol's
	// position may reach.
	MaxPositionValue float64 `yaml:"max_position_value" json:"max_position_value" validate:"gte=0"`
	// MaxPositionChange is the largest absolute value change permitted for
	// the symbol within the date (turnover limit).
	MaxPositionChange float64 `yaml:"max_position_change" json:"max_position_change" validate:"gte=0"`
}

// Config holds the risk fractions. Both are fractions of total equity.
type Config struct {
	// MaxPositionPct caps any single symbol at this fraction of equity.
	MaxPositionPct float64 `yaml:"max_position_pct_of_equity" json:"max_position_pct_of_equity" validate:"gte=0,lte=1"`
	// MaxTurnoverPct caps the per-symbol per-day position value change.
	MaxTurnoverPct float64 `yaml:"max_daily_turnover_pct" json:"max_daily_turnover_pct" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the stock risk fractions: 20% of equity per symbol,
// 10% daily turnover.
func DefaultConfig() Config {
	return Config{
		MaxPositionPct: 0.2,
		MaxTurnoverPct: 0.1,
	}
}

// Validate checks that both fractions are inside [0, 1].
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPercentage, "risk fractions must be within [0,1]", err)
	}

	return nil
}

// Manager computes exposure limits from ledger snapshots.
type Manager struct {
	config Config
}

// NewManager validates the configuration and returns a manager. Invalid
// fractions fail here, before any date is simulated.
func NewManager(config Config) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Manager{config: config}, nil
}

// ComputeLimits derives the exposure limit for one symbol on one date from
// the given snapshot. If equity is non-positive (ruin) both limits collapse
// to zero, which forces the decision engine to hold.
func (m *Manager) ComputeLimits(symbol string, date time.Time, snap types.LedgerSnapshot) Limit {
	equity := snap.TotalEquity
	if equity <= 0 {
		return Limit{
			Symbol:            symbol,
			Date:              date,
			MaxPositionValue:  0,
			MaxPositionChange: 0,
		}
	}

	return Limit{
		Symbol:            symbol,
		Date:              date,
		MaxPositionValue:  m.config.MaxPositionPct * equity,
		MaxPositionChange: m.config.MaxTurnoverPct * equity,
	}
}
