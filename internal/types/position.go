package types

import (
	"github.com/shopspring/decimal"
)

// Position represents current holdings of a symbol. Quantity is negative for
// shorts. Positions are owned exclusively by the ledger and removed from its
// holdings map when quantity returns to zero.
type Position struct {
	Symbol      string  `yaml:"symbol" json:"symbol" csv:"symbol"`
	Quantity    int64   `yaml:"quantity" json:"quantity" csv:"quantity"`
	AverageCost float64 `yaml:"average_cost" json:"average_cost" csv:"average_cost"`
}

// IsShort reports whether the position is a short position.
func (p *Position) IsShort() bool {
	return p.Quantity < 0
}

// MarketValue is the signed mark-to-market value of the position at price.
func (p *Position) MarketValue(price float64) float64 {
	v, _ := decimal.NewFromInt(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return v
}

// UnrealizedPnL is the profit or loss if the position were closed at price.
// For longs this is (price - avg) * qty; the sign convention on Quantity
// makes the same expression hold for shorts.
func (p *Position) UnrealizedPnL(price float64) float64 {
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.AverageCost))
	v, _ := diff.Mul(decimal.NewFromInt(p.Quantity)).Float64()

	return v
}
