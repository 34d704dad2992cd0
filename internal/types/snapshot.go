package types

import (
	"sort"
	"time"
)

// LedgerSnapshot is the point-in-time state of the ledger after a simulated
// date has been applied. Snapshots are appended, never mutated; the ordered
// sequence forms the equity curve.
//
// Invariant: TotalEquity = Cash + sum over positions of qty * price(date).
type LedgerSnapshot struct {
	Date        time.Time           `yaml:"date" json:"date"`
	Cash        float64             `yaml:"cash" json:"cash"`
	Positions   map[string]Position `yaml:"positions" json:"positions"`
	TotalEquity float64             `yaml:"total_equity" json:"total_equity"`
	// RealizedPnL is the cumulative realized profit/loss up to this date.
	// Recorded for reporting; not part of the equity invariant.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
}

// Symbols returns the held symbols in lexical order. The fixed order keeps
// downstream iteration deterministic.
func (s *LedgerSnapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.Positions))
	for symbol := range s.Positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// Position returns the held position for symbol, or a zero position if none.
func (s *LedgerSnapshot) Position(symbol string) Position {
	if p, ok := s.Positions[symbol]; ok {
		return p
	}

	return Position{Symbol: symbol, Quantity: 0, AverageCost: 0}
}
