// Package ledger is the authoritative record of cash and positions. The
// in-memory Ledger enforces the simulation invariants (cash never negative,
// sells and covers never exceed holdings) by clipping oversized actions
// rather than failing the run; the DuckDB-backed Journal records every fill
// and snapshot for reporting.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Fill is the executed outcome of applying one action. Quantity may be lower
// than the action's quantity when clipping degraded it.
type Fill struct {
	ID          string          `yaml:"id" json:"id" csv:"id"`
	Symbol      string          `yaml:"symbol" json:"symbol" csv:"symbol"`
	Date        time.Time       `yaml:"date" json:"date" csv:"date"`
	Dir         types.Direction `yaml:"direction" json:"direction" csv:"direction"`
	Quantity    int64           `yaml:"quantity" json:"quantity" csv:"quantity"`
	Price       float64         `yaml:"price" json:"price" csv:"price"`
	RealizedPnL float64         `yaml:"realized_pnl" json:"realized_pnl" csv:"realized_pnl"`
	// Clipped is true when the executed quantity is smaller than requested.
	Clipped bool `yaml:"clipped" json:"clipped" csv:"clipped"`
}

// Ledger holds cash and open positions. It is not safe for concurrent
// mutation; the simulation loop applies actions from a single goroutine in a
// fixed symbol order.
type Ledger struct {
	cash        float64
	positions   map[string]types.Position
	realizedPnL float64
	log         *logger.Logger
}

// NewLedger returns a ledger seeded with the starting cash.
func NewLedger(startCash float64, log *logger.Logger) (*Ledger, error) {
	if startCash < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidCapital, "start capital must be non-negative, got %f", startCash)
	}

	return &Ledger{
		cash:        startCash,
		positions:   make(map[string]types.Position),
		realizedPnL: 0,
		log:         log,
	}, nil
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	return l.cash
}

// Position returns the current position for symbol, zero-valued if flat.
func (l *Ledger) Position(symbol string) types.Position {
	if p, ok := l.positions[symbol]; ok {
		return p
	}

	return types.Position{Symbol: symbol, Quantity: 0, AverageCost: 0}
}

// Apply executes an action at the given price and mutates cash and
// positions. Oversized actions are clipped down (a buy to the affordable
// quantity, a sell to the held longs, a cover to the held shorts and the
// affordable cash); an action clipped to zero degrades to a hold fill.
// Errors are returned only for invariant breaches that clipping cannot
// explain, and those abort the run.
func (l *Ledger) Apply(action types.Action, price float64, date time.Time) (Fill, error) {
	fill := Fill{
		ID:       uuid.New().String(),
		Symbol:   action.Symbol,
		Date:     date,
		Dir:      action.Dir,
		Quantity: 0,
		Price:    price,
	}

	if action.IsHold() {
		fill.Dir = types.DirectionHold

		return fill, nil
	}

	if price <= 0 {
		return fill, errors.Newf(errors.ErrCodeMissingPrice, "no usable execution price for %s", action.Symbol)
	}

	position := l.Position(action.Symbol)

	var err error

	switch action.Dir {
	case types.DirectionBuy:
		err = l.applyBuy(&fill, action, position, price)
	case types.DirectionSell:
		err = l.applySell(&fill, action, position, price)
	case types.DirectionShort:
		err = l.applyShort(&fill, action, position, price)
	case types.DirectionCover:
		err = l.applyCover(&fill, action, position, price)
	default:
		fill.Dir = types.DirectionHold
	}

	if err != nil {
		return fill, err
	}

	if l.cash < 0 {
		// Unreachable given the clipping above; fatal if it ever happens.
		return fill, errors.Newf(errors.ErrCodeNegativeCash, "cash went negative applying %s %s: %f", action.Dir, action.Symbol, l.cash)
	}

	if fill.Clipped {
		l.log.Debug("action clipped",
			zap.String("symbol", action.Symbol),
			zap.String("direction", string(action.Dir)),
			zap.Int64("requested", action.Quantity),
			zap.Int64("executed", fill.Quantity),
		)
	}

	return fill, nil
}

func (l *Ledger) applyBuy(fill *Fill, action types.Action, position types.Position, price float64) error {
	if position.Quantity < 0 {
		return errors.Newf(errors.ErrCodeOvercoveredShort, "buy issued for %s while short %d shares", action.Symbol, -position.Quantity)
	}

	quantity := action.Quantity

	if affordable := int64(l.cash / price); quantity > affordable {
		quantity = affordable
		fill.Clipped = true
	}

	if quantity <= 0 {
		fill.Dir = types.DirectionHold
		fill.Clipped = true

		return nil
	}

	cost := float64(quantity) * price
	l.cash -= cost

	position.AverageCost = weightedCost(position.Quantity, position.AverageCost, quantity, price)
	position.Quantity += quantity
	l.positions[action.Symbol] = position

	fill.Quantity = quantity

	return nil
}

func (l *Ledger) applySell(fill *Fill, action types.Action, position types.Position, price float64) error {
	if position.Quantity < 0 {
		return errors.Newf(errors.ErrCodeOversoldPosition, "sell issued for %s while short", action.Symbol)
	}

	quantity := action.Quantity
	if quantity > position.Quantity {
		quantity = position.Quantity
		fill.Clipped = true
	}

	if quantity <= 0 {
		fill.Dir = types.DirectionHold
		fill.Clipped = true

		return nil
	}

	l.cash += float64(quantity) * price

	pnl := realized(price, position.AverageCost, quantity)
	l.realizedPnL += pnl
	fill.RealizedPnL = pnl

	position.Quantity -= quantity
	if position.Quantity == 0 {
		delete(l.positions, action.Symbol)
	} else {
		l.positions[action.Symbol] = position
	}

	fill.Quantity = quantity

	return nil
}

func (l *Ledger) applyShort(fill *Fill, action types.Action, position types.Position, price float64) error {
	if position.Quantity > 0 {
		return errors.Newf(errors.ErrCodeOversoldPosition, "short issued for %s while long %d shares", action.Symbol, position.Quantity)
	}

	quantity := action.Quantity

	// Short proceeds are credited immediately; the open obligation is the
	// negative quantity marked at the weighted entry price.
	l.cash += float64(quantity) * price

	position.AverageCost = weightedCost(-position.Quantity, position.AverageCost, quantity, price)
	position.Quantity -= quantity
	l.positions[action.Symbol] = position

	fill.Quantity = quantity

	return nil
}

func (l *Ledger) applyCover(fill *Fill, action types.Action, position types.Position, price float64) error {
	if position.Quantity > 0 {
		return errors.Newf(errors.ErrCodeOvercoveredShort, "cover issued for %s while long", action.Symbol)
	}

	quantity := action.Quantity

	if held := -position.Quantity; quantity > held {
		quantity = held
		fill.Clipped = true
	}

	if affordable := int64(l.cash / price); quantity > affordable {
		quantity = affordable
		fill.Clipped = true
	}

	if quantity <= 0 {
		fill.Dir = types.DirectionHold
		fill.Clipped = true

		return nil
	}

	l.cash -= float64(quantity) * price

	pnl := realized(position.AverageCost, price, quantity)
	l.realizedPnL += pnl
	fill.RealizedPnL = pnl

	position.Quantity += quantity
	if position.Quantity == 0 {
		delete(l.positions, action.Symbol)
	} else {
		l.positions[action.Symbol] = position
	}

	fill.Quantity = quantity

	return nil
}

// Snapshot values all open positions with the supplied price lookup and
// recomputes total equity. It never mutates cash or quantities. The lookup
// must return the last known price when the date has no fresh bar, so
// carried-forward valuation is the caller's policy.
func (l *Ledger) Snapshot(date time.Time, priceFor func(symbol string) float64) types.LedgerSnapshot {
	positions := make(map[string]types.Position, len(l.positions))
	equity := decimal.NewFromFloat(l.cash)

	for symbol, position := range l.positions {
		positions[symbol] = position
		equity = equity.Add(decimal.NewFromInt(position.Quantity).Mul(decimal.NewFromFloat(priceFor(symbol))))
	}

	totalEquity, _ := equity.Float64()

	return types.LedgerSnapshot{
		Date:        date,
		Cash:        l.cash,
		Positions:   positions,
		TotalEquity: totalEquity,
		RealizedPnL: l.realizedPnL,
	}
}

// weightedCost folds a new lot into the average entry cost. heldQty is the
// absolute held quantity before the new lot.
func weightedCost(heldQty int64, heldAvg float64, addQty int64, price float64) float64 {
	if heldQty <= 0 {
		return price
	}

	held := decimal.NewFromInt(heldQty).Mul(decimal.NewFromFloat(heldAvg))
	added := decimal.NewFromInt(addQty).Mul(decimal.NewFromFloat(price))
	avg, _ := held.Add(added).Div(decimal.NewFromInt(heldQty + addQty)).Float64()

	return avg
}

// realized computes (exit - entry) * qty with decimal arithmetic.
func realized(exit, entry float64, quantity int64) float64 {
	pnl, _ := decimal.NewFromFloat(exit).
		Sub(decimal.NewFromFloat(entry)).
		Mul(decimal.NewFromInt(quantity)).
		Float64()

	return pnl
}
