// Package pricing provides point-in-time access to historical daily bars.
// Every accessor takes an as-of date and never returns data beyond it, which
// is how the simulation keeps its no-look-ahead guarantee.
package pricing

import (
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantfold/hedgesim/internal/types"
)

// Source is the price provider consumed by the simulation loop and the
// signal agents.
type Source interface {
	// Price returns the closing price for symbol on date, or None when the
	// symbol has no bar for that date (a data gap, not an error).
	Price(symbol string, date time.Time) (optional.Option[float64], error)
	// History returns up to maxBars daily bars for symbol with time <= asOf,
	// in ascending time order. maxBars <= 0 means no limit.
	History(symbol string, asOf time.Time, maxBars int) ([]types.Bar, error)
	// Dates returns the distinct trading dates available between start and
	// end inclusive, ascending. Used to build a data-driven calendar.
	Dates(start, end time.Time) ([]time.Time, error)
	// Close releases any underlying resources.
	Close() error
}
