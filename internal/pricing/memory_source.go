package pricing

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"

	"github.com/quantfold/hedgesim/internal/types"
)

// MemorySource serves bars from memory. Used in tests and as the backing for
// small fixture datasets.
type MemorySource struct {
	bars map[string][]types.Bar
}

// NewMemorySource builds a source from a set of bars.
func NewMemorySource(bars []types.Bar) *MemorySource {
	s := &MemorySource{bars: make(map[string][]types.Bar)}
	for _, bar := range bars {
		s.bars[bar.Symbol] = append(s.bars[bar.Symbol], bar)
	}

	for symbol := range s.bars {
		sort.Slice(s.bars[symbol], func(i, j int) bool {
			return s.bars[symbol][i].Time.Before(s.bars[symbol][j].Time)
		})
	}

	return s
}

// SetBar inserts or replaces the bar for the symbol/date. Tests use this to
// perturb data after a given date.
func (s *MemorySource) SetBar(bar types.Bar) {
	day := types.Day(bar.Time)
	existing := s.bars[bar.Symbol]

	for i, b := range existing {
		if types.SameDay(b.Time, day) {
			existing[i] = bar

			return
		}
	}

	s.bars[bar.Symbol] = append(existing, bar)
	sort.Slice(s.bars[bar.Symbol], func(i, j int) bool {
		return s.bars[bar.Symbol][i].Time.Before(s.bars[bar.Symbol][j].Time)
	})
}

// Price implements Source.
func (s *MemorySource) Price(symbol string, date time.Time) (optional.Option[float64], error) {
	for _, bar := range s.bars[symbol] {
		if types.SameDay(bar.Time, date) {
			return optional.Some(bar.Close), nil
		}
	}

	return optional.None[float64](), nil
}

// History implements Source.
func (s *MemorySource) History(symbol string, asOf time.Time, maxBars int) ([]types.Bar, error) {
	var bars []types.Bar

	cutoff := types.Day(asOf).AddDate(0, 0, 1)
	for _, bar := range s.bars[symbol] {
		if bar.Time.Before(cutoff) {
			bars = append(bars, bar)
		}
	}

	if maxBars > 0 && len(bars) > maxBars {
		bars = bars[len(bars)-maxBars:]
	}

	return bars, nil
}

// Dates implements Source.
func (s *MemorySource) Dates(start, end time.Time) ([]time.Time, error) {
	var all []time.Time
	for _, bars := range s.bars {
		for _, bar := range bars {
			all = append(all, bar.Time)
		}
	}

	return types.CalendarFromDates(all).Clamp(start, end), nil
}

// Close implements Source.
func (s *MemorySource) Close() error {
	return nil
}
