package types

import "time"

// Bar is one daily OHLCV bar for a symbol.
type Bar struct {
	Symbol string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
}

// Day truncates t to midnight UTC. All simulation dates are day-granular.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
