package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/quantfold/hedgesim/internal/types"
)

// BarGenerator produces synthetic daily bars for testing and benchmarking.
// A fixed seed makes the output reproducible.
type BarGenerator struct {
	rng *rand.Rand
}

// NewBarGenerator creates a generator seeded for reproducible output.
func NewBarGenerator(seed int64) *BarGenerator {
	return &BarGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures a generated daily series.
type GeneratorConfig struct {
	// Symbol is the ticker the bars are labeled with.
	Symbol string
	// StartDate is the first trading date; weekends are skipped.
	StartDate time.Time
	// Days is the number of trading days to generate.
	Days int
	// InitialPrice is the first open.
	InitialPrice float64
	// Volatility is the typical daily move (0.02 = 2%).
	Volatility float64
	// Trend is the total drift applied across the whole series.
	Trend float64
	// VolumeBase is the average daily volume.
	VolumeBase float64
	// VolumeVariance scales random volume variation (0 to 1).
	VolumeVariance float64
}

// DefaultGeneratorConfig returns one year of mildly volatile daily bars.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:         "TEST",
		StartDate:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Days:           252,
		InitialPrice:   100.0,
		Volatility:     0.02,
		Trend:          0.0,
		VolumeBase:     1000000,
		VolumeVariance: 0.3,
	}
}

// Generate builds a daily series following geometric Brownian motion and
// skipping weekends, so the dates line up with a weekday calendar.
func (g *BarGenerator) Generate(config GeneratorConfig) []types.Bar {
	bars := make([]types.Bar, 0, config.Days)
	price := config.InitialPrice
	date := types.Day(config.StartDate)

	for len(bars) < config.Days {
		if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			date = date.AddDate(0, 0, 1)

			continue
		}

		open := price

		// Box-Muller transform for a normally distributed daily move.
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Days)

		close := open * (1 + config.Volatility*z + drift)
		if close <= 0 {
			close = open * 0.99
		}

		highExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(g.rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, close) + highExtension

		low := math.Min(open, close) - lowExtension
		if low <= 0 {
			low = math.Min(open, close) * 0.99
		}

		volume := config.VolumeBase * (1 + (g.rng.Float64()*2-1)*config.VolumeVariance)
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		bars = append(bars, types.Bar{
			Symbol: config.Symbol,
			Time:   date,
			Open:   roundToDecimals(open, 4),
			High:   roundToDecimals(high, 4),
			Low:    roundToDecimals(low, 4),
			Close:  roundToDecimals(close, 4),
			Volume: roundToDecimals(volume, 0),
		})

		price = close
		date = date.AddDate(0, 0, 1)
	}

	return bars
}

// GenerateMultiSymbol builds series for several symbols with per-symbol
// variation in starting price and volatility.
func (g *BarGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.Bar {
	var all []types.Bar

	for _, symbol := range symbols {
		config := baseConfig
		config.Symbol = symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + g.rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + g.rng.Float64()*0.4)

		all = append(all, g.Generate(config)...)
	}

	return all
}

// GenerateYear is a convenience for one reproducible trading year.
func GenerateYear(symbol string) []types.Bar {
	gen := NewBarGenerator(42)
	config := DefaultGeneratorConfig()
	config.Symbol = symbol

	return gen.Generate(config)
}

func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
