package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TypesTestSuite struct {
	suite.Suite
}

func TestTypesSuite(t *testing.T) {
	suite.Run(t, new(TypesTestSuite))
}

func (suite *TypesTestSuite) TestLeanValue() {
	suite.Equal(1.0, LeanBullish.Value())
	suite.Equal(-1.0, LeanBearish.Value())
	suite.Equal(0.0, LeanNeutral.Value())
}

func (suite *TypesTestSuite) TestSignalMatches() {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sig := Signal{
		SourceID:   "momentum",
		Symbol:     "AAPL",
		Date:       date,
		Lean:       LeanBullish,
		Confidence: 0.8,
	}

	suite.True(sig.Matches("AAPL", date))
	// Intraday timestamps on the same day still match.
	suite.True(sig.Matches("AAPL", date.Add(15*time.Hour)))
	suite.False(sig.Matches("MSFT", date))
	suite.False(sig.Matches("AAPL", date.AddDate(0, 0, 1)))
}

func (suite *TypesTestSuite) TestSignalValidate() {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sig := Signal{
		SourceID:   "momentum",
		Symbol:     "AAPL",
		Date:       date,
		Lean:       Lean("sideways"),
		Confidence: 0.5,
	}
	suite.Error(sig.Validate())

	sig.Lean = LeanNeutral
	suite.NoError(sig.Validate())

	sig.Confidence = 1.5
	suite.Error(sig.Validate())
}

func (suite *TypesTestSuite) TestHoldAction() {
	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	a := Hold("AAPL", date)
	suite.True(a.IsHold())
	suite.NoError(a.Validate())

	buy := Action{Symbol: "AAPL", Date: date, Dir: DirectionBuy, Quantity: 10}
	suite.False(buy.IsHold())

	zeroBuy := Action{Symbol: "AAPL", Date: date, Dir: DirectionBuy, Quantity: 0}
	suite.True(zeroBuy.IsHold())
}

func (suite *TypesTestSuite) TestPositionMarketValue() {
	long := Position{Symbol: "AAPL", Quantity: 100, AverageCost: 90}
	suite.InDelta(10000.0, long.MarketValue(100), 1e-9)
	suite.InDelta(1000.0, long.UnrealizedPnL(100), 1e-9)

	short := Position{Symbol: "AAPL", Quantity: -50, AverageCost: 100}
	suite.True(short.IsShort())
	suite.InDelta(-4500.0, short.MarketValue(90), 1e-9)
	suite.InDelta(500.0, short.UnrealizedPnL(90), 1e-9)
}

func (suite *TypesTestSuite) TestWeekdayCalendar() {
	// 2024-03-01 is a Friday.
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	cal := WeekdayCalendar(start, end)
	suite.Len(cal, 6)
	suite.Equal(start, cal[0])

	for _, d := range cal {
		suite.NotEqual(time.Saturday, d.Weekday())
		suite.NotEqual(time.Sunday, d.Weekday())
	}
}

func (suite *TypesTestSuite) TestCalendarFromDates() {
	d1 := time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC) // same day as d1

	cal := CalendarFromDates([]time.Time{d1, d2, d3})
	suite.Len(cal, 2)
	suite.Equal(Day(d2), cal[0])
	suite.Equal(Day(d1), cal[1])
}

func (suite *TypesTestSuite) TestCalendarClamp() {
	cal := WeekdayCalendar(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC),
	)
	clamped := cal.Clamp(
		time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	)
	suite.Len(clamped, 5)
}

func (suite *TypesTestSuite) TestSnapshotSymbols() {
	snap := LedgerSnapshot{
		Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Cash: 1000,
		Positions: map[string]Position{
			"MSFT": {Symbol: "MSFT", Quantity: 1},
			"AAPL": {Symbol: "AAPL", Quantity: 2},
		},
	}

	suite.Equal([]string{"AAPL", "MSFT"}, snap.Symbols())
	suite.Equal(int64(2), snap.Position("AAPL").Quantity)
	suite.Equal(int64(0), snap.Position("GOOG").Quantity)
}
