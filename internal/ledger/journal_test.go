package ledger

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/types"
)

type JournalTestSuite struct {
	suite.Suite
	journal *Journal
	date    time.Time
}

func TestJournalSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}

func (suite *JournalTestSuite) SetupSuite() {
	journal, err := NewJournal(logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.journal = journal
}

func (suite *JournalTestSuite) TearDownSuite() {
	if suite.journal != nil {
		suite.journal.Close()
	}
}

func (suite *JournalTestSuite) SetupTest() {
	suite.Require().NoError(suite.journal.Initialize())
	suite.date = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
}

func (suite *JournalTestSuite) TearDownTest() {
	suite.Require().NoError(suite.journal.Cleanup())
}

func (suite *JournalTestSuite) fill(dir types.Direction, qty int64, price, pnl float64, day int) Fill {
	return Fill{
		ID:          fmt.Sprintf("fill-%s-%d", dir, day),
		Symbol:      "AAPL",
		Date:        suite.date.AddDate(0, 0, day),
		Dir:         dir,
		Quantity:    qty,
		Price:       price,
		RealizedPnL: pnl,
	}
}

func (suite *JournalTestSuite) snapshot(day int, equity float64) types.LedgerSnapshot {
	return types.LedgerSnapshot{
		Date:        suite.date.AddDate(0, 0, day),
		Cash:        equity,
		Positions:   map[string]types.Position{},
		TotalEquity: equity,
	}
}

func (suite *JournalTestSuite) TestHoldFillsAreNotRecorded() {
	suite.Require().NoError(suite.journal.RecordFill(Fill{ID: "h", Dir: types.DirectionHold}))

	stats, err := suite.journal.Stats()
	suite.Require().NoError(err)
	suite.Zero(stats.NumberOfFills)
	suite.Zero(stats.WinRate)
	suite.Zero(stats.RealizedPnL)
}

func (suite *JournalTestSuite) TestStatsWithNoFillsAtAll() {
	// An all-hold run records snapshots but never a fill; stats must come
	// back zeroed, not fail on empty aggregates.
	suite.Require().NoError(suite.journal.RecordSnapshot(suite.snapshot(0, 100000)))
	suite.Require().NoError(suite.journal.RecordSnapshot(suite.snapshot(1, 100000)))

	stats, err := suite.journal.Stats()
	suite.Require().NoError(err)
	suite.Equal(2, stats.Days)
	suite.Zero(stats.NumberOfFills)
	suite.Zero(stats.WinRate)
	suite.Zero(stats.RealizedPnL)
	suite.Zero(stats.TotalReturn)
}

func (suite *JournalTestSuite) TestStatsComputedFromJournal() {
	suite.Require().NoError(suite.journal.RecordFill(suite.fill(types.DirectionBuy, 100, 100, 0, 0)))
	suite.Require().NoError(suite.journal.RecordFill(suite.fill(types.DirectionSell, 100, 110, 1000, 1)))
	suite.Require().NoError(suite.journal.RecordFill(suite.fill(types.DirectionShort, 50, 110, 0, 2)))
	suite.Require().NoError(suite.journal.RecordFill(suite.fill(types.DirectionCover, 50, 120, -500, 3)))

	for day, equity := range []float64{100000, 101000, 101000, 100500} {
		suite.Require().NoError(suite.journal.RecordSnapshot(suite.snapshot(day, equity)))
	}

	stats, err := suite.journal.Stats()
	suite.Require().NoError(err)

	suite.Equal(4, stats.Days)
	suite.Equal(4, stats.NumberOfFills)
	suite.InDelta(100500.0, stats.FinalEquity, 1e-9)
	suite.InDelta(0.005, stats.TotalReturn, 1e-9)
	suite.InDelta(500.0, stats.RealizedPnL, 1e-9)
	// One winning close out of two.
	suite.InDelta(0.5, stats.WinRate, 1e-9)
	// Peak 101000 to trough 100500.
	suite.InDelta(100500.0/101000.0-1, stats.MaxDrawdown, 1e-9)
}

func (suite *JournalTestSuite) TestWriteExportsParquet() {
	tmpDir := suite.T().TempDir()

	suite.Require().NoError(suite.journal.RecordFill(suite.fill(types.DirectionBuy, 10, 100, 0, 0)))

	snap := suite.snapshot(0, 100000)
	snap.Positions["AAPL"] = types.Position{Symbol: "AAPL", Quantity: 10, AverageCost: 100}
	suite.Require().NoError(suite.journal.RecordSnapshot(snap))

	suite.Require().NoError(suite.journal.Write(tmpDir))

	fillsPath := filepath.Join(tmpDir, "fills.parquet")
	equityPath := filepath.Join(tmpDir, "equity.parquet")
	positionsPath := filepath.Join(tmpDir, "positions.parquet")

	suite.Require().FileExists(fillsPath)
	suite.Require().FileExists(equityPath)
	suite.Require().FileExists(positionsPath)

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)
	defer db.Close()

	var count int
	err = db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", fillsPath)).Scan(&count)
	suite.Require().NoError(err)
	suite.Equal(1, count)

	err = db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM read_parquet('%s')", positionsPath)).Scan(&count)
	suite.Require().NoError(err)
	suite.Equal(1, count)
}
