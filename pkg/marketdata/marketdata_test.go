package marketdata

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/pricing"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// fakeProvider returns canned bars and records the symbols requested.
type fakeProvider struct {
	bars      map[string][]types.Bar
	err       error
	requested []string
}

func (p *fakeProvider) DailyBars(_ context.Context, symbol string, _, _ time.Time) ([]types.Bar, error) {
	p.requested = append(p.requested, symbol)
	if p.err != nil {
		return nil, p.err
	}

	return p.bars[symbol], nil
}

type MarketDataTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func TestMarketDataSuite(t *testing.T) {
	suite.Run(t, new(MarketDataTestSuite))
}

func (suite *MarketDataTestSuite) SetupTest() {
	suite.log = logger.NewNopLogger()
}

func (suite *MarketDataTestSuite) bar(symbol string, day int, close float64) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 1000,
	}
}

func (suite *MarketDataTestSuite) config() ClientConfig {
	config := DefaultClientConfig()
	config.DataPath = suite.T().TempDir()
	config.PolygonAPIKey = "test-key"

	return config
}

func (suite *MarketDataTestSuite) TestWriterRoundTrip() {
	path := filepath.Join(suite.T().TempDir(), "bars.parquet")
	writer := NewDuckDBWriter(path)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	suite.Require().NoError(writer.Write(suite.bar("AAPL", 2, 185.5)))
	suite.Require().NoError(writer.Write(suite.bar("AAPL", 3, 186.25)))

	out, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(path, out)

	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)

	defer db.Close()

	var count int

	suite.Require().NoError(db.QueryRow(`SELECT COUNT(*) FROM read_parquet('`+path+`')`).Scan(&count))
	suite.Equal(2, count)

	var close float64

	suite.Require().NoError(db.QueryRow(`SELECT close FROM read_parquet('`+path+`') ORDER BY time LIMIT 1`).Scan(&close))
	suite.Equal(185.5, close)
}

func (suite *MarketDataTestSuite) TestWriteBeforeInitializeFails() {
	writer := NewDuckDBWriter(filepath.Join(suite.T().TempDir(), "bars.parquet"))
	err := writer.Write(suite.bar("AAPL", 2, 100))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeQueryFailed))
}

func (suite *MarketDataTestSuite) TestClientWritesReadableParquet() {
	provider := &fakeProvider{
		bars: map[string][]types.Bar{
			"AAPL": {suite.bar("AAPL", 2, 185.5), suite.bar("AAPL", 3, 186.25)},
			"MSFT": {suite.bar("MSFT", 2, 370)},
		},
	}

	var progress []int

	client, err := NewClientWithProvider(suite.config(), provider, suite.log, func(completed, total int, _ string) {
		suite.Equal(2, total)
		progress = append(progress, completed)
	})
	suite.Require().NoError(err)

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	path, err := client.Download(context.Background(), []string{"AAPL", "MSFT"}, start, end)
	suite.Require().NoError(err)
	suite.Equal([]string{"AAPL", "MSFT"}, provider.requested)
	suite.Equal([]int{1, 2}, progress)

	// The simulation's bar source must be able to read the output.
	source, err := pricing.NewDuckDBSource(suite.log)
	suite.Require().NoError(err)

	defer source.Close()

	suite.Require().NoError(source.Initialize(path))

	price, err := source.Price("MSFT", start)
	suite.Require().NoError(err)
	suite.Require().True(price.IsSome())
	suite.Equal(370.0, price.Unwrap())
}

func (suite *MarketDataTestSuite) TestClientPropagatesProviderError() {
	provider := &fakeProvider{
		err: errors.New(errors.ErrCodeProviderRateLimited, "daily request budget of 5 exhausted"),
	}

	client, err := NewClientWithProvider(suite.config(), provider, suite.log, nil)
	suite.Require().NoError(err)

	_, err = client.Download(context.Background(), []string{"AAPL"}, time.Now().AddDate(0, -1, 0), time.Now())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderRateLimited))
}

func (suite *MarketDataTestSuite) TestClientRejectsEmptySymbols() {
	client, err := NewClientWithProvider(suite.config(), &fakeProvider{}, suite.log, nil)
	suite.Require().NoError(err)

	_, err = client.Download(context.Background(), nil, time.Now().AddDate(0, -1, 0), time.Now())
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoSymbols))
}

func (suite *MarketDataTestSuite) TestClientConfigValidation() {
	config := DefaultClientConfig()
	// Missing data path and API key.
	_, err := NewClient(config, suite.log, nil)
	suite.Require().Error(err)
	suite.True(errors.IsFatal(err))
}

func (suite *MarketDataTestSuite) TestBudgetDailyCapExhausts() {
	budget := NewBudget(600, 3)
	current := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	budget.now = func() time.Time { return current }

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		suite.Require().NoError(budget.Acquire(ctx))
	}

	suite.Equal(0, budget.Remaining())

	err := budget.Acquire(ctx)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderRateLimited))

	// The window rolls: a day later the budget is fresh.
	current = current.Add(25 * time.Hour)
	suite.Equal(3, budget.Remaining())
	suite.Require().NoError(budget.Acquire(ctx))
}

func (suite *MarketDataTestSuite) TestBudgetHonorsCancellation() {
	// One request per minute with the burst already spent forces a wait;
	// cancellation must interrupt it.
	budget := NewBudget(1, 100)
	ctx := context.Background()
	suite.Require().NoError(budget.Acquire(ctx))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	remaining := budget.Remaining()
	err := budget.Acquire(cancelled)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeProviderRateLimited))

	// The interrupted acquire made no request, so the daily budget is intact.
	suite.Equal(remaining, budget.Remaining())
}
