package marketdata

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"go.uber.org/zap"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Provider fetches daily bars for one symbol over a date range.
type Provider interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error)
}

// PolygonProvider downloads adjusted daily aggregates from Polygon. Every
// request goes through the shared budget, and transient failures are retried
// with exponential backoff.
type PolygonProvider struct {
	client *polygon.Client
	budget *Budget
	log    *logger.Logger

	maxRetries uint64
}

// NewPolygonProvider builds a provider from an API key and a request budget.
func NewPolygonProvider(apiKey string, budget *Budget, log *logger.Logger) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon api key is required")
	}

	return &PolygonProvider{
		client:     polygon.New(apiKey),
		budget:     budget,
		log:        log,
		maxRetries: 4,
	}, nil
}

// DailyBars implements Provider.
func (p *PolygonProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]types.Bar, error) {
	var bars []types.Bar

	operation := func() error {
		if err := p.budget.Acquire(ctx); err != nil {
			// A spent daily budget will not recover within the retry
			// horizon.
			return backoff.Permanent(err)
		}

		bars = bars[:0]

		//nolint:exhaustruct // third-party struct with many optional fields
		params := models.ListAggsParams{
			Ticker:     symbol,
			Multiplier: 1,
			Timespan:   models.Day,
			From:       models.Millis(start),
			To:         models.Millis(end),
		}.WithLimit(50000).WithAdjusted(true)

		iter := p.client.ListAggs(ctx, params)

		for iter.Next() {
			agg := iter.Item()
			bars = append(bars, types.Bar{
				Symbol: symbol,
				Time:   time.Time(agg.Timestamp),
				Open:   agg.Open,
				High:   agg.High,
				Low:    agg.Low,
				Close:  agg.Close,
				Volume: agg.Volume,
			})
		}

		if err := iter.Err(); err != nil {
			p.log.Warn("polygon request failed, retrying",
				zap.String("symbol", symbol),
				zap.Error(err),
			)

			return err
		}

		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), p.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		if errors.GetCode(err) == errors.ErrCodeProviderRateLimited {
			return nil, err
		}

		return nil, errors.Wrapf(errors.ErrCodeDownloadFailed, err, "failed to download daily bars for %s", symbol)
	}

	p.log.Info("downloaded daily bars",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)

	return bars, nil
}
