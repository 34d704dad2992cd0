package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// ClientConfig configures the download client.
type ClientConfig struct {
	// DataPath is the directory the Parquet output is written to.
	DataPath string `validate:"required"`
	// PolygonAPIKey authenticates against Polygon.
	PolygonAPIKey string `validate:"required"`
	// RequestsPerMinute throttles the provider request rate.
	RequestsPerMinute int `validate:"gt=0"`
	// RequestsPerDay caps requests in a rolling 24 hour window.
	RequestsPerDay int `validate:"gt=0"`
}

// DefaultClientConfig returns the free-tier friendly throttle defaults. The
// API key and data path still have to be filled in.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DataPath:          "",
		PolygonAPIKey:     "",
		RequestsPerMinute: 5,
		RequestsPerDay:    5000,
	}
}

// OnDownloadProgress reports completed symbols out of the total.
type OnDownloadProgress func(completed, total int, message string)

// Client downloads daily bars for a set of symbols and writes them as one
// Parquet file.
type Client struct {
	config     ClientConfig
	provider   Provider
	log        *logger.Logger
	onProgress OnDownloadProgress
}

// NewClient validates the config and assembles a Polygon-backed client.
func NewClient(config ClientConfig, log *logger.Logger, onProgress OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download client config", err)
	}

	budget := NewBudget(config.RequestsPerMinute, config.RequestsPerDay)

	provider, err := NewPolygonProvider(config.PolygonAPIKey, budget, log)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:     config,
		provider:   provider,
		log:        log,
		onProgress: onProgress,
	}, nil
}

// NewClientWithProvider wires a custom provider. Tests use this to avoid the
// network.
func NewClientWithProvider(config ClientConfig, provider Provider, log *logger.Logger, onProgress OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid download client config", err)
	}

	return &Client{
		config:     config,
		provider:   provider,
		log:        log,
		onProgress: onProgress,
	}, nil
}

// Download fetches daily bars for every symbol between start and end and
// writes them to a single Parquet file, returning its path.
func (c *Client) Download(ctx context.Context, symbols []string, start, end time.Time) (string, error) {
	if len(symbols) == 0 {
		return "", errors.New(errors.ErrCodeNoSymbols, "at least one symbol is required")
	}

	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeDownloadFailed, err, "failed to create data path %s", c.config.DataPath)
	}

	fileName := fmt.Sprintf("bars_%s_%s.parquet", start.Format("2006-01-02"), end.Format("2006-01-02"))
	writer := NewDuckDBWriter(filepath.Join(c.config.DataPath, fileName))

	if err := writer.Initialize(); err != nil {
		return "", err
	}

	defer writer.Close()

	for i, symbol := range symbols {
		bars, err := c.provider.DailyBars(ctx, symbol, start, end)
		if err != nil {
			return "", err
		}

		for _, bar := range bars {
			if err := writer.Write(bar); err != nil {
				return "", err
			}
		}

		c.log.Debug("symbol downloaded",
			zap.String("symbol", symbol),
			zap.Int("bars", len(bars)),
		)

		if c.onProgress != nil {
			c.onProgress(i+1, len(symbols), fmt.Sprintf("downloaded %s", symbol))
		}
	}

	path, err := writer.Finalize()
	if err != nil {
		return "", err
	}

	c.log.Info("download complete",
		zap.String("path", path),
		zap.Int("symbols", len(symbols)),
	)

	return path, nil
}
