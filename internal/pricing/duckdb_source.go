package pricing

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// DuckDBSource reads daily bars from a Parquet file through DuckDB.
type DuckDBSource struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewDuckDBSource opens an in-memory DuckDB instance.
func NewDuckDBSource(log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	return &DuckDBSource{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}, nil
}

// Initialize points the source at a Parquet file of daily bars with columns
// symbol, time, open, high, low, close, volume.
func (s *DuckDBSource) Initialize(path string) error {
	_, err := s.db.Exec(fmt.Sprintf(`
		CREATE OR REPLACE VIEW bars AS
		SELECT symbol, time, open, high, low, close, volume
		FROM read_parquet('%s')
	`, path))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to load bars from %s", path)
	}

	s.log.Debug("bar source initialized", zap.String("path", path))

	return nil
}

// Price implements Source.
func (s *DuckDBSource) Price(symbol string, date time.Time) (optional.Option[float64], error) {
	day := types.Day(date)

	query := s.sq.
		Select("close").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		Where("time >= ? AND time < ?", day, day.AddDate(0, 0, 1)).
		OrderBy("time DESC").
		Limit(1).
		RunWith(s.db)

	var close float64

	err := query.QueryRow().Scan(&close)
	if err == sql.ErrNoRows {
		return optional.None[float64](), nil
	}

	if err != nil {
		return optional.None[float64](), errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query price for %s", symbol)
	}

	return optional.Some(close), nil
}

// History implements Source.
func (s *DuckDBSource) History(symbol string, asOf time.Time, maxBars int) ([]types.Bar, error) {
	query := s.sq.
		Select("symbol", "time", "open", "high", "low", "close", "volume").
		From("bars").
		Where(squirrel.Eq{"symbol": symbol}).
		Where("time < ?", types.Day(asOf).AddDate(0, 0, 1)).
		OrderBy("time DESC")

	if maxBars > 0 {
		query = query.Limit(uint64(maxBars))
	}

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query history for %s", symbol)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar
		if err := rows.Scan(&bar.Symbol, &bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err)
	}

	// The query returned newest-first to honor the limit; flip to ascending.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}

	return bars, nil
}

// Dates implements Source.
func (s *DuckDBSource) Dates(start, end time.Time) ([]time.Time, error) {
	query := s.sq.
		Select("DISTINCT CAST(time AS DATE) AS day").
		From("bars").
		Where("time >= ? AND time < ?", types.Day(start), types.Day(end).AddDate(0, 0, 1)).
		OrderBy("day ASC").
		RunWith(s.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trading dates", err)
	}
	defer rows.Close()

	var dates []time.Time

	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan date", err)
		}

		dates = append(dates, types.Day(day))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating dates", err)
	}

	return dates, nil
}

// Close implements Source.
func (s *DuckDBSource) Close() error {
	return s.db.Close()
}
