package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantfold/hedgesim/internal/logger"
	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// Journal records fills and equity snapshots in an in-memory DuckDB so a run
// can be queried for statistics and exported to Parquet. It is a write-side
// companion to the Ledger, never an input to decisions.
type Journal struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewJournal opens an in-memory DuckDB journal.
func NewJournal(log *logger.Logger) (*Journal, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to open journal database", err)
	}

	return &Journal{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		log: log,
	}, nil
}

// Initialize creates the journal tables.
func (j *Journal) Initialize() error {
	_, err := j.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			fill_id TEXT PRIMARY KEY,
			symbol TEXT,
			date TIMESTAMP,
			direction TEXT,
			quantity BIGINT,
			price DOUBLE,
			realized_pnl DOUBLE,
			clipped BOOLEAN
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create fills table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			date TIMESTAMP,
			cash DOUBLE,
			total_equity DOUBLE,
			realized_pnl DOUBLE,
			open_positions INTEGER
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create snapshots table", err)
	}

	_, err = j.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshot_positions (
			date TIMESTAMP,
			symbol TEXT,
			quantity BIGINT,
			average_cost DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create snapshot_positions table", err)
	}

	return nil
}

// RecordFill inserts one fill. Holds are skipped; they carry no information
// the snapshot does not.
func (j *Journal) RecordFill(fill Fill) error {
	if fill.Dir == types.DirectionHold || fill.Quantity == 0 {
		return nil
	}

	insert := j.sq.
		Insert("fills").
		Columns("fill_id", "symbol", "date", "direction", "quantity", "price", "realized_pnl", "clipped").
		Values(fill.ID, fill.Symbol, fill.Date, string(fill.Dir), fill.Quantity, fill.Price, fill.RealizedPnL, fill.Clipped).
		RunWith(j.db)

	if _, err := insert.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert fill", err)
	}

	return nil
}

// RecordSnapshot inserts one equity snapshot and its per-symbol positions.
func (j *Journal) RecordSnapshot(snap types.LedgerSnapshot) error {
	insert := j.sq.
		Insert("snapshots").
		Columns("date", "cash", "total_equity", "realized_pnl", "open_positions").
		Values(snap.Date, snap.Cash, snap.TotalEquity, snap.RealizedPnL, len(snap.Positions)).
		RunWith(j.db)

	if _, err := insert.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert snapshot", err)
	}

	for _, symbol := range snap.Symbols() {
		position := snap.Positions[symbol]

		insertPos := j.sq.
			Insert("snapshot_positions").
			Columns("date", "symbol", "quantity", "average_cost").
			Values(snap.Date, symbol, position.Quantity, position.AverageCost).
			RunWith(j.db)

		if _, err := insertPos.Exec(); err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert snapshot position", err)
		}
	}

	return nil
}

// Stats computes run statistics from the journalled fills and snapshots.
func (j *Journal) Stats() (types.RunStats, error) {
	var stats types.RunStats

	// First/last equity and max drawdown over the curve.
	rows, err := j.db.Query(`SELECT total_equity FROM snapshots ORDER BY date ASC`)
	if err != nil {
		return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query snapshots", err)
	}
	defer rows.Close()

	var first, last, peak, maxDrawdown float64

	count := 0

	for rows.Next() {
		var equity float64
		if err := rows.Scan(&equity); err != nil {
			return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan snapshot", err)
		}

		if count == 0 {
			first = equity
			peak = equity
		}

		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			if dd := equity/peak - 1; dd < maxDrawdown {
				maxDrawdown = dd
			}
		}

		last = equity
		count++
	}

	if err := rows.Err(); err != nil {
		return stats, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating snapshots", err)
	}

	stats.Days = count
	stats.FinalEquity = last
	stats.MaxDrawdown = maxDrawdown

	if count > 0 && first > 0 {
		stats.TotalReturn = last/first - 1
	}

	// Fill counts and win rate over closing fills.
	query := `
		SELECT
			COUNT(*) AS total_fills,
			COALESCE(SUM(CASE WHEN direction IN ('sell', 'cover') AND realized_pnl > 0 THEN 1 ELSE 0 END), 0) AS winning,
			COALESCE(SUM(CASE WHEN direction IN ('sell', 'cover') THEN 1 ELSE 0 END), 0) AS closing,
			COALESCE(SUM(realized_pnl), 0) AS realized
		FROM fills
	`

	var winning, closing int
	if err := j.db.QueryRow(query).Scan(&stats.NumberOfFills, &winning, &closing, &stats.RealizedPnL); err != nil {
		return stats, errors.Wrap(errors.ErrCodeQueryFailed, "failed to aggregate fills", err)
	}

	if closing > 0 {
		stats.WinRate = float64(winning) / float64(closing)
	}

	return stats, nil
}

// Write exports the journal to Parquet files in the given directory.
func (j *Journal) Write(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create results directory", err)
	}

	exports := map[string]string{
		"fills":              filepath.Join(path, "fills.parquet"),
		"snapshots":          filepath.Join(path, "equity.parquet"),
		"snapshot_positions": filepath.Join(path, "positions.parquet"),
	}

	for table, file := range exports {
		if _, err := j.db.Exec(fmt.Sprintf(`COPY %s TO '%s' (FORMAT PARQUET)`, table, file)); err != nil {
			return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to export %s to Parquet", table)
		}
	}

	j.log.Info("exported run journal",
		zap.String("fills", exports["fills"]),
		zap.String("equity", exports["snapshots"]),
	)

	return nil
}

// Cleanup drops and recreates the journal tables.
func (j *Journal) Cleanup() error {
	_, err := j.db.Exec(`
		DROP TABLE IF EXISTS fills;
		DROP TABLE IF EXISTS snapshots;
		DROP TABLE IF EXISTS snapshot_positions;
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop journal tables", err)
	}

	return j.Initialize()
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
