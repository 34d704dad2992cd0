// Package marketdata downloads daily bars from a provider and stores them as
// Parquet files readable by the simulation's bar source.
package marketdata

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/quantfold/hedgesim/internal/types"
	"github.com/quantfold/hedgesim/pkg/errors"
)

// BarWriter persists downloaded bars to a destination.
type BarWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize completes the writing process and returns the output path.
	Finalize() (string, error)
	// Close releases any resources held by the writer.
	Close() error
	// OutputPath returns the configured output file path.
	OutputPath() string
}

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them to
// a Parquet file on Finalize. The column set matches what the simulation's
// bar source reads.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a writer targeting the given Parquet path.
func NewDuckDBWriter(outputPath string) *DuckDBWriter {
	return &DuckDBWriter{outputPath: outputPath}
}

// Initialize opens the database, creates the bars table and prepares the
// insert statement inside a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to open duckdb", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			symbol TEXT,
			time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create bars table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO bars (symbol, time, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare insert", err)
	}

	return nil
}

// Write implements BarWriter.
func (w *DuckDBWriter) Write(bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeQueryFailed, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		bar.Symbol,
		bar.Time,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to insert bar for %s", bar.Symbol)
	}

	return nil
}

// Finalize commits the transaction and exports the bars to Parquet.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeQueryFailed, "writer not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit bars", err)
	}

	w.tx = nil

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM bars ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`, w.outputPath))
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to export bars to %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close implements BarWriter.
func (w *DuckDBWriter) Close() error {
	if w.stmt != nil {
		w.stmt.Close()
		w.stmt = nil
	}

	if w.tx != nil {
		w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		err := w.db.Close()
		w.db = nil

		if err != nil {
			return errors.Wrap(errors.ErrCodeQueryFailed, "failed to close duckdb", err)
		}
	}

	return nil
}

// OutputPath implements BarWriter.
func (w *DuckDBWriter) OutputPath() string {
	return w.outputPath
}
