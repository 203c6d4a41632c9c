package writer

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// DuckDBWriter buffers bars in an in-memory DuckDB table and exports them to
// a parquet file the parquet provider can read back.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a writer that exports to outputPath.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
	}
}

// Initialize opens the database, creates the table and prepares the insert.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS market_data (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to begin transaction", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO market_data (id, time, symbol, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()
		w.tx = nil
		w.db = nil

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write inserts one bar inside the open transaction.
func (w *DuckDBWriter) Write(symbol string, bar types.Bar) error {
	if w.stmt == nil {
		return errors.New(errors.ErrCodeInvalidParameter, "writer not initialized")
	}

	_, err := w.stmt.Exec(
		uuid.New().String(),
		bar.Time.UTC(),
		symbol,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert bar", err)
	}

	return nil
}

// Finalize commits and copies the table to the parquet file, ordered by time.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeInvalidParameter, "writer not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeQueryFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	path := strings.ReplaceAll(w.outputPath, "'", "''")

	_, err := w.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM market_data ORDER BY symbol, time) TO '%s' (FORMAT PARQUET)`, path))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeQueryFailed, "failed to export to parquet", err)
	}

	return w.outputPath, nil
}

// Close releases the statement, any open transaction and the connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to rollback transaction: %w", err))
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	return stderrors.Join(closeErrors...)
}

// GetOutputPath returns the parquet file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
