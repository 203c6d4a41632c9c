package provider

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// ParquetClient reads bars from parquet files named <SYMBOL>.parquet or
// <SYMBOL>_<suffix>.parquet in a directory and resamples them with DuckDB.
type ParquetClient struct {
	db  *sql.DB
	dir string
	sq  squirrel.StatementBuilderType
}

// NewParquetClient opens an in-memory DuckDB over dir.
func NewParquetClient(dir string) (*ParquetClient, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "parquet directory is required")
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	return &ParquetClient{
		db:  db,
		dir: dir,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Close releases the DuckDB connection.
func (c *ParquetClient) Close() error {
	return c.db.Close()
}

// Fetch implements Provider. Bars in [start, end) are grouped into buckets of
// multiplier x timespan.
func (c *ParquetClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time, multiplier int, timespan models.Timespan) ([]types.Bar, error) {
	files, err := c.files(ticker)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, nil
	}

	bucket := fmt.Sprintf("time_bucket(INTERVAL '%s', time)", DuckDBInterval(multiplier, timespan))

	query, args, err := c.sq.
		Select(
			bucket+" AS bucket_time",
			"arg_min(open, time) AS open",
			"max(high) AS high",
			"min(low) AS low",
			"arg_max(close, time) AS close",
			"sum(volume) AS volume",
		).
		From(readParquet(files)).
		Where(squirrel.And{
			squirrel.GtOrEq{"time": start.UTC()},
			squirrel.Lt{"time": end.UTC()},
		}).
		GroupBy("bucket_time").
		OrderBy("bucket_time").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query parquet data for %s", ticker)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar

		if err := rows.Scan(&bar.Time, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan bar", err)
		}

		bar.Time = bar.Time.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read rows", err)
	}

	return bars, nil
}

// files lists the parquet files for ticker, sorted by name.
func (c *ParquetClient) files(ticker string) ([]string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" || strings.ContainsAny(symbol, `*?[]\/'`) {
		return nil, nil
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, symbol+"*.parquet"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataNotFound, "failed to list parquet files", err)
	}

	// BTC must not pick up BTCUSDT.parquet
	files := matches[:0]
	for _, m := range matches {
		base := filepath.Base(m)
		if base == symbol+".parquet" || strings.HasPrefix(base, symbol+"_") {
			files = append(files, m)
		}
	}

	return files, nil
}

func readParquet(files []string) string {
	quoted := make([]string, len(files))
	for i, f := range files {
		quoted[i] = "'" + strings.ReplaceAll(f, "'", "''") + "'"
	}

	return fmt.Sprintf("read_parquet([%s])", strings.Join(quoted, ", "))
}

// DuckDBInterval returns multiplier x timespan as the body of a DuckDB
// INTERVAL literal.
func DuckDBInterval(multiplier int, timespan models.Timespan) string {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%d minutes", multiplier)
	case models.Hour:
		return fmt.Sprintf("%d hours", multiplier)
	case models.Week:
		return fmt.Sprintf("%d days", 7*multiplier)
	case models.Month:
		return fmt.Sprintf("%d months", multiplier)
	case models.Quarter:
		return fmt.Sprintf("%d months", 3*multiplier)
	case models.Year:
		return fmt.Sprintf("%d years", multiplier)
	default:
		return fmt.Sprintf("%d days", multiplier)
	}
}
