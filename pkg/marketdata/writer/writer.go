package writer

import (
	"github.com/rxtech-lab/argo-screener/internal/types"
)

// MarketDataWriter defines the interface for writing bars to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single bar of symbol.
	Write(symbol string, bar types.Bar) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// ExportSeries runs a full Initialize, Write, Finalize and Close cycle for one series.
func ExportSeries(w MarketDataWriter, series types.Series) (outputPath string, err error) {
	if err := w.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, bar := range series.Bars {
		if err := w.Write(series.Symbol, bar); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}
