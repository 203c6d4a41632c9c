package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata/writer"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Save bars as <SYMBOL>.parquet for the parquet provider, one directory per interval",
		ArgsUsage: "SYMBOL...",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "symbols",
				Usage: "Comma-separated symbols, added to the arguments",
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval",
				Value:   string(marketdata.IntervalFiveMinutes),
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Lookback period",
				Value:   "7d",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	symbols := collectSymbols(cmd.Args().Slice(), cmd.StringSlice("symbols"))
	if len(symbols) == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "no symbols given")
	}

	interval, err := marketdata.ParseInterval(cmd.String("interval"))
	if err != nil {
		return err
	}

	period, err := marketdata.ParsePeriod(cmd.String("period"))
	if err != nil {
		return err
	}

	dir := cmd.String("data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to create %s", dir)
	}

	env, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	bar := progressbar.NewOptions(len(symbols),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s bars", interval)),
		progressbar.OptionShowCount(),
	)

	for _, symbol := range symbols {
		path, count, err := downloadSymbol(ctx, env.loader, symbol, interval, period, dir)
		_ = bar.Add(1)

		if err != nil {
			env.log.Warn("Download failed", zap.String("symbol", symbol), zap.Error(err))

			continue
		}

		env.log.Info("Downloaded", zap.String("symbol", symbol), zap.Int("bars", count), zap.String("path", path))
	}

	return nil
}

// downloadSymbol fetches one symbol and exports it to dir.
func downloadSymbol(ctx context.Context, loader marketdata.Loader, symbol string, interval marketdata.Interval, period marketdata.Period, dir string) (string, int, error) {
	series, err := loader.Fetch(ctx, symbol, interval, period)
	if err != nil {
		return "", 0, err
	}

	if series.IsEmpty() {
		return "", 0, errors.Newf(errors.ErrCodeNoDataFound, "no %s bars for %s", interval, symbol)
	}

	if series.Symbol == "" {
		series.Symbol = symbol
	}

	path := filepath.Join(dir, parquetName(symbol)+".parquet")

	out, err := writer.ExportSeries(writer.NewDuckDBWriter(path), series)
	if err != nil {
		return "", 0, err
	}

	return out, series.Len(), nil
}

// parquetName turns a symbol into the file prefix the parquet provider looks for.
func parquetName(symbol string) string {
	safe := make([]rune, 0, len(symbol))

	for _, r := range symbol {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '=', r == '.', r == '^':
			safe = append(safe, r)
		default:
			safe = append(safe, '-')
		}
	}

	return string(safe)
}
