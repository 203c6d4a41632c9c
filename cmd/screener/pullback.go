package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rxtech-lab/argo-screener/internal/screener"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

// defaultPullbackPairs are the majors scanned when no symbol is given.
var defaultPullbackPairs = []string{
	"EURUSD=X", "GBPUSD=X", "USDJPY=X", "AUDUSD=X", "USDCHF=X",
	"USDCAD=X", "EURGBP=X", "EURJPY=X", "GBPJPY=X", "NZDUSD=X",
}

func pullbackCommand() *cli.Command {
	def := screener.DefaultPullbackRequest()

	return &cli.Command{
		Name:      "pullback",
		Usage:     "Find pullbacks to the fast EMA and the latest EMA cross on a higher timeframe",
		ArgsUsage: "[SYMBOL...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "symbols",
				Usage: "Comma-separated symbols, defaults to ten forex majors",
			},
			&cli.IntFlag{
				Name:  "fast",
				Usage: fmt.Sprintf("Fast EMA window (default: %d)", def.FastWindow),
			},
			&cli.IntFlag{
				Name:  "slow",
				Usage: fmt.Sprintf("Slow EMA window (default: %d)", def.SlowWindow),
			},
			&cli.StringFlag{
				Name:  "setup-interval",
				Usage: "Interval of the setup series",
				Value: string(def.SetupInterval),
			},
			&cli.StringFlag{
				Name:  "setup-period",
				Usage: "Lookback of the setup series",
				Value: def.SetupPeriod.String(),
			},
			&cli.StringFlag{
				Name:  "trend-interval",
				Usage: "Interval of the cross series",
				Value: string(def.TrendInterval),
			},
			&cli.StringFlag{
				Name:  "trend-period",
				Usage: "Lookback of the cross series",
				Value: def.TrendPeriod.String(),
			},
			&cli.IntFlag{
				Name:  "history",
				Usage: fmt.Sprintf("Recent setups kept per symbol (default: %d)", def.History),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json or yaml",
				Value:   string(formatTable),
			},
		},
		Action: pullbackAction,
	}
}

func pullbackAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := parseOutputFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	req, err := pullbackRequest(cmd)
	if err != nil {
		return err
	}

	env, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := env.screener(false)
	if err != nil {
		return err
	}

	report, err := s.Pullback(ctx, req)
	if err != nil {
		return err
	}

	return writePullback(cmd.Root().Writer, report, format)
}

func pullbackRequest(cmd *cli.Command) (screener.PullbackRequest, error) {
	symbols := collectSymbols(cmd.Args().Slice(), cmd.StringSlice("symbols"))
	if len(symbols) == 0 {
		symbols = defaultPullbackPairs
	}

	// Zero windows and history take the defaults.
	req := screener.PullbackRequest{
		Symbols:    symbols,
		FastWindow: int(cmd.Int("fast")),
		SlowWindow: int(cmd.Int("slow")),
		History:    int(cmd.Int("history")),
	}

	var err error

	if req.SetupInterval, err = marketdata.ParseInterval(cmd.String("setup-interval")); err != nil {
		return screener.PullbackRequest{}, err
	}

	if req.TrendInterval, err = marketdata.ParseInterval(cmd.String("trend-interval")); err != nil {
		return screener.PullbackRequest{}, err
	}

	if req.SetupPeriod, err = marketdata.ParsePeriod(cmd.String("setup-period")); err != nil {
		return screener.PullbackRequest{}, err
	}

	if req.TrendPeriod, err = marketdata.ParsePeriod(cmd.String("trend-period")); err != nil {
		return screener.PullbackRequest{}, err
	}

	return req, nil
}
