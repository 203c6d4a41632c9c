package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/config"
	"github.com/rxtech-lab/argo-screener/internal/metrics"
	"github.com/rxtech-lab/argo-screener/internal/screener"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func scanCommand() *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Classify the latest bar of every symbol as Buy, Sell or NoSetup",
		ArgsUsage: "[SYMBOL...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   fmt.Sprintf("Strategy, one of %v", types.StrategyNames()),
			},
			&cli.StringSliceFlag{
				Name:  "symbols",
				Usage: "Comma-separated symbols, added to the arguments",
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval, defaults to the strategy interval",
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "Lookback period such as 7d or 1mo, defaults to the strategy period",
			},
			&cli.StringSliceFlag{
				Name:  "indicators",
				Usage: "Indicator columns to report, all when empty",
			},
			&cli.FloatFlag{
				Name:  "macd-buy",
				Usage: "Also require MACD above this value for Buy",
			},
			&cli.FloatFlag{
				Name:  "macd-sell",
				Usage: "Also require MACD below this value for Sell",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: table, json or yaml",
				Value:   string(formatTable),
			},
			&cli.DurationFlag{
				Name:  "every",
				Usage: "Repeat the scan at this interval until interrupted",
			},
			&cli.BoolFlag{
				Name:  "no-alerts",
				Usage: "Do not send alerts",
			},
			&cli.BoolFlag{
				Name:  "progress",
				Usage: "Show a progress bar on stderr",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve /metrics and /healthz on this address, e.g. :9090",
			},
		},
		Action: scanAction,
	}
}

func scanAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := parseOutputFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	env, err := setup(ctx, cmd, !cmd.Bool("no-alerts"))
	if err != nil {
		return err
	}
	defer env.Close()

	req, err := scanRequest(cmd, env.cfg)
	if err != nil {
		return err
	}

	s, err := env.screener(false)
	if err != nil {
		return err
	}

	health := metrics.NewHealthStatus()

	addr := cmd.String("metrics-addr")
	if addr == "" {
		addr = env.cfg.MetricsAddr
	}

	if addr != "" {
		server := metrics.NewServer(addr, env.metrics, health, env.log)
		server.Start()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = server.Stop(shutdownCtx)
		}()
	}

	every := cmd.Duration("every")

	for {
		if cmd.Bool("progress") {
			bar := progressbar.NewOptions(len(req.Symbols),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription(fmt.Sprintf("Screening %s", req.Strategy)),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			req.OnProgress = func(int, int, types.Row) {
				_ = bar.Add(1)
			}
		}

		report, err := s.Run(ctx, req)
		if err != nil {
			return err
		}

		health.RecordRun(report)

		if err := writeReport(cmd.Root().Writer, report, format); err != nil {
			return err
		}

		if every <= 0 {
			return nil
		}

		env.log.Info("Next scan scheduled", zap.Duration("in", every))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(every):
		}
	}
}

// scanRequest merges the flags and arguments over the scan section of cfg.
func scanRequest(cmd *cli.Command, cfg config.Config) (screener.Request, error) {
	req := screener.Request{
		Strategy: types.StrategyName(cfg.Scan.Strategy),
		MACDBuy:  optional.FromNillable(cfg.Scan.MACDBuy),
		MACDSell: optional.FromNillable(cfg.Scan.MACDSell),
	}

	if cmd.IsSet("strategy") {
		req.Strategy = types.StrategyName(cmd.String("strategy"))
	}

	req.Symbols = collectSymbols(cmd.Args().Slice(), cmd.StringSlice("symbols"))
	if len(req.Symbols) == 0 {
		req.Symbols = ParseSymbols(strings.Join(cfg.Scan.Symbols, ","))
	}

	if len(req.Symbols) == 0 {
		return screener.Request{}, errors.New(errors.ErrCodeMissingParameter, "no symbols given, pass them as arguments, with --symbols or in the config")
	}

	interval := cfg.Scan.Interval
	if cmd.IsSet("interval") {
		interval = cmd.String("interval")
	}

	if interval != "" {
		parsed, err := marketdata.ParseInterval(interval)
		if err != nil {
			return screener.Request{}, err
		}

		req.Interval = parsed
	}

	period := cfg.Scan.Period
	if cmd.IsSet("period") {
		period = cmd.String("period")
	}

	if period != "" {
		parsed, err := marketdata.ParsePeriod(period)
		if err != nil {
			return screener.Request{}, err
		}

		req.Period = parsed
	}

	names := cfg.Scan.Indicators
	if cmd.IsSet("indicators") {
		names = splitList(cmd.StringSlice("indicators"))
	}

	req.Indicators = types.ParseIndicatorTypes(names)

	if cmd.IsSet("macd-buy") {
		req.MACDBuy = optional.Some(cmd.Float("macd-buy"))
	}

	if cmd.IsSet("macd-sell") {
		req.MACDSell = optional.Some(cmd.Float("macd-sell"))
	}

	return req, nil
}

// collectSymbols joins positional and flag symbols, dropping duplicates.
func collectSymbols(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)

	for _, list := range lists {
		for _, symbol := range ParseSymbols(strings.Join(list, ",")) {
			if !seen[symbol] {
				seen[symbol] = true

				out = append(out, symbol)
			}
		}
	}

	return out
}

func splitList(values []string) []string {
	var out []string

	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
