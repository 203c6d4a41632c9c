package main

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/rxtech-lab/argo-screener/internal/config"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/metrics"
	"github.com/rxtech-lab/argo-screener/internal/notification"
	"github.com/rxtech-lab/argo-screener/internal/screener"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// environment holds everything a command needs, built from the config file,
// the environment and the global flags.
type environment struct {
	cfg      config.Config
	log      *logger.Logger
	loader   marketdata.Loader
	notifier notification.Notifier
	metrics  *metrics.Metrics
	closers  []io.Closer
}

func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("provider") {
		cfg.Provider.Name = cmd.String("provider")
	}

	if cmd.IsSet("workers") {
		cfg.Runner.Workers = int(cmd.Int("workers"))
	}

	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// setup builds the environment. Alerts are only wired when alerts is true.
func setup(ctx context.Context, cmd *cli.Command, alerts bool) (*environment, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	providerType, loaderConfig := cfg.LoaderConfig()

	loader, err := marketdata.NewLoader(providerType, loaderConfig)
	if err != nil {
		return nil, err
	}

	env := &environment{
		cfg:     cfg,
		log:     log,
		loader:  loader,
		metrics: metrics.NewMetrics(),
		closers: []io.Closer{loader},
	}

	env.notifier = env.buildNotifier(ctx, alerts)

	log.Debug("Environment ready",
		zap.String("provider", cfg.Provider.Name),
		zap.Int("workers", cfg.Runner.Workers),
		zap.Bool("alerts", alerts && cfg.Alerts.Enabled),
	)

	return env, nil
}

// buildNotifier wraps the configured notifier with a dedup guard: Redis when
// reachable, otherwise in memory.
func (e *environment) buildNotifier(ctx context.Context, alerts bool) notification.Notifier {
	if !alerts || !e.cfg.Alerts.Enabled {
		return notification.NewNopNotifier()
	}

	next := notification.NewNotifier(e.cfg.Alerts.Telegram, e.log)
	if e.cfg.Alerts.DedupTTL <= 0 {
		return next
	}

	var guard notification.Guard = notification.NewMemoryGuard()

	if e.cfg.Alerts.Redis.Addr != "" {
		redisGuard := notification.NewRedisGuard(e.cfg.Alerts.Redis)
		if err := redisGuard.Ping(ctx); err != nil {
			e.log.Warn("Redis unavailable, deduplicating alerts in memory", zap.Error(err))

			_ = redisGuard.Close()
		} else {
			guard = redisGuard
			e.closers = append(e.closers, redisGuard)
		}
	}

	return notification.NewGuardedNotifier(next, guard, e.cfg.Alerts.DedupTTL)
}

func (e *environment) screener(keepSeries bool) (*screener.Screener, error) {
	engineConfig, err := e.cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	opts := screener.DefaultOptions()
	opts.Workers = e.cfg.Runner.Workers
	opts.FetchTimeout = e.cfg.Runner.FetchTimeout
	opts.IndicatorConfig = engineConfig
	opts.KeepSeries = keepSeries

	return screener.NewScreener(e.loader, e.notifier, e.log, e.metrics, opts)
}

func (e *environment) Close() error {
	var errs []error

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	_ = e.log.Sync()

	return stderrors.Join(errs...)
}
