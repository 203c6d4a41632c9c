// Package screener runs the fetch, indicator, classification and alert
// pipeline over a batch of symbols. Every symbol is isolated: a batch of N
// symbols always yields N rows in input order.
package screener

import (
	"context"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/logger"
	"github.com/rxtech-lab/argo-screener/internal/metrics"
	"github.com/rxtech-lab/argo-screener/internal/notification"
	"github.com/rxtech-lab/argo-screener/internal/signal"
	"github.com/rxtech-lab/argo-screener/internal/trend"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// weekWindow is the number of bars behind the week high and low.
const weekWindow = 5

// Options tune the batch.
type Options struct {
	Workers         int
	FetchTimeout    time.Duration
	MinBars         int
	IndicatorConfig indicator.Config
	// KeepSeries stores every fetched series and its indicators in the report.
	KeepSeries bool
}

// DefaultOptions returns eight workers, a 15s fetch timeout and the default
// indicator windows.
func DefaultOptions() Options {
	return Options{
		Workers:         8,
		FetchTimeout:    15 * time.Second,
		MinBars:         signal.MinBars,
		IndicatorConfig: indicator.DefaultConfig(),
	}
}

// Request describes one scan.
type Request struct {
	Symbols  []string
	Strategy types.StrategyName
	// Interval and Period default to the strategy's presets when empty.
	Interval marketdata.Interval
	Period   marketdata.Period
	// Indicators are the columns reported per row; empty means all.
	Indicators []types.IndicatorType
	MACDBuy    optional.Option[float64]
	MACDSell   optional.Option[float64]
	// OnProgress is called once per finished symbol, never concurrently.
	OnProgress func(done, total int, row types.Row)
}

// Screener runs scans.
type Screener struct {
	loader   marketdata.Loader
	notifier notification.Notifier
	logger   *logger.Logger
	metrics  *metrics.Metrics
	engine   *indicator.Engine
	opts     Options
	now      func() time.Time
}

// NewScreener creates a screener. notifier and m may be nil.
func NewScreener(loader marketdata.Loader, notifier notification.Notifier, log *logger.Logger, m *metrics.Metrics, opts Options) (*Screener, error) {
	if loader == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "loader is required")
	}

	if notifier == nil {
		notifier = notification.NewNopNotifier()
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	if opts.MinBars < 2 {
		opts.MinBars = signal.MinBars
	}

	engine, err := indicator.NewEngine(opts.IndicatorConfig)
	if err != nil {
		return nil, err
	}

	opts.MinBars = max(opts.MinBars, opts.IndicatorConfig.MinBars())

	return &Screener{
		loader:   loader,
		notifier: notifier,
		logger:   log,
		metrics:  m,
		engine:   engine,
		opts:     opts,
		now:      time.Now,
	}, nil
}

// Run screens every symbol of req. Per-symbol failures end up in the rows;
// the returned error is reserved for an unusable request.
func (s *Screener) Run(ctx context.Context, req Request) (*types.Report, error) {
	indicators := req.Indicators
	if len(indicators) == 0 {
		indicators = types.AllIndicatorTypes()
	}

	report := &types.Report{
		RunID:      uuid.New().String(),
		Strategy:   req.Strategy,
		Indicators: indicators,
		StartedAt:  s.now(),
		Rows:       make([]types.Row, len(req.Symbols)),
	}

	cfg, err := types.NewStrategyConfig(req.Strategy)
	if err != nil {
		s.logger.Warn("Invalid strategy", zap.String("strategy", string(req.Strategy)), zap.Error(err))

		for i, symbol := range req.Symbols {
			report.Rows[i] = types.NewErrorRow(symbol, err)
		}

		s.finish(report)

		return report, nil
	}

	cfg = cfg.WithMACDThresholds(req.MACDBuy, req.MACDSell)

	interval, period, err := resolveWindow(req, cfg)
	if err != nil {
		return nil, err
	}

	report.Interval = string(interval)
	report.Period = period.String()

	if s.opts.KeepSeries {
		report.Series = make(map[string]types.Series, len(req.Symbols))
		report.IndicatorSets = make(map[string]types.IndicatorSet, len(req.Symbols))
	}

	var (
		mu   sync.Mutex
		done int
	)

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Workers)

	for i, symbol := range req.Symbols {
		g.Go(func() error {
			result := s.screenSymbol(ctx, symbol, cfg, interval, period, indicators)

			mu.Lock()
			defer mu.Unlock()

			report.Rows[i] = result.row

			if s.opts.KeepSeries && result.series.Len() > 0 {
				report.Series[symbol] = result.series
				report.IndicatorSets[symbol] = result.set
			}

			done++
			if req.OnProgress != nil {
				req.OnProgress(done, len(req.Symbols), result.row)
			}

			return nil
		})
	}

	_ = g.Wait()

	s.finish(report)

	return report, nil
}

func (s *Screener) finish(report *types.Report) {
	report.FinishedAt = s.now()

	for _, row := range report.Rows {
		s.metrics.ObserveRow(row)
	}

	s.metrics.ObserveRun(report)

	s.logger.Info("Screener run finished",
		zap.String("run_id", report.RunID),
		zap.String("strategy", string(report.Strategy)),
		zap.Int("symbols", len(report.Rows)),
		zap.Duration("duration", report.Duration()),
	)
}

func resolveWindow(req Request, cfg types.StrategyConfig) (marketdata.Interval, marketdata.Period, error) {
	interval := req.Interval
	if interval == "" {
		interval = marketdata.Interval(cfg.DefaultInterval)
	}

	interval, err := marketdata.ParseInterval(string(interval))
	if err != nil {
		return "", marketdata.Period{}, err
	}

	period := req.Period
	if period.IsZero() {
		period, err = marketdata.ParsePeriod(cfg.DefaultPeriod)
		if err != nil {
			return "", marketdata.Period{}, err
		}
	}

	return interval, period, nil
}

type symbolResult struct {
	row    types.Row
	series types.Series
	set    types.IndicatorSet
}

// screenSymbol runs the whole pipeline for one symbol. It never panics and
// never returns an error: every failure becomes the row's error kind.
func (s *Screener) screenSymbol(ctx context.Context, symbol string, cfg types.StrategyConfig, interval marketdata.Interval, period marketdata.Period, indicators []types.IndicatorType) (result symbolResult) {
	log := s.logger.With(zap.String("symbol", symbol))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Recovered from panic while screening", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))

			result = symbolResult{row: types.NewErrorRow(symbol, errors.Newf(errors.ErrCodeIndicatorCalculation, "panic: %v", r))}
		}
	}()

	series, err := s.fetch(ctx, symbol, interval, period)
	if err != nil {
		log.Warn("Failed to fetch series", zap.Error(err))

		return symbolResult{row: types.NewErrorRow(symbol, err)}
	}

	result.series = series

	n := series.Len()
	if n == 0 {
		result.row = types.NewErrorRow(symbol, errors.Newf(errors.ErrCodeNoDataFound, "no data for %s (%s, %s)", symbol, interval, period))

		return result
	}

	if n < s.opts.MinBars {
		result.row = types.NewErrorRow(symbol, errors.NewInsufficientDataErrorf(s.opts.MinBars, n, symbol, "%s has %d bars, need at least %d", symbol, n, s.opts.MinBars))

		return result
	}

	if err := series.Validate(); err != nil {
		log.Warn("Rejected series", zap.Error(err))
		result.row = types.NewErrorRow(symbol, err)

		return result
	}

	computeStart := s.now()

	set, err := s.engine.Compute(series, union(indicators, cfg.RequiredIndicators(), []types.IndicatorType{types.IndicatorTypeATR}))
	if err != nil {
		result.row = types.NewErrorRow(symbol, err)

		return result
	}

	result.set = set

	classification, err := signal.ClassifySeries(series, set, cfg)

	s.metrics.ObserveCompute(s.now().Sub(computeStart))

	if err != nil {
		log.Debug("Classification failed", zap.Error(err))
		result.row = types.NewErrorRow(symbol, err)

		return result
	}

	row := types.Row{
		Symbol:  symbol,
		Signal:  classification.Signal,
		Values:  make(map[types.IndicatorType]float64, len(indicators)),
		BarTime: series.Bars[n-1].Time,
	}

	// Undefined values are left out so the row stays JSON encodable.
	for _, t := range indicators {
		if v := set.At(t, n-1); !math.IsNaN(v) && !math.IsInf(v, 0) {
			row.Values[t] = types.Round(v)
		}
	}

	fast, _ := set.Get(cfg.FastEMA)
	slow, _ := set.Get(cfg.SlowEMA)
	analysis := trend.AnalyzeWith(series, fast, slow)

	row.Trend = analysis.LatestTrend()
	row.Cross = analysis.LatestCross()
	row.Extras = extras(series, set, cfg, classification)

	if classification.Signal.IsActionable() {
		message := FormatAlert(symbol, cfg, classification, row.Extras)
		row.Alerted = s.notifier.Notify(ctx, message)
		s.metrics.ObserveAlert(row.Alerted)

		log.Info("Signal", zap.String("signal", string(row.Signal)), zap.Bool("alerted", row.Alerted))
	}

	result.row = row

	return result
}

// fetch loads the series with the per-symbol timeout. Every failure comes
// back as a fetch error.
func (s *Screener) fetch(ctx context.Context, symbol string, interval marketdata.Interval, period marketdata.Period) (types.Series, error) {
	if err := ctx.Err(); err != nil {
		return types.Series{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "skipped %s", symbol)
	}

	fetchCtx := ctx
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc

		fetchCtx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}

	start := s.now()
	series, err := s.loader.Fetch(fetchCtx, symbol, interval, period)
	s.metrics.ObserveFetch(s.now().Sub(start))

	if err != nil {
		if types.ErrorKindFromError(err) == types.ErrorKindFetchFailed {
			return types.Series{}, err
		}

		return types.Series{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", symbol)
	}

	if series.Symbol == "" {
		series.Symbol = symbol
	}

	return series, nil
}

func extras(series types.Series, set types.IndicatorSet, cfg types.StrategyConfig, c signal.Classification) types.RowExtras {
	n := series.Len()
	prev := series.Bars[n-2]

	return types.RowExtras{
		RSITrend:      c.RSITrend,
		FastAboveSlow: set.At(cfg.FastEMA, n-1) > set.At(cfg.SlowEMA, n-1),
		PrevHigh:      types.Round(prev.High),
		PrevLow:       types.Round(prev.Low),
		WeekHigh:      types.Round(indicator.RollingMax(series.Highs(), weekWindow)[n-1]),
		WeekLow:       types.Round(indicator.RollingMin(series.Lows(), weekWindow)[n-1]),
	}
}

// union keeps the first occurrence of every type across lists.
func union(lists ...[]types.IndicatorType) []types.IndicatorType {
	seen := make(map[types.IndicatorType]bool)

	var out []types.IndicatorType

	for _, list := range lists {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true

				out = append(out, t)
			}
		}
	}

	return out
}

// Summary renders a short summary such as "3 symbols: Buy=1 NoData=1 Error=1".
func Summary(report *types.Report) string {
	counts := report.Counts()
	out := fmt.Sprintf("%d symbols:", len(report.Rows))

	for _, sig := range []types.TradeSignal{
		types.TradeSignalBuy, types.TradeSignalSell, types.TradeSignalNoSetup,
		types.TradeSignalNoData, types.TradeSignalInvalidStrategy, types.TradeSignalError,
	} {
		if counts[sig] > 0 {
			out += fmt.Sprintf(" %s=%d", sig, counts[sig])
		}
	}

	return out
}
