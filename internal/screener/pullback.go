package screener

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-screener/internal/trend"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PullbackRequest configures the two-timeframe pullback scan. Zero fields
// take the values of DefaultPullbackRequest.
type PullbackRequest struct {
	Symbols       []string
	FastWindow    int
	SlowWindow    int
	SetupInterval marketdata.Interval
	SetupPeriod   marketdata.Period
	TrendInterval marketdata.Interval
	TrendPeriod   marketdata.Period
	// History is how many recent setups to keep per symbol.
	History int
}

// DefaultPullbackRequest returns EMA 50/200 on 2h bars over 60 days, the
// daily cross over 180 days and the last 10 setups.
func DefaultPullbackRequest(symbols ...string) PullbackRequest {
	return PullbackRequest{
		Symbols:       symbols,
		FastWindow:    50,
		SlowWindow:    200,
		SetupInterval: marketdata.IntervalTwoHours,
		SetupPeriod:   marketdata.MustParsePeriod("60d"),
		TrendInterval: marketdata.IntervalOneDay,
		TrendPeriod:   marketdata.MustParsePeriod("180d"),
		History:       10,
	}
}

func (r PullbackRequest) withDefaults() PullbackRequest {
	def := DefaultPullbackRequest()

	if r.FastWindow <= 0 {
		r.FastWindow = def.FastWindow
	}

	if r.SlowWindow <= 0 {
		r.SlowWindow = def.SlowWindow
	}

	if r.SetupInterval == "" {
		r.SetupInterval = def.SetupInterval
	}

	if r.SetupPeriod.IsZero() {
		r.SetupPeriod = def.SetupPeriod
	}

	if r.TrendInterval == "" {
		r.TrendInterval = def.TrendInterval
	}

	if r.TrendPeriod.IsZero() {
		r.TrendPeriod = def.TrendPeriod
	}

	if r.History <= 0 {
		r.History = def.History
	}

	return r
}

// PullbackResult is the outcome for one symbol.
type PullbackResult struct {
	Symbol      string                       `json:"symbol"`
	Trend       types.TrendLabel             `json:"trend"`
	LatestSetup optional.Option[trend.Setup] `json:"latest_setup"`
	// DailyCross is CrossNone when the trend series never crossed.
	DailyCross     types.CrossEvent `json:"daily_cross"`
	DailyCrossTime time.Time        `json:"daily_cross_time,omitempty"`
	History        []trend.Setup    `json:"history"`
	ErrorKind      types.ErrorKind  `json:"error_kind,omitempty"`
	Error          string           `json:"error,omitempty"`
}

// PullbackReport holds one result per requested symbol, in order.
type PullbackReport struct {
	SetupInterval string           `json:"setup_interval"`
	TrendInterval string           `json:"trend_interval"`
	Results       []PullbackResult `json:"results"`
}

// Pullback runs the pullback scan: setups on the setup timeframe and the
// most recent EMA cross on the trend timeframe.
func (s *Screener) Pullback(ctx context.Context, req PullbackRequest) (*PullbackReport, error) {
	req = req.withDefaults()

	if req.FastWindow >= req.SlowWindow {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "fast window %d must be less than slow window %d", req.FastWindow, req.SlowWindow)
	}

	for _, interval := range []marketdata.Interval{req.SetupInterval, req.TrendInterval} {
		if _, err := marketdata.ParseInterval(string(interval)); err != nil {
			return nil, err
		}
	}

	report := &PullbackReport{
		SetupInterval: string(req.SetupInterval),
		TrendInterval: string(req.TrendInterval),
		Results:       make([]PullbackResult, len(req.Symbols)),
	}

	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(s.opts.Workers)

	for i, symbol := range req.Symbols {
		g.Go(func() error {
			result := s.pullbackSymbol(ctx, symbol, req)

			mu.Lock()
			report.Results[i] = result
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return report, nil
}

func (s *Screener) pullbackSymbol(ctx context.Context, symbol string, req PullbackRequest) (result PullbackResult) {
	result = PullbackResult{
		Symbol:      symbol,
		Trend:       types.TrendUnknown,
		LatestSetup: optional.None[trend.Setup](),
		DailyCross:  types.CrossNone,
	}

	fail := func(err error) PullbackResult {
		result.ErrorKind = types.ErrorKindFromError(err)
		result.Error = err.Error()

		return result
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered from panic in pullback scan",
				zap.String("symbol", symbol), zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))

			result = fail(errors.Newf(errors.ErrCodeIndicatorCalculation, "panic: %v", r))
		}
	}()

	setupSeries, err := s.fetch(ctx, symbol, req.SetupInterval, req.SetupPeriod)
	if err != nil {
		return fail(err)
	}

	if setupSeries.IsEmpty() {
		return fail(errors.Newf(errors.ErrCodeNoDataFound, "no %s data for %s", req.SetupInterval, symbol))
	}

	if err := setupSeries.Validate(); err != nil {
		return fail(err)
	}

	setups := trend.Analyze(setupSeries, req.FastWindow, req.SlowWindow)
	result.Trend = setups.LatestTrend()
	result.History = setups.Setups(req.History)

	if latest, ok := setups.LatestSetup(); ok {
		result.LatestSetup = optional.Some(latest)
		result.Trend = setups.TrendAt(latest.Index)
	}

	trendSeries, err := s.fetch(ctx, symbol, req.TrendInterval, req.TrendPeriod)
	if err != nil {
		return fail(err)
	}

	if err := trendSeries.Validate(); err != nil {
		return fail(err)
	}

	if cross, at, ok := trend.Analyze(trendSeries, req.FastWindow, req.SlowWindow).LastCross(); ok {
		result.DailyCross = cross
		result.DailyCrossTime = at
	}

	return result
}
