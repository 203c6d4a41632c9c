package provider

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// binanceInvalidSymbol is the API error code for an unknown trading pair.
const binanceInvalidSymbol = -1121

// binanceMaxKlines is the page size requested per call.
const binanceMaxKlines = 1000

// BinanceAPIClient is the subset of the Binance client used for klines.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

// BinanceKlinesService builds one klines request.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

type binanceAPIClient struct {
	client *binance.Client
}

func (c *binanceAPIClient) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesService{service: c.client.NewKlinesService()}
}

type binanceKlinesService struct {
	service *binance.KlinesService
}

func (s *binanceKlinesService) Symbol(symbol string) BinanceKlinesService {
	s.service.Symbol(symbol)

	return s
}

func (s *binanceKlinesService) Interval(interval string) BinanceKlinesService {
	s.service.Interval(interval)

	return s
}

func (s *binanceKlinesService) StartTime(startTime int64) BinanceKlinesService {
	s.service.StartTime(startTime)

	return s
}

func (s *binanceKlinesService) EndTime(endTime int64) BinanceKlinesService {
	s.service.EndTime(endTime)

	return s
}

func (s *binanceKlinesService) Limit(limit int) BinanceKlinesService {
	s.service.Limit(limit)

	return s
}

func (s *binanceKlinesService) Do(ctx context.Context) ([]*binance.Kline, error) {
	return s.service.Do(ctx)
}

// BinanceClient fetches klines from the Binance public market data API.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

// NewBinanceClient creates a client for the public API. A non-empty baseURL
// replaces the default endpoint.
func NewBinanceClient(baseURL string) (Provider, error) {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &BinanceClient{
		apiClient: &binanceAPIClient{client: client},
	}, nil
}

// NewBinanceClientWithAPI creates a client on top of apiClient.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{apiClient: apiClient}
}

// Fetch implements Provider. Klines are paged by open time until end is
// reached or a short page comes back.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time, multiplier int, timespan models.Timespan) ([]types.Bar, error) {
	interval, err := ConvertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.ReplaceAll(ticker, "-", ""))
	endMillis := end.UnixMilli()
	currentStart := start.UnixMilli()

	var bars []types.Bar

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(currentStart).
			EndTime(endMillis).
			Limit(binanceMaxKlines).
			Do(ctx)
		if err != nil {
			if isInvalidSymbol(err) {
				return nil, nil
			}

			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", symbol)
		}

		page, err := klinesToBars(klines)
		if err != nil {
			return nil, err
		}

		bars = append(bars, page...)

		if len(klines) < binanceMaxKlines {
			break
		}

		// Continue after the close time of the last kline to avoid duplicates
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	return normalizeBars(bars), nil
}

func isInvalidSymbol(err error) bool {
	var apiErr *common.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == binanceInvalidSymbol
	}

	return false
}

// klinesToBars converts Binance klines to bars, timestamped by open time.
func klinesToBars(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		var values [5]float64

		for i, s := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q at %d", s, k.OpenTime)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}

// ConvertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func ConvertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	supported := map[string]bool{
		"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
		"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
		"1d": true, "3d": true,
	}

	var interval string

	switch timespan {
	case models.Minute:
		interval = fmt.Sprintf("%dm", multiplier)
	case models.Hour:
		interval = fmt.Sprintf("%dh", multiplier)
	case models.Day:
		interval = fmt.Sprintf("%dd", multiplier)
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported weekly multiplier for Binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported monthly multiplier for Binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported timespan for Binance: %s", timespan)
	}

	if !supported[interval] {
		return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval for Binance: %s", interval)
	}

	return interval, nil
}
