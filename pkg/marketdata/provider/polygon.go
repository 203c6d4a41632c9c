package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
)

// polygonAggsLimit is the page size requested from the aggregates endpoint.
const polygonAggsLimit = 50000

// PolygonAggsIterator walks aggregate results page by page.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the Polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIClient struct {
	client *polygon.Client
}

func (c *polygonAPIClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

// PolygonClient fetches aggregates from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
}

// NewPolygonClient creates a client. A non-empty baseURL sends every request
// to that host instead of api.polygon.io.
func NewPolygonClient(apiKey string, baseURL string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	if baseURL == "" {
		return &PolygonClient{apiClient: &polygonAPIClient{client: polygon.New(apiKey)}}, nil
	}

	target, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || target.Host == "" {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid polygon base url %q", baseURL)
	}

	hc := &http.Client{
		Transport: &rewriteHostTransport{target: target, next: http.DefaultTransport},
	}

	return &PolygonClient{apiClient: &polygonAPIClient{client: polygon.NewWithClient(apiKey, hc)}}, nil
}

// NewPolygonClientWithAPI creates a client on top of apiClient.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{apiClient: apiClient}
}

// Fetch implements Provider.
func (c *PolygonClient) Fetch(ctx context.Context, ticker string, start time.Time, end time.Time, multiplier int, timespan models.Timespan) ([]types.Bar, error) {
	if err := validatePolygonTimespan(multiplier, timespan); err != nil {
		return nil, err
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(polygonAggsLimit).WithAdjusted(true)

	iter := c.apiClient.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()

		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch aggregates for %s from Polygon", ticker)
	}

	return normalizeBars(bars), nil
}

func validatePolygonTimespan(multiplier int, timespan models.Timespan) error {
	if multiplier < 1 {
		return errors.Newf(errors.ErrCodeInvalidTimespan, "multiplier must be positive, got %d", multiplier)
	}

	switch timespan {
	case models.Minute, models.Hour, models.Day, models.Week, models.Month, models.Quarter, models.Year:
		return nil
	default:
		return errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported polygon timespan %q", timespan)
	}
}

// rewriteHostTransport points every request at target, keeping path and query.
type rewriteHostTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *rewriteHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.URL.Path = t.target.Path + req.URL.Path
	out.Host = t.target.Host

	return t.next.RoundTrip(out)
}
