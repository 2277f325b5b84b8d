package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Alias1177/StockSignals/internal/model"
	httpClient "github.com/Alias1177/StockSignals/internal/platform/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public Twelve Data endpoint
const DefaultBaseURL = "https://api.twelvedata.com"

// ErrNoData is returned when the API has no bars for the requested window
var ErrNoData = errors.New("twelve data returned no bars")

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	interval   string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey         string
	BaseURL        string
	Interval       string
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetryTime   time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:        options.RequestTimeout,
		RequestsPerSec: options.RequestsPerSec,
		MaxRetryTime:   options.MaxRetryTime,
	}

	// Apply defaults if not set
	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}
	if options.Interval == "" {
		options.Interval = "1day"
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		interval:   options.Interval,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

// Bars fetches daily bars for symbol between from and to inclusive, oldest first
func (c *Client) Bars(ctx context.Context, symbol string, from, to time.Time) ([]model.PriceBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", c.interval)
	q.Set("start_date", from.Format(time.DateOnly))
	q.Set("end_date", to.Format(time.DateOnly))
	q.Set("outputsize", "5000")
	q.Set("order", "ASC")

	c.logger.Debug().Str("symbol", symbol).Str("from", q.Get("start_date")).Str("to", q.Get("end_date")).Msg("Fetching bars")

	q.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "/time_series?" + q.Encode()

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var data model.TwelveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Error parsing JSON")
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	if data.Status == "error" {
		c.logger.Error().Str("symbol", symbol).Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		if data.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(data.Message), "no data") {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return nil, fmt.Errorf("twelve data API error %d: %s", data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		c.logger.Warn().Str("symbol", symbol).Msg("No bars in response")
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	bars := make([]model.PriceBar, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
		bars = append(bars, model.PriceBar{
			Time:   ts,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}

	// Sort bars oldest first regardless of the order the API honoured
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Time.Before(bars[j].Time)
	})

	c.logger.Debug().Str("symbol", symbol).Int("count", len(bars)).Msg("Fetched bars")
	return bars, nil
}

func parseDatetime(s string) (time.Time, error) {
	for _, layout := range []string{time.DateOnly, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}
