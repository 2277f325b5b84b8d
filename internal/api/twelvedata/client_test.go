package twelvedata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesJSON = `{
  "meta": {"symbol": "AAPL", "interval": "1day"},
  "values": [
    {"datetime": "2025-03-07", "open": "235.1", "high": "241.3", "low": "234.0", "close": "239.07", "volume": "46273600"},
    {"datetime": "2025-03-06", "open": "234.4", "high": "237.8", "low": "233.2", "close": "235.33", "volume": "45170400"}
  ],
  "status": "ok"
}`

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{APIKey: "demo", BaseURL: url, RequestsPerSec: 100})
}

func TestBars(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/time_series", r.URL.Path)
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(seriesJSON))
	}))
	defer srv.Close()

	from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)

	bars, err := newTestClient(srv.URL).Bars(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "AAPL", query["symbol"])
	assert.Equal(t, "1day", query["interval"])
	assert.Equal(t, "2025-03-01", query["start_date"])
	assert.Equal(t, "2025-03-07", query["end_date"])
	assert.Equal(t, "demo", query["apikey"])

	assert.Equal(t, time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 235.33, bars[0].Close)
	assert.Equal(t, 239.07, bars[1].Close)
	assert.Equal(t, int64(46273600), bars[1].Volume)
}

func TestBarsAPIError(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantNoData bool
	}{
		{
			name:       "no data for window",
			body:       `{"code":400,"message":"No data is available on the specified dates.","status":"error"}`,
			wantNoData: true,
		},
		{
			name: "invalid key",
			body: `{"code":401,"message":"Invalid API key","status":"error"}`,
		},
		{
			name:       "empty values",
			body:       `{"meta":{"symbol":"X"},"values":[],"status":"ok"}`,
			wantNoData: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Bars(context.Background(), "X", time.Now().AddDate(0, -1, 0), time.Now())
			require.Error(t, err)
			assert.Equal(t, tt.wantNoData, errors.Is(err, ErrNoData))
		})
	}
}

func TestBarsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Bars(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request failed")
}
