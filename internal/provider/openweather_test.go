package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, minInterval time.Duration) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.Client(), "test-key", minInterval)
	c.weatherURL = srv.URL + "/weather"
	c.pollutionURL = srv.URL + "/air_pollution"
	return c, srv
}

func TestCurrentWeatherDecodesWithNumbers(t *testing.T) {
	assert := assert.New(t)

	var gotQuery map[string][]string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"main":{"temp":18.42,"pressure":1012},"dt":1717243200}`))
	}, time.Millisecond)

	doc, err := c.CurrentWeather(context.Background(), 51.5085, -0.1257)
	require.NoError(t, err)

	assert.Equal([]string{"51.5085"}, gotQuery["lat"])
	assert.Equal([]string{"metric"}, gotQuery["units"])
	assert.Equal([]string{"test-key"}, gotQuery["appid"])

	// Numbers must stay json.Number so the flattener can tag int vs float.
	main := doc["main"].(map[string]any)
	assert.Equal(json.Number("18.42"), main["temp"])
	assert.Equal(json.Number("1012"), main["pressure"])
}

func TestUpstreamErrors(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, time.Millisecond)

	_, err := c.CurrentWeather(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrUpstream)

	c, _ = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}, time.Millisecond)

	_, err = c.AirPollution(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestMissingAPIKey(t *testing.T) {
	c := NewClient(http.DefaultClient, "", time.Millisecond)
	_, err := c.CurrentWeather(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrUpstream)
}

// Two requests through the shared limiter must be spaced by at least the
// configured minimum interval.
func TestMinimumRequestSpacing(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
	)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	}, 50*time.Millisecond)

	ctx := context.Background()
	_, err := c.CurrentWeather(ctx, 1, 1)
	require.NoError(t, err)
	_, err = c.AirPollution(ctx, 1, 1)
	require.NoError(t, err)

	require.Len(t, times, 2)
	assert.GreaterOrEqual(t, times[1].Sub(times[0]), 45*time.Millisecond)
}
