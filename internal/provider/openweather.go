// Package provider holds the OpenWeatherMap client used by the ETL.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrUpstream classifies any provider HTTP or payload failure.
var ErrUpstream = errors.New("upstream request failed")

const (
	weatherBaseURL   = "https://api.openweathermap.org/data/2.5/weather"
	pollutionBaseURL = "https://api.openweathermap.org/data/2.5/air_pollution"
)

// Client fetches current weather and air pollution readings. All calls go
// through a shared rate limiter that enforces the minimum inter-request
// spacing, and each endpoint sits behind its own circuit breaker.
type Client struct {
	apiKey       string
	units        string
	weatherURL   string
	pollutionURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
	weatherCB    *gobreaker.CircuitBreaker
	pollutionCB  *gobreaker.CircuitBreaker
}

// NewClient creates a Client. minInterval is the minimum spacing between any
// two outbound requests, weather or pollution.
func NewClient(httpClient *http.Client, apiKey string, minInterval time.Duration) *Client {
	newBreaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		})
	}

	return &Client{
		apiKey:       apiKey,
		units:        "metric",
		weatherURL:   weatherBaseURL,
		pollutionURL: pollutionBaseURL,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Every(minInterval), 1),
		weatherCB:    newBreaker("openweather-weather"),
		pollutionCB:  newBreaker("openweather-pollution"),
	}
}

// CurrentWeather fetches the current conditions for a coordinate as a raw
// nested document.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (map[string]any, error) {
	return c.get(ctx, c.weatherCB, c.weatherURL, lat, lon)
}

// AirPollution fetches the current air-quality reading for a coordinate as
// a raw nested document.
func (c *Client) AirPollution(ctx context.Context, lat, lon float64) (map[string]any, error) {
	return c.get(ctx, c.pollutionCB, c.pollutionURL, lat, lon)
}

func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, baseURL string, lat, lon float64) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", ErrUpstream)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", c.units)
	values.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}

		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		var doc map[string]any
		if decErr := dec.Decode(&doc); decErr != nil {
			return nil, fmt.Errorf("decode response: %v", decErr)
		}
		return doc, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	doc, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrUpstream)
	}
	return doc, nil
}
