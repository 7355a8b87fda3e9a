// Package etl orchestrates the fetch -> normalize -> load pipeline.
package etl

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/citysense/weather-etl/internal/cities"
)

// WeatherClient is the provider surface the fetcher needs.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (map[string]any, error)
	AirPollution(ctx context.Context, lat, lon float64) (map[string]any, error)
}

// CityError records a failed request for one city and observation kind.
// A failure omits that city from the affected dataset only; the run
// continues.
type CityError struct {
	CityID int
	Kind   string
	Err    error
}

func (e CityError) Error() string {
	return fmt.Sprintf("city %d %s fetch: %v", e.CityID, e.Kind, e.Err)
}

// FetchResult holds the raw observation lists, in city order, plus any
// per-city failures.
type FetchResult struct {
	Weather   []map[string]any
	Pollution []map[string]any
	Errors    []CityError
}

// Fetcher issues the two provider requests per city.
type Fetcher struct {
	client WeatherClient
}

// NewFetcher creates a Fetcher.
func NewFetcher(client WeatherClient) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch walks the city list in order, fetching current weather and air
// pollution for each, and tags every payload with the city's identity so
// normalization can carry it through. Request pacing is enforced inside the
// client. Fetch only returns an error when the context is canceled.
func (f *Fetcher) Fetch(ctx context.Context, list []cities.City) (FetchResult, error) {
	var res FetchResult

	for _, city := range list {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}

		if doc, err := f.client.CurrentWeather(ctx, city.Latitude, city.Longitude); err != nil {
			log.WithError(err).WithField("city_id", city.CityID).Warn("weather fetch failed")
			res.Errors = append(res.Errors, CityError{CityID: city.CityID, Kind: "weather", Err: err})
		} else {
			tagCity(doc, city)
			res.Weather = append(res.Weather, doc)
		}

		if doc, err := f.client.AirPollution(ctx, city.Latitude, city.Longitude); err != nil {
			log.WithError(err).WithField("city_id", city.CityID).Warn("pollution fetch failed")
			res.Errors = append(res.Errors, CityError{CityID: city.CityID, Kind: "pollution", Err: err})
		} else {
			tagCity(doc, city)
			res.Pollution = append(res.Pollution, doc)
		}
	}
	return res, nil
}

// tagCity injects the identifying fields the field maps key on. Native Go
// numbers are used so the flattener tags them $int / $float.
func tagCity(doc map[string]any, city cities.City) {
	doc["city_id"] = city.CityID
	doc["latitude"] = city.Latitude
	doc["longitude"] = city.Longitude
}
