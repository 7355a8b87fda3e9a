package etl

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/citysense/weather-etl/internal/cities"
	"github.com/citysense/weather-etl/internal/normalize"
)

// Inserter is the durable sink for a normalized dataset.
type Inserter interface {
	Insert(ctx context.Context, ds normalize.Dataset, table string) error
}

// FallbackWriter serializes a dataset that failed to insert.
type FallbackWriter interface {
	Write(ds normalize.Dataset, now time.Time) (string, error)
}

// RunSummary describes one completed pipeline run.
type RunSummary struct {
	StartedAt     time.Time `json:"started_at"`
	Elapsed       string    `json:"elapsed"`
	Cities        int       `json:"cities"`
	WeatherRows   int       `json:"weather_rows"`
	PollutionRows int       `json:"pollution_rows"`
	// Sinks are either "database:<table>" or the fallback file path.
	WeatherSink   string   `json:"weather_sink"`
	PollutionSink string   `json:"pollution_sink"`
	FetchErrors   []string `json:"fetch_errors,omitempty"`
	RowErrors     []string `json:"row_errors,omitempty"`
	FellBack      bool     `json:"fell_back"`
}

// Failed reports whether the run should be treated as a failure: a dataset
// went to the fallback file, or no city produced any data at all.
func (s RunSummary) Failed() bool {
	if s.FellBack {
		return true
	}
	return s.Cities > 0 && s.WeatherRows == 0 && s.PollutionRows == 0
}

// Service wires the fetcher, normalizer and sinks into one run.
type Service struct {
	fetcher    *Fetcher
	normalizer *normalize.Normalizer
	inserter   Inserter
	fallback   FallbackWriter
}

// NewService creates a Service.
func NewService(fetcher *Fetcher, normalizer *normalize.Normalizer, inserter Inserter, fallback FallbackWriter) *Service {
	return &Service{
		fetcher:    fetcher,
		normalizer: normalizer,
		inserter:   inserter,
		fallback:   fallback,
	}
}

// Run executes one full pipeline pass over the city list. It returns an
// error only when the run cannot complete at all (context canceled, or a
// batch lost both its insert and its fallback write); partial failures are
// reported through the summary.
func (s *Service) Run(ctx context.Context, list []cities.City) (RunSummary, error) {
	started := time.Now()
	summary := RunSummary{
		StartedAt: started.UTC(),
		Cities:    len(list),
	}

	fetched, err := s.fetcher.Fetch(ctx, list)
	if err != nil {
		return summary, err
	}
	for _, fe := range fetched.Errors {
		summary.FetchErrors = append(summary.FetchErrors, fe.Error())
	}

	weather, weatherErrs := s.normalizer.Weather(fetched.Weather)
	pollution, pollutionErrs := s.normalizer.Pollution(fetched.Pollution)
	for _, re := range append(weatherErrs, pollutionErrs...) {
		summary.RowErrors = append(summary.RowErrors, re.Error())
	}
	summary.WeatherRows = len(weather.Rows)
	summary.PollutionRows = len(pollution.Rows)

	summary.WeatherSink, err = s.load(ctx, weather, "weather", &summary)
	if err != nil {
		return summary, err
	}
	summary.PollutionSink, err = s.load(ctx, pollution, "pollution", &summary)
	if err != nil {
		return summary, err
	}

	summary.Elapsed = time.Since(started).Round(time.Millisecond).String()
	log.WithFields(log.Fields{
		"cities":         summary.Cities,
		"weather_rows":   summary.WeatherRows,
		"pollution_rows": summary.PollutionRows,
		"fetch_errors":   len(summary.FetchErrors),
		"row_errors":     len(summary.RowErrors),
		"elapsed":        summary.Elapsed,
	}).Info("run complete")

	return summary, nil
}

// load attempts the bulk insert and redirects the whole batch to the
// fallback file on any insert failure. No partial-success tracking, no
// retry of the insert.
func (s *Service) load(ctx context.Context, ds normalize.Dataset, table string, summary *RunSummary) (string, error) {
	if err := s.inserter.Insert(ctx, ds, table); err != nil {
		log.WithError(err).WithField("table", table).Error("insert failed, writing fallback file")

		path, ferr := s.fallback.Write(ds, time.Now())
		if ferr != nil {
			return "", ferr
		}
		summary.FellBack = true
		return path, nil
	}
	return "database:" + table, nil
}
