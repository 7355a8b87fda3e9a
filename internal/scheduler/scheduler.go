// Package scheduler drives periodic ETL runs in serve mode.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/citysense/weather-etl/internal/cities"
	"github.com/citysense/weather-etl/internal/etl"
	"github.com/citysense/weather-etl/internal/store"
)

// Scheduler runs the pipeline on a fixed interval and records each
// summary for the status API.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *etl.Service
	runs      *store.RunLog
	cityList  []cities.City
	interval  time.Duration
}

// New creates a Scheduler.
func New(service *etl.Service, runs *store.RunLog, cityList []cities.City, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		runs:      runs,
		cityList:  cityList,
		interval:  interval,
	}
}

// Start schedules the periodic run and starts the underlying scheduler.
// Runs never overlap; a run that outlasts the interval delays the next one.
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()

	_, err := s.scheduler.Every(s.interval).Do(func() {
		log.Info("scheduler: starting pipeline run")

		ctx, cancel := context.WithTimeout(context.Background(), s.interval)
		defer cancel()

		summary, err := s.service.Run(ctx, s.cityList)
		if err != nil {
			log.WithError(err).Error("scheduler: run aborted")
			return
		}
		s.runs.Record(summary)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
