package store

import (
	"errors"
	"sync"

	"github.com/citysense/weather-etl/internal/etl"
)

// ErrNoRuns is returned when no run has completed yet.
var ErrNoRuns = errors.New("no runs recorded")

// RunLog is a concurrency-safe record of the most recent run summary,
// read by the status API in serve mode.
type RunLog struct {
	mu     sync.RWMutex
	latest *etl.RunSummary
}

// NewRunLog creates an empty RunLog.
func NewRunLog() *RunLog {
	return &RunLog{}
}

// Record stores the summary of a completed run.
func (l *RunLog) Record(summary etl.RunSummary) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.latest = &summary
}

// Latest returns the most recent run summary.
func (l *RunLog) Latest() (etl.RunSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.latest == nil {
		return etl.RunSummary{}, ErrNoRuns
	}
	return *l.latest, nil
}
