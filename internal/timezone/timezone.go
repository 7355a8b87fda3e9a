// Package timezone resolves IANA timezone names from coordinates and
// converts observation timestamps into site-local wall-clock time.
package timezone

import (
	"errors"
	"fmt"
	"time"

	"github.com/ringsaturn/tzf"
)

// ErrNoTimezone is returned when no timezone polygon contains the
// coordinate (open ocean, poles).
var ErrNoTimezone = errors.New("no timezone found for coordinate")

// Resolver maps a coordinate to an IANA timezone name.
type Resolver interface {
	TimezoneAt(lat, lon float64) (string, error)
}

// FinderResolver resolves timezones offline via tzf's embedded boundary
// data (point-in-polygon lookup).
type FinderResolver struct {
	finder tzf.F
}

// NewFinderResolver builds a resolver backed by the default tzf dataset.
func NewFinderResolver() (*FinderResolver, error) {
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		return nil, fmt.Errorf("init timezone finder: %w", err)
	}
	return &FinderResolver{finder: finder}, nil
}

func (r *FinderResolver) TimezoneAt(lat, lon float64) (string, error) {
	name := r.finder.GetTimezoneName(lon, lat)
	if name == "" {
		return "", fmt.Errorf("%w: lat=%v lon=%v", ErrNoTimezone, lat, lon)
	}
	return name, nil
}

// Converter turns naive observation timestamps, recorded as wall-clock time
// in a fixed reference zone, into naive wall-clock time at the observation
// site.
type Converter struct {
	resolver  Resolver
	reference *time.Location
}

// NewConverter creates a Converter. referenceTZ is the IANA name of the zone
// the input timestamps are expressed in.
func NewConverter(resolver Resolver, referenceTZ string) (*Converter, error) {
	loc, err := time.LoadLocation(referenceTZ)
	if err != nil {
		return nil, fmt.Errorf("load reference timezone %q: %w", referenceTZ, err)
	}
	return &Converter{resolver: resolver, reference: loc}, nil
}

// LocalTime interprets dt's wall-clock fields in the reference zone,
// converts the instant to the zone resolved for (lat, lon), and returns the
// resulting wall clock stripped of its zone (rendered in UTC so callers can
// format it without an offset).
func (c *Converter) LocalTime(dt time.Time, lat, lon float64) (time.Time, error) {
	name, err := c.resolver.TimezoneAt(lat, lon)
	if err != nil {
		return time.Time{}, err
	}
	target, err := time.LoadLocation(name)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", name, err)
	}

	ref := time.Date(dt.Year(), dt.Month(), dt.Day(), dt.Hour(), dt.Minute(), dt.Second(), 0, c.reference)
	local := ref.In(target)

	return time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), 0, time.UTC), nil
}
