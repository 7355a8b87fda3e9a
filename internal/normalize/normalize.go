package normalize

import (
	"fmt"
	"time"

	"github.com/citysense/weather-etl/internal/flatten"
	"github.com/citysense/weather-etl/internal/timezone"
)

// RowError records a per-row normalization problem (currently only
// local-time resolution). The row itself is kept with a nil local_time.
type RowError struct {
	CityID int64
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("city %d: %v", e.CityID, e.Err)
}

// Normalizer flattens raw observations and applies the per-kind field maps.
type Normalizer struct {
	converter *timezone.Converter
}

// New creates a Normalizer using converter for local-time derivation.
func New(converter *timezone.Converter) *Normalizer {
	return &Normalizer{converter: converter}
}

// Weather normalizes raw current-weather payloads, in input order.
func (n *Normalizer) Weather(raws []map[string]any) (Dataset, []RowError) {
	return n.normalize("weather", raws, weatherFields, weatherColumns)
}

// Pollution normalizes raw air-pollution payloads, in input order.
func (n *Normalizer) Pollution(raws []map[string]any) (Dataset, []RowError) {
	return n.normalize("pollution", raws, pollutionFields, pollutionColumns)
}

func (n *Normalizer) normalize(name string, raws []map[string]any, fields FieldMap, columns []string) (Dataset, []RowError) {
	ds := Dataset{
		Name:    name,
		Columns: columns,
		Rows:    make([]Row, 0, len(raws)),
	}
	var errs []RowError

	for _, raw := range raws {
		mapped := fields.Apply(flatten.Flatten(raw))

		local, err := n.localTime(mapped)
		if err != nil {
			cityID, _ := mapped["city_id"].(int64)
			errs = append(errs, RowError{CityID: cityID, Err: err})
		}
		mapped["local_time"] = local

		ds.Rows = append(ds.Rows, project(mapped, columns))
	}
	return ds, errs
}

// localTime derives the site-local wall clock from the row's own timestamp
// and coordinates. It is never set independently of them.
func (n *Normalizer) localTime(mapped Row) (any, error) {
	dt, ok := mapped["date_time"].(time.Time)
	if !ok {
		return nil, fmt.Errorf("date_time missing or unparseable")
	}
	lat, okLat := mapped["latitude"].(float64)
	lon, okLon := mapped["longitude"].(float64)
	if !okLat || !okLon {
		return nil, fmt.Errorf("coordinates missing")
	}

	local, err := n.converter.LocalTime(dt, lat, lon)
	if err != nil {
		return nil, err
	}
	return local, nil
}

// project restricts a mapped row to the required columns, materializing nil
// for any column the source record did not provide.
func project(mapped Row, columns []string) Row {
	row := make(Row, len(columns))
	for _, col := range columns {
		row[col] = mapped[col]
	}
	return row
}
