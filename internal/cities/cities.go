// Package cities loads the static city reference list that drives a run.
package cities

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// City identifies one queried location. The list order is the canonical
// iteration order for fetching and for every downstream dataset.
type City struct {
	CityID    int     `json:"city_id" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Load reads and validates the city reference JSON file.
func Load(path string) ([]City, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city file: %w", err)
	}

	var list []City
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse city file %s: %w", path, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("city file %s contains no cities", path)
	}

	for i, c := range list {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("city file %s entry %d: %w", path, i, err)
		}
	}
	return list, nil
}
