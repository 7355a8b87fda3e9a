package normalize

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citysense/weather-etl/internal/timezone"
)

type stubResolver struct {
	name string
	err  error
}

func (s stubResolver) TimezoneAt(lat, lon float64) (string, error) {
	return s.name, s.err
}

func newTestNormalizer(t *testing.T, r timezone.Resolver) *Normalizer {
	t.Helper()
	conv, err := timezone.NewConverter(r, "Europe/London")
	require.NoError(t, err)
	return New(conv)
}

func rawWeather(cityID int, dt int64) map[string]any {
	return map[string]any{
		"weather": []any{map[string]any{
			"id":          json.Number("803"),
			"main":        "Clouds",
			"description": "broken clouds",
			"icon":        "04d",
		}},
		"main": map[string]any{
			"temp":       json.Number("18.42"),
			"feels_like": json.Number("18.05"),
			"temp_min":   json.Number("16.9"),
			"temp_max":   json.Number("19.8"),
			"pressure":   json.Number("1012"),
			"humidity":   json.Number("72"),
		},
		"visibility": json.Number("10000"),
		"wind":       map[string]any{"speed": json.Number("4.12"), "deg": json.Number("240")},
		"clouds":     map[string]any{"all": json.Number("75")},
		"dt":         json.Number(jsonInt(dt)),
		"sys": map[string]any{
			"sunrise": json.Number("1717216500"),
			"sunset":  json.Number("1717275300"),
		},
		"city_id":   cityID,
		"latitude":  48.85,
		"longitude": 2.35,
	}
}

func jsonInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestWeatherRowColumnsAndValues(t *testing.T) {
	assert := assert.New(t)
	n := newTestNormalizer(t, stubResolver{name: "Europe/Paris"})

	// 2024-06-01 12:00:00 UTC interpreted as London wall clock.
	ds, errs := n.Weather([]map[string]any{rawWeather(101, 1717243200)})
	require.Empty(t, errs)
	require.Len(t, ds.Rows, 1)

	row := ds.Rows[0]
	assert.Equal(weatherColumns, ds.Columns)
	assert.Len(row, len(weatherColumns))

	assert.Equal(int64(101), row["city_id"])
	assert.Equal(18.42, row["temperature"])
	assert.Equal(int64(1012), row["pressure"])
	assert.Equal("Clouds", row["weather_main"])
	assert.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), row["date_time"])
	// Paris is one hour ahead of the London reference clock in June.
	assert.Equal(time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), row["local_time"])

	// Columns not in the required set never leak into the row.
	assert.NotContains(row, "latitude")
	assert.NotContains(row, "longitude")
	assert.NotContains(row, "sys_country")
}

func TestDateTimeRoundedToMinute(t *testing.T) {
	n := newTestNormalizer(t, stubResolver{name: "Europe/London"})

	raw := rawWeather(7, 1717243229) // 12:00:29 -> rounds down
	ds, _ := n.Weather([]map[string]any{raw})
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), ds.Rows[0]["date_time"])

	raw = rawWeather(7, 1717243231) // 12:00:31 -> rounds up
	ds, _ = n.Weather([]map[string]any{raw})
	assert.Equal(t, time.Date(2024, 6, 1, 12, 1, 0, 0, time.UTC), ds.Rows[0]["date_time"])
}

// Garbage in a numeric field yields a null, never a dropped row or an error.
func TestForgivingCoercion(t *testing.T) {
	n := newTestNormalizer(t, stubResolver{name: "Europe/London"})

	raw := rawWeather(5, 1717243200)
	raw["visibility"] = "N/A"
	raw["main"].(map[string]any)["temp"] = "garbage"

	ds, errs := n.Weather([]map[string]any{raw})
	require.Empty(t, errs)
	require.Len(t, ds.Rows, 1)

	assert.Nil(t, ds.Rows[0]["visibility"])
	assert.Nil(t, ds.Rows[0]["temperature"])
	assert.Equal(t, int64(5), ds.Rows[0]["city_id"])
}

// Optional source fields (wind.gust, rain.1h) may be absent without error,
// and the output column set is unaffected.
func TestRequiredColumnInvariant(t *testing.T) {
	n := newTestNormalizer(t, stubResolver{name: "Europe/London"})

	sparse := rawWeather(9, 1717243200)
	rich := rawWeather(10, 1717243200)
	rich["wind"].(map[string]any)["gust"] = json.Number("9.3")
	rich["rain"] = map[string]any{"1h": json.Number("0.4")}

	ds, errs := n.Weather([]map[string]any{sparse, rich})
	require.Empty(t, errs)

	for _, row := range ds.Rows {
		assert.Len(t, row, len(weatherColumns))
		for _, col := range weatherColumns {
			assert.Contains(t, row, col)
		}
		assert.NotContains(t, row, "wind_gust")
		assert.NotContains(t, row, "rain_1h")
	}
}

func TestMappingIdempotence(t *testing.T) {
	flatDoc := map[string]any{
		"city_id$int":     int64(3),
		"main.temp$float": 21.5,
		"dt$int":          int64(1717243200),
	}
	first := weatherFields.Apply(flatDoc)
	second := weatherFields.Apply(flatDoc)
	assert.Equal(t, first, second)
}

func TestOrderingPreserved(t *testing.T) {
	n := newTestNormalizer(t, stubResolver{name: "Europe/London"})

	raws := []map[string]any{
		rawWeather(1, 1717243200),
		rawWeather(2, 1717243200),
		rawWeather(3, 1717243200),
	}
	ds, _ := n.Weather(raws)

	require.Len(t, ds.Rows, 3)
	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, ds.Rows[i]["city_id"])
	}
}

func TestTimezoneFailureSurfacedPerRow(t *testing.T) {
	n := newTestNormalizer(t, stubResolver{err: timezone.ErrNoTimezone})

	ds, errs := n.Weather([]map[string]any{rawWeather(42, 1717243200)})

	require.Len(t, ds.Rows, 1)
	assert.Nil(t, ds.Rows[0]["local_time"])
	require.Len(t, errs, 1)
	assert.Equal(t, int64(42), errs[0].CityID)
	assert.ErrorIs(t, errs[0].Err, timezone.ErrNoTimezone)
}

func TestPollutionRow(t *testing.T) {
	assert := assert.New(t)
	n := newTestNormalizer(t, stubResolver{name: "Europe/Paris"})

	raw := map[string]any{
		"coord": map[string]any{"lon": json.Number("2.35"), "lat": json.Number("48.85")},
		"list": []any{map[string]any{
			"main": map[string]any{"aqi": json.Number("2")},
			"components": map[string]any{
				"co":    json.Number("230.31"),
				"no":    json.Number("0.12"),
				"no2":   json.Number("8.4"),
				"o3":    json.Number("61.2"),
				"so2":   json.Number("1.9"),
				"pm2_5": json.Number("4.8"),
				"pm10":  json.Number("6.1"),
				"nh3":   json.Number("0.7"),
			},
			"dt": json.Number("1717243200"),
		}},
		"city_id":   205,
		"latitude":  48.85,
		"longitude": 2.35,
	}

	ds, errs := n.Pollution([]map[string]any{raw})
	require.Empty(t, errs)
	require.Len(t, ds.Rows, 1)

	row := ds.Rows[0]
	assert.Equal(pollutionColumns, ds.Columns)
	assert.Len(row, len(pollutionColumns))
	assert.Equal(int64(205), row["city_id"])
	assert.Equal(int64(2), row["aqi"])
	// Nitric oxide is a plain float column (see DESIGN.md).
	assert.Equal(0.12, row["no"])
	assert.Equal(time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC), row["local_time"])
	assert.NotContains(row, "latitude")
	assert.NotContains(row, "longitude")
}
