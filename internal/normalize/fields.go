package normalize

// weatherFields maps the flattened current-weather payload (plus the
// injected city tags) onto output columns.
var weatherFields = FieldMap{
	"city_id$int":             {Column: "city_id", Type: TypeInt},
	"longitude$float":         {Column: "longitude", Type: TypeFloat},
	"latitude$float":          {Column: "latitude", Type: TypeFloat},
	"weather.[0].id$int":      {Column: "weather_id", Type: TypeInt},
	"weather.[0].main":        {Column: "weather_main", Type: TypeString},
	"weather.[0].description": {Column: "weather_description", Type: TypeString},
	"weather.[0].icon":        {Column: "weather_icon", Type: TypeString},
	"main.temp$float":         {Column: "temperature", Type: TypeFloat},
	"main.feels_like$float":   {Column: "feels_like", Type: TypeFloat},
	"main.temp_min$float":     {Column: "temp_min", Type: TypeFloat},
	"main.temp_max$float":     {Column: "temp_max", Type: TypeFloat},
	"main.pressure$int":       {Column: "pressure", Type: TypeInt},
	"main.humidity$int":       {Column: "humidity", Type: TypeInt},
	"main.sea_level$int":      {Column: "sea_level", Type: TypeInt},
	"main.grnd_level$int":     {Column: "grnd_level", Type: TypeInt},
	"visibility$int":          {Column: "visibility", Type: TypeInt},
	"wind.speed$float":        {Column: "wind_speed", Type: TypeFloat},
	"wind.deg$int":            {Column: "wind_deg", Type: TypeInt},
	"clouds.all$int":          {Column: "clouds_all", Type: TypeInt},
	"dt$int":                  {Column: "date_time", Type: TypeDateTime},
	"sys.type$int":            {Column: "sys_type", Type: TypeInt},
	"sys.id$int":              {Column: "sys_id", Type: TypeInt},
	"sys.country":             {Column: "sys_country", Type: TypeString},
	"sys.sunrise$int":         {Column: "sunrise", Type: TypeDateTime},
	"sys.sunset$int":          {Column: "sunset", Type: TypeDateTime},
	"timezone$int":            {Column: "timezone", Type: TypeInt},
	"id$int":                  {Column: "id", Type: TypeInt},
	"name":                    {Column: "name", Type: TypeString},
	"cod$int":                 {Column: "cod", Type: TypeInt},
	"wind.gust$float":         {Column: "wind_gust", Type: TypeFloat},
	"rain.1h$float":           {Column: "rain_1h", Type: TypeFloat},
}

// weatherColumns is the fixed column set of the weather table.
var weatherColumns = []string{
	"city_id", "date_time", "local_time", "temperature", "feels_like",
	"temp_min", "temp_max", "pressure", "humidity", "visibility",
	"wind_speed", "wind_deg", "clouds_all", "weather_main",
	"weather_description", "weather_icon", "sunrise", "sunset",
}

// pollutionFields maps the flattened air-pollution payload. The upstream
// endpoint wraps the reading in a one-element list.
var pollutionFields = FieldMap{
	"city_id$int":                     {Column: "city_id", Type: TypeInt},
	"list.[0].dt$int":                 {Column: "date_time", Type: TypeDateTime},
	"longitude$float":                 {Column: "longitude", Type: TypeFloat},
	"latitude$float":                  {Column: "latitude", Type: TypeFloat},
	"list.[0].main.aqi$int":           {Column: "aqi", Type: TypeInt},
	"list.[0].components.co$float":    {Column: "co", Type: TypeFloat},
	"list.[0].components.no$float":    {Column: "no", Type: TypeFloat},
	"list.[0].components.no2$float":   {Column: "no2", Type: TypeFloat},
	"list.[0].components.o3$float":    {Column: "o3", Type: TypeFloat},
	"list.[0].components.so2$float":   {Column: "so2", Type: TypeFloat},
	"list.[0].components.pm2_5$float": {Column: "pm2_5", Type: TypeFloat},
	"list.[0].components.pm10$float":  {Column: "pm10", Type: TypeFloat},
	"list.[0].components.nh3$float":   {Column: "nh3", Type: TypeFloat},
}

// pollutionColumns is the fixed column set of the pollution table.
// Latitude and longitude feed the local-time computation and are dropped.
var pollutionColumns = []string{
	"city_id", "date_time", "local_time", "aqi",
	"co", "no", "no2", "o3", "so2", "pm2_5", "pm10", "nh3",
}
