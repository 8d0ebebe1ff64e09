package meteo

import "time"

// WeatherSymbol represents weather condition identifiers
type WeatherSymbol string

const (
	ClearSkyDay      WeatherSymbol = "clearsky_day"
	ClearSkyNight    WeatherSymbol = "clearsky_night"
	FairDay          WeatherSymbol = "fair_day"
	FairNight        WeatherSymbol = "fair_night"
	PartlyCloudyDay  WeatherSymbol = "partlycloudy_day"
	Cloudy           WeatherSymbol = "cloudy"
	Fog              WeatherSymbol = "fog"
	Rain             WeatherSymbol = "rain"
	Snow             WeatherSymbol = "snow"
	HeavySnow        WeatherSymbol = "heavysnow"
	LightSnowShowers WeatherSymbol = "lightsnowshowers_day"
)

// PointGeometry represents a GeoJSON point geometry
type PointGeometry struct {
	Type        string    `json:"type"`        // Should be "Point"
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude, altitude]
}

// ForecastTimeInstant contains weather parameters valid for a specific point in time
type ForecastTimeInstant struct {
	AirTemperature    *float64 `json:"air_temperature,omitempty"`
	CloudAreaFraction *float64 `json:"cloud_area_fraction,omitempty"`
	FogAreaFraction   *float64 `json:"fog_area_fraction,omitempty"`
	RelativeHumidity  *float64 `json:"relative_humidity,omitempty"`
	WindFromDirection *float64 `json:"wind_from_direction,omitempty"`
	WindSpeed         *float64 `json:"wind_speed,omitempty"`
}

// ForecastTimePeriod contains weather parameters valid for a specified time period
type ForecastTimePeriod struct {
	PrecipitationAmount *float64 `json:"precipitation_amount,omitempty"`
}

// ForecastSummary contains a summary of weather conditions
type ForecastSummary struct {
	SymbolCode WeatherSymbol `json:"symbol_code"`
}

// ForecastPeriodData contains forecast data for a specific period
type ForecastPeriodData struct {
	Summary *ForecastSummary    `json:"summary,omitempty"`
	Details *ForecastTimePeriod `json:"details,omitempty"`
}

// ForecastInstantData contains instant forecast data
type ForecastInstantData struct {
	Details *ForecastTimeInstant `json:"details,omitempty"`
}

// ForecastTimeStepData contains forecast data for a specific time step
type ForecastTimeStepData struct {
	Instant     *ForecastInstantData `json:"instant,omitempty"`
	Next1Hours  *ForecastPeriodData  `json:"next_1_hours,omitempty"`
	Next6Hours  *ForecastPeriodData  `json:"next_6_hours,omitempty"`
	Next12Hours *ForecastPeriodData  `json:"next_12_hours,omitempty"`
}

// ForecastTimeStep represents a forecast for a specific time step
type ForecastTimeStep struct {
	Time time.Time             `json:"time"`
	Data *ForecastTimeStepData `json:"data,omitempty"`
}

// Forecast contains the main forecast data
type Forecast struct {
	Timeseries []ForecastTimeStep `json:"timeseries"`
}

// METJSONForecast represents the root forecast response
type METJSONForecast struct {
	Type       string         `json:"type"` // Should be "Feature"
	Geometry   *PointGeometry `json:"geometry,omitempty"`
	Properties *Forecast      `json:"properties,omitempty"`
}

// Location represents coordinates for a forecast request
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Altitude  *int    `json:"altitude,omitempty"`
}

// QueryParams represents query parameters for forecast requests
type QueryParams struct {
	Location Location `json:"location"`
}
