package tracker

import (
	"math"
	"sync"
	"time"

	"github.com/devskill-org/solar-tracker/meteo"
	"github.com/devskill-org/solar-tracker/solpos"
)

// WeatherForecastCache caches weather forecast data with expiration.
type WeatherForecastCache struct {
	mu            sync.RWMutex
	forecast      *meteo.METJSONForecast
	fetchedAt     time.Time
	cacheDuration time.Duration
}

// Get retrieves the cached weather forecast if it's still valid.
func (w *WeatherForecastCache) Get() (*meteo.METJSONForecast, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.forecast == nil {
		return nil, false
	}

	if time.Since(w.fetchedAt) > w.cacheDuration {
		return nil, false
	}

	return w.forecast, true
}

// Set updates the cached weather forecast with a new value.
func (w *WeatherForecastCache) Set(forecast *meteo.METJSONForecast) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.forecast = forecast
	w.fetchedAt = time.Now()
}

// PositionSample represents a single computed sun position.
type PositionSample struct {
	azimuth    float64
	elevation  float64
	irradiance float64 // estimated clear-sky fraction adjusted for clouds (0-1)
	ts         time.Time
}

// PositionSamples is a thread-safe collection of computed sun positions.
type PositionSamples struct {
	mu      sync.Mutex
	samples []PositionSample
}

// AddSample adds a new position sample to the collection.
func (p *PositionSamples) AddSample(azimuth, elevation, irradiance float64, ts time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, PositionSample{
		azimuth:    azimuth,
		elevation:  elevation,
		irradiance: irradiance,
		ts:         ts,
	})
}

// CollectBefore returns a copy of all samples with timestamp <= cutoffTime.
// Samples are preserved and must be cleared explicitly using ClearBefore()
// after successful processing.
func (p *PositionSamples) CollectBefore(cutoffTime time.Time) []PositionSample {
	p.mu.Lock()
	defer p.mu.Unlock()

	collected := make([]PositionSample, 0, len(p.samples))
	for _, sample := range p.samples {
		if sample.ts.After(cutoffTime) {
			continue
		}
		collected = append(collected, sample)
	}
	return collected
}

// ClearBefore removes all samples with timestamp <= cutoffTime from the collection.
// Should only be called after samples have been successfully processed for that period.
func (p *PositionSamples) ClearBefore(cutoffTime time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	filteredSamples := make([]PositionSample, 0, len(p.samples))
	for _, sample := range p.samples {
		if sample.ts.After(cutoffTime) {
			filteredSamples = append(filteredSamples, sample)
		}
	}
	p.samples = filteredSamples
}

// IsEmpty returns true if there are no samples collected.
func (p *PositionSamples) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples) == 0
}

// GetLatest returns the most recent sample, or nil if no samples exist
func (p *PositionSamples) GetLatest() *PositionSample {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.samples) == 0 {
		return nil
	}
	latest := p.samples[len(p.samples)-1]
	return &latest
}

// estimateIrradianceFactor estimates the fraction of peak irradiance reaching
// the panels for a given sun position, adjusted for cloud coverage and snow.
// Returns a value in [0, 1].
func (s *SunTracker) estimateIrradianceFactor(pos solpos.Position) float64 {
	// Solar altitude factor (0 at horizon, 1 at zenith)
	solarAngleFactor := math.Sin(pos.Elevation * math.Pi / 180)
	if solarAngleFactor <= 0 {
		return 0
	}

	forecast, ok := s.weatherCache.Get()
	if !ok {
		return solarAngleFactor
	}

	current := forecast.GetCurrentWeather()
	if current == nil {
		return solarAngleFactor
	}

	// Snow covered panels produce no power
	if symbol := current.GetSymbolCode(); symbol != nil && symbol.HasSnow() {
		return 0
	}

	// Cloud factor (0-1, where 1 = no clouds)
	cloudFactor := 1.0
	if cc := current.GetCloudCoverage(); cc != nil {
		cloudFraction := *cc / 100.0
		cloudFactor = 1.0 - (cloudFraction * 0.90) // Clouds reduce output by up to 90%
	}

	return solarAngleFactor * cloudFactor
}

// fetchCloudCoverage returns the current cloud coverage from the weather
// cache, fetching a fresh forecast on a cache miss.
func (s *SunTracker) fetchCloudCoverage() (*float64, error) {
	forecast, err := s.getOrFetchWeatherForecast()
	if err != nil {
		return nil, err
	}

	current := forecast.GetCurrentWeather()
	if current == nil {
		return nil, nil
	}

	return current.GetCloudCoverage(), nil
}

// fetchWeatherSymbol returns the current weather symbol from the weather
// cache, fetching a fresh forecast on a cache miss.
func (s *SunTracker) fetchWeatherSymbol() (*string, error) {
	forecast, err := s.getOrFetchWeatherForecast()
	if err != nil {
		return nil, err
	}

	current := forecast.GetCurrentWeather()
	if current == nil {
		return nil, nil
	}

	symbol := current.GetSymbolCode()
	if symbol == nil {
		return nil, nil
	}
	symbolStr := string(*symbol)
	return &symbolStr, nil
}

func (s *SunTracker) getOrFetchWeatherForecast() (*meteo.METJSONForecast, error) {
	if cachedForecast, ok := s.weatherCache.Get(); ok {
		return cachedForecast, nil
	}

	s.logger.Printf("Weather: fetching forecast from API")
	config := s.GetConfig()
	client := meteo.NewClient(config.UserAgent)

	location := meteo.Location{
		Latitude:  config.Latitude,
		Longitude: config.Longitude,
	}

	params := meteo.QueryParams{Location: location}
	forecast, err := client.GetCompact(params)
	if err != nil {
		return nil, err
	}

	s.weatherCache.Set(forecast)
	return forecast, nil
}
