package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Config represents the configuration for the sun tracker service
type Config struct {
	// Site location
	Latitude  float64 `json:"latitude"`  // Site latitude in degrees (north positive)
	Longitude float64 `json:"longitude"` // Site longitude in degrees (east positive)

	// Task intervals
	PositionPollInterval  time.Duration `json:"position_poll_interval"`  // How often to compute the sun position
	SteeringInterval      time.Duration `json:"steering_interval"`       // How often to push setpoints to the tracker
	SampleFlushInterval   time.Duration `json:"sample_flush_interval"`   // How often to persist collected samples
	WeatherUpdateInterval time.Duration `json:"weather_update_interval"` // How often to update weather
	DryRun                bool          `json:"dry_run"`                 // Run in dry-run mode (log setpoints without writing them)

	// Logging settings
	LogLevel  string `json:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `json:"log_format"` // Log format: text, json

	// Tracker Modbus server
	TrackerModbusAddress string `json:"tracker_modbus_address"` // Tracker Modbus server address (format: IP:PORT, e.g., "192.168.1.50:502")
	TrackerSlaveID       int    `json:"tracker_slave_id"`       // Modbus slave ID of the tracker controller

	// Steering thresholds
	MinTrackingElevation float64 `json:"min_tracking_elevation"` // Stow below this sun elevation (degrees)
	StowWindSpeed        float64 `json:"stow_wind_speed"`        // Stow above this wind speed (m/s, 0 = disabled)

	// Persistence
	DeviceID           int    `json:"device_id"`            // Device ID for the sun_positions table
	PostgresConnString string `json:"postgres_conn_string"` // PostgreSQL connection string

	// Web server
	WebServerPort int `json:"web_server_port"` // Port for status web server (0 = disabled)

	// Weather API settings
	APITimeout time.Duration `json:"api_timeout"` // Timeout for API calls
	UserAgent  string        `json:"user_agent"`  // User agent for weather API client
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Latitude:              43.5,  // Guelph, Ontario
		Longitude:             -80.5, // Guelph, Ontario
		PositionPollInterval:  30 * time.Second,
		SteeringInterval:      1 * time.Minute,
		SampleFlushInterval:   15 * time.Minute,
		WeatherUpdateInterval: 1 * time.Hour,
		DryRun:                false,
		LogLevel:              "info",
		LogFormat:             "text",
		TrackerModbusAddress:  "",
		TrackerSlaveID:        1,
		MinTrackingElevation:  5.0,
		StowWindSpeed:         15.0,
		DeviceID:              0,
		PostgresConnString:    "",
		WebServerPort:         0,
		APITimeout:            30 * time.Second,
		UserAgent:             "MyApp/1.0 (username@example.com)",
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", c.Longitude)
	}

	if c.PositionPollInterval <= 0 {
		return fmt.Errorf("position_poll_interval must be greater than 0, got: %s", c.PositionPollInterval)
	}

	if c.SteeringInterval <= 0 {
		return fmt.Errorf("steering_interval must be greater than 0, got: %s", c.SteeringInterval)
	}

	if c.SampleFlushInterval <= 0 {
		return fmt.Errorf("sample_flush_interval must be greater than 0, got: %s", c.SampleFlushInterval)
	}

	if c.WeatherUpdateInterval <= 0 {
		return fmt.Errorf("weather_update_interval must be greater than 0, got: %s", c.WeatherUpdateInterval)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.TrackerSlaveID < 0 || c.TrackerSlaveID > 246 {
		return fmt.Errorf("tracker_slave_id must be between 0 and 246, got: %d", c.TrackerSlaveID)
	}

	if c.MinTrackingElevation < -90 || c.MinTrackingElevation > 90 {
		return fmt.Errorf("min_tracking_elevation must be between -90 and 90, got: %f", c.MinTrackingElevation)
	}

	if c.StowWindSpeed < 0 {
		return fmt.Errorf("stow_wind_speed must be non-negative, got: %f", c.StowWindSpeed)
	}

	if c.WebServerPort < 0 || c.WebServerPort > 65535 {
		return fmt.Errorf("web_server_port must be between 0 and 65535, got: %d", c.WebServerPort)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}

	// Validate log format
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}

	// Validate user agent
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		PositionPollInterval  string `json:"position_poll_interval"`
		SteeringInterval      string `json:"steering_interval"`
		SampleFlushInterval   string `json:"sample_flush_interval"`
		WeatherUpdateInterval string `json:"weather_update_interval"`
		APITimeout            string `json:"api_timeout"`
	}{
		Alias:                 (*Alias)(c),
		PositionPollInterval:  c.PositionPollInterval.String(),
		SteeringInterval:      c.SteeringInterval.String(),
		SampleFlushInterval:   c.SampleFlushInterval.String(),
		WeatherUpdateInterval: c.WeatherUpdateInterval.String(),
		APITimeout:            c.APITimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		PositionPollInterval  string `json:"position_poll_interval"`
		SteeringInterval      string `json:"steering_interval"`
		SampleFlushInterval   string `json:"sample_flush_interval"`
		WeatherUpdateInterval string `json:"weather_update_interval"`
		APITimeout            string `json:"api_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.PositionPollInterval != "" {
		if c.PositionPollInterval, err = time.ParseDuration(aux.PositionPollInterval); err != nil {
			return fmt.Errorf("invalid position_poll_interval: %w", err)
		}
	}

	if aux.SteeringInterval != "" {
		if c.SteeringInterval, err = time.ParseDuration(aux.SteeringInterval); err != nil {
			return fmt.Errorf("invalid steering_interval: %w", err)
		}
	}

	if aux.SampleFlushInterval != "" {
		if c.SampleFlushInterval, err = time.ParseDuration(aux.SampleFlushInterval); err != nil {
			return fmt.Errorf("invalid sample_flush_interval: %w", err)
		}
	}

	if aux.WeatherUpdateInterval != "" {
		if c.WeatherUpdateInterval, err = time.ParseDuration(aux.WeatherUpdateInterval); err != nil {
			return fmt.Errorf("invalid weather_update_interval: %w", err)
		}
	}

	if aux.APITimeout != "" {
		if c.APITimeout, err = time.ParseDuration(aux.APITimeout); err != nil {
			return fmt.Errorf("invalid api_timeout: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
