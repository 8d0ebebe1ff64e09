package tracker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/devskill-org/solar-tracker/solpos"
	_ "github.com/lib/pq"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the periodic task in a loop, respecting the initial delay and context cancellation
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	// Wait for initial delay
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			// Initial delay passed, run the task
			logger.Printf("[%s] Initial delay passed, running first iteration", pt.name)
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		// No initial delay, run immediately
		logger.Printf("[%s] Running immediately (no initial delay)", pt.name)
		pt.runFunc()
	}

	// Create ticker for periodic execution
	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// SunTracker drives a tracker controller along the computed sun path
type SunTracker struct {
	// Configuration
	config *Config

	// State
	currentPosition *solpos.Position
	positionTime    time.Time
	lastSteering    *SteeringDecision
	isRunning       bool
	stopChan        chan struct{}
	mu              sync.RWMutex

	// Collected position samples
	samples *PositionSamples

	// Weather forecast cache
	weatherCache WeatherForecastCache

	// Web server
	webServer *WebServer

	// Database connection
	db *sql.DB

	// Logging
	logger *log.Logger

	// Test hooks for dependency injection
	connectTracker func(address string, slaveID byte) (trackerLink, error)
	nowFunc        func() time.Time
}

// NewSunTracker creates a new tracker service instance
func NewSunTracker(config *Config, logger *log.Logger) *SunTracker {
	if logger == nil {
		logger = log.Default()
	}

	tracker := &SunTracker{
		config:   config,
		samples:  &PositionSamples{},
		stopChan: make(chan struct{}),
		logger:   logger,
		weatherCache: WeatherForecastCache{
			cacheDuration: 2 * time.Hour,
		},
		connectTracker: connectModbusTracker,
		nowFunc:        time.Now,
	}

	return tracker
}

// NewSunTrackerWithWebServer creates a new tracker service instance with the status web server
func NewSunTrackerWithWebServer(config *Config, logger *log.Logger) *SunTracker {
	tracker := NewSunTracker(config, logger)
	tracker.webServer = NewWebServer(tracker, config.WebServerPort)
	return tracker
}

// SetConfig updates the configuration
func (s *SunTracker) SetConfig(config *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// GetConfig returns the current configuration
func (s *SunTracker) GetConfig() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// GetCurrentPosition returns the most recently computed sun position,
// or nil if no position has been computed yet
func (s *SunTracker) GetCurrentPosition() (*solpos.Position, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.currentPosition == nil {
		return nil, time.Time{}
	}

	posCopy := *s.currentPosition
	return &posCopy, s.positionTime
}

func (s *SunTracker) getInitialDelay(now time.Time, delayInterval time.Duration) time.Duration {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	delay := now.Sub(top)
	for delay > 0 {
		delay = delay - delayInterval
	}
	return -delay
}

// runPositionPoll computes the current sun position and records a sample
func (s *SunTracker) runPositionPoll() {
	config := s.GetConfig()
	now := s.nowFunc().UTC()

	pos, err := solpos.Compute(solpos.DateOf(now), solpos.Location{
		Latitude:  config.Latitude,
		Longitude: config.Longitude,
	})
	if err != nil {
		s.logger.Printf("Position poll: failed to compute sun position: %v", err)
		return
	}

	irradiance := s.estimateIrradianceFactor(pos)

	s.mu.Lock()
	s.currentPosition = &pos
	s.positionTime = now
	s.mu.Unlock()

	s.samples.AddSample(pos.Azimuth, pos.Elevation, irradiance, now)
}

// runWeatherRefresh refreshes the weather forecast cache
func (s *SunTracker) runWeatherRefresh() {
	if _, err := s.getOrFetchWeatherForecast(); err != nil {
		s.logger.Printf("Weather: failed to fetch forecast: %v", err)
	}
}

// Start begins the tracker's periodic tasks
func (s *SunTracker) Start(ctx context.Context, serverOnly bool) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("tracker is already running")
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	if s.config.DryRun {
		s.logger.Printf("DRY-RUN MODE ENABLED: Setpoints will be logged only")
	}

	// Start web server if configured
	if s.webServer != nil {
		err := s.webServer.Start()
		if err != nil {
			s.logger.Printf("Failed to start web server: %v", err)
		} else {
			s.logger.Printf("Web server started on port %d", s.webServer.port)
		}
		if serverOnly {
			return err
		}
	}

	config := s.GetConfig()

	// Open the database connection for sample persistence
	if s.config.PostgresConnString != "" {
		db, err := sql.Open("postgres", s.config.PostgresConnString)
		if err != nil {
			s.logger.Printf("Sample persistence: failed to connect to DB: %v", err)
		} else {
			s.db = db
		}
	}

	// Calculate initial delays
	now := s.nowFunc()
	steeringInitialDelay := s.getInitialDelay(now, config.SteeringInterval) + time.Second
	flushInitialDelay := s.getInitialDelay(now, config.SampleFlushInterval)

	// Create periodic tasks
	tasks := []PeriodicTask{
		{
			name:         "PositionPoll",
			initialDelay: 0, // Run immediately
			interval:     config.PositionPollInterval,
			runFunc: func() {
				s.runPositionPoll()
			},
		},
		{
			name:         "Steering",
			initialDelay: steeringInitialDelay,
			interval:     config.SteeringInterval,
			runFunc: func() {
				s.runSteering()
			},
		},
		{
			name:         "SampleFlush",
			initialDelay: flushInitialDelay,
			interval:     config.SampleFlushInterval,
			runFunc: func() {
				s.runSampleFlush(ctx)
			},
		},
		{
			name:         "WeatherRefresh",
			initialDelay: 0,
			interval:     config.WeatherUpdateInterval,
			runFunc: func() {
				s.runWeatherRefresh()
			},
		},
	}

	// Start each periodic task in its own goroutine
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		task := task // capture loop variable
		go func() {
			defer wg.Done()
			task.run(ctx, s.stopChan, s.logger)
		}()
	}

	// Wait for all tasks to complete
	wg.Wait()

	s.logger.Printf("All periodic tasks stopped")
	s.stop()
	return nil
}

// Stop gracefully stops the tracker
func (s *SunTracker) Stop() {
	s.stop()
}

func (s *SunTracker) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.isRunning = false

	// Close stopChan if it's not already closed
	select {
	case <-s.stopChan:
		// Already closed
	default:
		close(s.stopChan)
	}

	// Stop web server if running
	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Printf("Error stopping web server: %v", err)
		}
	}

	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
}

// IsRunning returns whether the tracker is currently running
func (s *SunTracker) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current status of the tracker service
func (s *SunTracker) GetStatus() TrackerServiceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := TrackerServiceStatus{
		IsRunning:   s.isRunning,
		HasPosition: s.currentPosition != nil,
	}

	if s.currentPosition != nil {
		status.Azimuth = s.currentPosition.Azimuth
		status.Elevation = s.currentPosition.Elevation
		status.PositionTime = s.positionTime.UTC().Format(time.RFC3339)
	}

	if s.lastSteering != nil {
		status.Stowed = s.lastSteering.Stow
		status.StowReason = s.lastSteering.Reason
	}

	return status
}

// TrackerServiceStatus represents the current status of the tracker service
type TrackerServiceStatus struct {
	IsRunning    bool    `json:"is_running"`
	HasPosition  bool    `json:"has_position"`
	Azimuth      float64 `json:"azimuth,omitempty"`
	Elevation    float64 `json:"elevation,omitempty"`
	PositionTime string  `json:"position_time,omitempty"`
	Stowed       bool    `json:"stowed"`
	StowReason   string  `json:"stow_reason,omitempty"`
}
