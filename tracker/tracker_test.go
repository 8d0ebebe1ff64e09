package tracker

import (
	"context"
	"log"
	"os"
	"testing"
	"time"
)

func TestNewSunTracker(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		logger *log.Logger
	}{
		{
			name:   "valid parameters",
			config: DefaultConfig(),
			logger: log.New(os.Stdout, "TEST", log.LstdFlags),
		},
		{
			name:   "nil logger",
			config: DefaultConfig(),
			logger: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewSunTracker(tt.config, tt.logger)

			if tracker == nil {
				t.Fatal("NewSunTracker returned nil")
			}

			status := tracker.GetStatus()

			if status.IsRunning {
				t.Error("New tracker should not be running")
			}

			if status.HasPosition {
				t.Error("New tracker should not have a position")
			}

			if tt.logger == nil && tracker.logger == nil {
				t.Error("Expected default logger when nil provided")
			}
		})
	}
}

func TestGetInitialDelay(t *testing.T) {
	tracker := NewSunTracker(DefaultConfig(), nil)

	tests := []struct {
		name          string
		interval      time.Duration
		now           time.Time
		expectedDelay time.Duration
	}{
		{
			name:          "at start of hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC),
			expectedDelay: 0 * time.Minute,
		},
		{
			name:          "5 minutes into hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 5, 0, 0, time.UTC),
			expectedDelay: 10 * time.Minute,
		},
		{
			name:          "exactly at 15min mark",
			interval:      15 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 15, 0, 0, time.UTC),
			expectedDelay: 0 * time.Minute,
		},
		{
			name:          "17 minutes into hour with 15min interval",
			interval:      15 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 17, 0, 0, time.UTC),
			expectedDelay: 13 * time.Minute,
		},
		{
			name:          "30 seconds into minute with 1min interval",
			interval:      1 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 7, 30, 0, time.UTC),
			expectedDelay: 30 * time.Second,
		},
		{
			name:          "50 minutes into hour with 30min interval",
			interval:      30 * time.Minute,
			now:           time.Date(2025, 6, 20, 10, 50, 0, 0, time.UTC),
			expectedDelay: 10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := tracker.getInitialDelay(tt.now, tt.interval)
			if delay != tt.expectedDelay {
				t.Errorf("Expected delay %v, got %v", tt.expectedDelay, delay)
			}
		})
	}
}

func TestRunPositionPoll(t *testing.T) {
	config := DefaultConfig()
	tracker := NewSunTracker(config, nil)
	tracker.nowFunc = func() time.Time {
		return time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	}

	tracker.runPositionPoll()

	pos, posTime := tracker.GetCurrentPosition()
	if pos == nil {
		t.Fatal("Expected position after poll")
	}

	// Late June close to solar noon at this longitude: sun high in the south
	if pos.Elevation < 60 || pos.Elevation > 75 {
		t.Errorf("Unexpected elevation %.2f", pos.Elevation)
	}
	if pos.Azimuth < 140 || pos.Azimuth > 200 {
		t.Errorf("Unexpected azimuth %.2f", pos.Azimuth)
	}

	if posTime.IsZero() {
		t.Error("Expected position timestamp to be set")
	}

	if tracker.samples.IsEmpty() {
		t.Error("Expected a sample recorded by the poll")
	}

	status := tracker.GetStatus()
	if !status.HasPosition {
		t.Error("Expected status to report a position")
	}
}

func TestTrackerRunningState(t *testing.T) {
	config := DefaultConfig()
	config.PositionPollInterval = 50 * time.Millisecond
	config.SteeringInterval = time.Minute
	config.SampleFlushInterval = time.Minute
	config.WeatherUpdateInterval = time.Hour
	config.DryRun = true

	tracker := NewSunTracker(config, nil)
	// Keep the weather refresh task off the network
	tracker.weatherCache.cacheDuration = time.Hour
	tracker.weatherCache.Set(makeForecastForCache())

	if tracker.IsRunning() {
		t.Error("New tracker should not be running")
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- tracker.Start(ctx, false)
	}()

	// Give it a moment to start
	time.Sleep(100 * time.Millisecond)

	if !tracker.IsRunning() {
		t.Error("Tracker should be running after Start()")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Tracker did not stop after context cancellation")
	}

	if tracker.IsRunning() {
		t.Error("Tracker should not be running after cancellation")
	}
}

func TestTrackerDoubleStart(t *testing.T) {
	config := DefaultConfig()
	config.PositionPollInterval = time.Minute
	config.DryRun = true

	tracker := NewSunTracker(config, nil)
	tracker.weatherCache.cacheDuration = time.Hour
	tracker.weatherCache.Set(makeForecastForCache())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tracker.Start(ctx, false) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)

	if err := tracker.Start(ctx, false); err == nil {
		t.Error("Expected error on second Start()")
	}

	tracker.Stop()
}

func TestTrackerStop(t *testing.T) {
	tracker := NewSunTracker(DefaultConfig(), nil)

	// Stop on a never-started tracker should be a no-op
	tracker.Stop()

	if tracker.IsRunning() {
		t.Error("Tracker should not be running")
	}
}
