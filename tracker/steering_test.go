package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/devskill-org/solar-tracker/solpos"
	"github.com/devskill-org/solar-tracker/trackerbus"
)

// fakeTracker records the steering commands it receives
type fakeTracker struct {
	status     *trackerbus.TrackerStatus
	statusErr  error
	targets    []solpos.Position
	stowed     bool
	released   bool
	tracking   bool
	closed     bool
	writeErr   error
	stowCalled int
}

func (f *fakeTracker) ReadStatus() (*trackerbus.TrackerStatus, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

func (f *fakeTracker) WriteTargetPosition(azimuth, elevation float64) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.targets = append(f.targets, solpos.Position{Azimuth: azimuth, Elevation: elevation})
	return nil
}

func (f *fakeTracker) EnableTracking() error {
	f.tracking = true
	return nil
}

func (f *fakeTracker) Stow() error {
	f.stowed = true
	f.stowCalled++
	return nil
}

func (f *fakeTracker) Release() error {
	f.released = true
	return nil
}

func (f *fakeTracker) Close() error {
	f.closed = true
	return nil
}

func newSteeringTestTracker(fake *fakeTracker) *SunTracker {
	config := DefaultConfig()
	config.TrackerModbusAddress = "127.0.0.1:1502"

	tracker := NewSunTracker(config, nil)
	tracker.connectTracker = func(address string, slaveID byte) (trackerLink, error) {
		return fake, nil
	}
	return tracker
}

func TestDecideSteering(t *testing.T) {
	tracker := NewSunTracker(DefaultConfig(), nil)

	// Midday in Guelph in late June
	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	// Well after sunset
	night := time.Date(2025, 6, 20, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		pos        solpos.Position
		now        time.Time
		windSpeed  float64
		wantStow   bool
		wantReason string
	}{
		{
			name:      "tracking at midday",
			pos:       solpos.Position{Azimuth: 164.4, Elevation: 69.3},
			now:       midday,
			windSpeed: 3.0,
			wantStow:  false,
		},
		{
			name:       "stow on high wind",
			pos:        solpos.Position{Azimuth: 164.4, Elevation: 69.3},
			now:        midday,
			windSpeed:  20.0,
			wantStow:   true,
			wantReason: "high wind",
		},
		{
			name:       "stow below tracking elevation",
			pos:        solpos.Position{Azimuth: 290.0, Elevation: 2.0},
			now:        midday,
			windSpeed:  0,
			wantStow:   true,
			wantReason: "sun below tracking elevation",
		},
		{
			name:       "stow at night",
			pos:        solpos.Position{Azimuth: 20.0, Elevation: 6.0},
			now:        night,
			windSpeed:  0,
			wantStow:   true,
			wantReason: "outside daylight hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := tracker.decideSteering(tt.pos, tt.now, tt.windSpeed)

			if decision.Stow != tt.wantStow {
				t.Errorf("Expected stow=%v, got %v (reason: %s)", tt.wantStow, decision.Stow, decision.Reason)
			}
			if tt.wantStow && decision.Reason != tt.wantReason {
				t.Errorf("Expected reason %q, got %q", tt.wantReason, decision.Reason)
			}
		})
	}
}

func TestRunSteering_WritesTarget(t *testing.T) {
	fake := &fakeTracker{
		status: &trackerbus.TrackerStatus{State: trackerbus.StateTracking, WindSpeed: 2.0},
	}
	tracker := newSteeringTestTracker(fake)

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	tracker.runSteering()

	if len(fake.targets) != 1 {
		t.Fatalf("Expected 1 target written, got %d", len(fake.targets))
	}
	if !fake.tracking {
		t.Error("Expected tracking to be enabled")
	}
	if fake.stowed {
		t.Error("Tracker should not be stowed at midday")
	}
	if !fake.closed {
		t.Error("Expected connection closed after steering")
	}

	target := fake.targets[0]
	if target.Elevation < 60 || target.Elevation > 75 {
		t.Errorf("Unexpected target elevation %.2f", target.Elevation)
	}
}

func TestRunSteering_StowsOnHighWind(t *testing.T) {
	fake := &fakeTracker{
		status: &trackerbus.TrackerStatus{State: trackerbus.StateTracking, WindSpeed: 25.0},
	}
	tracker := newSteeringTestTracker(fake)

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	tracker.runSteering()

	if !fake.stowed {
		t.Error("Expected stow on high wind")
	}
	if len(fake.targets) != 0 {
		t.Errorf("Expected no targets written, got %d", len(fake.targets))
	}

	status := tracker.GetStatus()
	if !status.Stowed {
		t.Error("Expected status to report stowed")
	}
	if status.StowReason != "high wind" {
		t.Errorf("Expected stow reason %q, got %q", "high wind", status.StowReason)
	}
}

func TestRunSteering_AlreadyStowed(t *testing.T) {
	fake := &fakeTracker{
		status: &trackerbus.TrackerStatus{State: trackerbus.StateStowed, WindSpeed: 25.0},
	}
	tracker := newSteeringTestTracker(fake)

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	tracker.runSteering()

	if fake.stowCalled != 0 {
		t.Error("Expected no stow command when already stowed")
	}
}

func TestRunSteering_ReleasesStowWhenTracking(t *testing.T) {
	fake := &fakeTracker{
		status: &trackerbus.TrackerStatus{State: trackerbus.StateStowed, WindSpeed: 2.0},
	}
	tracker := newSteeringTestTracker(fake)

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	tracker.runSteering()

	if !fake.released {
		t.Error("Expected stow release before resuming tracking")
	}
	if len(fake.targets) != 1 {
		t.Errorf("Expected 1 target written after release, got %d", len(fake.targets))
	}
}

func TestRunSteering_DryRun(t *testing.T) {
	fake := &fakeTracker{
		status: &trackerbus.TrackerStatus{State: trackerbus.StateTracking, WindSpeed: 2.0},
	}
	tracker := newSteeringTestTracker(fake)
	config := tracker.GetConfig()
	config.DryRun = true

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	tracker.runSteering()

	if len(fake.targets) != 0 {
		t.Errorf("Dry-run should not write targets, got %d", len(fake.targets))
	}
	if fake.stowed {
		t.Error("Dry-run should not stow")
	}
}

func TestRunSteering_NoPosition(t *testing.T) {
	fake := &fakeTracker{}
	tracker := newSteeringTestTracker(fake)

	tracker.runSteering()

	if len(fake.targets) != 0 || fake.stowed {
		t.Error("Steering without a position should do nothing")
	}
}

func TestRunSteering_ConnectError(t *testing.T) {
	config := DefaultConfig()
	config.TrackerModbusAddress = "127.0.0.1:1502"

	tracker := NewSunTracker(config, nil)
	tracker.connectTracker = func(address string, slaveID byte) (trackerLink, error) {
		return nil, fmt.Errorf("connection refused")
	}

	midday := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tracker.nowFunc = func() time.Time { return midday }
	tracker.runPositionPoll()

	// Must not panic, just log and return
	tracker.runSteering()
}
