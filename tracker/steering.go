package tracker

import (
	"time"

	"github.com/devskill-org/solar-tracker/solpos"
	"github.com/devskill-org/solar-tracker/trackerbus"
	"github.com/sixdouglas/suncalc"
)

// trackerLink is the subset of tracker controller operations used by steering
type trackerLink interface {
	ReadStatus() (*trackerbus.TrackerStatus, error)
	WriteTargetPosition(azimuth, elevation float64) error
	EnableTracking() error
	Stow() error
	Release() error
	Close() error
}

func connectModbusTracker(address string, slaveID byte) (trackerLink, error) {
	return trackerbus.NewTCPClient(address, slaveID)
}

// SteeringDecision records the outcome of one steering iteration
type SteeringDecision struct {
	Target solpos.Position
	Stow   bool
	Reason string
	Time   time.Time
}

// decideSteering determines whether the tracker should follow the sun or
// stow, based on the computed sun position, sunrise/sunset times and the
// latest wind reading from the controller.
func (s *SunTracker) decideSteering(pos solpos.Position, now time.Time, windSpeed float64) SteeringDecision {
	config := s.GetConfig()

	decision := SteeringDecision{
		Target: pos,
		Time:   now,
	}

	if config.StowWindSpeed > 0 && windSpeed >= config.StowWindSpeed {
		decision.Stow = true
		decision.Reason = "high wind"
		return decision
	}

	if pos.Elevation < config.MinTrackingElevation {
		decision.Stow = true
		decision.Reason = "sun below tracking elevation"
		return decision
	}

	// Cross-check against sunrise/sunset so the tracker never chases a
	// refraction artifact near the horizon
	sunTimes := suncalc.GetTimes(now, config.Latitude, config.Longitude)
	sunrise := sunTimes["sunrise"].Value
	sunset := sunTimes["sunset"].Value
	if !sunrise.IsZero() && !sunset.IsZero() {
		if now.Before(sunrise) || now.After(sunset) {
			decision.Stow = true
			decision.Reason = "outside daylight hours"
			return decision
		}
	}

	return decision
}

// runSteering pushes the current sun position to the tracker controller,
// or stows it when tracking conditions are not met
func (s *SunTracker) runSteering() {
	config := s.GetConfig()

	pos, posTime := s.GetCurrentPosition()
	if pos == nil {
		s.logger.Printf("Steering: no sun position computed yet, skipping")
		return
	}

	if config.TrackerModbusAddress == "" {
		decision := s.decideSteering(*pos, posTime, 0)
		s.setLastSteering(decision)
		s.logger.Printf("Steering: no tracker configured (azimuth %.2f°, elevation %.2f°, stow=%v)",
			pos.Azimuth, pos.Elevation, decision.Stow)
		return
	}

	client, err := s.connectTracker(config.TrackerModbusAddress, byte(config.TrackerSlaveID))
	if err != nil {
		s.logger.Printf("Steering: failed to connect to tracker: %v", err)
		return
	}
	defer client.Close()

	windSpeed := 0.0
	status, err := client.ReadStatus()
	if err != nil {
		s.logger.Printf("Steering: failed to read tracker status: %v", err)
	} else {
		windSpeed = status.WindSpeed
	}

	decision := s.decideSteering(*pos, posTime, windSpeed)
	s.setLastSteering(decision)

	if config.DryRun {
		if decision.Stow {
			s.logger.Printf("Steering [DRY-RUN]: would stow tracker (%s)", decision.Reason)
		} else {
			s.logger.Printf("Steering [DRY-RUN]: would set target azimuth %.2f°, elevation %.2f°",
				pos.Azimuth, pos.Elevation)
		}
		return
	}

	if decision.Stow {
		if status != nil && status.State == trackerbus.StateStowed {
			return // Already stowed
		}
		if err := client.Stow(); err != nil {
			s.logger.Printf("Steering: failed to stow tracker: %v", err)
			return
		}
		s.logger.Printf("Steering: tracker stowed (%s)", decision.Reason)
		return
	}

	if status != nil && status.State == trackerbus.StateStowed {
		if err := client.Release(); err != nil {
			s.logger.Printf("Steering: failed to release stow: %v", err)
			return
		}
	}

	if err := client.EnableTracking(); err != nil {
		s.logger.Printf("Steering: failed to enable tracking: %v", err)
		return
	}

	if err := client.WriteTargetPosition(pos.Azimuth, pos.Elevation); err != nil {
		s.logger.Printf("Steering: failed to write target position: %v", err)
		return
	}

	s.logger.Printf("Steering: target set to azimuth %.2f°, elevation %.2f°", pos.Azimuth, pos.Elevation)
}

func (s *SunTracker) setLastSteering(decision SteeringDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSteering = &decision
}

// GetTrackerStatus returns the current tracker controller status.
// If TrackerModbusAddress is not configured, returns nil
func (s *SunTracker) GetTrackerStatus() *trackerbus.TrackerStatus {
	config := s.GetConfig()
	if config.TrackerModbusAddress == "" {
		return nil
	}

	client, err := s.connectTracker(config.TrackerModbusAddress, byte(config.TrackerSlaveID))
	if err != nil {
		s.logger.Printf("Failed to connect to tracker for status: %v", err)
		return nil
	}
	defer client.Close()

	status, err := client.ReadStatus()
	if err != nil {
		s.logger.Printf("Failed to read tracker status: %v", err)
		return nil
	}

	return status
}
