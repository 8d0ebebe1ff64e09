package tracker

import (
	"context"
	"fmt"
	"time"
)

// saveSamples persists computed sun positions to the database
func (s *SunTracker) saveSamples(ctx context.Context, samples []PositionSample, cloudCoverage *float64, weatherSymbol *string) error {
	if s.db == nil {
		return fmt.Errorf("database connection not available")
	}

	if len(samples) == 0 {
		return nil
	}

	config := s.GetConfig()

	// Begin transaction
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Prepare upsert statement
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sun_positions (
			timestamp,
			device_id,
			azimuth,
			elevation,
			irradiance_factor,
			cloud_coverage,
			weather_symbol
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (timestamp, device_id) DO UPDATE SET
			azimuth = EXCLUDED.azimuth,
			elevation = EXCLUDED.elevation,
			irradiance_factor = EXCLUDED.irradiance_factor,
			cloud_coverage = EXCLUDED.cloud_coverage,
			weather_symbol = EXCLUDED.weather_symbol
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	// Insert all samples
	for _, sample := range samples {
		_, err := stmt.ExecContext(ctx,
			sample.ts,
			config.DeviceID,
			sample.azimuth,
			sample.elevation,
			sample.irradiance,
			cloudCoverage,
			weatherSymbol,
		)
		if err != nil {
			return fmt.Errorf("failed to insert sample at %s: %w", sample.ts.Format(time.RFC3339), err)
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Printf("Saved %d sun position samples to database", len(samples))
	return nil
}

// runSampleFlush persists collected position samples up to the current
// flush period boundary
func (s *SunTracker) runSampleFlush(ctx context.Context) {
	config := s.GetConfig()
	now := s.nowFunc()
	periodEndTime := now.Truncate(config.SampleFlushInterval)
	if periodEndTime.Before(now.Add(-config.SampleFlushInterval)) {
		periodEndTime = periodEndTime.Add(config.SampleFlushInterval)
	}

	samples := s.samples.CollectBefore(periodEndTime)
	if len(samples) == 0 {
		s.logger.Printf("Sample flush: no samples collected in period ending at %s", periodEndTime.Format(time.RFC3339))
		return
	}

	if s.db == nil {
		s.samples.ClearBefore(periodEndTime)
		return
	}

	// Fetch weather data to annotate the stored samples
	cloudCoverage, err := s.fetchCloudCoverage()
	if err != nil {
		s.logger.Printf("Sample flush: failed to fetch cloud coverage: %v", err)
	}

	weatherSymbol, err := s.fetchWeatherSymbol()
	if err != nil {
		s.logger.Printf("Sample flush: failed to fetch weather symbol: %v", err)
	}

	if config.DryRun {
		// DRY-RUN MODE: Log the action without saving to database
		last := samples[len(samples)-1]
		s.logger.Printf("Sample flush [DRY-RUN]: would save %d samples for device_id=%d (period ending %s)",
			len(samples), config.DeviceID, periodEndTime.Format(time.RFC3339))
		s.logger.Printf("  Latest: azimuth %.2f°, elevation %.2f°, irradiance factor %.3f",
			last.azimuth, last.elevation, last.irradiance)
		if cloudCoverage != nil {
			s.logger.Printf("  Cloud Coverage: %.1f%%", *cloudCoverage)
		}
		if weatherSymbol != nil {
			s.logger.Printf("  Weather: %s", *weatherSymbol)
		}
		s.samples.ClearBefore(periodEndTime)
		return
	}

	if err := s.saveSamples(ctx, samples, cloudCoverage, weatherSymbol); err != nil {
		s.logger.Printf("Sample flush: failed to save samples: %v", err)
		return
	}

	// Only clear samples for this period after successful DB insertion
	s.samples.ClearBefore(periodEndTime)
}
