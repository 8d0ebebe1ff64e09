// Package sunpath samples the sun's position across a civil day and
// renders the resulting path as a text report. It is presentation glue on
// top of package solpos: one core call per time sample, no state of its
// own.
package sunpath

import (
	"fmt"
	"time"

	"github.com/devskill-org/solar-tracker/solpos"
)

// Point is one time sample of the sun's path.
type Point struct {
	Hour      float64 // decimal hour of day
	Azimuth   float64 // degrees
	Elevation float64 // degrees
	Zenith    float64 // degrees, 90 - elevation
}

// Sample computes the sun position for every step across the given civil
// day, starting at midnight. Steps below one minute are not supported.
func Sample(year, month, day int, loc solpos.Location, step time.Duration) ([]Point, error) {
	if step < time.Minute {
		return nil, fmt.Errorf("sample step must be at least one minute, got %s", step)
	}

	points := make([]Point, 0, int(24*time.Hour/step))
	for offset := time.Duration(0); offset < 24*time.Hour; offset += step {
		minutes := int(offset / time.Minute)
		date := solpos.Date{
			Year:   year,
			Month:  month,
			Day:    day,
			Hour:   minutes / 60,
			Minute: minutes % 60,
		}
		pos, err := solpos.Compute(date, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to compute position at %02d:%02d: %w", date.Hour, date.Minute, err)
		}
		points = append(points, Point{
			Hour:      date.FractionalHour(),
			Azimuth:   pos.Azimuth,
			Elevation: pos.Elevation,
			Zenith:    90 - pos.Elevation,
		})
	}
	return points, nil
}

// Extrema holds the daily maxima and minima of the sampled path.
type Extrema struct {
	MaxAzimuth   float64
	MinAzimuth   float64
	MaxElevation float64
	MinElevation float64
	MaxZenith    float64
	MinZenith    float64
}

// FindExtrema scans the sampled path for its extreme values.
func FindExtrema(points []Point) (Extrema, error) {
	if len(points) == 0 {
		return Extrema{}, fmt.Errorf("no points sampled")
	}

	ex := Extrema{
		MaxAzimuth:   points[0].Azimuth,
		MinAzimuth:   points[0].Azimuth,
		MaxElevation: points[0].Elevation,
		MinElevation: points[0].Elevation,
		MaxZenith:    points[0].Zenith,
		MinZenith:    points[0].Zenith,
	}
	for _, p := range points[1:] {
		if p.Azimuth > ex.MaxAzimuth {
			ex.MaxAzimuth = p.Azimuth
		}
		if p.Azimuth < ex.MinAzimuth {
			ex.MinAzimuth = p.Azimuth
		}
		if p.Elevation > ex.MaxElevation {
			ex.MaxElevation = p.Elevation
		}
		if p.Elevation < ex.MinElevation {
			ex.MinElevation = p.Elevation
		}
		if p.Zenith > ex.MaxZenith {
			ex.MaxZenith = p.Zenith
		}
		if p.Zenith < ex.MinZenith {
			ex.MinZenith = p.Zenith
		}
	}
	return ex, nil
}

// SolarNoon returns the sample with the highest elevation.
func SolarNoon(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, fmt.Errorf("no points sampled")
	}

	best := points[0]
	for _, p := range points[1:] {
		if p.Elevation > best.Elevation {
			best = p
		}
	}
	return best, nil
}
