package solpos

import (
	"fmt"
	"math"
	"time"
)

// Date represents a civil calendar date and time of day. The hour is
// UT-equivalent civil time; no timezone is attached.
type Date struct {
	Year   int
	Month  int // 1-12
	Day    int // day of month
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// DateOf converts a time.Time to a Date, discarding any zone information
// beyond what the caller has already applied.
func DateOf(t time.Time) Date {
	return Date{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
	}
}

// FractionalHour returns the time of day as a decimal hour.
func (d Date) FractionalHour() float64 {
	return float64(d.Hour) + float64(d.Minute)/60 + float64(d.Second)/3600
}

// Validate checks that the date represents a valid Gregorian calendar
// date and time of day. Feb 29 is rejected on non-leap years.
func (d Date) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return &ValidationError{Field: "month", Message: fmt.Sprintf("must be between 1 and 12, got %d", d.Month)}
	}
	if max := daysInMonth(d.Year, d.Month); d.Day < 1 || d.Day > max {
		return &ValidationError{Field: "day", Message: fmt.Sprintf("must be between 1 and %d for %04d-%02d, got %d", max, d.Year, d.Month, d.Day)}
	}
	if d.Hour < 0 || d.Hour > 23 {
		return &ValidationError{Field: "hour", Message: fmt.Sprintf("must be between 0 and 23, got %d", d.Hour)}
	}
	if d.Minute < 0 || d.Minute > 59 {
		return &ValidationError{Field: "minute", Message: fmt.Sprintf("must be between 0 and 59, got %d", d.Minute)}
	}
	if d.Second < 0 || d.Second > 59 {
		return &ValidationError{Field: "second", Message: fmt.Sprintf("must be between 0 and 59, got %d", d.Second)}
	}
	return nil
}

// Location represents a geographic location in degrees. Longitude is west
// negative.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Validate checks that the coordinates are finite and within range.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) {
		return &ValidationError{Field: "latitude", Message: "must be finite"}
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return &ValidationError{Field: "longitude", Message: "must be finite"}
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("must be between -90 and 90, got %f", l.Latitude)}
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("must be between -180 and 180, got %f", l.Longitude)}
	}
	return nil
}

// Position is the computed horizontal coordinates of the sun.
type Position struct {
	Azimuth   float64 // degrees from north through east, [0, 360)
	Elevation float64 // degrees above the horizon, [-90, 90]
}
