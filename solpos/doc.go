// Package solpos computes the apparent position of the sun (azimuth and
// elevation) for a given civil date, time and geographic location.
//
// The calculation is the low-precision Astronomical Almanac algorithm
// (mean-anomaly/ecliptic-longitude approximation), accurate to about 0.01
// degrees. It is intended for solar-energy, shading and daylight analysis
// where a full ephemeris library would be overkill.
//
// Basic Usage:
//
//	pos, err := solpos.Compute(
//		solpos.Date{Year: 2025, Month: 6, Day: 20, Hour: 17},
//		solpos.Location{Latitude: 43.5, Longitude: -80.5},
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Printf("Azimuth: %.2f°, Elevation: %.2f°\n", pos.Azimuth, pos.Elevation)
//
// Conventions:
//
//   - The input hour is UT-equivalent civil time; the package performs no
//     timezone conversion. Longitude enters the calculation through local
//     sidereal time, west negative.
//   - Azimuth is measured in degrees from north through east, [0, 360).
//     Elevation is degrees above the horizon, [-90, 90].
//   - No atmospheric refraction or topocentric parallax is applied.
//
// The computation is a pure function: no internal state, no I/O, safe for
// concurrent use from any number of goroutines.
package solpos
