package solpos

import "math"

const (
	twoPi   = 2 * math.Pi
	deg2Rad = math.Pi / 180
)

// monthStart[m-1] is the day-of-year before the first day of month m in a
// non-leap year.
var monthStart = [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%400 == 0 || year%100 != 0)
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

// dayOfYear returns the day number within the year, e.g. Feb 1 = 32 and
// Mar 1 = 61 on leap years. The leap day is added for dates on or after
// day 60, except for Feb 29 itself which already lands on 60.
func dayOfYear(d Date) int {
	doy := monthStart[d.Month-1] + d.Day
	if isLeapYear(d.Year) && doy >= 60 && !(d.Month == 2 && doy == 60) {
		doy++
	}
	return doy
}

// daysSinceJ2000 returns the continuous day count from the epoch J2000.0
// (JD 2451545.0, noon 1 January 2000), the time argument of the
// Astronomical Almanac formulae.
func daysSinceJ2000(d Date) float64 {
	delta := d.Year - 1949
	leap := math.Floor(float64(delta) / 4) // former leap years
	jd := 32916.5 + float64(delta)*365 + leap + float64(dayOfYear(d)) + d.FractionalHour()/24
	return jd - 51545
}

// normalizeDeg reduces an angle to [0, 360) degrees.
func normalizeDeg(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// normalizeHours reduces a time value to [0, 24) hours.
func normalizeHours(x float64) float64 {
	x = math.Mod(x, 24)
	if x < 0 {
		x += 24
	}
	return x
}

// Compute returns the sun's azimuth and elevation for the given date and
// location. It fails with a *ValidationError when the calendar fields or
// coordinates are out of range; at elevation exactly ±90° the azimuth is
// undefined and reported as 0 by convention.
func Compute(d Date, loc Location) (Position, error) {
	if err := d.Validate(); err != nil {
		return Position{}, err
	}
	if err := loc.Validate(); err != nil {
		return Position{}, err
	}

	t := daysSinceJ2000(d)
	hour := d.FractionalHour()

	// Ecliptic coordinates
	mnlong := normalizeDeg(280.460 + 0.9856474*t)
	mnanom := normalizeDeg(357.528+0.9856003*t) * deg2Rad
	eclong := normalizeDeg(mnlong+1.915*math.Sin(mnanom)+0.020*math.Sin(2*mnanom)) * deg2Rad
	oblqec := (23.439 - 0.0000004*t) * deg2Rad

	// Right ascension and declination. The two-quadrant arctangent plus
	// sign corrections reproduces the reference formula exactly; at
	// cos(eclong) == 0 the quotient is ±Inf and Atan still lands in the
	// correct quadrant.
	num := math.Cos(oblqec) * math.Sin(eclong)
	den := math.Cos(eclong)
	ra := math.Atan(num / den)
	if den < 0 {
		ra += math.Pi
	} else if num < 0 {
		ra += twoPi
	}
	dec := math.Asin(math.Sin(oblqec) * math.Sin(eclong))

	// Greenwich and local mean sidereal time
	gmst := normalizeHours(6.697375 + 0.0657098242*t + hour)
	lmst := normalizeHours(gmst+loc.Longitude/15) * 15 * deg2Rad

	// Hour angle, normalized to (-pi, pi]
	ha := lmst - ra
	if ha < -math.Pi {
		ha += twoPi
	}
	if ha > math.Pi {
		ha -= twoPi
	}

	lat := loc.Latitude * deg2Rad

	sinEl := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	if sinEl >= 1 {
		// Sun at the zenith: azimuth undefined, report 0
		return Position{Azimuth: 0, Elevation: 90}, nil
	}
	if sinEl <= -1 {
		return Position{Azimuth: 0, Elevation: -90}, nil
	}
	el := math.Asin(sinEl)

	sinAz := -math.Cos(dec) * math.Sin(ha) / math.Cos(el)
	az := math.Asin(clamp1(sinAz))

	// Quadrant correction per Spencer, J.W. 1989. Solar Energy 42(4):353
	cosAzPos := math.Sin(dec)-math.Sin(el)*math.Sin(lat) >= 0
	if cosAzPos && math.Sin(az) < 0 {
		az += twoPi
	}
	if !cosAzPos {
		az = math.Pi - az
	}

	return Position{Azimuth: az / deg2Rad, Elevation: el / deg2Rad}, nil
}

// clamp1 limits floating point noise near the poles to the asin domain.
func clamp1(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
