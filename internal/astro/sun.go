package astro

import (
	"math"
	"time"
)

// SunPosition calculates the apparent equatorial coordinates of the Sun
// using a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy is ~0.01 degrees in RA, more than enough for rise scanning.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	jd := julianDate(t)
	T := (jd - 2451545.0) / 36525.0

	// Mean longitude and mean anomaly of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Equation of center
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	sunLon := L0 + C

	// Apparent longitude, correcting for aberration and nutation
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity of the ecliptic
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	raDeg = radToDeg(ra)
	if raDeg < 0 {
		raDeg += 360
	}

	decDeg = radToDeg(math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad)))
	return raDeg, decDeg
}

// sunRiseElevation is the elevation at which the upper limb of the Sun
// appears on the horizon, accounting for refraction and solar radius.
const sunRiseElevation = -0.833

// sunScanStep is the sampling interval for rise scanning.
const sunScanStep = 10 * time.Minute

// NextSunRise scans forward from the given instant for the next time the
// Sun crosses the horizon upward at the observer's location. Returns
// ok=false when no crossing occurs within the window (polar day or night).
func NextSunRise(obs Observer, after time.Time, window time.Duration) (time.Time, bool) {
	if window <= 0 {
		window = 48 * time.Hour
	}

	prevT := after
	prevEl := sunElevation(obs, prevT)

	for t := after.Add(sunScanStep); !t.After(after.Add(window)); t = t.Add(sunScanStep) {
		el := sunElevation(obs, t)
		if prevEl <= sunRiseElevation && el > sunRiseElevation {
			return interpolateCrossing(prevT, t, prevEl, el, sunRiseElevation), true
		}
		prevT = t
		prevEl = el
	}

	return time.Time{}, false
}

// sunElevation returns the Sun's elevation in degrees at a time and place.
func sunElevation(obs Observer, t time.Time) float64 {
	ra, dec := SunPosition(t)
	horiz := EquatorialToHorizontal(SkyCoord{RAdeg: ra, DecDeg: dec}, obs, t)
	return horiz.ElDeg
}

// interpolateCrossing finds the time when elevation crosses a threshold,
// linearly interpolating between two samples.
func interpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 0.0001 {
		return t1
	}

	fraction := (threshold - el1) / (el2 - el1)
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	dt := t2.Sub(t1)
	return t1.Add(time.Duration(float64(dt) * fraction))
}
