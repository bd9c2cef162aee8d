// Package orbit estimates geodetic satellite positions from TLE strings.
//
// The model is a deliberate closed-form approximation, not SGP4: the true
// anomaly is advanced linearly over the orbital period instead of solving
// Kepler's equation, and no perturbations are applied. Positions are
// best-effort for visualization, not for operational use.
package orbit

import (
	"math"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

const (
	muEarth       = 398600.0 // km^3/s^2
	earthRadiusKm = 6371.0
	minAltitudeKm = 100.0
)

// Position is a geodetic position with scalar speed.
type Position struct {
	Latitude    float64 // degrees, [-90, 90]
	Longitude   float64 // degrees, [-180, 180]
	AltitudeKm  float64 // >= 100 after clamping
	VelocityKmS float64 // >= 0 after clamping
}

// Estimate returns the approximate position of a satellite described by the
// TLE pair at instant t. The function is total: malformed input falls back to
// default elements and the output is clamped, so no combination of strings
// produces an error or an out-of-range value.
func Estimate(line1, line2 string, t time.Time) Position {
	els := ParseElements(line1, line2)

	// Fraction of the current orbital period elapsed, from the Julian date
	// of t modulo the period.
	periodDays := 1.0 / els.MeanMotion
	jd := julianDate(t)
	frac := math.Mod(jd, periodDays) / periodDays

	// Linear advance of the mean anomaly by 360 degrees per period. This is
	// the documented shortcut: no Kepler-equation solve.
	trueAnomDeg := math.Mod(els.MeanAnomaly+frac*360.0, 360.0)

	// Semi-major axis from mean motion (rad/s) and vis-viva speed.
	n := els.MeanMotion * 2 * math.Pi / 86400.0
	a := math.Cbrt(muEarth / (n * n))

	nu := trueAnomDeg * math.Pi / 180.0
	r := a * (1.0 - els.Eccentricity*math.Cos(nu))
	altitude := r - earthRadiusKm

	incl := els.Inclination * math.Pi / 180.0
	u := nu + els.ArgOfPerigee*math.Pi/180.0

	lat := math.Asin(math.Sin(incl)*math.Sin(u)) * 180.0 / math.Pi
	lon := remapLongitude(els.RAAN + (trueAnomDeg+els.ArgOfPerigee)*math.Cos(incl))

	speed := math.Sqrt(muEarth * (2.0/r - 1.0/a))

	return Position{
		Latitude:    clamp(lat, -90, 90),
		Longitude:   clamp(lon, -180, 180),
		AltitudeKm:  floorAt(altitude, minAltitudeKm),
		VelocityKmS: floorAt(speed, 0),
	}
}

// julianDate converts t (UTC) to a Julian date.
func julianDate(t time.Time) float64 {
	t = t.UTC()
	return satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// remapLongitude wraps a degree value into [-180, 180].
func remapLongitude(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg > 180.0 {
		deg -= 360.0
	} else if deg < -180.0 {
		deg += 360.0
	}
	return deg
}

// clamp bounds v into [lo, hi]; NaN collapses to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// floorAt bounds v from below; NaN collapses to the floor.
func floorAt(v, lo float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	return v
}
