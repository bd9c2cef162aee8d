package orbit

import (
	"strconv"
	"strings"
)

// Elements are the orbital parameters read from TLE line 2.
// Angles are degrees, mean motion is revolutions per day.
type Elements struct {
	Inclination  float64
	RAAN         float64
	Eccentricity float64
	ArgOfPerigee float64
	MeanAnomaly  float64
	MeanMotion   float64
}

// Documented fallback defaults (ISS-like orbit). A field that fails to parse
// falls back individually; parsing never fails as a whole.
var defaultElements = Elements{
	Inclination:  51.6,
	RAAN:         0,
	Eccentricity: 0.0001,
	ArgOfPerigee: 0,
	MeanAnomaly:  0,
	MeanMotion:   15.5,
}

// ParseElements extracts orbital elements from a TLE line 2, splitting on
// whitespace and reading fields by position. Line 1 is carried only for
// format context and is not interpreted here. Malformed or missing fields
// fall back to defaults instead of producing an error.
func ParseElements(line1, line2 string) Elements {
	_ = line1
	fields := strings.Fields(line2)

	els := defaultElements
	els.Inclination = fieldFloat(fields, 2, defaultElements.Inclination)
	els.RAAN = fieldFloat(fields, 3, defaultElements.RAAN)
	els.ArgOfPerigee = fieldFloat(fields, 5, defaultElements.ArgOfPerigee)
	els.MeanAnomaly = fieldFloat(fields, 6, defaultElements.MeanAnomaly)

	// Eccentricity is stored with an implied leading "0.".
	if len(fields) > 4 {
		if v, err := strconv.ParseFloat("0."+fields[4], 64); err == nil {
			els.Eccentricity = v
		}
	}

	// A non-positive mean motion would degenerate the period; treat it as
	// unparseable and keep the default.
	if n := fieldFloat(fields, 7, defaultElements.MeanMotion); n > 0 {
		els.MeanMotion = n
	}

	return els
}

func fieldFloat(fields []string, i int, def float64) float64 {
	if i >= len(fields) {
		return def
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return def
	}
	return v
}
