package model

import "time"

// SatelliteCategory is the fixed category enumeration for registry entries.
type SatelliteCategory string

const (
	CategoryCommunication SatelliteCategory = "Communication"
	CategoryNavigation    SatelliteCategory = "Navigation"
	CategorySpaceStation  SatelliteCategory = "Space Station"
	CategoryWeather       SatelliteCategory = "Weather"
	CategoryMilitary      SatelliteCategory = "Military"
	CategoryScientific    SatelliteCategory = "Scientific"
	CategoryCommercial    SatelliteCategory = "Commercial"
)

// ValidCategory reports whether s is one of the known categories.
func ValidCategory(s string) bool {
	switch SatelliteCategory(s) {
	case CategoryCommunication, CategoryNavigation, CategorySpaceStation,
		CategoryWeather, CategoryMilitary, CategoryScientific, CategoryCommercial:
		return true
	}
	return false
}

// OrbitClass tags the satellite's orbit regime.
type OrbitClass string

const (
	OrbitAll OrbitClass = "ALL"
	OrbitLEO OrbitClass = "LEO"
	OrbitMEO OrbitClass = "MEO"
	OrbitGEO OrbitClass = "GEO"
)

// ValidOrbitClass reports whether s is a storable orbit class (ALL is filter-only).
func ValidOrbitClass(s string) bool {
	switch OrbitClass(s) {
	case OrbitLEO, OrbitMEO, OrbitGEO:
		return true
	}
	return false
}

// SatelliteInfo is the API view of a registry entry (not the GORM entity).
type SatelliteInfo struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	NoradID    int        `json:"norad_id"`
	Type       string     `json:"type"`
	Country    string     `json:"country"`
	TLELine1   string     `json:"tle_line1"`
	TLELine2   string     `json:"tle_line2"`
	LaunchDate *time.Time `json:"launch_date,omitempty"`
	OrbitClass string     `json:"orbit_class"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Telemetry is the API view of one telemetry sample.
type Telemetry struct {
	ID          uint      `json:"id"`
	SatelliteID uint      `json:"satellite_id"`
	Timestamp   time.Time `json:"timestamp"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	AltitudeKm  float64   `json:"altitude_km"`
	VelocityKmS float64   `json:"velocity_km_s"`
}

// SatelliteDetail is a registry entry together with its latest sample (if any).
type SatelliteDetail struct {
	SatelliteInfo
	LatestTelemetry *Telemetry `json:"latest_telemetry,omitempty"`
}

// FilterCriteria narrows satellite listings. All present fields are conjunctive.
type FilterCriteria struct {
	Search     string   // substring match on name, case-insensitive
	Types      []string // category enumeration values
	OrbitClass string   // ALL, LEO, MEO, GEO; empty and ALL mean no restriction
	Country    string
}

// CreateSatelliteRequest is the request body for POST /api/satellites.
type CreateSatelliteRequest struct {
	Name       string     `json:"name" binding:"required"`
	NoradID    int        `json:"norad_id" binding:"required"`
	Type       string     `json:"type" binding:"required"`
	Country    string     `json:"country"`
	TLELine1   string     `json:"tle_line1" binding:"required"`
	TLELine2   string     `json:"tle_line2" binding:"required"`
	LaunchDate *time.Time `json:"launch_date"`
	OrbitClass string     `json:"orbit_class" binding:"required"`
}

// SatellitePosition joins the latest sample with registry metadata
// (GET /api/positions rows).
type SatellitePosition struct {
	SatelliteID uint      `json:"satellite_id"`
	Name        string    `json:"name"`
	NoradID     int       `json:"norad_id"`
	Type        string    `json:"type"`
	OrbitClass  string    `json:"orbit_class"`
	Timestamp   time.Time `json:"timestamp"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	AltitudeKm  float64   `json:"altitude_km"`
	VelocityKmS float64   `json:"velocity_km_s"`
}

// EntityToInfo maps the GORM entity to its API view.
func EntityToInfo(ent *Satellite) SatelliteInfo {
	return SatelliteInfo{
		ID:         ent.ID,
		Name:       ent.Name,
		NoradID:    ent.NoradID,
		Type:       ent.Type,
		Country:    ent.Country,
		TLELine1:   ent.TLELine1,
		TLELine2:   ent.TLELine2,
		LaunchDate: ent.LaunchDate,
		OrbitClass: ent.OrbitClass,
		CreatedAt:  ent.CreatedAt,
	}
}

// EntityToTelemetry maps the GORM telemetry entity to its API view.
func EntityToTelemetry(ent *TelemetrySample) Telemetry {
	return Telemetry{
		ID:          ent.ID,
		SatelliteID: ent.SatelliteID,
		Timestamp:   ent.Timestamp,
		Latitude:    ent.Latitude,
		Longitude:   ent.Longitude,
		AltitudeKm:  ent.AltitudeKm,
		VelocityKmS: ent.VelocityKmS,
	}
}
