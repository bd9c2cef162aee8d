package threat

import "time"

// Threat types produced by the analyzer.
const (
	TypeVelocityAnomaly   = "VELOCITY_ANOMALY"
	TypeTrajectoryAnomaly = "TRAJECTORY_ANOMALY"
	TypeProximity         = "PROXIMITY_THREAT"
)

// Severity levels, ordered LOW < MEDIUM < HIGH < CRITICAL.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

var severityScore = map[string]float64{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Event is a geo-tagged, categorized, severity-tagged anomaly.
type Event struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	SourceLat   float64   `json:"source_lat"`
	SourceLon   float64   `json:"source_lon"`
	TargetLat   float64   `json:"target_lat"`
	TargetLon   float64   `json:"target_lon"`
	Type        string    `json:"threat_type"`
	Severity    string    `json:"severity"`
	SatelliteID uint      `json:"satellite_id,omitempty"`
	Description string    `json:"description"`
}

// PositionFix is one observed satellite position fed into the analyzer.
type PositionFix struct {
	SatelliteID uint      `json:"satellite_id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	AltitudeKm  float64   `json:"altitude_km"`
	VelocityKmS float64   `json:"velocity_km_s"`
	Timestamp   time.Time `json:"timestamp"`
}

// Zone is a geographic cluster of recent threat events.
type Zone struct {
	ID             string  `json:"id"`
	CenterLat      float64 `json:"center_lat"`
	CenterLon      float64 `json:"center_lon"`
	RadiusKm       float64 `json:"radius_km"`
	Severity       string  `json:"severity"`
	ThreatCount    int     `json:"threat_count"`
	DominantThreat string  `json:"dominant_threat"`
}

// CommPath is an inter-satellite link within communication range.
type CommPath struct {
	ID         string  `json:"id"`
	SourceID   uint    `json:"source_id"`
	TargetID   uint    `json:"target_id"`
	SourceLat  float64 `json:"source_lat"`
	SourceLon  float64 `json:"source_lon"`
	TargetLat  float64 `json:"target_lat"`
	TargetLon  float64 `json:"target_lon"`
	DistanceKm float64 `json:"distance_km"`
	Quality    string  `json:"quality"` // EXCELLENT, GOOD, POOR
	Active     bool    `json:"active"`
}

// Stats is the aggregate snapshot pushed over stats_update and served by
// GET /api/threat-stats.
type Stats struct {
	TotalThreats24h    int            `json:"total_threats_24h"`
	CriticalThreats    int            `json:"critical_threats"`
	HighThreats        int            `json:"high_threats"`
	MediumThreats      int            `json:"medium_threats"`
	LowThreats         int            `json:"low_threats"`
	ThreatByType       map[string]int `json:"threat_by_type"`
	ActiveSatellites   int            `json:"active_satellites"`
	ThreatZones        int            `json:"threat_zones"`
	CommunicationLinks int            `json:"communication_links"`
}
