package model

import (
	"encoding/json"
	"time"
)

// EventType tags the WebSocket message envelope (closed set).
type EventType string

const (
	EventTelemetryUpdate EventType = "telemetry_update"
	EventSatelliteUpdate EventType = "satellite_update"
	EventSystemMessage   EventType = "system_message"
	EventThreat          EventType = "threat_event"
	EventStatsUpdate     EventType = "stats_update"
)

// Severity levels for system messages (console log lines in the UI).
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
	SeverityData  Severity = "DATA"
	SeverityCalc  Severity = "CALC"
	SeverityConn  Severity = "CONN"
)

// Envelope is the discriminated union pushed over /ws. Data holds the
// variant payload already marshalled, so a broadcast serializes once.
type Envelope struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEnvelope marshals payload into an Envelope of the given type.
func NewEnvelope(t EventType, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Timestamp: time.Now().UTC(), Data: raw}, nil
}

// TelemetryUpdate is the telemetry_update payload.
type TelemetryUpdate struct {
	SatelliteID uint      `json:"satellite_id"`
	Name        string    `json:"name"`
	NoradID     int       `json:"norad_id"`
	Sample      Telemetry `json:"sample"`
}

// SatelliteUpdate is the satellite_update payload (registry change).
type SatelliteUpdate struct {
	Action    string        `json:"action"` // created, updated
	Satellite SatelliteInfo `json:"satellite"`
}

// SystemMessage is the system_message payload.
type SystemMessage struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
