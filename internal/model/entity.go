package model

import "time"

// Satellite is a static registry entry (GORM).
// TLE lines are immutable once the row is created; descriptive fields may change.
type Satellite struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	Name       string     `gorm:"size:120;not null"`
	NoradID    int        `gorm:"column:norad_id;not null;uniqueIndex"`
	Type       string     `gorm:"size:40;not null"` // category enumeration
	Country    string     `gorm:"size:80"`
	TLELine1   string     `gorm:"column:tle_line1;size:80;not null"`
	TLELine2   string     `gorm:"column:tle_line2;size:80;not null"`
	LaunchDate *time.Time `gorm:"column:launch_date"`
	OrbitClass string     `gorm:"column:orbit_class;size:8;not null"` // LEO, MEO, GEO
	CreatedAt  time.Time  `gorm:"autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime"`

	Telemetry []TelemetrySample `gorm:"foreignKey:SatelliteID"`
}

func (Satellite) TableName() string { return "satellites" }

// TelemetrySample is one estimated position at one instant (GORM, append-only).
type TelemetrySample struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	SatelliteID uint      `gorm:"column:satellite_id;not null;index"`
	Timestamp   time.Time `gorm:"not null;index"`
	Latitude    float64   `gorm:"not null"`
	Longitude   float64   `gorm:"not null"`
	AltitudeKm  float64   `gorm:"column:altitude_km;not null"`
	VelocityKmS float64   `gorm:"column:velocity_km_s;not null"`
}

func (TelemetrySample) TableName() string { return "telemetry" }
