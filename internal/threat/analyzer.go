// Package threat analyzes satellite position streams for anomalies: sudden
// velocity changes, trajectory outliers, and dangerous proximity between
// satellites. It also derives geographic threat zones, inter-satellite
// communication paths, and dashboard statistics.
package threat

import (
	"context"
	"time"
)

// Analyzer is the pluggable threat-analysis capability. The in-process Engine
// implements it; Noop stands in when analysis is disabled.
type Analyzer interface {
	// Observe ingests a new position fix and runs anomaly detection on it.
	Observe(fix PositionFix)
	// Threats returns events newer than the given window.
	Threats(within time.Duration) []Event
	// Zones returns geographic clusters of recent threat events.
	Zones() []Zone
	// CommunicationPaths returns inter-satellite links within range.
	CommunicationPaths() []CommPath
	// Stats returns the aggregate snapshot for the dashboard.
	Stats() Stats
	// OnThreat registers a callback fired for every newly detected event.
	OnThreat(fn func(Event))
	// OnStats registers a callback fired on each periodic stats snapshot.
	OnStats(fn func(Stats))
	// Start runs the periodic stats emitter until ctx is cancelled.
	Start(ctx context.Context, statsInterval time.Duration)
}

// Noop is the disabled analyzer: it observes nothing and reports empty data.
type Noop struct{}

func (Noop) Observe(PositionFix)               {}
func (Noop) Threats(time.Duration) []Event     { return []Event{} }
func (Noop) Zones() []Zone                     { return []Zone{} }
func (Noop) CommunicationPaths() []CommPath    { return []CommPath{} }
func (Noop) Stats() Stats                      { return Stats{ThreatByType: map[string]int{}} }
func (Noop) OnThreat(func(Event))              {}
func (Noop) OnStats(func(Stats))               {}
func (Noop) Start(context.Context, time.Duration) {}
