package threat

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/metrics"
)

const (
	maxHistoryPerSatellite = 100
	maxStoredEvents        = 1000
	analysisWindow         = 50 // most recent fixes considered per satellite

	proximityThresholdKm = 100
	commRangeKm          = 2000
	zoneRadiusKm         = 500

	trajectoryEps    = 0.5
	trajectoryMinPts = 3
	zoneEpsDegrees   = 5
	zoneMinPts       = 3
)

// Engine is the in-process Analyzer. All state is bounded: per-satellite
// position history and the threat log are capped, so memory does not grow
// with uptime.
type Engine struct {
	mu        sync.RWMutex
	positions map[uint][]PositionFix
	events    []Event

	onThreat []func(Event)
	onStats  []func(Stats)

	log *zap.Logger
}

// NewEngine creates an empty analyzer engine.
func NewEngine(log *zap.Logger) *Engine {
	return &Engine{
		positions: make(map[uint][]PositionFix),
		log:       log,
	}
}

// OnThreat registers a callback fired for each newly detected event.
func (e *Engine) OnThreat(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onThreat = append(e.onThreat, fn)
}

// OnStats registers a callback fired on each periodic stats snapshot.
func (e *Engine) OnStats(fn func(Stats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStats = append(e.onStats, fn)
}

// Start emits stats snapshots to OnStats subscribers until ctx is cancelled.
func (e *Engine) Start(ctx context.Context, statsInterval time.Duration) {
	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := e.Stats()
				e.mu.RLock()
				subs := append([]func(Stats){}, e.onStats...)
				e.mu.RUnlock()
				for _, fn := range subs {
					fn(stats)
				}
			}
		}
	}()
}

// Observe ingests a position fix, updates the bounded history, and runs the
// three detectors against it. New events are stored and pushed to callbacks.
func (e *Engine) Observe(fix PositionFix) {
	e.mu.Lock()
	hist := append(e.positions[fix.SatelliteID], fix)
	if len(hist) > maxHistoryPerSatellite {
		hist = hist[len(hist)-maxHistoryPerSatellite:]
	}
	e.positions[fix.SatelliteID] = hist

	var found []Event
	if ev := e.detectVelocityAnomaly(fix.SatelliteID, hist); ev != nil {
		found = append(found, *ev)
	}
	if ev := e.detectTrajectoryAnomaly(fix.SatelliteID, hist); ev != nil {
		found = append(found, *ev)
	}
	found = append(found, e.detectProximity(fix)...)

	for _, ev := range found {
		e.events = append(e.events, ev)
	}
	if len(e.events) > maxStoredEvents {
		e.events = e.events[len(e.events)-maxStoredEvents:]
	}
	subs := append([]func(Event){}, e.onThreat...)
	e.mu.Unlock()

	for _, ev := range found {
		metrics.ThreatEvents.WithLabelValues(ev.Severity).Inc()
		e.log.Warn("threat detected",
			zap.String("threat_type", ev.Type),
			zap.String("severity", ev.Severity),
			zap.Uint("satellite_id", ev.SatelliteID))
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// detectVelocityAnomaly flags a velocity change on the newest fix more than
// two standard deviations away from the mean change over the recent window.
func (e *Engine) detectVelocityAnomaly(satID uint, hist []PositionFix) *Event {
	if len(hist) < 5 {
		return nil
	}
	window := hist
	if len(window) > analysisWindow {
		window = window[len(window)-analysisWindow:]
	}
	deltas := make([]float64, 0, len(window)-1)
	for i := 1; i < len(window); i++ {
		deltas = append(deltas, window[i].VelocityKmS-window[i-1].VelocityKmS)
	}
	mean, std := meanStd(deltas)
	if std == 0 {
		return nil
	}
	latest := deltas[len(deltas)-1]
	if math.Abs(latest-mean) <= 2*std {
		return nil
	}
	cur := window[len(window)-1]
	return &Event{
		ID:          fmt.Sprintf("VEL_ANOMALY_%d_%d", satID, cur.Timestamp.Unix()),
		Timestamp:   cur.Timestamp,
		SourceLat:   cur.Latitude,
		SourceLon:   cur.Longitude,
		TargetLat:   cur.Latitude,
		TargetLon:   cur.Longitude,
		Type:        TypeVelocityAnomaly,
		Severity:    SeverityMedium,
		SatelliteID: satID,
		Description: fmt.Sprintf("Unusual velocity change detected: %.2f km/s", latest),
	}
}

// detectTrajectoryAnomaly flags the newest fix when density clustering over
// the scaled (lat, lon, alt) window labels it as noise.
func (e *Engine) detectTrajectoryAnomaly(satID uint, hist []PositionFix) *Event {
	if len(hist) < 10 {
		return nil
	}
	window := hist
	if len(window) > analysisWindow {
		window = window[len(window)-analysisWindow:]
	}
	points := make([][]float64, len(window))
	for i, p := range window {
		points[i] = []float64{p.Latitude, p.Longitude, p.AltitudeKm}
	}
	labels := dbscan(standardize(points), trajectoryEps, trajectoryMinPts)
	if labels[len(labels)-1] != noiseLabel {
		return nil
	}
	cur := window[len(window)-1]
	return &Event{
		ID:          fmt.Sprintf("TRAJ_ANOMALY_%d_%d", satID, cur.Timestamp.Unix()),
		Timestamp:   cur.Timestamp,
		SourceLat:   cur.Latitude,
		SourceLon:   cur.Longitude,
		TargetLat:   cur.Latitude,
		TargetLon:   cur.Longitude,
		Type:        TypeTrajectoryAnomaly,
		Severity:    SeverityHigh,
		SatelliteID: satID,
		Description: fmt.Sprintf("Anomalous trajectory detected at position (%.2f, %.2f)", cur.Latitude, cur.Longitude),
	}
}

// detectProximity flags other satellites whose latest fix is within the
// collision-risk threshold of the observed fix.
func (e *Engine) detectProximity(cur PositionFix) []Event {
	var out []Event
	for otherID, hist := range e.positions {
		if otherID == cur.SatelliteID || len(hist) == 0 {
			continue
		}
		other := hist[len(hist)-1]
		dist := distance3D(cur, other)
		if dist >= proximityThresholdKm {
			continue
		}
		out = append(out, Event{
			ID:          fmt.Sprintf("PROXIMITY_THREAT_%d_%d_%d", cur.SatelliteID, otherID, cur.Timestamp.Unix()),
			Timestamp:   cur.Timestamp,
			SourceLat:   cur.Latitude,
			SourceLon:   cur.Longitude,
			TargetLat:   other.Latitude,
			TargetLon:   other.Longitude,
			Type:        TypeProximity,
			Severity:    SeverityCritical,
			SatelliteID: cur.SatelliteID,
			Description: fmt.Sprintf("Collision risk with satellite %d: %.1fkm separation", otherID, dist),
		})
	}
	return out
}

// Threats returns events newer than the given window, oldest first.
func (e *Engine) Threats(within time.Duration) []Event {
	cutoff := time.Now().Add(-within)
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Event, 0)
	for _, ev := range e.events {
		if !ev.Timestamp.Before(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// Zones clusters the most recent threat events geographically. Each cluster
// becomes a fixed-radius zone tagged with its dominant threat type and a
// severity bucketed from the cluster's mean severity score.
func (e *Engine) Zones() []Zone {
	e.mu.RLock()
	events := e.events
	if len(events) > maxHistoryPerSatellite {
		events = events[len(events)-maxHistoryPerSatellite:]
	}
	events = append([]Event{}, events...)
	e.mu.RUnlock()

	if len(events) < zoneMinPts {
		return []Zone{}
	}
	points := make([][]float64, len(events))
	for i, ev := range events {
		points[i] = []float64{ev.SourceLat, ev.SourceLon}
	}
	labels := dbscan(points, zoneEpsDegrees, zoneMinPts)

	clusters := make(map[int][]Event)
	for i, label := range labels {
		if label == noiseLabel {
			continue
		}
		clusters[label] = append(clusters[label], events[i])
	}

	zones := make([]Zone, 0, len(clusters))
	for label := 0; ; label++ {
		members, ok := clusters[label]
		if !ok {
			break
		}
		var latSum, lonSum, score float64
		typeCounts := make(map[string]int)
		for _, ev := range members {
			latSum += ev.SourceLat
			lonSum += ev.SourceLon
			score += severityScore[ev.Severity]
			typeCounts[ev.Type]++
		}
		n := float64(len(members))
		zones = append(zones, Zone{
			ID:             fmt.Sprintf("ZONE_%d", label),
			CenterLat:      latSum / n,
			CenterLon:      lonSum / n,
			RadiusKm:       zoneRadiusKm,
			Severity:       bucketSeverity(score / n),
			ThreatCount:    len(members),
			DominantThreat: dominantType(typeCounts),
		})
	}
	return zones
}

// CommunicationPaths pairs satellites whose latest fixes are within range and
// grades each link by distance.
func (e *Engine) CommunicationPaths() []CommPath {
	e.mu.RLock()
	latest := make(map[uint]PositionFix, len(e.positions))
	ids := make([]uint, 0, len(e.positions))
	for id, hist := range e.positions {
		if len(hist) > 0 {
			latest[id] = hist[len(hist)-1]
			ids = append(ids, id)
		}
	}
	e.mu.RUnlock()

	// Stable order keeps path IDs deterministic between calls.
	sortUints(ids)

	paths := make([]CommPath, 0)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			p1, p2 := latest[ids[i]], latest[ids[j]]
			dist := distance3D(p1, p2)
			if dist >= commRangeKm {
				continue
			}
			quality := "POOR"
			switch {
			case dist < 500:
				quality = "EXCELLENT"
			case dist < 1000:
				quality = "GOOD"
			}
			paths = append(paths, CommPath{
				ID:         fmt.Sprintf("LINK_%d_%d", ids[i], ids[j]),
				SourceID:   ids[i],
				TargetID:   ids[j],
				SourceLat:  p1.Latitude,
				SourceLon:  p1.Longitude,
				TargetLat:  p2.Latitude,
				TargetLon:  p2.Longitude,
				DistanceKm: dist,
				Quality:    quality,
				Active:     true,
			})
		}
	}
	return paths
}

// Stats aggregates the last 24 hours of events plus current zone/link counts.
func (e *Engine) Stats() Stats {
	recent := e.Threats(24 * time.Hour)

	stats := Stats{
		TotalThreats24h: len(recent),
		ThreatByType:    make(map[string]int),
	}
	for _, ev := range recent {
		switch ev.Severity {
		case SeverityCritical:
			stats.CriticalThreats++
		case SeverityHigh:
			stats.HighThreats++
		case SeverityMedium:
			stats.MediumThreats++
		case SeverityLow:
			stats.LowThreats++
		}
		stats.ThreatByType[ev.Type]++
	}

	e.mu.RLock()
	stats.ActiveSatellites = len(e.positions)
	e.mu.RUnlock()

	stats.ThreatZones = len(e.Zones())
	stats.CommunicationLinks = len(e.CommunicationPaths())
	return stats
}

// distance3D converts two geodetic fixes to earth-centered cartesian
// coordinates and returns their straight-line separation in km.
func distance3D(a, b PositionFix) float64 {
	const earthRadiusKm = 6371.0

	toXYZ := func(p PositionFix) (x, y, z float64) {
		lat := p.Latitude * math.Pi / 180.0
		lon := p.Longitude * math.Pi / 180.0
		r := earthRadiusKm + p.AltitudeKm
		return r * math.Cos(lat) * math.Cos(lon),
			r * math.Cos(lat) * math.Sin(lon),
			r * math.Sin(lat)
	}
	x1, y1, z1 := toXYZ(a)
	x2, y2, z2 := toXYZ(b)
	return math.Sqrt((x2-x1)*(x2-x1) + (y2-y1)*(y2-y1) + (z2-z1)*(z2-z1))
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	for _, v := range vals {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(vals)))
	return mean, std
}

func bucketSeverity(avg float64) string {
	switch {
	case avg < 1.5:
		return SeverityLow
	case avg < 2.5:
		return SeverityMedium
	case avg < 3.5:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

func dominantType(counts map[string]int) string {
	best, bestCount := "", -1
	for t, c := range counts {
		if c > bestCount || (c == bestCount && t < best) {
			best, bestCount = t, c
		}
	}
	return best
}

func sortUints(v []uint) {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
}
