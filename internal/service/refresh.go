package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/metrics"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/orbit"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/threat"
)

// RefreshLoop periodically recomputes and records a position for every
// registered satellite, then notifies subscribers. One failed satellite never
// aborts the rest of the tick, and a panicking tick never kills the timer.
type RefreshLoop struct {
	sats     *SatelliteService
	hub      Broadcaster
	analyzer threat.Analyzer
	interval time.Duration
	log      *zap.Logger

	now func() time.Time // injectable clock for tests
}

// NewRefreshLoop creates the loop. It does not start ticking until Run.
func NewRefreshLoop(sats *SatelliteService, hub Broadcaster, analyzer threat.Analyzer, interval time.Duration, log *zap.Logger) *RefreshLoop {
	return &RefreshLoop{
		sats:     sats,
		hub:      hub,
		analyzer: analyzer,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run ticks at the configured interval until ctx is cancelled.
func (l *RefreshLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("telemetry refresh loop started",
		zap.Duration("interval", l.interval))

	for {
		select {
		case <-ctx.Done():
			l.log.Info("telemetry refresh loop stopped")
			return
		case <-ticker.C:
			l.safeTick()
		}
	}
}

// safeTick guards a tick with recover so the next tick always fires.
func (l *RefreshLoop) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("refresh tick panicked", zap.Any("panic", r))
		}
	}()
	l.tick(l.now())
}

// tick runs one refresh pass at the given reference instant: for every
// registered satellite, estimate, persist, broadcast, and feed the threat
// analyzer; then emit one batch summary message.
func (l *RefreshLoop) tick(at time.Time) {
	sats, err := l.sats.ListAll()
	if err != nil {
		l.log.Error("refresh: listing satellites failed", zap.Error(err))
		l.hub.SystemMessage(model.SeverityError, "telemetry refresh failed: satellite registry unavailable")
		return
	}

	processed := 0
	for i := range sats {
		sat := &sats[i]

		pos := orbit.Estimate(sat.TLELine1, sat.TLELine2, at)
		sample, err := l.sats.RecordSample(sat.ID, pos, at)
		if err != nil {
			metrics.RefreshFailures.Inc()
			l.log.Warn("refresh: persisting sample failed",
				zap.Uint("satellite_id", sat.ID),
				zap.Int("norad_id", sat.NoradID),
				zap.Error(err))
			continue
		}
		processed++
		metrics.TelemetrySamples.Inc()

		env, err := model.NewEnvelope(model.EventTelemetryUpdate, model.TelemetryUpdate{
			SatelliteID: sat.ID,
			Name:        sat.Name,
			NoradID:     sat.NoradID,
			Sample:      *sample,
		})
		if err != nil {
			l.log.Warn("refresh: telemetry envelope failed", zap.Error(err))
		} else {
			l.hub.Broadcast(env)
		}

		l.analyzer.Observe(threat.PositionFix{
			SatelliteID: sat.ID,
			Latitude:    pos.Latitude,
			Longitude:   pos.Longitude,
			AltitudeKm:  pos.AltitudeKm,
			VelocityKmS: pos.VelocityKmS,
			Timestamp:   at.UTC(),
		})
	}

	metrics.RefreshTicks.Inc()
	l.hub.SystemMessage(model.SeverityData,
		fmt.Sprintf("telemetry refresh complete: %d/%d satellites processed", processed, len(sats)))
}
