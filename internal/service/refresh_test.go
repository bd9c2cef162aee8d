package service

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/threat"
)

func newTestLoop(t *testing.T) (*RefreshLoop, *SatelliteService, *stubBroadcaster) {
	t.Helper()
	svc, hub := newTestService(t)
	loop := NewRefreshLoop(svc, hub, threat.Noop{}, 2*time.Second, zap.NewNop())
	return loop, svc, hub
}

func countSamples(t *testing.T, svc *SatelliteService) int64 {
	t.Helper()
	var n int64
	if err := svc.db.Model(&model.TelemetrySample{}).Count(&n).Error; err != nil {
		t.Fatalf("count telemetry: %v", err)
	}
	return n
}

func TestTickAppendsOneSamplePerSatellite(t *testing.T) {
	loop, svc, hub := newTestLoop(t)
	seedRegistry(t, svc) // 4 satellites

	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	const ticks = 3
	for i := 0; i < ticks; i++ {
		loop.tick(base.Add(time.Duration(i) * 2 * time.Second))
	}

	// Append-only growth: exactly N ticks x S satellites rows.
	if n := countSamples(t, svc); n != ticks*4 {
		t.Fatalf("telemetry rows = %d, want %d", n, ticks*4)
	}

	if got := hub.byType(model.EventTelemetryUpdate); len(got) != ticks*4 {
		t.Errorf("telemetry_update broadcasts = %d, want %d", len(got), ticks*4)
	}
	// One batch summary per tick.
	if got := hub.byType(model.EventSystemMessage); len(got) != ticks {
		t.Errorf("system_message broadcasts = %d, want %d", len(got), ticks)
	}
}

func TestTickSamplesOrderedByTimestamp(t *testing.T) {
	loop, svc, _ := newTestLoop(t)
	if _, err := svc.Create(issRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}

	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		loop.tick(base.Add(time.Duration(i) * 2 * time.Second))
	}

	hist, err := svc.History(1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 5 {
		t.Fatalf("got %d samples, want 5", len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].Timestamp.After(hist[i-1].Timestamp) {
			t.Fatalf("samples not ordered: %v after %v", hist[i].Timestamp, hist[i-1].Timestamp)
		}
	}
}

func TestTickIdempotentComputeAppendOnlyPersist(t *testing.T) {
	loop, svc, _ := newTestLoop(t)
	if _, err := svc.Create(issRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	loop.tick(at)
	loop.tick(at)

	// Same instant: same estimated position, but two distinct rows.
	if n := countSamples(t, svc); n != 2 {
		t.Fatalf("telemetry rows = %d, want 2 (append-only, no upsert)", n)
	}
	hist, err := svc.History(1, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist[0].Latitude != hist[1].Latitude || hist[0].Longitude != hist[1].Longitude {
		t.Errorf("same-instant ticks produced different positions: %+v vs %+v", hist[0], hist[1])
	}
	if hist[0].ID == hist[1].ID {
		t.Error("rows should be distinct")
	}
}

func TestTickSummaryMessage(t *testing.T) {
	loop, svc, hub := newTestLoop(t)
	seedRegistry(t, svc)

	loop.tick(time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	msgs := hub.byType(model.EventSystemMessage)
	if len(msgs) != 1 {
		t.Fatalf("system messages = %d, want 1", len(msgs))
	}
	var payload model.SystemMessage
	if err := json.Unmarshal(msgs[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal system message: %v", err)
	}
	if payload.Severity != model.SeverityData {
		t.Errorf("severity = %s, want %s", payload.Severity, model.SeverityData)
	}
}

func TestTickEmptyRegistry(t *testing.T) {
	loop, svc, hub := newTestLoop(t)

	loop.tick(time.Now())

	if n := countSamples(t, svc); n != 0 {
		t.Errorf("telemetry rows = %d, want 0", n)
	}
	// The summary still fires so the console shows activity.
	if got := hub.byType(model.EventSystemMessage); len(got) != 1 {
		t.Errorf("system messages = %d, want 1", len(got))
	}
}

func TestSafeTickSurvivesPanic(t *testing.T) {
	loop, _, _ := newTestLoop(t)
	loop.now = func() time.Time { panic("clock exploded") }

	// Must not propagate: the timer keeps firing after a bad tick.
	loop.safeTick()
}
