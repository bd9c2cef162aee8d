package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/handler"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/orbit"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/router"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/service"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/threat"
)

const (
	issLine1 = "1 25544U 98067A   24001.50000000  .00016717  00000-0  10270-3 0  9005"
	issLine2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.49309239123456"
)

type testAPI struct {
	handler http.Handler
	svc     *service.SatelliteService
	hub     *service.Hub
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Satellite{}, &model.TelemetrySample{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := zap.NewNop()
	hub := service.NewHub(1024, 1024, 256, log)
	svc := service.NewSatelliteService(db, hub)
	analyzer := threat.Noop{}

	h := router.New(
		handler.NewSatelliteHandler(svc, hub),
		handler.NewThreatHandler(analyzer),
		handler.NewStreamWSHandler(hub, log),
		handler.NewHealthHandler(),
	)
	return &testAPI{handler: h, svc: svc, hub: hub}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func issRequest() model.CreateSatelliteRequest {
	return model.CreateSatelliteRequest{
		Name:       "ISS (ZARYA)",
		NoradID:    25544,
		Type:       string(model.CategorySpaceStation),
		Country:    "International",
		TLELine1:   issLine1,
		TLELine2:   issLine2,
		OrbitClass: string(model.OrbitLEO),
	}
}

func TestHealthAndReady(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d, want 200", w.Code)
	}
	body := decode[map[string]any](t, w)
	if body["status"] != "ok" || body["service"] != "sat-monitor" {
		t.Errorf("unexpected health body: %v", body)
	}

	if w := api.do(t, http.MethodGet, "/ready", nil); w.Code != http.StatusOK {
		t.Errorf("GET /ready = %d, want 200", w.Code)
	}
}

func TestCreateAndGetSatellite(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/satellites", issRequest())
	if w.Code != http.StatusCreated {
		t.Fatalf("POST /api/satellites = %d, body %s", w.Code, w.Body.String())
	}
	created := decode[model.SatelliteInfo](t, w)
	if created.ID == 0 || created.NoradID != 25544 {
		t.Fatalf("unexpected created satellite: %+v", created)
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/satellite/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/satellite/%d = %d", created.ID, w.Code)
	}
	detail := decode[model.SatelliteDetail](t, w)
	if detail.Name != "ISS (ZARYA)" {
		t.Errorf("name = %q, want ISS (ZARYA)", detail.Name)
	}
	if detail.LatestTelemetry != nil {
		t.Errorf("fresh satellite should have no telemetry, got %+v", detail.LatestTelemetry)
	}
}

func TestCreateSatelliteRejectsDuplicateNorad(t *testing.T) {
	api := newTestAPI(t)

	if w := api.do(t, http.MethodPost, "/api/satellites", issRequest()); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	w := api.do(t, http.MethodPost, "/api/satellites", issRequest())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate create = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "norad") {
		t.Errorf("duplicate error body = %s", w.Body.String())
	}
}

func TestCreateSatelliteRejectsBadPayload(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name   string
		mutate func(*model.CreateSatelliteRequest)
	}{
		{"missing name", func(r *model.CreateSatelliteRequest) { r.Name = "" }},
		{"unknown type", func(r *model.CreateSatelliteRequest) { r.Type = "Balloon" }},
		{"bad tle line1", func(r *model.CreateSatelliteRequest) { r.TLELine1 = "2 oops" }},
		{"orbit class ALL", func(r *model.CreateSatelliteRequest) { r.OrbitClass = "ALL" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := issRequest()
			tc.mutate(&req)
			if w := api.do(t, http.MethodPost, "/api/satellites", req); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestListSatellitesFiltering(t *testing.T) {
	api := newTestAPI(t)

	seed := []model.CreateSatelliteRequest{
		issRequest(),
		{Name: "NOAA 19", NoradID: 33591, Type: string(model.CategoryWeather),
			Country: "USA", TLELine1: issLine1, TLELine2: issLine2, OrbitClass: string(model.OrbitLEO)},
		{Name: "GPS IIF-12", NoradID: 41328, Type: string(model.CategoryNavigation),
			Country: "USA", TLELine1: issLine1, TLELine2: issLine2, OrbitClass: string(model.OrbitMEO)},
	}
	for _, req := range seed {
		if w := api.do(t, http.MethodPost, "/api/satellites", req); w.Code != http.StatusCreated {
			t.Fatalf("seed %q: %d %s", req.Name, w.Code, w.Body.String())
		}
	}

	cases := []struct {
		name  string
		query string
		want  int
	}{
		{"no filter", "", 3},
		{"search", "?search=noaa", 1},
		{"type", "?types=Navigation", 1},
		{"orbit class", "?orbitClass=LEO", 2},
		{"orbit class ALL", "?orbitClass=ALL", 3},
		{"country", "?country=USA", 2},
		{"no match", "?search=voyager", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(t, http.MethodGet, "/api/satellites"+tc.query, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			if got := decode[[]model.SatelliteInfo](t, w); len(got) != tc.want {
				t.Errorf("got %d satellites, want %d", len(got), tc.want)
			}
		})
	}

	if w := api.do(t, http.MethodGet, "/api/satellites?orbitClass=SSO", nil); w.Code != http.StatusBadRequest {
		t.Errorf("invalid orbitClass = %d, want 400", w.Code)
	}
}

func TestGetSatelliteErrors(t *testing.T) {
	api := newTestAPI(t)

	if w := api.do(t, http.MethodGet, "/api/satellite/9999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown id = %d, want 404", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/api/satellite/abc", nil); w.Code != http.StatusBadRequest {
		t.Errorf("non-numeric id = %d, want 400", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/api/satellite/0", nil); w.Code != http.StatusBadRequest {
		t.Errorf("zero id = %d, want 400", w.Code)
	}
}

func TestTelemetryHistoryEndpoint(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/satellites", issRequest())
	created := decode[model.SatelliteInfo](t, w)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		pos := orbit.Estimate(issLine1, issLine2, at)
		if _, err := api.svc.RecordSample(created.ID, pos, at); err != nil {
			t.Fatalf("record sample: %v", err)
		}
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/telemetry/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history = %d", w.Code)
	}
	samples := decode[[]model.Telemetry](t, w)
	if len(samples) != 5 {
		t.Fatalf("got %d samples, want 5", len(samples))
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp.After(samples[i-1].Timestamp) {
			t.Errorf("samples not newest first at index %d", i)
		}
	}

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/telemetry/%d?limit=2", created.ID), nil)
	if got := decode[[]model.Telemetry](t, w); len(got) != 2 {
		t.Errorf("limit=2 returned %d samples", len(got))
	}

	if w := api.do(t, http.MethodGet, fmt.Sprintf("/api/telemetry/%d?limit=nan", created.ID), nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/api/telemetry/9999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown satellite = %d, want 404", w.Code)
	}
}

func TestPositionEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/satellites", issRequest())
	created := decode[model.SatelliteInfo](t, w)

	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/position/%d", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("position = %d", w.Code)
	}
	pos := decode[model.SatellitePosition](t, w)
	if pos.AltitudeKm < 100 {
		t.Errorf("altitude = %f km, want >= 100", pos.AltitudeKm)
	}

	// On-demand estimation persists nothing.
	w = api.do(t, http.MethodGet, fmt.Sprintf("/api/telemetry/%d", created.ID), nil)
	if got := decode[[]model.Telemetry](t, w); len(got) != 0 {
		t.Errorf("position endpoint persisted %d samples", len(got))
	}

	now := time.Now().UTC()
	if _, err := api.svc.RecordSample(created.ID, orbit.Estimate(issLine1, issLine2, now), now); err != nil {
		t.Fatalf("record sample: %v", err)
	}
	w = api.do(t, http.MethodGet, "/api/positions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("positions = %d", w.Code)
	}
	if got := decode[[]model.SatellitePosition](t, w); len(got) != 1 {
		t.Errorf("got %d positions, want 1", len(got))
	}

	if w := api.do(t, http.MethodGet, "/api/position/9999", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown satellite = %d, want 404", w.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	for i := 0; i < 3; i++ {
		api.hub.SystemMessage(model.SeverityInfo, fmt.Sprintf("event %d", i))
	}

	w := api.do(t, http.MethodGet, "/api/events", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("events = %d", w.Code)
	}
	events := decode[[]model.Envelope](t, w)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	var newest model.SystemMessage
	if err := json.Unmarshal(events[0].Data, &newest); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if newest.Message != "event 2" {
		t.Errorf("newest event = %q, want event 2", newest.Message)
	}

	w = api.do(t, http.MethodGet, "/api/events?limit=1", nil)
	if got := decode[[]model.Envelope](t, w); len(got) != 1 {
		t.Errorf("limit=1 returned %d events", len(got))
	}
}

func TestThreatEndpointsWithNoopAnalyzer(t *testing.T) {
	api := newTestAPI(t)

	paths := []string{"/api/threats", "/api/threat-zones", "/api/communication-paths"}
	for _, p := range paths {
		w := api.do(t, http.MethodGet, p, nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", p, w.Code)
			continue
		}
		if body := strings.TrimSpace(w.Body.String()); body != "[]" {
			t.Errorf("GET %s body = %s, want []", p, body)
		}
	}

	w := api.do(t, http.MethodGet, "/api/threat-stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("threat-stats = %d", w.Code)
	}
	stats := decode[threat.Stats](t, w)
	if stats.TotalThreats24h != 0 {
		t.Errorf("total threats = %d, want 0", stats.TotalThreats24h)
	}

	if w := api.do(t, http.MethodGet, "/api/threats?hours=-1", nil); w.Code != http.StatusBadRequest {
		t.Errorf("negative hours = %d, want 400", w.Code)
	}
	// An hours window large enough to overflow a time.Duration is rejected.
	if w := api.do(t, http.MethodGet, "/api/threats?hours=99999999", nil); w.Code != http.StatusBadRequest {
		t.Errorf("oversized hours = %d, want 400", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/api/threats?hours=48", nil); w.Code != http.StatusOK {
		t.Errorf("hours=48 = %d, want 200", w.Code)
	}
}
