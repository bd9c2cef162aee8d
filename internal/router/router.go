package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/handler"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/metrics"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/pkg/constants"
)

// New builds the HTTP router.
func New(
	sats *handler.SatelliteHandler,
	threats *handler.ThreatHandler,
	streamWS *handler.StreamWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Middleware())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)
	r.GET(constants.PathMetrics, metrics.Handler())

	api := r.Group("/api")
	{
		api.GET("/satellites", sats.List)
		api.POST("/satellites", sats.Create)
		api.GET("/satellite/:id", sats.Get)
		api.GET("/telemetry/:satelliteId", sats.History)
		api.GET("/position/:satelliteId", sats.Position)
		api.GET("/positions", sats.Positions)
		api.GET("/events", sats.Events)

		api.GET("/threats", threats.Threats)
		api.GET("/threat-zones", threats.Zones)
		api.GET("/communication-paths", threats.CommunicationPaths)
		api.GET("/threat-stats", threats.Stats)
	}

	// WebSocket: server→client push of telemetry, registry, system, threat
	// and stats events.
	r.GET(constants.PathWS, streamWS.ServeWS)

	return r
}
