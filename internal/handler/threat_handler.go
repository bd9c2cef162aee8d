package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/threat"
)

// ThreatHandler exposes the threat-analysis capability over REST. With the
// analyzer disabled these endpoints serve empty data from the no-op
// implementation rather than erroring.
type ThreatHandler struct {
	analyzer threat.Analyzer
}

// NewThreatHandler creates the handler.
func NewThreatHandler(analyzer threat.Analyzer) *ThreatHandler {
	return &ThreatHandler{analyzer: analyzer}
}

// maxThreatQueryHours bounds the hours query so the window fits a
// time.Duration (one year, far beyond the bounded event log anyway).
const maxThreatQueryHours = 24 * 365

// Threats handles GET /api/threats?hours= (default 24).
func (h *ThreatHandler) Threats(c *gin.Context) {
	hours := 24
	if raw := c.Query("hours"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxThreatQueryHours {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
			return
		}
		hours = v
	}
	c.JSON(http.StatusOK, h.analyzer.Threats(time.Duration(hours)*time.Hour))
}

// Zones handles GET /api/threat-zones.
func (h *ThreatHandler) Zones(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Zones())
}

// CommunicationPaths handles GET /api/communication-paths.
func (h *ThreatHandler) CommunicationPaths(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.CommunicationPaths())
}

// Stats handles GET /api/threat-stats.
func (h *ThreatHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Stats())
}
