package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/errs"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/model"
	"github.com/birukG09/Satellite-Telemetry-Visualization-and-Communication-Monitor/internal/service"
)

// SatelliteHandler handles the REST API for satellites and telemetry.
type SatelliteHandler struct {
	svc *service.SatelliteService
	hub *service.Hub
}

// NewSatelliteHandler creates the handler.
func NewSatelliteHandler(svc *service.SatelliteService, hub *service.Hub) *SatelliteHandler {
	return &SatelliteHandler{svc: svc, hub: hub}
}

// List handles GET /api/satellites with optional filter query params:
// search, types (repeatable), orbitClass (ALL/LEO/MEO/GEO), country.
func (h *SatelliteHandler) List(c *gin.Context) {
	filter := model.FilterCriteria{
		Search:     c.Query("search"),
		Types:      c.QueryArray("types"),
		OrbitClass: c.Query("orbitClass"),
		Country:    c.Query("country"),
	}
	if filter.OrbitClass != "" && filter.OrbitClass != string(model.OrbitAll) &&
		!model.ValidOrbitClass(filter.OrbitClass) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orbitClass"})
		return
	}
	sats, err := h.svc.List(filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list satellites"})
		return
	}
	c.JSON(http.StatusOK, sats)
}

// Get handles GET /api/satellite/:id, one entry plus its latest sample.
func (h *SatelliteHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.Get(id)
	if err != nil {
		if errors.Is(err, errs.ErrSatelliteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "satellite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get satellite"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create handles POST /api/satellites.
func (h *SatelliteHandler) Create(c *gin.Context) {
	var req model.CreateSatelliteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	info, err := h.svc.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrDuplicateNorad):
			c.JSON(http.StatusBadRequest, gin.H{"error": "norad id already registered"})
		case errors.Is(err, errs.ErrInvalidSatellite):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid satellite payload"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create satellite"})
		}
		return
	}
	c.JSON(http.StatusCreated, info)
}

// History handles GET /api/telemetry/:satelliteId?limit=, newest first.
func (h *SatelliteHandler) History(c *gin.Context) {
	id, ok := paramID(c, "satelliteId")
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = v
	}
	samples, err := h.svc.History(id, limit)
	if err != nil {
		if errors.Is(err, errs.ErrSatelliteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "satellite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get telemetry"})
		return
	}
	c.JSON(http.StatusOK, samples)
}

// Position handles GET /api/position/:satelliteId, an on-demand estimator
// invocation that persists nothing.
func (h *SatelliteHandler) Position(c *gin.Context) {
	id, ok := paramID(c, "satelliteId")
	if !ok {
		return
	}
	pos, err := h.svc.EstimateNow(id, time.Now())
	if err != nil {
		if errors.Is(err, errs.ErrSatelliteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "satellite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to estimate position"})
		return
	}
	c.JSON(http.StatusOK, pos)
}

// Positions handles GET /api/positions, the latest sample per satellite
// joined with registry metadata.
func (h *SatelliteHandler) Positions(c *gin.Context) {
	positions, err := h.svc.LatestPositions()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get positions"})
		return
	}
	c.JSON(http.StatusOK, positions)
}

// Events handles GET /api/events?limit=, the bounded window of recently
// broadcast envelopes, newest first.
func (h *SatelliteHandler) Events(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = v
	}
	c.JSON(http.StatusOK, h.hub.Recent(limit))
}

func paramID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid satellite id"})
		return 0, false
	}
	return uint(v), true
}
