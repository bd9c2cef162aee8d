package constants

// Fixed service paths outside the /api group.
const (
	PathHealth  = "/health"
	PathReady   = "/ready"
	PathMetrics = "/metrics"
	PathWS      = "/ws"
)
