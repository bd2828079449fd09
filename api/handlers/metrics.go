package handlers

import (
	"net/http"

	"github.com/linesmerrill/wepass-api/api"
)

// MetricsHandler handles metrics requests
type MetricsHandler struct{}

// GetMetricsSummary returns request totals, per route timings and verification outcomes
func (m MetricsHandler) GetMetricsSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.GetMetrics().GetSummary())
}
