package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linesmerrill/wepass-api/models"
)

func TestNormalizeRoutePath(t *testing.T) {
	tests := map[string]string{
		"/api/v1/access/507f1f77bcf86cd799439011":                 "/api/v1/access/{id}",
		"/api/v1/access/507f1f77bcf86cd799439011/missing-details": "/api/v1/access/{id}/missing-details",
		"/api/v1/access/history/507f1f77bcf86cd799439011":         "/api/v1/access/history/{id}",
		"/api/v1/access/verify":                                   "/api/v1/access/verify",
		"/api/v1/access/verify/":                                  "/api/v1/access/verify",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeRoutePath(in), in)
	}
}

func TestMetricsCollector_Summary(t *testing.T) {
	mc := &MetricsCollector{
		routeMetrics: make(map[string]*RouteMetrics),
		resolutions:  make(map[int]int64),
		rejections:   make(map[string]int64),
	}
	mc.processTrace(RequestTrace{Method: "POST", Path: "/api/v1/access/verify", Status: 200, TotalDuration: 20 * time.Millisecond})
	mc.processTrace(RequestTrace{Method: "POST", Path: "/api/v1/access/verify", Status: 403, TotalDuration: 10 * time.Millisecond})
	mc.processTrace(RequestTrace{Method: "GET", Path: "/api/v1/access/507f1f77bcf86cd799439011", Status: 200, TotalDuration: 5 * time.Millisecond})
	mc.RecordResolution(models.ResolutionSuccess)
	mc.RecordResolution(models.ResolutionMissingInfo)
	mc.RecordResolution(models.ResolutionMissingInfo)
	mc.RecordRejection(RejectionScopeMismatch)

	summary := mc.GetSummary()

	assert.Equal(t, int64(3), summary.TotalRequests)
	assert.Equal(t, int64(1), summary.TotalErrors)
	assert.InDelta(t, 1.0/3.0, summary.ErrorRate, 0.0001)
	assert.Equal(t, map[string]int64{"success": 1, "missingInfo": 2, "expired": 0}, summary.Resolutions)
	assert.Equal(t, map[string]int64{RejectionScopeMismatch: 1}, summary.Rejections)
	if assert.Len(t, summary.Routes, 2) {
		verify := summary.Routes[0]
		assert.Equal(t, "/api/v1/access/verify", verify.Path)
		assert.Equal(t, int64(2), verify.Count)
		assert.Equal(t, int64(1), verify.ErrorCount)
		assert.Equal(t, 15*time.Millisecond, verify.AvgTime)
		assert.Equal(t, 10*time.Millisecond, verify.MinTime)
		assert.Equal(t, 20*time.Millisecond, verify.MaxTime)
		assert.Equal(t, "/api/v1/access/{id}", summary.Routes[1].Path)
	}
}

func TestMetricsMiddleware_SetsRequestID(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/access/create", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
}
