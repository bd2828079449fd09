package api

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linesmerrill/wepass-api/models"
)

// Rejection reasons counted next to verification outcomes
const (
	RejectionNotFound      = "notFound"
	RejectionScopeMismatch = "scopeMismatch"
	RejectionThrottled     = "throttled"
	RejectionExhausted     = "codeSpaceExhausted"
)

var (
	objectIDPattern = regexp.MustCompile(`/[0-9a-fA-F]{24}(/|$)`)
	numericPattern  = regexp.MustCompile(`/\d{5,}(/|$)`)
)

// RequestTrace tracks timing for a single request
type RequestTrace struct {
	RequestID     string        `json:"requestId"`
	Method        string        `json:"method"`
	Path          string        `json:"path"`
	Status        int           `json:"status"`
	StartTime     time.Time     `json:"startTime"`
	TotalDuration time.Duration `json:"totalDuration"`
}

// RouteMetrics aggregates metrics for a specific route
type RouteMetrics struct {
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	Count       int64         `json:"count"`
	ErrorCount  int64         `json:"errorCount"`
	TotalTime   time.Duration `json:"totalTime"`
	AvgTime     time.Duration `json:"avgTime"`
	MinTime     time.Duration `json:"minTime"`
	MaxTime     time.Duration `json:"maxTime"`
	LastRequest time.Time     `json:"lastRequest"`
}

// Summary is the snapshot served by the metrics endpoint
type Summary struct {
	TotalRequests int64            `json:"totalRequests"`
	TotalErrors   int64            `json:"totalErrors"`
	ErrorRate     float64          `json:"errorRate"`
	WindowStart   time.Time        `json:"windowStart"`
	Resolutions   map[string]int64 `json:"resolutions"`
	Rejections    map[string]int64 `json:"rejections"`
	Routes        []RouteMetrics   `json:"routes"`
}

// MetricsCollector collects and aggregates request metrics
type MetricsCollector struct {
	mu            sync.RWMutex
	routeMetrics  map[string]*RouteMetrics
	resolutions   map[int]int64
	rejections    map[string]int64
	windowStart   time.Time
	totalRequests int64
	totalErrors   int64
	traceChan     chan RequestTrace
}

var (
	globalMetrics *MetricsCollector
	metricsOnce   sync.Once
)

// NewMetricsCollector returns an empty collector. Traces queued with
// RecordTrace are folded in by a background goroutine.
func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		routeMetrics: make(map[string]*RouteMetrics),
		resolutions:  make(map[int]int64),
		rejections:   make(map[string]int64),
		windowStart:  time.Now(),
		traceChan:    make(chan RequestTrace, 1000),
	}
	go mc.processTraces()
	return mc
}

// GetMetrics returns the global metrics collector
func GetMetrics() *MetricsCollector {
	metricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// RecordTrace queues a request trace. It never blocks: when the queue is full
// the trace is dropped.
func (mc *MetricsCollector) RecordTrace(trace RequestTrace) {
	select {
	case mc.traceChan <- trace:
	default:
	}
}

func (mc *MetricsCollector) processTraces() {
	for trace := range mc.traceChan {
		mc.processTrace(trace)
	}
}

func (mc *MetricsCollector) processTrace(trace RequestTrace) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	path := normalizeRoutePath(trace.Path)
	routeKey := trace.Method + " " + path
	metrics, exists := mc.routeMetrics[routeKey]
	if !exists {
		metrics = &RouteMetrics{
			Method:  trace.Method,
			Path:    path,
			MinTime: trace.TotalDuration,
		}
		mc.routeMetrics[routeKey] = metrics
	}

	metrics.Count++
	metrics.TotalTime += trace.TotalDuration
	metrics.AvgTime = metrics.TotalTime / time.Duration(metrics.Count)
	metrics.LastRequest = trace.StartTime
	if trace.TotalDuration < metrics.MinTime {
		metrics.MinTime = trace.TotalDuration
	}
	if trace.TotalDuration > metrics.MaxTime {
		metrics.MaxTime = trace.TotalDuration
	}

	mc.totalRequests++
	if trace.Status >= 400 {
		metrics.ErrorCount++
		mc.totalErrors++
	}
}

// RecordResolution counts a completed verification by its resolution code
func (mc *MetricsCollector) RecordResolution(code int) {
	mc.mu.Lock()
	mc.resolutions[code]++
	mc.mu.Unlock()
}

// RecordRejection counts a verification that produced no resolution
func (mc *MetricsCollector) RecordRejection(reason string) {
	mc.mu.Lock()
	mc.rejections[reason]++
	mc.mu.Unlock()
}

// GetSummary returns overall summary metrics
func (mc *MetricsCollector) GetSummary() Summary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	summary := Summary{
		TotalRequests: mc.totalRequests,
		TotalErrors:   mc.totalErrors,
		WindowStart:   mc.windowStart,
		Resolutions: map[string]int64{
			"success":     mc.resolutions[models.ResolutionSuccess],
			"missingInfo": mc.resolutions[models.ResolutionMissingInfo],
			"expired":     mc.resolutions[models.ResolutionExpired],
		},
		Rejections: make(map[string]int64, len(mc.rejections)),
		Routes:     make([]RouteMetrics, 0, len(mc.routeMetrics)),
	}
	if mc.totalRequests > 0 {
		summary.ErrorRate = float64(mc.totalErrors) / float64(mc.totalRequests)
	}
	for reason, n := range mc.rejections {
		summary.Rejections[reason] = n
	}
	for _, metrics := range mc.routeMetrics {
		summary.Routes = append(summary.Routes, *metrics)
	}
	sort.Slice(summary.Routes, func(i, j int) bool {
		return summary.Routes[i].Count > summary.Routes[j].Count
	})
	return summary
}

// normalizeRoutePath replaces ids and access codes with placeholders so that
// /api/v1/access/507f1f77bcf86cd799439011 groups under /api/v1/access/{id}
func normalizeRoutePath(path string) string {
	path = objectIDPattern.ReplaceAllString(path, "/{id}$1")
	path = numericPattern.ReplaceAllString(path, "/{id}$1")
	path = strings.ReplaceAll(path, "//", "/")
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}
