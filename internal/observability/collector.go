package observability

import (
	"fmt"
	"sync"
	"time"
)

// SessionMetrics aggregates request metrics for one CLI invocation.
type SessionMetrics struct {
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	TotalRequests  int           `json:"total_requests"`
	FailedRequests int           `json:"failed_requests"`
	TotalLatency   time.Duration `json:"total_latency_ns"`
}

// FormatParts returns short human-readable fragments for a stats line.
func (m *SessionMetrics) FormatParts() []string {
	if m == nil || m.TotalRequests == 0 {
		return nil
	}
	parts := []string{fmt.Sprintf("%d requests", m.TotalRequests)}
	if m.TotalRequests == 1 {
		parts[0] = "1 request"
	}
	if m.FailedRequests > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedRequests))
	}
	avg := m.TotalLatency / time.Duration(m.TotalRequests)
	parts = append(parts, fmt.Sprintf("avg %dms", avg.Milliseconds()))
	if !m.EndTime.IsZero() {
		parts = append(parts, fmt.Sprintf("total %dms", m.EndTime.Sub(m.StartTime).Milliseconds()))
	}
	return parts
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use.
type SessionCollector struct {
	mu sync.Mutex

	startTime      time.Time
	totalRequests  int
	failedRequests int
	totalLatency   time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{startTime: time.Now()}
}

// RecordRequest records one finished request.
func (c *SessionCollector) RecordRequest(_ RequestInfo, result RequestResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += result.Duration
	if result.Failed() {
		c.failedRequests++
	}
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() *SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &SessionMetrics{
		StartTime:      c.startTime,
		EndTime:        time.Now(),
		TotalRequests:  c.totalRequests,
		FailedRequests: c.failedRequests,
		TotalLatency:   c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.failedRequests = 0
	c.totalLatency = 0
}
