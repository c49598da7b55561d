package observability

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSessionCollector_RecordRequest(t *testing.T) {
	c := NewSessionCollector()

	c.RecordRequest(RequestInfo{Method: "GET"}, RequestResult{StatusCode: 200, Duration: 50 * time.Millisecond})
	c.RecordRequest(RequestInfo{Method: "GET"}, RequestResult{StatusCode: 401, Duration: 10 * time.Millisecond})
	c.RecordRequest(RequestInfo{Method: "POST"}, RequestResult{Error: errors.New("timeout")})

	summary := c.Summary()
	if summary.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", summary.TotalRequests)
	}
	if summary.FailedRequests != 2 {
		t.Errorf("expected 2 failed requests, got %d", summary.FailedRequests)
	}
	if summary.TotalLatency != 60*time.Millisecond {
		t.Errorf("expected 60ms latency, got %v", summary.TotalLatency)
	}
}

func TestSessionCollector_Reset(t *testing.T) {
	c := NewSessionCollector()
	c.RecordRequest(RequestInfo{}, RequestResult{StatusCode: 500})

	c.Reset()

	summary := c.Summary()
	if summary.TotalRequests != 0 || summary.FailedRequests != 0 {
		t.Errorf("expected zeroed metrics after reset, got %+v", summary)
	}
}

func TestSessionCollector_Concurrent(t *testing.T) {
	c := NewSessionCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordRequest(RequestInfo{}, RequestResult{StatusCode: 204})
		}()
	}
	wg.Wait()

	if got := c.Summary().TotalRequests; got != 50 {
		t.Errorf("expected 50 requests, got %d", got)
	}
}

func TestSessionMetrics_FormatParts(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &SessionMetrics{
		StartTime:      start,
		EndTime:        start.Add(300 * time.Millisecond),
		TotalRequests:  2,
		FailedRequests: 1,
		TotalLatency:   100 * time.Millisecond,
	}

	parts := m.FormatParts()
	want := []string{"2 requests", "1 failed", "avg 50ms", "total 300ms"}
	if len(parts) != len(want) {
		t.Fatalf("expected %v, got %v", want, parts)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("part %d: expected %q, got %q", i, want[i], parts[i])
		}
	}
}

func TestSessionMetrics_FormatPartsEmpty(t *testing.T) {
	var m *SessionMetrics
	if parts := m.FormatParts(); parts != nil {
		t.Errorf("expected nil parts for nil metrics, got %v", parts)
	}
	if parts := (&SessionMetrics{}).FormatParts(); parts != nil {
		t.Errorf("expected nil parts without requests, got %v", parts)
	}
}
