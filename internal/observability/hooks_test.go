package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestCLIHooks_Level0CollectsSilently(t *testing.T) {
	var buf bytes.Buffer
	collector := NewSessionCollector()
	h := NewCLIHooks(0, collector, NewTraceWriterTo(&buf))

	ctx := h.OnRequestStart(context.Background(), RequestInfo{Method: "GET", URL: "/admin/businesses"})
	h.OnRequestEnd(ctx, RequestInfo{Method: "GET", URL: "/admin/businesses"}, RequestResult{StatusCode: 500})

	if buf.Len() != 0 {
		t.Errorf("expected no output at level 0, got: %s", buf.String())
	}
	if collector.Summary().TotalRequests != 1 {
		t.Error("expected request to be collected")
	}
}

func TestCLIHooks_Level1TracesFailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	h := NewCLIHooks(1, nil, NewTraceWriterTo(&buf))
	info := RequestInfo{Method: "GET", URL: "/admin/call-logs"}

	h.OnRequestStart(context.Background(), info)
	h.OnRequestEnd(context.Background(), info, RequestResult{StatusCode: 200, Duration: time.Millisecond})
	if buf.Len() != 0 {
		t.Errorf("expected successful request to be silent, got: %s", buf.String())
	}

	h.OnRequestEnd(context.Background(), info, RequestResult{StatusCode: 404})
	if !strings.Contains(buf.String(), "<- 404") {
		t.Errorf("expected failure line, got: %s", buf.String())
	}
}

func TestCLIHooks_Level2TracesEverything(t *testing.T) {
	var buf bytes.Buffer
	h := NewCLIHooks(2, nil, NewTraceWriterTo(&buf))
	info := RequestInfo{Method: "DELETE", URL: "/admin/businesses/b1"}

	h.OnRequestStart(context.Background(), info)
	h.OnRequestEnd(context.Background(), info, RequestResult{StatusCode: 204})

	output := buf.String()
	if !strings.Contains(output, "-> DELETE /admin/businesses/b1") {
		t.Errorf("expected start line, got: %s", output)
	}
	if !strings.Contains(output, "<- 204 DELETE") {
		t.Errorf("expected end line, got: %s", output)
	}
}

func TestCLIHooks_SetLevel(t *testing.T) {
	h := NewCLIHooks(0, nil, nil)
	h.SetLevel(2)
	if h.Level() != 2 {
		t.Errorf("expected level 2, got %d", h.Level())
	}
}

func TestRequestResult_Failed(t *testing.T) {
	tests := []struct {
		result RequestResult
		want   bool
	}{
		{RequestResult{StatusCode: 200}, false},
		{RequestResult{StatusCode: 204}, false},
		{RequestResult{StatusCode: 401}, true},
		{RequestResult{StatusCode: 0}, true},
	}
	for _, tt := range tests {
		if got := tt.result.Failed(); got != tt.want {
			t.Errorf("Failed() for status %d = %v, want %v", tt.result.StatusCode, got, tt.want)
		}
	}
}
