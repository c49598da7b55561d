// Package observability provides metrics collection and tracing for API requests.
package observability

import (
	"context"
	"sync"
	"time"
)

// RequestInfo describes an outgoing HTTP request.
type RequestInfo struct {
	Method    string
	URL       string
	RequestID string
}

// RequestResult describes how an HTTP request ended.
// StatusCode is zero when the request never got a response.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Error      error
}

// Hooks receives request lifecycle callbacks from the API client.
type Hooks interface {
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
}

// NoopHooks discards every callback.
type NoopHooks struct{}

func (NoopHooks) OnRequestStart(ctx context.Context, _ RequestInfo) context.Context { return ctx }
func (NoopHooks) OnRequestEnd(context.Context, RequestInfo, RequestResult) {}

var _ Hooks = (*CLIHooks)(nil)

// CLIHooks implements Hooks for CLI observability.
// It supports configurable verbosity levels:
//   - 0: Silent (collect stats only, no output)
//   - 1: Failed requests only
//   - 2: Every request, start and end
type CLIHooks struct {
	mu        sync.Mutex
	level     int
	collector *SessionCollector
	writer    *TraceWriter
}

// NewCLIHooks creates a new CLIHooks with the given verbosity level.
// If collector is nil, metrics are not collected.
// If writer is nil, no trace output is produced.
func NewCLIHooks(level int, collector *SessionCollector, writer *TraceWriter) *CLIHooks {
	return &CLIHooks{
		level:     level,
		collector: collector,
		writer:    writer,
	}
}

// SetLevel changes the verbosity level at runtime.
func (h *CLIHooks) SetLevel(level int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.level = level
}

// Level returns the current verbosity level.
func (h *CLIHooks) Level() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.level
}

// OnRequestStart is called before an HTTP request is sent.
func (h *CLIHooks) OnRequestStart(ctx context.Context, info RequestInfo) context.Context {
	h.mu.Lock()
	level := h.level
	writer := h.writer
	h.mu.Unlock()

	if level >= 2 && writer != nil {
		writer.WriteRequestStart(info)
	}
	return ctx
}

// OnRequestEnd is called after an HTTP request completes.
func (h *CLIHooks) OnRequestEnd(_ context.Context, info RequestInfo, result RequestResult) {
	h.mu.Lock()
	level := h.level
	collector := h.collector
	writer := h.writer
	h.mu.Unlock()

	if collector != nil {
		collector.RecordRequest(info, result)
	}

	if writer == nil {
		return
	}
	if level >= 2 || (level == 1 && result.Failed()) {
		writer.WriteRequestEnd(info, result)
	}
}

// Failed reports whether the request errored or returned a non-2xx status.
func (r RequestResult) Failed() bool {
	return r.Error != nil || r.StatusCode < 200 || r.StatusCode > 299
}
