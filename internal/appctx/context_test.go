package appctx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ringlify/ringlify-cli/internal/api"
	"github.com/ringlify/ringlify-cli/internal/config"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/session"
)

func newTestApp(t *testing.T, cfg *config.Config, flags GlobalFlags) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	var stdout, stderr bytes.Buffer
	app, err := NewApp(cfg, flags, WithStore(session.NewMemoryStore()), WithWriters(&stdout, &stderr))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, &stdout, &stderr
}

func TestNewApp(t *testing.T) {
	cfg := config.Default()
	app, _, _ := newTestApp(t, cfg, GlobalFlags{})

	if app.Config != cfg {
		t.Error("Config not set correctly")
	}
	if app.Session == nil {
		t.Error("Session accessor not initialized")
	}
	if app.Client == nil || app.Admin == nil || app.Portal == nil {
		t.Error("API services not initialized")
	}
	if app.Output == nil {
		t.Error("Output writer not initialized")
	}
	if app.Hooks.Level() != 0 {
		t.Errorf("Hooks level = %d, want 0", app.Hooks.Level())
	}
}

func TestNewAppNoPersist(t *testing.T) {
	t.Setenv("RINGLIFY_NO_KEYRING", "1")
	cfg := config.Default()
	cfg.SessionDir = t.TempDir()

	app, err := NewApp(cfg, GlobalFlags{NoPersist: true}, WithWriters(&bytes.Buffer{}, &bytes.Buffer{}))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	if err := app.Session.Set("jwt", "b1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := app.Session.Token(); got != "jwt" {
		t.Errorf("Token() = %q, want jwt", got)
	}
	if _, err := os.Stat(filepath.Join(cfg.SessionDir, "session.json")); !os.IsNotExist(err) {
		t.Error("session written to disk with NoPersist set")
	}
}

func TestNewAppRejectsBadFormat(t *testing.T) {
	cfg := config.Default()
	cfg.Format = "yaml"

	_, err := NewApp(cfg, GlobalFlags{}, WithStore(session.NewMemoryStore()))
	if !output.IsCode(err, output.CodeUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestNewAppRejectsBadLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "loud"

	_, err := NewApp(cfg, GlobalFlags{}, WithStore(session.NewMemoryStore()))
	if !output.IsCode(err, output.CodeUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestWithAppAndFromContext(t *testing.T) {
	app, _, _ := newTestApp(t, nil, GlobalFlags{})

	ctx := WithApp(context.Background(), app)
	if FromContext(ctx) != app {
		t.Error("FromContext did not retrieve the same app")
	}
}

func TestFromContextEmpty(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("expected nil from empty context")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name   string
		config string
		flags  GlobalFlags
		want   output.Format
	}{
		{"default", "auto", GlobalFlags{}, output.FormatAuto},
		{"config json", "json", GlobalFlags{}, output.FormatJSON},
		{"config quiet", "quiet", GlobalFlags{}, output.FormatQuiet},
		{"flag json", "auto", GlobalFlags{JSON: true}, output.FormatJSON},
		{"flag beats config", "quiet", GlobalFlags{Styled: true}, output.FormatStyled},
		{"ids beats json", "auto", GlobalFlags{JSON: true, IDsOnly: true}, output.FormatIDs},
		{"count beats quiet", "auto", GlobalFlags{Quiet: true, Count: true}, output.FormatCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Format = tt.config
			got, err := resolveFormat(cfg, tt.flags)
			if err != nil {
				t.Fatalf("resolveFormat: %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerbosity(t *testing.T) {
	tests := []struct {
		env  string
		flag int
		want int
	}{
		{"", 0, 0},
		{"", 2, 2},
		{"1", 0, 1},
		{"1", 2, 2},
		{"true", 0, 2},
		{"nope", 1, 1},
	}

	for _, tt := range tests {
		t.Setenv("RINGLIFY_DEBUG", tt.env)
		if got := verbosity(tt.flag); got != tt.want {
			t.Errorf("verbosity(%d) with RINGLIFY_DEBUG=%q = %d, want %d", tt.flag, tt.env, got, tt.want)
		}
	}
}

func TestOKIncludesStats(t *testing.T) {
	app, stdout, _ := newTestApp(t, nil, GlobalFlags{JSON: true, Stats: true})

	if err := app.OK(map[string]string{"id": "b1"}); err != nil {
		t.Fatalf("OK: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	meta, ok := resp["meta"].(map[string]any)
	if !ok {
		t.Fatalf("expected meta in response, got %v", resp)
	}
	if _, ok := meta["stats"]; !ok {
		t.Error("expected meta.stats")
	}
}

func TestOKWithoutStats(t *testing.T) {
	app, stdout, _ := newTestApp(t, nil, GlobalFlags{JSON: true})

	if err := app.OK(map[string]string{"id": "b1"}); err != nil {
		t.Fatalf("OK: %v", err)
	}
	if strings.Contains(stdout.String(), "stats") {
		t.Errorf("unexpected stats in %s", stdout.String())
	}
}

func TestErrMachineOutputKeepsStderrClean(t *testing.T) {
	app, stdout, stderr := newTestApp(t, nil, GlobalFlags{JSON: true, Stats: true})

	if err := app.Err(output.ErrNoSession()); err != nil {
		t.Fatalf("Err: %v", err)
	}

	var resp output.ErrorResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Code != output.CodeNoSession {
		t.Errorf("code = %q, want %q", resp.Code, output.CodeNoSession)
	}
	if stderr.Len() != 0 {
		t.Errorf("expected empty stderr, got %q", stderr.String())
	}
}

func TestSessionInvalidatedNotice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.BaseURL = srv.URL
	app, _, stderr := newTestApp(t, cfg, GlobalFlags{Styled: true})
	if err := app.Session.Set("jwt", "b1"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	_, err := app.Portal.Business(context.Background())
	if !errors.Is(err, api.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !app.SessionInvalidated() {
		t.Error("expected SessionInvalidated after 401")
	}
	if app.Session.Auth().IsAuthenticated {
		t.Error("session should be cleared")
	}

	if err := app.Err(err); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if !strings.Contains(stderr.String(), "Signed out") {
		t.Errorf("expected sign-out notice on stderr, got %q", stderr.String())
	}
}

func TestOverrides(t *testing.T) {
	f := GlobalFlags{BaseURL: "example.com", OperatorKey: "k", Timeout: "5s", Verbose: 2, Stats: true}
	o := f.Overrides()
	if o.BaseURL != "example.com" || o.OperatorKey != "k" || o.Timeout != "5s" || o.Verbose != 2 || !o.Stats {
		t.Errorf("unexpected overrides %+v", o)
	}
}
