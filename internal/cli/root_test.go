package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ringlify/ringlify-cli/internal/appctx"
	"github.com/ringlify/ringlify-cli/internal/completion"
	"github.com/ringlify/ringlify-cli/internal/output"
	"github.com/ringlify/ringlify-cli/internal/session"
)

// backend is a fake Ringlify API that records the requests it sees.
type backend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	handler  http.HandlerFunc
}

func newBackend(t *testing.T, h http.HandlerFunc) *backend {
	t.Helper()
	b := &backend{handler: h}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r)
		b.mu.Unlock()
		b.handler(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func (b *backend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *backend) last() *http.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[len(b.requests)-1]
}

// isolate points config and env at an empty environment.
func isolate(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	for _, key := range []string{
		"RINGLIFY_ADMIN_API_KEY", "RINGLIFY_TIMEOUT", "RINGLIFY_FORMAT",
		"RINGLIFY_LOG_LEVEL", "RINGLIFY_STATS", "RINGLIFY_SESSION_DIR", "RINGLIFY_DEBUG",
		"RINGLIFY_CACHE_DIR",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("RINGLIFY_BACKEND_URL", baseURL)
}

type result struct {
	code   int
	stdout string
	stderr string
}

func (r result) envelope(t *testing.T) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &v), "stdout: %s", r.stdout)
	return v
}

func run(t *testing.T, store session.Store, stdin io.Reader, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(appctx.WithStore(store), appctx.WithWriters(&stdout, &stderr))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	code := Run(context.Background(), cmd, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestLoginThenTodayStats(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/business/login":
			io.WriteString(w, `{"token":"jwt","businessId":"b1","business":{"id":"b1","name":"Corner Cafe"}}`)
		case "/admin/call-logs":
			io.WriteString(w, `{"data":[],"pagination":{"page":1,"limit":1,"total":1500,"totalPages":1500}}`)
		case "/admin/appointments":
			io.WriteString(w, `{"data":[],"pagination":{"page":1,"limit":1,"total":2,"totalPages":2}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()

	res := run(t, store, nil, "auth", "login", "--email", "owner@example.com", "--password", "secret", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	env := res.envelope(t)
	assert.Equal(t, "Signed in to Corner Cafe", env["summary"])
	assert.NotContains(t, res.stdout, "jwt")

	res = run(t, store, nil, "stats", "today", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	env = res.envelope(t)
	assert.Equal(t, "1,500 calls, 2 appointments today", env["summary"])
	assert.Equal(t, map[string]any{"calls": float64(1500), "appointments": float64(2)}, env["data"])
	assert.Equal(t, "Bearer jwt", be.last().Header.Get("Authorization"))
}

func TestUnauthorizedClearsSession(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Unauthorized","message":"jwt expired"}`)
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, nil, "calls", "--json")
	assert.Equal(t, output.ExitUnauthorized, res.code)
	env := res.envelope(t)
	assert.Equal(t, output.CodeUnauthorized, env["code"])
	assert.Equal(t, "Unauthorized - Please login again", env["error"])

	assert.False(t, session.NewAccessor(store).Auth().IsAuthenticated)
}

func TestNoSessionFailsWithoutRequest(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	isolate(t, be.URL)

	res := run(t, session.NewMemoryStore(), nil, "appointments", "--json")
	assert.Equal(t, output.ExitNoSession, res.code)
	assert.Zero(t, be.count())
}

func TestNaturalLanguageDates(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[],"pagination":{"page":1,"limit":10,"total":0,"totalPages":0}}`)
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, nil, "calls", "--start", "2024-01-05", "--status", "booked", "--limit", "10", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	assert.Equal(t, "businessId=b1&limit=10&status=booked&startDate=2024-01-05", be.last().URL.RawQuery)

	res = run(t, store, nil, "calls", "--start", "the day after never", "--json")
	assert.Equal(t, output.ExitUsage, res.code)
	assert.Contains(t, res.envelope(t)["error"], "--start")
}

func TestAdminUsesOperatorKey(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[{"id":"b1","name":"Corner Cafe","phoneNumber":"+15550100","timezone":"UTC"}]}`)
	})
	isolate(t, be.URL)

	res := run(t, session.NewMemoryStore(), nil, "admin", "businesses", "list", "--operator-key", "op-secret", "--ids-only")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	assert.Equal(t, "b1\n", res.stdout)
	assert.Equal(t, "Bearer op-secret", be.last().Header.Get("Authorization"))

	cached := completion.NewStore("").Businesses(be.URL)
	require.Len(t, cached, 1, "list refreshes the completion cache")
	assert.Equal(t, "Corner Cafe", cached[0].Name)
}

func TestOnboardSavesEveryStep(t *testing.T) {
	var (
		mu    sync.Mutex
		kb    = map[string]any{"address": "1 Main St", "hours": map[string]any{"mon": map[string]any{"open": "07:30", "close": "15:00"}}}
		puts  []map[string]any
		paths []string
	)
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			puts = append(puts, body)
		case http.MethodPost:
			var body struct {
				KnowledgeBase map[string]any `json:"knowledgeBase"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			kb = body.KnowledgeBase
		}
		out, _ := json.Marshal(map[string]any{
			"id": "b1", "name": "Corner Cafe", "phoneNumber": "+15551234567",
			"timezone": "America/Chicago", "knowledgeBase": kb,
		})
		w.Write(out)
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, nil, "onboard", "--name", "Corner Cafe & Bakery", "--close", "16:00",
		"--services", "Espresso", "--walk-ins", "Always welcome", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	assert.Equal(t, "You're all set! Corner Cafe is ready to take calls", res.envelope(t)["summary"])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /admin/businesses/b1",
		"PUT /admin/businesses/b1",
		"PUT /admin/businesses/b1",
		"GET /admin/businesses/b1",
		"POST /admin/businesses/b1/kb",
		"GET /admin/businesses/b1",
		"POST /admin/businesses/b1/kb",
	}, paths)
	// Unset flags fall back to the stored business.
	assert.Equal(t, map[string]any{"name": "Corner Cafe & Bakery", "phoneNumber": "+15551234567"}, puts[0])
	assert.Equal(t, map[string]any{"timezone": "America/Chicago"}, puts[1])

	assert.Equal(t, "1 Main St", kb["address"])
	assert.Equal(t, "Espresso", kb["services"])
	assert.Equal(t, "Always welcome", kb["walkIns"])
	week := kb["hours"].(map[string]any)
	assert.Equal(t, map[string]any{"open": "07:30", "close": "16:00"}, week["fri"])
}

func TestOnboardWithoutSession(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	isolate(t, be.URL)

	res := run(t, session.NewMemoryStore(), nil, "onboard", "--json")
	assert.Equal(t, output.ExitNoSession, res.code)
	assert.Zero(t, be.count())
}

func TestOnboardRejectsBadHoursAfterSavingInfo(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":"b1","name":"Corner Cafe","phoneNumber":"+15551234567","timezone":"UTC"}`)
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, nil, "onboard", "--open", "9am", "--json")
	assert.Equal(t, output.ExitValidation, res.code)
	assert.Equal(t, 2, be.count(), "prefill and business info only")
}

func TestKBSetRejectsInvalidJSON(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, strings.NewReader(`{"address": `), "kb", "set", "--file", "-", "--json")
	assert.Equal(t, output.ExitValidation, res.code)
	assert.Zero(t, be.count())
}

func TestKBSetFromStdin(t *testing.T) {
	var body string
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		io.WriteString(w, `{"id":"b1","name":"Corner Cafe","knowledgeBase":{"address":"1 Main St"}}`)
	})
	isolate(t, be.URL)
	store := session.NewMemoryStore()
	require.NoError(t, session.NewAccessor(store).Set("jwt", "b1"))

	res := run(t, store, strings.NewReader(`{"address": "1 Main St"}`), "kb", "set", "-f", "-", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	assert.JSONEq(t, `{"knowledgeBase":{"address":"1 Main St"}}`, body)
	assert.Equal(t, "/admin/businesses/b1/kb", be.last().URL.Path)
}

func TestDeleteRequiresForceWhenNotInteractive(t *testing.T) {
	be := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	isolate(t, be.URL)

	res := run(t, session.NewMemoryStore(), nil, "admin", "businesses", "delete", "b1", "--json")
	assert.Equal(t, output.ExitUsage, res.code)
	assert.Zero(t, be.count())

	res = run(t, session.NewMemoryStore(), nil, "admin", "businesses", "delete", "b1", "--force", "--json")
	require.Equal(t, output.ExitOK, res.code, res.stdout)
	assert.Equal(t, http.MethodDelete, be.last().Method)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	isolate(t, "http://localhost:3000")

	res := run(t, session.NewMemoryStore(), nil, "calls", "--bogus", "--json")
	assert.Equal(t, output.ExitUsage, res.code)
	assert.Equal(t, "Unknown option: --bogus", res.envelope(t)["error"])
}

func TestVersionSkipsSetup(t *testing.T) {
	t.Setenv("RINGLIFY_LOG_LEVEL", "not-a-level")

	res := run(t, session.NewMemoryStore(), nil, "version")
	assert.Equal(t, output.ExitOK, res.code)
	assert.Contains(t, res.stdout, "ringlify version")
}

func TestTransformCobraError(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"flag needs an argument: --limit", "--limit requires a value"},
		{"unknown flag: --nope", "Unknown option: --nope"},
		{"unknown shorthand flag: 'z' in -z", "Unknown option: -z"},
		{`required flag(s) "email", "name" not set`, "Missing required flag: --email, --name"},
		{`required flag(s) "email" not set`, "Missing required flag: --email"},
		{`required flag(s) "email", "name", "password" not set`, "Missing required flag: --email, --name, --password"},
		{`accepts 1 arg(s), received 0`, "accepts 1 arg(s), received 0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := transformCobraError(errors.New(tt.in))
			assert.True(t, output.IsCode(err, output.CodeUsage))
			assert.Equal(t, tt.want, output.AsError(err).Message)
		})
	}

	structured := output.ErrNoSession()
	assert.Same(t, structured, transformCobraError(structured))
}
