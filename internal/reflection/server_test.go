package reflection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/reflectctl/internal/registry"
	"github.com/danmuck/reflectctl/internal/testutil/testlog"
)

type stubAction struct {
	desc registry.ActionDesc
	run  func(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb registry.StreamCallback) (registry.Output, error)
}

func (a stubAction) Desc() registry.ActionDesc { return a.desc }

func (a stubAction) Run(ctx context.Context, rawInput json.RawMessage, runCtx map[string]any, cb registry.StreamCallback) (registry.Output, error) {
	return a.run(ctx, rawInput, runCtx, cb)
}

func greetStub() stubAction {
	return stubAction{
		desc: registry.ActionDesc{Key: "flow/greet", Name: "greet"},
		run: func(_ context.Context, _ json.RawMessage, _ map[string]any, _ registry.StreamCallback) (registry.Output, error) {
			return registry.Output{Response: map[string]any{"greeting": "hi"}, TraceID: "t1"}, nil
		},
	}
}

func newTestServer(t *testing.T, cfg ServiceConfig, actions ...registry.Action) (*Server, *ShutdownBroadcast) {
	t.Helper()
	reg := registry.NewRegistry()
	for _, a := range actions {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register %q: %v", a.Desc().Key, err)
		}
	}
	shutdown := NewShutdownBroadcast()
	s, err := NewServer(cfg, reg, shutdown)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return s, shutdown
}

func TestHealthAlwaysOK(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t, DefaultServiceConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/__health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "OK" {
		t.Fatalf("unexpected health body: %#v", body)
	}
}

func TestListActionsSnapshotWithVersionHeader(t *testing.T) {
	testlog.Start(t)
	cfg := DefaultServiceConfig()
	cfg.Version = "9.9.9"
	s, _ := newTestServer(t, cfg, greetStub())

	first := httptest.NewRecorder()
	s.Router().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/actions", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}
	if got := first.Header().Get(VersionHeader); got != "9.9.9" {
		t.Fatalf("unexpected version header: %q", got)
	}

	var listing map[string]registry.ActionDesc
	if err := json.Unmarshal(first.Body.Bytes(), &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing["flow/greet"].Key != "flow/greet" {
		t.Fatalf("unexpected listing: %#v", listing)
	}

	// Idempotent read: repeated calls return the same snapshot.
	second := httptest.NewRecorder()
	s.Router().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/actions", nil))
	if second.Body.String() != first.Body.String() {
		t.Fatalf("listing not stable across calls:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

func TestNotifyAcceptsAndReturnsEmptyObject(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t, DefaultServiceConfig())

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/notify", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "{}" {
		t.Fatalf("expected empty object body, got %q", rr.Body.String())
	}
	if rr.Header().Get(VersionHeader) == "" {
		t.Fatalf("expected version header on notify")
	}
}

func TestUnknownRoutesReturn404(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t, DefaultServiceConfig())

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rr := httptest.NewRecorder()
		s.Router().ServeHTTP(rr, httptest.NewRequest(method, "/api/nope", nil))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", method, rr.Code)
		}
		if rr.Body.Len() != 0 {
			t.Fatalf("%s: expected empty 404 body, got %q", method, rr.Body.String())
		}
	}
}

func TestQuitquitquitTriggersBroadcast(t *testing.T) {
	testlog.Start(t)
	s, shutdown := newTestServer(t, DefaultServiceConfig())

	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/__quitquitquit", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !shutdown.Triggered() {
		t.Fatalf("expected shutdown broadcast triggered")
	}
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	testlog.Start(t)
	s, _ := newTestServer(t, DefaultServiceConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/actions", nil)
	req.Header.Set("Origin", "http://some-devtool.example")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}
}

func TestNewServerValidation(t *testing.T) {
	testlog.Start(t)
	if _, err := NewServer(DefaultServiceConfig(), nil, NewShutdownBroadcast()); !errors.Is(err, ErrRegistryNil) {
		t.Fatalf("expected ErrRegistryNil, got %v", err)
	}
	if _, err := NewServer(DefaultServiceConfig(), registry.NewRegistry(), nil); !errors.Is(err, ErrShutdownNil) {
		t.Fatalf("expected ErrShutdownNil, got %v", err)
	}

	cfg := DefaultServiceConfig()
	cfg.Encoding = "latin-1"
	if _, err := NewServer(cfg, registry.NewRegistry(), NewShutdownBroadcast()); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("expected ErrUnsupportedEncoding, got %v", err)
	}
}
