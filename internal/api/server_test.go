package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/msgtext/entdecode/internal/config"
)

// testLogger returns a logger for tests that discards output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestServer builds a server from the default config after applying
// mutate, and closes its rate limiter when the test ends.
func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default(t.TempDir())
	if mutate != nil {
		mutate(cfg)
	}
	srv := NewServer(cfg, testLogger())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("health status = %q, want 'ok'", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.APIKey = "secret-key"
	})

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"no auth", "", "", http.StatusUnauthorized},
		{"wrong key", "Authorization", "wrong-key", http.StatusUnauthorized},
		{"correct key", "Authorization", "secret-key", http.StatusOK},
		{"bearer prefix", "Authorization", "Bearer secret-key", http.StatusOK},
		{"x-api-key header", "X-API-Key", "secret-key", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/entities/amp", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()

			srv.Router().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthMiddleware_HealthIsOpen(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.APIKey = "secret-key"
	})

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthMiddlewareNoKeyConfigured(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/v1/entities", nil)
	w := httptest.NewRecorder()

	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d when no API key configured", w.Code, http.StatusOK)
	}
}

func TestStart_RefusesInsecureBind(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.BindAddr = "0.0.0.0"
		cfg.Server.APIKey = ""
	})

	err := srv.Start()
	if err == nil || !strings.Contains(err.Error(), "refusing") {
		t.Fatalf("Start() error = %v, want refusal", err)
	}
}

func TestShutdown_NotStarted(t *testing.T) {
	srv := NewServer(config.Default(t.TempDir()), testLogger())
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	// Second shutdown must not panic on the closed limiter.
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() = %v", err)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
