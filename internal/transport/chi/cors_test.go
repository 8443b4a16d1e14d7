package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(t *testing.T, nextCalled *bool) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		*nextCalled = true
		w.WriteHeader(http.StatusOK)
	})
	return CORS([]string{"http://localhost:3000"})(next)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	var nextCalled bool
	handler := corsHandler(t, &nextCalled)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !nextCalled {
		t.Fatal("wrapped handler not reached")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want configured origin", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Access-Control-Allow-Credentials not set")
	}
}

func TestCORSPreflightForUpload(t *testing.T) {
	var nextCalled bool
	handler := corsHandler(t, &nextCalled)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scan/upload", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if nextCalled {
		t.Error("preflight must be answered by the middleware")
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want configured origin", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPost {
		t.Errorf("Access-Control-Allow-Methods = %q, want POST", got)
	}
}

func TestCORSUnknownOriginGetsNoHeader(t *testing.T) {
	var nextCalled bool
	handler := corsHandler(t, &nextCalled)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/stats", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want unset for unknown origin", got)
	}
}
