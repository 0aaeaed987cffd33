package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireInternalSecretUnconfigured(t *testing.T) {
	var called bool
	handler := RequireInternalSecret("")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "anything")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unconfigured secret, got %d", rr.Code)
	}
	if called {
		t.Fatal("handler must not run without a configured secret")
	}
}

func TestRequireInternalSecretMismatch(t *testing.T) {
	var called bool
	handler := RequireInternalSecret("s3cret")(okHandler(&called))

	for _, header := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
		if header != "" {
			req.Header.Set("X-Hub-Auth", header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rr.Code)
		}
	}
	if called {
		t.Fatal("handler must not run on secret mismatch")
	}
}

func TestRequireInternalSecretMatch(t *testing.T) {
	var called bool
	handler := RequireInternalSecret("s3cret")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/internal/oneclick/run", nil)
	req.Header.Set("X-Hub-Auth", "s3cret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if !called {
		t.Fatal("handler should have run")
	}
}
