package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestThrottleRejectsBeyondBurst(t *testing.T) {
	handler := Throttle(0.001, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("first two requests should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be throttled, got %v", codes)
	}
}

func TestThrottleIsPerClient(t *testing.T) {
	handler := Throttle(0.001, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i, addr := range []string{"10.0.0.1:1111", "10.0.0.2:2222"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Errorf("client %d should have its own budget, got %d", i, rr.Code)
		}
	}
}

func TestThrottleDisabledWhenRPSNonPositive(t *testing.T) {
	handler := Throttle(0, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
		req.RemoteAddr = "10.0.0.1:1111"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("disabled throttle rejected request %d with %d", i, rr.Code)
		}
	}
}
