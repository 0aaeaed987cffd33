package middleware

import "net/http"

// RequireInternalSecret validates the X-Hub-Auth header for trigger → hub
// internal calls. An unconfigured secret is a server misconfiguration (500),
// a missing or wrong header an authorization failure (401).
func RequireInternalSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, `{"error":{"code":"E_INTERNAL","message":"internal secret is not configured"}}`, http.StatusInternalServerError)
				return
			}
			if r.Header.Get("X-Hub-Auth") != secret {
				http.Error(w, `{"error":{"code":"E_UNAUTHORIZED","message":"invalid internal secret"}}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
