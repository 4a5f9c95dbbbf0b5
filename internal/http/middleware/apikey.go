package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey enforces the shared-secret X-API-Key header on honeypot endpoints.
// Rejected requests never reach the engine.
func APIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeAuthError(w, "api key auth disabled")
				return
			}
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				writeAuthError(w, "missing X-API-Key header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				writeAuthError(w, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
