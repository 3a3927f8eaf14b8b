package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKey guards the machine-to-machine routes (visit import, daily
// report). Callers authenticate with the X-API-Key header instead of a
// user session; a missing or wrong key gets the same uniform 401 the
// session routes use.
func APIKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
