package webapi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthMiddleware enforces the bearer token on every wrapped route. The
// comparison is constant-time.
func AuthMiddleware(next http.Handler, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		provided, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || provided == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid authentication credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}
