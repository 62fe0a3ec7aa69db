package handler

import (
	"crypto/subtle"
	"net/http"

	"pdf-ocr-webhook/internal/domain"
)

// APIKeyMiddleware enforces the x-api-key header when a key is
// configured. With no key configured the check is disabled and every
// request passes through.
func APIKeyMiddleware(key string, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get("x-api-key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				logger.Warn("Rejected request with bad API key", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
