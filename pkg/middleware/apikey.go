package middleware

import (
	"crypto/subtle"
	"net/http"

	"drone-delivery/pkg/utils"

	"go.uber.org/zap"
)

// APIKey guards machine-to-machine routes (storefront checkout, simulator)
// with a shared X-API-Key. An empty key disables those routes.
func APIKey(key string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				utils.ResponseServiceUnavailable(w, "External API is not configured")
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				logger.Warn("Invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("ip", clientIP(r)))
				utils.ResponseUnauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
