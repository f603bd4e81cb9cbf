package middleware

import (
	"net/http"

	"drone-delivery/internal/data/repository"
	"drone-delivery/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthJWT validates the bearer token, rejects revoked tokens and puts the
// caller's identity and claims into the request context.
func AuthJWT(secret string, tokenRepo repository.TokenRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Access token required")
				return
			}

			token, ok := utils.BearerToken(authHeader)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			claims, err := utils.ParseToken(token, secret)
			if err != nil {
				logger.Warn("Rejected access token", zap.Error(err), zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			revoked, err := tokenRepo.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				logger.Error("Failed to check token revocation", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if revoked {
				utils.ResponseUnauthorized(w, "Token has been revoked")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, claims.Role, claims.Email)
			ctx = utils.SetClaimsContext(ctx, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Admin - checks the admin role against the stored user, not just the token
func Admin(userRepo repository.UserRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Get user ID from context (set by AuthJWT)
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			// 2. Load user
			user, err := userRepo.FindByID(r.Context(), userID)
			if err != nil {
				logger.Error("Admin check: failed to get user",
					zap.Error(err), zap.String("user_id", userID.String()))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			// 3. Check role
			if user == nil || !user.IsAdmin() {
				logger.Warn("Admin check: non-admin access attempt",
					zap.String("user_id", userID.String()),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
