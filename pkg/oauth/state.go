package oauth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// stateClaims round-trip the requested role through the provider redirect.
type stateClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SignState returns a short-lived HS256 state value carrying role.
func SignState(secret, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Audience:  jwt.ClaimStrings{"oauth-state"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyState checks the signature and expiry and returns the carried role.
func VerifyState(secret, state string) (string, error) {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience("oauth-state"),
	)
	if err != nil {
		return "", err
	}
	if claims.Role == "" {
		return "", errors.New("state carries no role")
	}
	return claims.Role, nil
}
