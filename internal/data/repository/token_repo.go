package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// TokenRepository is the deny-list of access tokens revoked before expiry.
type TokenRepository interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type tokenRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewTokenRepository(rdb *redis.Client, log *zap.Logger) TokenRepository {
	return &tokenRepository{
		rdb: rdb,
		log: log.With(zap.String("repository", "token")),
	}
}

func revokedKey(jti string) string {
	return "auth:revoked:" + jti
}

// Revoke keeps the token id on the list until the token would have expired anyway.
func (r *tokenRepository) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := r.rdb.Set(ctx, revokedKey(jti), "1", ttl).Err(); err != nil {
		r.log.Error("Failed to revoke token",
			zap.Error(err),
			zap.String("jti", jti),
		)
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}

	return nil
}

func (r *tokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		r.log.Error("Failed to check revoked token",
			zap.Error(err),
			zap.String("jti", jti),
		)
		return false, fmt.Errorf("check token %s: %w", jti, err)
	}

	return n > 0, nil
}
