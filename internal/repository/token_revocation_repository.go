package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revocationKeyPrefix = "auth:revoked:"

// TokenRevocationRepository tracks revoked token IDs until their natural
// expiry. Logout writes here; the principal resolver consults it.
type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type tokenRevocationRepository struct {
	client *redis.Client
}

// NewTokenRevocationRepository returns a Redis-backed implementation.
func NewTokenRevocationRepository(client *redis.Client) TokenRevocationRepository {
	return &tokenRevocationRepository{client: client}
}

func (r *tokenRevocationRepository) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		// Token already expired on its own; nothing to deny.
		return nil
	}
	return r.client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl).Err()
}

func (r *tokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revocationKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
