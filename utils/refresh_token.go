// utils/refresh_token.go
package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/fitflow/gymfit_backend/config"
)

// Refresh-token rotation: only the most recently issued refresh token for a
// user is honoured. The hash of the latest token lives in Redis keyed by
// user id; presenting an older token fails the exchange.

const refreshTokenTTL = 7 * 24 * time.Hour

func refreshTokenKey(userID string) string {
	return "refresh_token:" + userID
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// StoreRefreshToken records the latest issued refresh token for the user.
// A nil Redis client disables rotation rather than failing logins.
func StoreRefreshToken(ctx context.Context, userID, token string) error {
	client := config.GetRedisClient()
	if client == nil {
		return nil
	}
	return client.Set(ctx, refreshTokenKey(userID), hashToken(token), refreshTokenTTL).Err()
}

// ValidateRefreshToken checks the presented token against the last issued one.
func ValidateRefreshToken(ctx context.Context, userID, token string) error {
	client := config.GetRedisClient()
	if client == nil {
		return nil
	}
	stored, err := client.Get(ctx, refreshTokenKey(userID)).Result()
	if err != nil {
		return errors.New("no refresh token on record")
	}
	if stored != hashToken(token) {
		return errors.New("refresh token superseded")
	}
	return nil
}

// InvalidateRefreshToken removes the stored token on logout.
func InvalidateRefreshToken(ctx context.Context, userID string) {
	client := config.GetRedisClient()
	if client == nil {
		return
	}
	client.Del(ctx, refreshTokenKey(userID))
}

// StoreResetToken keeps a password-reset token alive for its TTL.
func StoreResetToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	client := config.GetRedisClient()
	if client == nil {
		return errors.New("redis is not available")
	}
	return client.Set(ctx, "reset_token:"+token, userID, ttl).Err()
}

// ConsumeResetToken resolves and deletes a password-reset token.
func ConsumeResetToken(ctx context.Context, token string) (string, error) {
	client := config.GetRedisClient()
	if client == nil {
		return "", errors.New("redis is not available")
	}
	key := "reset_token:" + token
	userID, err := client.Get(ctx, key).Result()
	if err != nil {
		return "", errors.New("invalid or expired reset token")
	}
	client.Del(ctx, key)
	return userID, nil
}
