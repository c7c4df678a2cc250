package service

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/medvault/share-server-go/internal/redis"
)

type redisOTPStore struct {
	client *redisclient.Client
}

// NewRedisOTPStore backs OTP storage with redis, so codes expire on their
// own and survive server restarts.
func NewRedisOTPStore(client *redisclient.Client) OTPStore {
	return &redisOTPStore{client: client}
}

func (s *redisOTPStore) Set(ctx context.Context, userID, code string, ttl time.Duration) error {
	return s.client.Set(ctx, redisclient.OTPKey(userID), code, ttl).Err()
}

// Get returns the pending code, or "" when none exists or it has expired
func (s *redisOTPStore) Get(ctx context.Context, userID string) (string, error) {
	code, err := s.client.Get(ctx, redisclient.OTPKey(userID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *redisOTPStore) Delete(ctx context.Context, userID string) error {
	return s.client.Del(ctx, redisclient.OTPKey(userID)).Err()
}
