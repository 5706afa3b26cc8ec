package session

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store keeps the server side half of a session: the pending CAPTCHA answer
// and revoked token ids.
type Store interface {
	SetCaptcha(ctx context.Context, sid, text string, ttl time.Duration) error
	Captcha(ctx context.Context, sid string) (string, error)
	ClearCaptcha(ctx context.Context, sid string) error
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisStore struct {
	redis *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

func captchaKey(sid string) string {
	return fmt.Sprintf("captcha:%s", sid)
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

func (s *RedisStore) SetCaptcha(ctx context.Context, sid, text string, ttl time.Duration) error {
	return s.redis.Set(ctx, captchaKey(sid), text, ttl).Err()
}

// Captcha returns the pending answer, or "" if none was issued or it expired.
func (s *RedisStore) Captcha(ctx context.Context, sid string) (string, error) {
	text, err := s.redis.Get(ctx, captchaKey(sid)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return text, err
}

func (s *RedisStore) ClearCaptcha(ctx context.Context, sid string) error {
	return s.redis.Del(ctx, captchaKey(sid)).Err()
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, blacklistKey(tokenID), "1", ttl).Err()
}

func (s *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
