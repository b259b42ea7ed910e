package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResetTokenStore guarda jti de tokens de reset pendientes. Consume borra la
// entrada, de modo que cada token de reset sirve exactamente una vez dentro
// de su TTL.
type ResetTokenStore interface {
	Store(jti, userID string, ttl time.Duration) error
	Consume(jti string) (bool, error)
}

type memoryResetTokenStore struct {
	mu    sync.Mutex
	items map[string]time.Time
}

func NewMemoryResetTokenStore() ResetTokenStore {
	return &memoryResetTokenStore{
		items: make(map[string]time.Time),
	}
}

func (s *memoryResetTokenStore) Store(jti, _ string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	s.items[jti] = time.Now().UTC().Add(ttl)
	return nil
}

func (s *memoryResetTokenStore) Consume(jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[jti]
	if !ok {
		return false, nil
	}
	delete(s.items, jti)
	if time.Now().UTC().After(exp) {
		return false, nil
	}
	return true, nil
}

type redisResetTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisResetTokenStore(client *redis.Client) ResetTokenStore {
	if client == nil {
		return nil
	}
	return &redisResetTokenStore{
		client: client,
		prefix: "auth:reset:",
	}
}

func (s *redisResetTokenStore) Store(jti, userID string, ttl time.Duration) error {
	if strings.TrimSpace(jti) == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+jti, userID, ttl).Err()
}

func (s *redisResetTokenStore) Consume(jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := s.client.Del(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
