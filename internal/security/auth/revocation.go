package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourorg/campusportal/internal/infrastructure/redis"
	"github.com/yourorg/campusportal/internal/reliability/circuitbreaker"
)

const revocationKeyPrefix = "revoked:"

// RedisRevocationStore keeps revoked token IDs in Redis. Entries carry a
// TTL matching the token's remaining life so the denylist cleans itself.
// Lookups go through a circuit breaker: when Redis is down the breaker
// fails fast and verification fails closed.
type RedisRevocationStore struct {
	client  *redis.Client
	breaker *circuitbreaker.Breaker
}

func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{
		client:  client,
		breaker: circuitbreaker.New(5, 30*time.Second),
	}
}

// Revoke marks a token ID as invalid for the given duration.
func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already expired, nothing to deny.
		return nil
	}
	if err := s.client.Set(ctx, revocationKeyPrefix+tokenID, "1", ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token ID is on the denylist.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !s.breaker.Allow() {
		return false, fmt.Errorf("revocation store unavailable")
	}
	revoked, err := s.client.Exists(ctx, revocationKeyPrefix+tokenID)
	if err != nil {
		s.breaker.Failure()
		return false, fmt.Errorf("failed to check revocation: %w", err)
	}
	s.breaker.Success()
	return revoked, nil
}

// MemoryRevocationStore is an in-process RevocationStore for tests and
// single-node development runs.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(until), nil
}
