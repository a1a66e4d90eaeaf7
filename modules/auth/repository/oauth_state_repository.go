package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"eventsync/core/cache"
	"eventsync/core/constants"
	"eventsync/core/logger"
	"eventsync/modules/auth/entity"
)

// OAuthStateRepository makes OAuth state tokens single use.
type OAuthStateRepository interface {
	// Consume records the nonce and reports false if it was already used.
	Consume(ctx context.Context, state entity.OAuthState) (bool, error)
}

type memoryOAuthStateRepository struct {
	mu    sync.Mutex
	used  map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryOAuthStateRepository() OAuthStateRepository {
	return &memoryOAuthStateRepository{
		used:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

func (r *memoryOAuthStateRepository) Consume(ctx context.Context, state entity.OAuthState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.nowFn()
	for nonce, exp := range r.used {
		if now.After(exp) {
			delete(r.used, nonce)
		}
	}

	if _, ok := r.used[state.Nonce]; ok {
		return false, nil
	}
	r.used[state.Nonce] = state.ExpiresAt
	return true, nil
}

type redisOAuthStateRepository struct {
	cache cache.Cache
}

func NewRedisOAuthStateRepository(c cache.Cache) OAuthStateRepository {
	return &redisOAuthStateRepository{cache: c}
}

func (r *redisOAuthStateRepository) Consume(ctx context.Context, state entity.OAuthState) (bool, error) {
	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return false, nil
	}

	raw, err := json.Marshal(state)
	if err != nil {
		return false, err
	}

	key := constants.RedisKeyOAuthState + state.Nonce
	stored, err := r.cache.SetNX(ctx, key, raw, ttl)
	if err != nil {
		logger.Error("OAuthStateRepository:Consume:Error", "error", err, "key", key)
		return false, err
	}
	return stored, nil
}
