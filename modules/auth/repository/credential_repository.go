package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"eventsync/core/cache"
	"eventsync/core/constants"
	"eventsync/core/logger"
	"eventsync/modules/auth/entity"
)

// CredentialRepository keeps the session's credential. Load returns (nil, nil) when nothing is stored.
type CredentialRepository interface {
	Load(ctx context.Context) (*entity.Credential, error)
	Save(ctx context.Context, cred entity.Credential) error
	Clear(ctx context.Context) error
}

type memoryCredentialRepository struct {
	mu   sync.RWMutex
	cred *entity.Credential
}

func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredentialRepository{}
}

func (r *memoryCredentialRepository) Load(ctx context.Context) (*entity.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cred == nil {
		return nil, nil
	}
	cred := *r.cred
	return &cred, nil
}

func (r *memoryCredentialRepository) Save(ctx context.Context, cred entity.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = &cred
	return nil
}

func (r *memoryCredentialRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cred = nil
	return nil
}

// redisCredentialRepository lets the session's credential outlive a process restart.
type redisCredentialRepository struct {
	cache cache.Cache
	key   string
}

func NewRedisCredentialRepository(c cache.Cache, sessionKey string) CredentialRepository {
	return &redisCredentialRepository{
		cache: c,
		key:   constants.RedisKeyCredential + sessionKey,
	}
}

func (r *redisCredentialRepository) Load(ctx context.Context) (*entity.Credential, error) {
	raw, err := r.cache.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		logger.Error("CredentialRepository:Load:Error", "error", err, "key", r.key)
		return nil, err
	}

	var cred entity.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		logger.Error("CredentialRepository:Load:Unmarshal:Error", "error", err, "key", r.key)
		return nil, err
	}
	return &cred, nil
}

func (r *redisCredentialRepository) Save(ctx context.Context, cred entity.Credential) error {
	raw, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	// No TTL: the refresh token stays usable after the access token expires.
	if err := r.cache.Set(ctx, r.key, raw, 0); err != nil {
		logger.Error("CredentialRepository:Save:Error", "error", err, "key", r.key)
		return err
	}
	return nil
}

func (r *redisCredentialRepository) Clear(ctx context.Context) error {
	if err := r.cache.Del(ctx, r.key); err != nil {
		logger.Error("CredentialRepository:Clear:Error", "error", err, "key", r.key)
		return err
	}
	return nil
}
