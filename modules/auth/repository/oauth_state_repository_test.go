package repository

import (
	"context"
	"testing"
	"time"

	"eventsync/core/constants"
	"eventsync/modules/auth/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthStateIsSingleUse(t *testing.T) {
	_, c := newTestCache(t)
	repos := map[string]OAuthStateRepository{
		"memory": NewMemoryOAuthStateRepository(),
		"redis":  NewRedisOAuthStateRepository(c),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			state := entity.OAuthState{Nonce: "nonce-" + name, ExpiresAt: time.Now().Add(time.Minute)}

			fresh, err := repo.Consume(context.Background(), state)
			require.NoError(t, err)
			assert.True(t, fresh)

			fresh, err = repo.Consume(context.Background(), state)
			require.NoError(t, err)
			assert.False(t, fresh)

			other := entity.OAuthState{Nonce: "other-" + name, ExpiresAt: time.Now().Add(time.Minute)}
			fresh, err = repo.Consume(context.Background(), other)
			require.NoError(t, err)
			assert.True(t, fresh)
		})
	}
}

func TestRedisOAuthStateExpires(t *testing.T) {
	mr, c := newTestCache(t)
	repo := NewRedisOAuthStateRepository(c)

	fresh, err := repo.Consume(context.Background(), entity.OAuthState{Nonce: "n1", ExpiresAt: time.Now().Add(-time.Second)})
	require.NoError(t, err)
	assert.False(t, fresh)

	fresh, err = repo.Consume(context.Background(), entity.OAuthState{Nonce: "n2", ExpiresAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Greater(t, mr.TTL(constants.RedisKeyOAuthState+"n2"), time.Duration(0))
}

func TestMemoryOAuthStatePrunesExpiredNonces(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo := &memoryOAuthStateRepository{
		used:  make(map[string]time.Time),
		nowFn: func() time.Time { return now },
	}

	_, err := repo.Consume(context.Background(), entity.OAuthState{Nonce: "old", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Consume(context.Background(), entity.OAuthState{Nonce: "new", ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	assert.NotContains(t, repo.used, "old")
	assert.Contains(t, repo.used, "new")
}
