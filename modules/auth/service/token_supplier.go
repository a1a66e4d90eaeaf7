package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventsync/core/constants"
	"eventsync/core/logger"
	"eventsync/modules/auth/entity"
	"eventsync/modules/auth/repository"

	"golang.org/x/sync/singleflight"
)

var (
	ErrNoCredential    = errors.New("no credential for this session")
	ErrUnusableToken   = errors.New("refresh returned no usable token")
	ErrSessionReplaced = errors.New("session changed during refresh")
	ErrNoIdentity      = errors.New("identity provider not configured")
)

// TokenSupplier owns the session credential. Callers only ever see copies.
type TokenSupplier struct {
	identity Identity
	store    repository.CredentialRepository
	margin   time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	cached *entity.Credential
	loaded bool
	// generation changes on Install and Clear so a refresh started for an older session is dropped.
	generation uint64

	group singleflight.Group
}

type SupplierOption func(*TokenSupplier)

func WithClock(now func() time.Time) SupplierOption {
	return func(s *TokenSupplier) {
		s.now = now
	}
}

func WithRefreshTimeout(d time.Duration) SupplierOption {
	return func(s *TokenSupplier) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewTokenSupplier(identity Identity, store repository.CredentialRepository, margin time.Duration, opts ...SupplierOption) *TokenSupplier {
	s := &TokenSupplier{
		identity: identity,
		store:    store,
		margin:   margin,
		timeout:  constants.DefaultTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetValidToken returns a credential usable for at least the safety margin.
// A stale credential is refreshed at most once per call.
func (s *TokenSupplier) GetValidToken(ctx context.Context) (entity.Credential, error) {
	cred, gen, err := s.current(ctx)
	if err != nil {
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, err)
	}
	if cred == nil {
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, ErrNoCredential)
	}
	if !cred.HasCalendarWriteScope() {
		return entity.Credential{}, entity.NewAuthError(entity.AuthScopeMissing, nil)
	}
	if cred.FreshAt(s.now(), s.margin) {
		return *cred, nil
	}

	return s.refresh(ctx, *cred, gen)
}

// ForceRefresh refreshes even when the cached token still looks fresh,
// e.g. after the provider answered 401.
func (s *TokenSupplier) ForceRefresh(ctx context.Context) (entity.Credential, error) {
	cred, gen, err := s.current(ctx)
	if err != nil {
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, err)
	}
	if cred == nil {
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, ErrNoCredential)
	}

	return s.refresh(ctx, *cred, gen)
}

// Install replaces the session credential, typically after sign-in.
func (s *TokenSupplier) Install(ctx context.Context, cred entity.Credential) {
	s.mu.Lock()
	s.cached = &cred
	s.loaded = true
	s.generation++
	s.mu.Unlock()

	if err := s.store.Save(ctx, cred); err != nil {
		logger.Error("TokenSupplier:Install:Save:Error", "error", err)
	}
}

// Clear forgets the credential. It returns the previous one so the caller can revoke it.
func (s *TokenSupplier) Clear(ctx context.Context) (*entity.Credential, error) {
	prev, _, err := s.current(ctx)
	if err != nil {
		logger.Warn("TokenSupplier:Clear:Load:Error", "error", err)
	}

	s.mu.Lock()
	s.cached = nil
	s.loaded = true
	s.generation++
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		logger.Error("TokenSupplier:Clear:Store:Error", "error", err)
		return prev, err
	}
	return prev, nil
}

// Current returns a copy of the credential without refreshing it.
func (s *TokenSupplier) Current(ctx context.Context) (*entity.Credential, error) {
	cred, _, err := s.current(ctx)
	return cred, err
}

func (s *TokenSupplier) current(ctx context.Context) (*entity.Credential, uint64, error) {
	s.mu.Lock()
	if s.loaded {
		defer s.mu.Unlock()
		return copyCredential(s.cached), s.generation, nil
	}
	gen := s.generation
	s.mu.Unlock()

	stored, err := s.store.Load(ctx)
	if err != nil {
		logger.Error("TokenSupplier:current:Load:Error", "error", err)
		return nil, gen, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen && !s.loaded {
		s.cached = stored
		s.loaded = true
	}
	return copyCredential(s.cached), s.generation, nil
}

func (s *TokenSupplier) refresh(ctx context.Context, cred entity.Credential, gen uint64) (entity.Credential, error) {
	if s.identity == nil {
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, ErrNoIdentity)
	}

	// A new session never joins a refresh started for the one it replaced.
	v, err, shared := s.group.Do(fmt.Sprintf("refresh:%d", gen), func() (any, error) {
		// The refresh finishes even if the requesting caller goes away.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		refreshed, err := s.identity.Refresh(rctx, cred)
		if err != nil {
			return nil, err
		}
		if !refreshed.FreshAt(s.now(), 0) {
			return nil, ErrUnusableToken
		}
		if !s.swap(gen, refreshed) {
			return nil, ErrSessionReplaced
		}

		if err := s.store.Save(rctx, refreshed); err != nil {
			logger.Error("TokenSupplier:refresh:Save:Error", "error", err)
		}
		return refreshed, nil
	})
	if err != nil {
		logger.Warn("TokenSupplier:refresh:Error", "error", err, "shared", shared)
		return entity.Credential{}, entity.NewAuthError(entity.AuthNotSignedIn, err)
	}

	refreshed := v.(entity.Credential)
	if !refreshed.HasCalendarWriteScope() {
		return entity.Credential{}, entity.NewAuthError(entity.AuthScopeMissing, nil)
	}
	logger.Debug("TokenSupplier:refresh:Success", "expires_at", refreshed.ExpiresAt, "shared", shared)
	return refreshed, nil
}

func (s *TokenSupplier) swap(gen uint64, cred entity.Credential) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.cached = &cred
	s.loaded = true
	return true
}

func copyCredential(c *entity.Credential) *entity.Credential {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Scopes = append([]string(nil), c.Scopes...)
	return &cp
}
