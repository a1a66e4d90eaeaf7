package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"eventsync/core/constants"
	"eventsync/core/errors"
	"eventsync/core/logger"
	"eventsync/core/utils"
	"eventsync/modules/auth/dto"
	"eventsync/modules/auth/entity"
	"eventsync/modules/auth/mapper"
	"eventsync/modules/auth/repository"
)

type AuthServiceInterface interface {
	GetGoogleAuthURL(ctx context.Context) (string, *errors.AppError)
	HandleGoogleCallback(ctx context.Context, code string, state string) (*dto.SessionResponse, *errors.AppError)
	Session(ctx context.Context) (*dto.SessionResponse, *errors.AppError)
	SignOut(ctx context.Context) *errors.AppError
	OnSignOut(fn func(ctx context.Context))
}

type AuthService struct {
	identity    Identity
	tokens      *TokenSupplier
	states      repository.OAuthStateRepository
	stateSecret []byte
	stateTTL    time.Duration

	mu        sync.Mutex
	onSignOut []func(ctx context.Context)
}

// NewAuthService accepts a nil identity when Google OAuth is not configured;
// the login endpoints then report the missing configuration.
func NewAuthService(identity Identity, tokens *TokenSupplier, states repository.OAuthStateRepository, stateSecret []byte) *AuthService {
	return &AuthService{
		identity:    identity,
		tokens:      tokens,
		states:      states,
		stateSecret: stateSecret,
		stateTTL:    constants.OAuthStateTTL,
	}
}

// GetGoogleAuthURL generates the Google OAuth authorization URL
func (service *AuthService) GetGoogleAuthURL(ctx context.Context) (string, *errors.AppError) {
	if service.identity == nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	state, err := utils.GenerateStateToken(service.stateSecret, service.stateTTL)
	if err != nil {
		logger.Error("AuthService:GetGoogleAuthURL:GenerateStateToken:Error", "error", err)
		return "", errors.NewAppError(errors.ErrInternalServer, "failed to generate state token", err)
	}

	return service.identity.AuthURL(state), nil
}

// HandleGoogleCallback handles the OAuth callback from Google
func (service *AuthService) HandleGoogleCallback(ctx context.Context, code string, state string) (*dto.SessionResponse, *errors.AppError) {
	if service.identity == nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Google OAuth configuration is missing", nil)
	}

	claims, err := utils.ValidateStateToken(service.stateSecret, state)
	if err != nil {
		logger.Warn("AuthService:HandleGoogleCallback:ValidateState:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid or expired state token. Please initiate the OAuth flow again by visiting /api/v1/auth/google/login", err)
	}

	fresh, err := service.states.Consume(ctx, entity.OAuthState{Nonce: claims.Nonce, ExpiresAt: claims.ExpiresAt.Time})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to validate state token", err)
	}
	if !fresh {
		logger.Warn("AuthService:HandleGoogleCallback:StateReused", "nonce", claims.Nonce)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "state token already used. Please initiate the OAuth flow again", nil)
	}

	if strings.TrimSpace(code) == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "authorization code is required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()

	cred, err := service.identity.SignIn(ctx, code)
	if err != nil {
		logger.Error("AuthService:HandleGoogleCallback:SignIn:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "failed to exchange token", err)
	}

	if !cred.HasCalendarWriteScope() {
		logger.Warn("AuthService:HandleGoogleCallback:ScopeMissing", "scopes", cred.Scopes)
	}

	service.tokens.Install(ctx, cred)
	logger.Info("AuthService:HandleGoogleCallback:SignedIn", "expires_at", cred.ExpiresAt, "scopes", len(cred.Scopes))

	return mapper.ToSessionResponse(&cred), nil
}

func (service *AuthService) Session(ctx context.Context) (*dto.SessionResponse, *errors.AppError) {
	cred, err := service.tokens.Current(ctx)
	if err != nil {
		logger.Error("AuthService:Session:Current:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load session", err)
	}
	return mapper.ToSessionResponse(cred), nil
}

// SignOut forgets the credential, runs the sign-out hooks and revokes the grant.
// Revocation is best effort.
func (service *AuthService) SignOut(ctx context.Context) *errors.AppError {
	prev, clearErr := service.tokens.Clear(ctx)

	service.mu.Lock()
	hooks := append([]func(context.Context){}, service.onSignOut...)
	service.mu.Unlock()
	for _, fn := range hooks {
		fn(ctx)
	}

	if prev != nil && service.identity != nil {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.DefaultTimeout)
		defer cancel()
		if err := service.identity.SignOut(rctx, *prev); err != nil {
			logger.Warn("AuthService:SignOut:Revoke:Error", "error", err)
		}
	}

	if clearErr != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to clear stored credential", clearErr)
	}
	logger.Info("AuthService:SignOut:Success")
	return nil
}

// OnSignOut registers fn to run after the credential is cleared.
func (service *AuthService) OnSignOut(fn func(ctx context.Context)) {
	service.mu.Lock()
	defer service.mu.Unlock()
	service.onSignOut = append(service.onSignOut, fn)
}
