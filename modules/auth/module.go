package auth

import (
	"eventsync/core/cache"
	"eventsync/core/config"
	"eventsync/core/constants"
	"eventsync/core/logger"
	"eventsync/core/utils"
	"eventsync/modules/auth/controller"
	"eventsync/modules/auth/repository"
	"eventsync/modules/auth/router"
	"eventsync/modules/auth/service"

	"github.com/labstack/echo/v4"
)

// Init wires the auth module. c may be nil, in which case the credential lives in memory.
// The returned supplier is shared with the event module.
func Init(e *echo.Echo, cfg *config.Config, c cache.Cache) (*service.AuthService, *service.TokenSupplier) {
	store, states := newRepositories(cfg, c)
	identity := newIdentity(cfg)

	tokens := service.NewTokenSupplier(identity, store, cfg.Sync.TokenSafetyMargin,
		service.WithRefreshTimeout(cfg.Calendar.RequestTimeout))
	authService := service.NewAuthService(identity, tokens, states, stateSecret(cfg))

	authController := controller.NewAuthController(authService, cfg.Server.PostLoginRedirect)
	router.NewAuthRouter(authController).Setup(e)

	return authService, tokens
}

func newRepositories(cfg *config.Config, c cache.Cache) (repository.CredentialRepository, repository.OAuthStateRepository) {
	if c == nil {
		logger.Info("Auth:Init:CredentialStore", "store", constants.CredentialStoreMemory)
		return repository.NewMemoryCredentialRepository(), repository.NewMemoryOAuthStateRepository()
	}
	logger.Info("Auth:Init:CredentialStore", "store", constants.CredentialStoreRedis, "session", cfg.Session.Key)
	return repository.NewRedisCredentialRepository(c, cfg.Session.Key), repository.NewRedisOAuthStateRepository(c)
}

// newIdentity returns nil when Google OAuth is not configured.
func newIdentity(cfg *config.Config) service.Identity {
	if cfg.GoogleAPI.ClientID == "" || cfg.GoogleAPI.ClientSecret == "" || cfg.GoogleAPI.RedirectURI == "" {
		logger.Warn("Auth:Init:GoogleOAuthSkipped", "reason", "Google OAuth credentials not configured in env")
		return nil
	}
	return service.NewGoogleIdentity(cfg.GoogleAPI)
}

func stateSecret(cfg *config.Config) []byte {
	if cfg.Session.StateSecret != "" {
		return []byte(cfg.Session.StateSecret)
	}
	logger.Warn("Auth:Init:StateSecret", "reason", "session.state_secret not set, using a per-process secret")
	return []byte(utils.GenerateRandomString(32))
}
