package controller

import (
	"net/http"

	coreController "eventsync/core/controller"
	"eventsync/core/errors"
	"eventsync/core/logger"
	"eventsync/modules/auth/dto"
	"eventsync/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	coreController.BaseController
	AuthService       service.AuthServiceInterface
	postLoginRedirect string
}

func NewAuthController(authService service.AuthServiceInterface, postLoginRedirect string) *AuthController {
	return &AuthController{
		BaseController:    coreController.NewBaseController(),
		AuthService:       authService,
		postLoginRedirect: postLoginRedirect,
	}
}

// GoogleAuth redirects user to Google OAuth login page
func (controller *AuthController) GoogleAuth(c echo.Context) error {
	ctx := c.Request().Context()

	authURL, err := controller.AuthService.GetGoogleAuthURL(ctx)
	if err != nil {
		return controller.FromAppError(err)
	}

	return c.Redirect(http.StatusFound, authURL)
}

// GoogleAuthURL returns the consent URL for clients that open it themselves.
func (controller *AuthController) GoogleAuthURL(c echo.Context) error {
	ctx := c.Request().Context()

	authURL, err := controller.AuthService.GetGoogleAuthURL(ctx)
	if err != nil {
		return controller.FromAppError(err)
	}

	return controller.SuccessResponse(c, dto.GoogleAuthURLResponse{AuthURL: authURL}, "Visit the auth_url in your browser to start OAuth flow")
}

// GoogleCallback handles the OAuth callback from Google
func (controller *AuthController) GoogleCallback(c echo.Context) error {
	ctx := c.Request().Context()

	code := c.QueryParam("code")
	state := c.QueryParam("state")
	errorParam := c.QueryParam("error")

	if errorParam != "" {
		errorDescription := c.QueryParam("error_description")
		logger.Error("AuthController:GoogleCallback:ProviderError", "error", errorParam, "description", errorDescription)
		return controller.BadRequest(errors.ErrInvalidRequestData, "Google OAuth error: "+errorParam, nil)
	}

	if code == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "authorization code is required. Please initiate OAuth flow by visiting /api/v1/auth/google/login first", nil)
	}

	if state == "" {
		return controller.BadRequest(errors.ErrInvalidRequestData, "state parameter is required for security validation", nil)
	}

	session, err := controller.AuthService.HandleGoogleCallback(ctx, code, state)
	if err != nil {
		return controller.FromAppError(err)
	}

	if controller.postLoginRedirect != "" {
		return c.Redirect(http.StatusFound, controller.postLoginRedirect)
	}
	return controller.SuccessResponse(c, session, "Google login success")
}

func (controller *AuthController) Session(c echo.Context) error {
	session, err := controller.AuthService.Session(c.Request().Context())
	if err != nil {
		return controller.FromAppError(err)
	}
	return controller.SuccessResponse(c, session, "Session")
}

func (controller *AuthController) SignOut(c echo.Context) error {
	if err := controller.AuthService.SignOut(c.Request().Context()); err != nil {
		return controller.FromAppError(err)
	}
	return controller.SuccessResponse(c, nil, "Sign out success")
}
