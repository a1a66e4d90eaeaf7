package router

import (
	"eventsync/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{
		controller: controller,
	}
}

func (r *AuthRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	authRoutes := v1.Group("/auth")

	// Google OAuth
	authRoutes.GET("/google/login", r.controller.GoogleAuth)
	authRoutes.GET("/google/url", r.controller.GoogleAuthURL)
	authRoutes.GET("/google/callback", r.controller.GoogleCallback)

	// Session
	authRoutes.GET("/session", r.controller.Session)
	authRoutes.POST("/signout", r.controller.SignOut)
}
