package middleware

import (
	"eventsync/core/controller"
	"eventsync/core/errors"
	"eventsync/core/logger"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Setup installs the middleware shared by every route.
func Setup(e *echo.Echo) {
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(RequestLogger())
	e.HTTPErrorHandler = ErrorHandler(e.DefaultHTTPErrorHandler)
}

// ErrorHandler renders an *errors.AppError that reached echo unhandled in the
// standard error envelope. Everything else goes to next.
func ErrorHandler(next echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	base := controller.NewBaseController()
	return func(err error, c echo.Context) {
		var appErr *errors.AppError
		if !errors.As(err, &appErr) || c.Response().Committed {
			next(err, c)
			return
		}
		if werr := base.ErrorResponse(c, appErr); werr != nil {
			logger.Error("Middleware:ErrorHandler:Write:Error", "error", werr)
		}
	}
}

// RequestLogger logs one line per request through the application logger.
func RequestLogger() echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				logger.Error("HTTP:Request:Error", append(args, "error", v.Error)...)
				return nil
			}
			logger.Info("HTTP:Request", args...)
			return nil
		},
	})
}
