package router

import (
	"eventsync/modules/event/controller"

	"github.com/labstack/echo/v4"
)

type EventRouter struct {
	controller *controller.EventController
}

func NewEventRouter(controller *controller.EventController) *EventRouter {
	return &EventRouter{
		controller: controller,
	}
}

func (r *EventRouter) Setup(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	eventRoutes := v1.Group("/events")

	eventRoutes.POST("", r.controller.CreateEvent)
	eventRoutes.GET("", r.controller.ListEvents)
	eventRoutes.GET("/export.ics", r.controller.ExportICS)
	eventRoutes.POST("/retry-due", r.controller.RetryDue)
	eventRoutes.GET("/:id", r.controller.GetEvent)
	eventRoutes.POST("/:id/retry", r.controller.RetryEvent)
}
