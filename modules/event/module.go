package event

import (
	"net/http"

	"eventsync/core/config"
	"eventsync/core/utils"
	authService "eventsync/modules/auth/service"
	calendarService "eventsync/modules/calendar/service"
	"eventsync/modules/event/controller"
	"eventsync/modules/event/repository"
	"eventsync/modules/event/router"
	"eventsync/modules/event/service"

	"github.com/labstack/echo/v4"
)

// Init wires the event module onto the session's token supplier.
func Init(e *echo.Echo, cfg *config.Config, tokens *authService.TokenSupplier, client *http.Client) *service.EventService {
	reconciler := service.NewReconciler(cfg.Sync)
	eventLog := repository.NewEventLog(reconciler.Apply, utils.GenerateClientEventID)
	submitter := calendarService.NewGoogleSubmitter(tokens, cfg.Calendar, client)

	eventService := service.NewEventService(eventLog, submitter, tokens, cfg.Calendar.DefaultTimezone,
		service.WithExportName(cfg.Calendar.ExportName))

	eventController := controller.NewEventController(eventService, cfg.Calendar.ExportName)
	router.NewEventRouter(eventController).Setup(e)

	return eventService
}
