package controller

import (
	"fmt"
	"net/http"

	coreController "eventsync/core/controller"
	"eventsync/core/errors"
	"eventsync/modules/event/dto"
	"eventsync/modules/event/entity"
	"eventsync/modules/event/mapper"
	"eventsync/modules/event/service"

	"github.com/gosimple/slug"
	"github.com/labstack/echo/v4"
)

type EventController struct {
	coreController.BaseController
	EventService service.EventServiceInterface
	exportName   string
}

func NewEventController(eventService service.EventServiceInterface, exportName string) *EventController {
	return &EventController{
		BaseController: coreController.NewBaseController(),
		EventService:   eventService,
		exportName:     exportName,
	}
}

// CreateEvent submits an event intent
// POST /api/v1/events
func (controller *EventController) CreateEvent(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.CreateEventRequest)
	if err := c.Bind(requestData); err != nil {
		return controller.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", nil)
	}

	intent, err := mapper.ToEventIntent(requestData)
	if err != nil {
		return controller.validationFailed(err)
	}

	record, appErr := controller.EventService.Submit(ctx, intent)
	if appErr != nil {
		if appErr.Code == errors.ErrInvalidInput {
			return controller.validationFailed(appErr.Err)
		}
		return controller.FromAppError(appErr, controller.submitResponse(c, record))
	}

	return controller.recordResponse(c, record)
}

// ListEvents returns the event log in insertion order
// GET /api/v1/events
func (controller *EventController) ListEvents(c echo.Context) error {
	records := controller.EventService.Events(c.Request().Context())
	return controller.SuccessResponse(c, dto.EventListResponse{
		Events: mapper.ToEventResponses(records),
		Total:  len(records),
	}, "Success")
}

// GetEvent GET /api/v1/events/:id
func (controller *EventController) GetEvent(c echo.Context) error {
	record, appErr := controller.EventService.Event(c.Request().Context(), c.Param("id"))
	if appErr != nil {
		return controller.FromAppError(appErr)
	}
	return controller.SuccessResponse(c, mapper.ToEventResponse(record), "Success")
}

// RetryEvent POST /api/v1/events/:id/retry
func (controller *EventController) RetryEvent(c echo.Context) error {
	record, appErr := controller.EventService.Retry(c.Request().Context(), c.Param("id"))
	if appErr != nil {
		var details any
		if record.ID() != "" {
			details = mapper.ToEventResponse(record)
		}
		return controller.FromAppError(appErr, details)
	}

	return controller.recordResponse(c, record)
}

// RetryDue POST /api/v1/events/retry-due
func (controller *EventController) RetryDue(c echo.Context) error {
	ctx := c.Request().Context()

	retried, appErr := controller.EventService.RetryDue(ctx)
	if appErr != nil {
		return controller.FromAppError(appErr)
	}

	return controller.SuccessResponse(c, dto.RetryDueResponse{
		Retried: mapper.ToEventResponses(retried),
		Events:  mapper.ToEventResponses(controller.EventService.Events(ctx)),
	}, fmt.Sprintf("Retried %d events", len(retried)))
}

// ExportICS GET /api/v1/events/export.ics
func (controller *EventController) ExportICS(c echo.Context) error {
	data, appErr := controller.EventService.ExportICS(c.Request().Context())
	if appErr != nil {
		return controller.FromAppError(appErr)
	}

	filename := slug.Make(controller.exportName)
	if filename == "" {
		filename = "events"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename+".ics"))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", data)
}

func (controller *EventController) submitResponse(c echo.Context, record entity.EventRecord) dto.SubmitEventResponse {
	return dto.SubmitEventResponse{
		Event:  mapper.ToEventResponse(record),
		Events: mapper.ToEventResponses(controller.EventService.Events(c.Request().Context())),
	}
}

func (controller *EventController) validationFailed(err error) error {
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return controller.BadRequest(errors.ErrInvalidInput, "Invalid event", []coreController.ValidationError{
			coreController.NewValidationError(ve.Field, ve.Message),
		})
	}
	return controller.BadRequest(errors.ErrInvalidInput, "Invalid event", nil)
}

// recordResponse answers 201 for a confirmed event, 202 while a retry is pending
// and 200 for a rejection, which the record itself describes.
func (controller *EventController) recordResponse(c echo.Context, record entity.EventRecord) error {
	body := controller.submitResponse(c, record)
	switch record.Status {
	case entity.EventStatusConfirmed:
		return controller.CreatedResponse(c, body, "Event created")
	case entity.EventStatusPending:
		return c.JSON(http.StatusAccepted, coreController.NewSuccessResponse(http.StatusAccepted, body, "Calendar unavailable, event will be retried"))
	default:
		return controller.SuccessResponse(c, body, "Event rejected by the calendar")
	}
}
