package service

import (
	"context"

	"eventsync/core/constants"
	"eventsync/core/errors"
	"eventsync/modules/event/entity"

	ical "github.com/arran4/golang-ical"
)

// ExportICS renders the confirmed records as an iCalendar document.
// Pending and failed records are left out because the provider never acknowledged them.
func (s *EventService) ExportICS(ctx context.Context) ([]byte, *errors.AppError) {
	return []byte(BuildCalendar(s.exportName, s.log.List())), nil
}

func BuildCalendar(name string, records []entity.EventRecord) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//" + constants.AppName + "//EN")
	cal.SetName(name)

	for _, rec := range records {
		if rec.Status != entity.EventStatusConfirmed {
			continue
		}

		event := cal.AddEvent(rec.RemoteID)
		event.SetDtStampTime(rec.UpdatedAt)
		event.SetCreatedTime(rec.CreatedAt)
		event.SetStartAt(rec.Intent.Start)
		event.SetEndAt(rec.Intent.End)
		event.SetSummary(rec.Intent.Title)
		if rec.Intent.Description != "" {
			event.SetDescription(rec.Intent.Description)
		}
		event.SetStatus(ical.ObjectStatusConfirmed)
	}

	return cal.Serialize()
}
