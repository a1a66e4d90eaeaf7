package mapper

import (
	"fmt"
	"time"

	"eventsync/modules/event/entity"

	"google.golang.org/api/calendar/v3"
)

// ToGoogleEvent builds the events.insert payload. Times are RFC3339 instants
// rendered in the intent's zone, which is also sent as timeZone.
func ToGoogleEvent(intent entity.EventIntent, clientEventID string) (*calendar.Event, error) {
	loc, err := time.LoadLocation(intent.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", intent.TimeZone, err)
	}

	return &calendar.Event{
		Id:          clientEventID,
		Summary:     intent.Title,
		Description: intent.Description,
		Start: &calendar.EventDateTime{
			DateTime: intent.Start.In(loc).Format(time.RFC3339),
			TimeZone: intent.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: intent.End.In(loc).Format(time.RFC3339),
			TimeZone: intent.TimeZone,
		},
	}, nil
}
