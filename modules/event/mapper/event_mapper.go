package mapper

import (
	"strings"
	"time"

	"eventsync/modules/event/dto"
	"eventsync/modules/event/entity"
)

// ToEventIntent parses the request. Field-level problems come back as a ValidationError.
func ToEventIntent(req *dto.CreateEventRequest) (entity.EventIntent, error) {
	start, err := parseTime("start_time", req.StartTime)
	if err != nil {
		return entity.EventIntent{}, err
	}
	end, err := parseTime("end_time", req.EndTime)
	if err != nil {
		return entity.EventIntent{}, err
	}

	return entity.EventIntent{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Start:       start,
		End:         end,
		TimeZone:    req.Timezone,
	}, nil
}

func parseTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, entity.NewValidationError(field, "is required")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, entity.NewValidationError(field, "must be an RFC3339 timestamp")
	}
	return t, nil
}

func ToEventResponse(rec entity.EventRecord) dto.EventResponse {
	resp := dto.EventResponse{
		ID:            rec.Intent.ID,
		Title:         rec.Intent.Title,
		Description:   rec.Intent.Description,
		StartTime:     formatIn(rec.Intent.Start, rec.Intent.TimeZone),
		EndTime:       formatIn(rec.Intent.End, rec.Intent.TimeZone),
		Timezone:      rec.Intent.TimeZone,
		Status:        string(rec.Status),
		RemoteID:      rec.RemoteID,
		Reason:        string(rec.Reason),
		Message:       rec.Message,
		RetryEligible: rec.RetryEligible,
		NextAttemptAt: rec.NextAttemptAt,
		Attempts:      rec.Attempts,
		InFlight:      rec.InFlight,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
	if rec.RetryAfter != nil {
		secs := rec.RetryAfter.Seconds()
		resp.RetryAfter = &secs
	}
	return resp
}

func ToEventResponses(records []entity.EventRecord) []dto.EventResponse {
	out := make([]dto.EventResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, ToEventResponse(rec))
	}
	return out
}

func formatIn(t time.Time, tz string) string {
	if loc, err := time.LoadLocation(tz); err == nil {
		t = t.In(loc)
	}
	return t.Format(time.RFC3339)
}
