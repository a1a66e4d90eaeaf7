package mapper

import (
	"testing"
	"time"

	"eventsync/modules/event/dto"
	"eventsync/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEventIntent(t *testing.T) {
	intent, err := ToEventIntent(&dto.CreateEventRequest{
		Title:     "Standup",
		StartTime: "2024-01-01T09:00:00Z",
		EndTime:   "2024-01-01T16:15:00+07:00",
		Timezone:  "UTC",
	})

	require.NoError(t, err)
	assert.Equal(t, "Standup", intent.Title)
	assert.True(t, intent.Start.Equal(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)))
	assert.True(t, intent.End.Equal(time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)))
}

func TestToEventIntentBadTimes(t *testing.T) {
	tests := []struct {
		name  string
		req   dto.CreateEventRequest
		field string
	}{
		{"missing start", dto.CreateEventRequest{EndTime: "2024-01-01T09:00:00Z"}, "start_time"},
		{"bad start", dto.CreateEventRequest{StartTime: "tomorrow", EndTime: "2024-01-01T09:00:00Z"}, "start_time"},
		{"bad end", dto.CreateEventRequest{StartTime: "2024-01-01T09:00:00Z", EndTime: "2024-01-01 09:15"}, "end_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToEventIntent(&tt.req)

			var ve *entity.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestToEventResponseRendersInIntentZone(t *testing.T) {
	retryAfter := 2 * time.Second
	rec := entity.EventRecord{
		Intent: entity.EventIntent{
			ID:       "intent-1",
			Title:    "Standup",
			Start:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC),
			TimeZone: "Asia/Ho_Chi_Minh",
		},
		Status:        entity.EventStatusPending,
		RetryEligible: true,
		RetryAfter:    &retryAfter,
		Attempts:      1,
	}

	resp := ToEventResponse(rec)

	assert.Equal(t, "intent-1", resp.ID)
	assert.Equal(t, "2024-01-01T16:00:00+07:00", resp.StartTime)
	assert.Equal(t, "pending", resp.Status)
	require.NotNil(t, resp.RetryAfter)
	assert.Equal(t, 2.0, *resp.RetryAfter)
}
