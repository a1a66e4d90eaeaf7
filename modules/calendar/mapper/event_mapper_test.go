package mapper

import (
	"testing"
	"time"

	"eventsync/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGoogleEventRendersInIntentZone(t *testing.T) {
	intent := entity.EventIntent{
		ID:          "intent-1",
		Title:       "Standup",
		Description: "daily",
		Start:       time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC),
		TimeZone:    "Asia/Ho_Chi_Minh",
	}

	ev, err := ToGoogleEvent(intent, "abcdef0123456789")

	require.NoError(t, err)
	assert.Equal(t, "abcdef0123456789", ev.Id)
	assert.Equal(t, "Standup", ev.Summary)
	assert.Equal(t, "daily", ev.Description)
	assert.Equal(t, "2024-01-01T16:00:00+07:00", ev.Start.DateTime)
	assert.Equal(t, "2024-01-01T16:15:00+07:00", ev.End.DateTime)
	assert.Equal(t, "Asia/Ho_Chi_Minh", ev.Start.TimeZone)
	assert.Equal(t, "Asia/Ho_Chi_Minh", ev.End.TimeZone)
}

func TestToGoogleEventUnknownZone(t *testing.T) {
	_, err := ToGoogleEvent(entity.EventIntent{TimeZone: "Mars/Olympus"}, "")
	assert.Error(t, err)
}
