package entity

import "time"

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusFailed    EventStatus = "failed"
)

// EventRecord is one entry of the local event log.
type EventRecord struct {
	Intent        EventIntent    `json:"intent"`
	Status        EventStatus    `json:"status"`
	RemoteID      string         `json:"remote_id,omitempty"`
	ClientEventID string         `json:"client_event_id"`
	Reason        RejectReason   `json:"reason,omitempty"`
	Message       string         `json:"message,omitempty"`
	RetryEligible bool           `json:"retry_eligible"`
	RetryAfter    *time.Duration `json:"retry_after,omitempty"`
	NextAttemptAt *time.Time     `json:"next_attempt_at,omitempty"`
	Attempts      int            `json:"attempts"`
	InFlight      bool           `json:"in_flight"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func NewEventRecord(intent EventIntent, clientEventID string, now time.Time) EventRecord {
	return EventRecord{
		Intent:        intent,
		Status:        EventStatusPending,
		ClientEventID: clientEventID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (r EventRecord) ID() string {
	return r.Intent.ID
}

// RetryDue reports whether a caller may retry the record at now.
func (r EventRecord) RetryDue(now time.Time) bool {
	if r.Status != EventStatusPending || !r.RetryEligible || r.InFlight {
		return false
	}
	return r.NextAttemptAt == nil || !now.Before(*r.NextAttemptAt)
}
