package dto

import "time"

// CreateEventRequest request to create a calendar event
type CreateEventRequest struct {
	// Optional caller-chosen identity; derived from the content when empty.
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"` // RFC3339
	EndTime     string `json:"end_time"`   // RFC3339
	Timezone    string `json:"timezone"`   // IANA, e.g. Asia/Ho_Chi_Minh
}

type EventResponse struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Timezone      string     `json:"timezone"`
	Status        string     `json:"status"`
	RemoteID      string     `json:"remote_id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	Message       string     `json:"message,omitempty"`
	RetryEligible bool       `json:"retry_eligible"`
	RetryAfter    *float64   `json:"retry_after_seconds,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
	Attempts      int        `json:"attempts"`
	InFlight      bool       `json:"in_flight"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SubmitEventResponse carries the submitted record and the whole log, so the UI can re-render at once.
type SubmitEventResponse struct {
	Event  EventResponse   `json:"event"`
	Events []EventResponse `json:"events"`
}

type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
}

type RetryDueResponse struct {
	Retried []EventResponse `json:"retried"`
	Events  []EventResponse `json:"events"`
}
