package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventIntent is what the user asked for. It is immutable once submitted.
type EventIntent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	TimeZone    string    `json:"time_zone"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Validate checks the intent locally. It never touches the network.
func (i EventIntent) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return NewValidationError("title", "must not be empty")
	}
	if i.Start.IsZero() {
		return NewValidationError("start", "is required")
	}
	if i.End.IsZero() {
		return NewValidationError("end", "is required")
	}
	if !i.Start.Before(i.End) {
		return NewValidationError("end", "must be after start")
	}
	if i.TimeZone == "" {
		return NewValidationError("time_zone", "is required")
	}
	if _, err := time.LoadLocation(i.TimeZone); err != nil {
		return NewValidationError("time_zone", fmt.Sprintf("unknown time zone %q", i.TimeZone))
	}
	return nil
}

// Normalize trims text fields, applies the default time zone and derives the
// identity when the caller did not supply one.
func (i EventIntent) Normalize(defaultTimeZone string) EventIntent {
	i.ID = strings.TrimSpace(i.ID)
	i.Title = strings.TrimSpace(i.Title)
	i.Description = strings.TrimSpace(i.Description)
	i.TimeZone = strings.TrimSpace(i.TimeZone)
	if i.TimeZone == "" {
		i.TimeZone = defaultTimeZone
	}
	if i.ID == "" {
		i.ID = DeriveIntentID(i)
	}
	return i
}

// DeriveIntentID maps the same logical intent to the same identity.
func DeriveIntentID(i EventIntent) string {
	key := strings.Join([]string{
		i.Title,
		i.Description,
		i.Start.UTC().Format(time.RFC3339Nano),
		i.End.UTC().Format(time.RFC3339Nano),
		i.TimeZone,
	}, "\x1f")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("intent:"+key)).String()
}

// SameContent reports whether two intents describe the same event, ignoring ID.
func (i EventIntent) SameContent(other EventIntent) bool {
	return i.Title == other.Title &&
		i.Description == other.Description &&
		i.Start.Equal(other.Start) &&
		i.End.Equal(other.End) &&
		i.TimeZone == other.TimeZone
}
