package constants

import "time"

const (
	AppName = "eventsync"

	// Outbound calls (token refresh, provider) are bounded by this unless configured otherwise.
	DefaultTimeout = 10 * time.Second

	// Cached credentials are refreshed this long before they expire.
	TokenSafetyMargin = 5 * time.Minute

	OAuthStateTTL = 10 * time.Minute

	// Suggested wait for a 5xx/429 answer without a Retry-After header.
	DefaultRetryAfter = 2 * time.Second

	DefaultMaxAttempts = 5
	DefaultBaseBackoff = 2 * time.Second
	DefaultMaxBackoff  = 5 * time.Minute
)

const (
	ProviderGoogle = "google"

	DefaultCalendarID = "primary"
	DefaultTimezone   = "UTC"
)

// Either scope allows events.insert on the user's calendars.
const (
	ScopeCalendar       = "https://www.googleapis.com/auth/calendar"
	ScopeCalendarEvents = "https://www.googleapis.com/auth/calendar.events"
	ScopeUserInfoEmail  = "https://www.googleapis.com/auth/userinfo.email"
)

const (
	RedisKeyCredential = "eventsync:credential:"
	RedisKeyOAuthState = "eventsync:oauth_state:"
)

const (
	CredentialStoreMemory = "memory"
	CredentialStoreRedis  = "redis"
)
