package entity

import (
	"testing"
	"time"

	"eventsync/core/constants"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestFreshAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	margin := 5 * time.Minute

	assert.True(t, Credential{AccessToken: "a", ExpiresAt: now.Add(time.Hour)}.FreshAt(now, margin))
	assert.False(t, Credential{AccessToken: "a", ExpiresAt: now.Add(4 * time.Minute)}.FreshAt(now, margin))
	assert.False(t, Credential{AccessToken: "a", ExpiresAt: now.Add(-time.Second)}.FreshAt(now, 0))
	assert.True(t, Credential{AccessToken: "a"}.FreshAt(now, margin))
	assert.False(t, Credential{ExpiresAt: now.Add(time.Hour)}.FreshAt(now, margin))
}

func TestHasCalendarWriteScope(t *testing.T) {
	assert.True(t, Credential{Scopes: []string{constants.ScopeCalendar}}.HasCalendarWriteScope())
	assert.True(t, Credential{Scopes: []string{constants.ScopeCalendarEvents}}.HasCalendarWriteScope())
	assert.False(t, Credential{Scopes: []string{constants.ScopeUserInfoEmail}}.HasCalendarWriteScope())
}

func TestCredentialFromToken(t *testing.T) {
	token := (&oauth2.Token{AccessToken: "a", RefreshToken: "r"}).WithExtra(map[string]any{
		"scope": constants.ScopeUserInfoEmail + " " + constants.ScopeCalendarEvents,
	})

	cred := CredentialFromToken(token, nil)

	assert.Equal(t, []string{constants.ScopeUserInfoEmail, constants.ScopeCalendarEvents}, cred.Scopes)
	assert.Equal(t, "Bearer", cred.OAuthToken().TokenType)

	fallback := CredentialFromToken(&oauth2.Token{AccessToken: "a"}, []string{constants.ScopeCalendar})
	assert.Equal(t, []string{constants.ScopeCalendar}, fallback.Scopes)
}
