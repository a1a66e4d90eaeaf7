package entity

import (
	"slices"
	"strings"
	"time"

	"eventsync/core/constants"

	"golang.org/x/oauth2"
)

// Credential is the delegated access the identity provider granted for the session.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scopes       []string  `json:"scopes"`
	// Account email from the provider's id_token, when the email scope was granted.
	Email string `json:"email,omitempty"`
}

func (c Credential) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

func (c Credential) HasCalendarWriteScope() bool {
	return c.HasScope(constants.ScopeCalendar) || c.HasScope(constants.ScopeCalendarEvents)
}

// FreshAt reports whether the access token can still be used at now, keeping
// margin in reserve. A zero ExpiresAt means the provider gave no expiry.
func (c Credential) FreshAt(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return now.Before(c.ExpiresAt.Add(-margin))
}

func (c Credential) OAuthToken() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    tokenType,
		Expiry:       c.ExpiresAt,
	}
}

// CredentialFromToken converts an oauth2 token. Scopes come from the token's
// "scope" field; fallback is used when the provider omitted it, which Google
// does on refresh when the grant is unchanged.
func CredentialFromToken(token *oauth2.Token, fallback []string) Credential {
	cred := Credential{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}

	if raw, ok := token.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
		cred.Scopes = strings.Fields(raw)
	} else {
		cred.Scopes = slices.Clone(fallback)
	}

	return cred
}
