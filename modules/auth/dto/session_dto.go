package dto

import "time"

type GoogleAuthURLResponse struct {
	AuthURL string `json:"auth_url"`
}

type SessionResponse struct {
	SignedIn           bool       `json:"signed_in"`
	Provider           string     `json:"provider,omitempty"`
	Email              string     `json:"email,omitempty"`
	Scopes             []string   `json:"scopes,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CalendarWriteScope bool       `json:"calendar_write_scope"`
	CanRefresh         bool       `json:"can_refresh"`
}
