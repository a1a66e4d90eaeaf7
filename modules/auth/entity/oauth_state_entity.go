package entity

import "time"

// OAuthState is a consumed state nonce, remembered until the state token expires.
type OAuthState struct {
	Nonce     string    `json:"nonce"`
	ExpiresAt time.Time `json:"expires_at"`
}
