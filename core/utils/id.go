package utils

import (
	"crypto/rand"
	"encoding/base64"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	// Google Calendar accepts client-supplied event ids in base32hex: a-v and 0-9.
	base32hex = "0123456789abcdefghijklmnopqrstuv"

	clientEventIDLength = 26
)

// GenerateClientEventID returns an id the calendar provider accepts as an event id.
// Sending it with every attempt of the same intent lets the provider reject duplicates.
func GenerateClientEventID() (string, error) {
	return gonanoid.Generate(base32hex, clientEventIDLength)
}

// IsClientEventID reports whether id has the base32hex shape the provider accepts (5..1024 chars).
func IsClientEventID(id string) bool {
	if len(id) < 5 || len(id) > 1024 {
		return false
	}
	for _, r := range id {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'v') {
			return false
		}
	}
	return true
}

// GenerateRandomString generates a cryptographically secure random string
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		id, _ := gonanoid.Generate(alphanumeric, length)
		return id
	}
	return base64.URLEncoding.EncodeToString(bytes)[:length]
}
