package utils

import (
	"errors"
	"fmt"
	"time"

	"eventsync/core/constants"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

type StateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// GenerateStateToken signs a short-lived OAuth state value so the callback can be
// verified without storing anything server-side.
func GenerateStateToken(secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("state secret is empty")
	}

	now := time.Now()
	claims := StateClaims{
		Nonce: GenerateRandomString(16),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.AppName,
			Subject:   "oauth_state",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateStateToken(secret []byte, state string) (*StateClaims, error) {
	if state == "" {
		return nil, ErrInvalidState
	}

	claims := &StateClaims{}
	token, err := jwt.ParseWithClaims(state, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(constants.AppName),
		jwt.WithSubject("oauth_state"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if !token.Valid {
		return nil, ErrInvalidState
	}

	return claims, nil
}
