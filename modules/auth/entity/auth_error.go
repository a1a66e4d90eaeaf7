package entity

import "fmt"

type AuthErrorKind string

const (
	AuthNotSignedIn  AuthErrorKind = "not_signed_in"
	AuthScopeMissing AuthErrorKind = "scope_missing"
)

// AuthError means the user has to sign in again. It must be surfaced, never retried silently.
type AuthError struct {
	Kind AuthErrorKind
	Err  error
}

func NewAuthError(kind AuthErrorKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
