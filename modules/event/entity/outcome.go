package entity

import (
	"net/http"
	"time"
)

type OutcomeKind string

const (
	OutcomeAccepted         OutcomeKind = "accepted"
	OutcomeRejected         OutcomeKind = "rejected"
	OutcomeTransientFailure OutcomeKind = "transient_failure"
)

type RejectReason string

const (
	ReasonNotAuthenticated RejectReason = "not_authenticated"
	ReasonInvalidRequest   RejectReason = "invalid_request"
	ReasonNotFound         RejectReason = "not_found"
	ReasonConflict         RejectReason = "conflict"
	ReasonRetriesExhausted RejectReason = "retries_exhausted"
)

// Outcome is the classified result of one submission attempt.
// Only the fields that belong to Kind are set.
type Outcome struct {
	Kind       OutcomeKind
	RemoteID   string
	Reason     RejectReason
	RetryAfter *time.Duration
	StatusCode int
	Message    string
	// Cause is the local error behind a rejection made without a network call.
	Cause error
}

func Accepted(remoteID string) Outcome {
	return Outcome{Kind: OutcomeAccepted, RemoteID: remoteID}
}

func Rejected(reason RejectReason, statusCode int, message string) Outcome {
	return Outcome{Kind: OutcomeRejected, Reason: reason, StatusCode: statusCode, Message: message}
}

func TransientFailure(retryAfter *time.Duration, statusCode int, message string) Outcome {
	return Outcome{Kind: OutcomeTransientFailure, RetryAfter: retryAfter, StatusCode: statusCode, Message: message}
}

func (o Outcome) WithCause(err error) Outcome {
	o.Cause = err
	return o
}

func (o Outcome) IsAccepted() bool {
	return o.Kind == OutcomeAccepted
}

func (o Outcome) IsRejected() bool {
	return o.Kind == OutcomeRejected
}

func (o Outcome) IsTransient() bool {
	return o.Kind == OutcomeTransientFailure
}

// IsProviderAuthRejection reports a 401/403 answer from the provider, as opposed
// to a rejection made locally because no credential was available.
func (o Outcome) IsProviderAuthRejection() bool {
	return o.Kind == OutcomeRejected &&
		o.Reason == ReasonNotAuthenticated &&
		(o.StatusCode == http.StatusUnauthorized || o.StatusCode == http.StatusForbidden)
}

func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
