package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"eventsync/modules/event/entity"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

var classifyNow = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func apiError(code int, header http.Header, reasons ...string) error {
	e := &googleapi.Error{Code: code, Message: "boom", Header: header}
	for _, r := range reasons {
		e.Errors = append(e.Errors, googleapi.ErrorItem{Reason: r})
	}
	return e
}

func TestClassifyInsertSuccess(t *testing.T) {
	outcome := ClassifyInsert(&calendar.Event{Id: "evt_123"}, nil, "cid", classifyNow)
	assert.Equal(t, entity.Accepted("evt_123"), outcome)

	outcome = ClassifyInsert(&calendar.Event{}, nil, "cid", classifyNow)
	assert.True(t, outcome.IsTransient())
}

func TestClassifyInsertRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		want   time.Duration
	}{
		{name: "missing", header: http.Header{}, want: 2 * time.Second},
		{name: "seconds", header: http.Header{"Retry-After": {"30"}}, want: 30 * time.Second},
		{
			name:   "http date",
			header: http.Header{"Retry-After": {classifyNow.Add(90 * time.Second).Format(http.TimeFormat)}},
			want:   90 * time.Second,
		},
		{
			name:   "date in the past",
			header: http.Header{"Retry-After": {classifyNow.Add(-time.Minute).Format(http.TimeFormat)}},
			want:   0,
		},
		{name: "garbage", header: http.Header{"Retry-After": {"soon"}}, want: 2 * time.Second},
		{
			name:   "larger than a duration",
			header: http.Header{"Retry-After": {"99999999999"}},
			want:   time.Duration(maxRetryAfterSeconds) * time.Second,
		},
		{
			name:   "beyond int64",
			header: http.Header{"Retry-After": {"99999999999999999999999"}},
			want:   time.Duration(maxRetryAfterSeconds) * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ClassifyInsert(nil, apiError(http.StatusServiceUnavailable, tt.header), "cid", classifyNow)

			assert.True(t, outcome.IsTransient())
			if assert.NotNil(t, outcome.RetryAfter) {
				assert.Equal(t, tt.want, *outcome.RetryAfter)
			}
			assert.Equal(t, http.StatusServiceUnavailable, outcome.StatusCode)
		})
	}
}

func TestClassifyInsertStatuses(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		clientID string
		kind     entity.OutcomeKind
		reason   entity.RejectReason
	}{
		{"401", apiError(401, nil), "cid", entity.OutcomeRejected, entity.ReasonNotAuthenticated},
		{"403", apiError(403, nil, "insufficientPermissions"), "cid", entity.OutcomeRejected, entity.ReasonNotAuthenticated},
		{"403 quota", apiError(403, nil, "quotaExceeded"), "cid", entity.OutcomeTransientFailure, ""},
		{"408", apiError(408, nil), "cid", entity.OutcomeTransientFailure, ""},
		{"400", apiError(400, nil, "invalid"), "cid", entity.OutcomeRejected, entity.ReasonInvalidRequest},
		{"404", apiError(404, nil), "cid", entity.OutcomeRejected, entity.ReasonNotFound},
		{"409 with client id", apiError(409, nil, "duplicate"), "cid", entity.OutcomeAccepted, ""},
		{"409 without client id", apiError(409, nil, "duplicate"), "", entity.OutcomeRejected, entity.ReasonConflict},
		{"500", apiError(500, nil), "cid", entity.OutcomeTransientFailure, ""},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), "cid", entity.OutcomeTransientFailure, ""},
		{"transport", errors.New("connection reset by peer"), "cid", entity.OutcomeTransientFailure, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := ClassifyInsert(nil, tt.err, tt.clientID, classifyNow)

			assert.Equal(t, tt.kind, outcome.Kind)
			assert.Equal(t, tt.reason, outcome.Reason)
		})
	}
}

func TestClassifyInsertConflictUsesClientID(t *testing.T) {
	outcome := ClassifyInsert(nil, apiError(409, nil), "abcdef0123456789", classifyNow)
	assert.Equal(t, "abcdef0123456789", outcome.RemoteID)
}

func TestClassifyInsertTimeoutHasNoRetryAfter(t *testing.T) {
	outcome := ClassifyInsert(nil, context.DeadlineExceeded, "cid", classifyNow)

	assert.True(t, outcome.IsTransient())
	assert.Nil(t, outcome.RetryAfter)
	assert.Equal(t, "request timed out", outcome.Message)
}

func TestOnlyProviderAuthRejectionsAskForRefresh(t *testing.T) {
	assert.True(t, ClassifyInsert(nil, apiError(401, nil), "cid", classifyNow).IsProviderAuthRejection())
	assert.True(t, ClassifyInsert(nil, apiError(403, nil), "cid", classifyNow).IsProviderAuthRejection())
	assert.False(t, ClassifyInsert(nil, apiError(403, nil, "rateLimitExceeded"), "cid", classifyNow).IsProviderAuthRejection())
	assert.False(t, entity.Rejected(entity.ReasonNotAuthenticated, 0, "local").IsProviderAuthRejection())
}
