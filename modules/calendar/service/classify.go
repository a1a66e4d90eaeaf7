package service

import (
	"context"
	"errors"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventsync/core/constants"
	"eventsync/modules/event/entity"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// Largest Retry-After, in seconds, that still fits in a time.Duration.
const maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)

// Google answers 403 for quota problems as well as for missing permissions.
var rateLimitReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
}

// ClassifyInsert turns the result of one events.insert call into an Outcome.
func ClassifyInsert(created *calendar.Event, err error, clientEventID string, now time.Time) entity.Outcome {
	if err == nil {
		if created == nil || created.Id == "" {
			return entity.TransientFailure(nil, http.StatusOK, "provider response carried no event id")
		}
		return entity.Accepted(created.Id)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr, clientEventID, now)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return entity.TransientFailure(nil, 0, "request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return entity.TransientFailure(nil, 0, "request timed out")
	}

	return entity.TransientFailure(nil, 0, err.Error())
}

func classifyStatus(apiErr *googleapi.Error, clientEventID string, now time.Time) entity.Outcome {
	code := apiErr.Code
	msg := apiErrorMessage(apiErr)

	switch {
	case code == http.StatusUnauthorized:
		return entity.Rejected(entity.ReasonNotAuthenticated, code, msg)
	case code == http.StatusForbidden:
		if hasRateLimitReason(apiErr) {
			return entity.TransientFailure(retryAfter(apiErr.Header, now), code, msg)
		}
		return entity.Rejected(entity.ReasonNotAuthenticated, code, msg)
	case code == http.StatusRequestTimeout || code == http.StatusTooManyRequests:
		return entity.TransientFailure(retryAfter(apiErr.Header, now), code, msg)
	case code == http.StatusConflict:
		// The event id we chose already exists, so an earlier attempt of this intent got through.
		// Google also answers 409 when that event has since been deleted; the id is random per
		// intent, so the deleted event can only be ours and the id still names it.
		if clientEventID != "" {
			return entity.Accepted(clientEventID)
		}
		return entity.Rejected(entity.ReasonConflict, code, msg)
	case code == http.StatusNotFound:
		return entity.Rejected(entity.ReasonNotFound, code, msg)
	case code >= 400 && code < 500:
		return entity.Rejected(entity.ReasonInvalidRequest, code, msg)
	case code >= 500:
		return entity.TransientFailure(retryAfter(apiErr.Header, now), code, msg)
	default:
		return entity.TransientFailure(nil, code, msg)
	}
}

func hasRateLimitReason(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		if rateLimitReasons[item.Reason] {
			return true
		}
	}
	return false
}

func apiErrorMessage(apiErr *googleapi.Error) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	for _, item := range apiErr.Errors {
		if item.Message != "" {
			return item.Message
		}
	}
	if text := http.StatusText(apiErr.Code); text != "" {
		return text
	}
	return "provider error"
}

// retryAfter reads Retry-After as delta seconds or an HTTP date, falling back to the default wait.
func retryAfter(header http.Header, now time.Time) *time.Duration {
	raw := strings.TrimSpace(header.Get("Retry-After"))
	if raw == "" {
		return entity.DurationPtr(constants.DefaultRetryAfter)
	}

	secs, err := strconv.ParseInt(raw, 10, 64)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		secs, err = maxRetryAfterSeconds, nil
	}
	if err == nil && secs >= 0 {
		secs = min(secs, maxRetryAfterSeconds)
		return entity.DurationPtr(time.Duration(secs) * time.Second)
	}

	if at, err := http.ParseTime(raw); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return entity.DurationPtr(d)
	}

	return entity.DurationPtr(constants.DefaultRetryAfter)
}
