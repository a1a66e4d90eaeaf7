package service

import (
	"fmt"
	"time"

	"eventsync/core/config"
	"eventsync/core/constants"
	"eventsync/modules/event/entity"
)

// Reconciler merges submission outcomes into event records. It holds only policy.
type Reconciler struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func NewReconciler(cfg config.SyncConfig) Reconciler {
	r := Reconciler{
		MaxAttempts: cfg.MaxAttempts,
		BaseBackoff: cfg.BaseBackoff,
		MaxBackoff:  cfg.MaxBackoff,
	}
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = constants.DefaultMaxAttempts
	}
	if r.BaseBackoff <= 0 {
		r.BaseBackoff = constants.DefaultBaseBackoff
	}
	if r.MaxBackoff < r.BaseBackoff {
		r.MaxBackoff = constants.DefaultMaxBackoff
	}
	return r
}

// Apply returns record updated by outcome. A confirmed record never goes back.
func (r Reconciler) Apply(record entity.EventRecord, outcome entity.Outcome, now time.Time) entity.EventRecord {
	if record.Status == entity.EventStatusConfirmed {
		return record
	}

	switch outcome.Kind {
	case entity.OutcomeAccepted:
		record.Status = entity.EventStatusConfirmed
		record.RemoteID = outcome.RemoteID
		record.Reason = ""
		record.Message = ""
		clearRetry(&record)

	case entity.OutcomeRejected:
		record.Status = entity.EventStatusFailed
		record.RemoteID = ""
		record.Reason = outcome.Reason
		record.Message = outcome.Message
		clearRetry(&record)

	case entity.OutcomeTransientFailure:
		if record.Attempts >= r.MaxAttempts {
			record.Status = entity.EventStatusFailed
			record.Reason = entity.ReasonRetriesExhausted
			record.Message = fmt.Sprintf("gave up after %d attempts: %s", record.Attempts, outcome.Message)
			clearRetry(&record)
			break
		}

		delay := r.Backoff(record.Attempts)
		if outcome.RetryAfter != nil && *outcome.RetryAfter > delay {
			delay = *outcome.RetryAfter
		}
		next := now.Add(delay)

		record.Status = entity.EventStatusPending
		record.Message = outcome.Message
		record.RetryEligible = true
		record.RetryAfter = outcome.RetryAfter
		record.NextAttemptAt = &next

	default:
		return record
	}

	record.UpdatedAt = now
	return record
}

// Backoff is the wait after the given number of attempts: Base doubled per
// extra attempt, capped at Max.
func (r Reconciler) Backoff(attempts int) time.Duration {
	if attempts <= 1 {
		return r.BaseBackoff
	}
	d := r.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= r.MaxBackoff || d <= 0 {
			return r.MaxBackoff
		}
	}
	return d
}

func clearRetry(record *entity.EventRecord) {
	record.RetryEligible = false
	record.RetryAfter = nil
	record.NextAttemptAt = nil
}
