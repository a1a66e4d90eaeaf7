package repository

import (
	"errors"
	"sync"
	"time"

	"eventsync/core/logger"
	"eventsync/modules/event/entity"
)

var (
	ErrInFlight      = errors.New("a submission for this event is already in flight")
	ErrNotFound      = errors.New("event not found")
	ErrNotRetryable  = errors.New("event is not eligible for retry")
	ErrRetryNotDue   = errors.New("retry is not due yet")
	ErrLogClosed     = errors.New("event log is closed")
	ErrIntentChanged = errors.New("event id is already used by a different event")
)

// ApplyFunc merges an outcome into a record.
type ApplyFunc func(record entity.EventRecord, outcome entity.Outcome, now time.Time) entity.EventRecord

// IDFunc generates the provider-side event id sent with every attempt of an intent.
type IDFunc func() (string, error)

// Ticket is the right to complete one in-flight attempt. It goes stale when the log is reset.
type Ticket struct {
	Intent        entity.EventIntent
	ClientEventID string
	epoch         uint64
}

type EventLog interface {
	Begin(intent entity.EventIntent, now time.Time) (entity.EventRecord, *Ticket, error)
	BeginRetry(id string, now time.Time) (entity.EventRecord, *Ticket, error)
	Complete(ticket *Ticket, outcome entity.Outcome, now time.Time) (entity.EventRecord, bool)
	Get(id string) (entity.EventRecord, bool)
	List() []entity.EventRecord
	DueIDs(now time.Time) []string
	Reset()
	Close()
}

// memoryEventLog keeps records in insertion order, one per intent id.
type memoryEventLog struct {
	apply ApplyFunc
	newID IDFunc

	mu      sync.Mutex
	records map[string]*entity.EventRecord
	order   []string
	epoch   uint64
	closed  bool
}

func NewEventLog(apply ApplyFunc, newID IDFunc) EventLog {
	return &memoryEventLog{
		apply:   apply,
		newID:   newID,
		records: make(map[string]*entity.EventRecord),
	}
}

// Begin marks the intent in flight, creating its record on first use.
// A confirmed record is returned with a nil ticket; there is nothing to submit.
func (l *memoryEventLog) Begin(intent entity.EventIntent, now time.Time) (entity.EventRecord, *Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return entity.EventRecord{}, nil, ErrLogClosed
	}

	rec, ok := l.records[intent.ID]
	if !ok {
		clientID, err := l.newID()
		if err != nil {
			return entity.EventRecord{}, nil, err
		}
		created := entity.NewEventRecord(intent, clientID, now)
		rec = &created
		l.records[intent.ID] = rec
		l.order = append(l.order, intent.ID)
		return l.start(rec, now), l.ticket(rec), nil
	}

	if !rec.Intent.SameContent(intent) {
		return *rec, nil, ErrIntentChanged
	}
	if rec.InFlight {
		return *rec, nil, ErrInFlight
	}

	switch rec.Status {
	case entity.EventStatusConfirmed:
		return *rec, nil, nil
	case entity.EventStatusPending:
		// Resubmitting a pending intent is a retry and waits out the same backoff.
		if rec.RetryEligible && !rec.RetryDue(now) {
			return *rec, nil, ErrRetryNotDue
		}
	case entity.EventStatusFailed:
		// A resubmitted failure starts a fresh round of attempts.
		rec.Status = entity.EventStatusPending
		rec.Reason = ""
		rec.Message = ""
		rec.Attempts = 0
	}

	return l.start(rec, now), l.ticket(rec), nil
}

func (l *memoryEventLog) BeginRetry(id string, now time.Time) (entity.EventRecord, *Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return entity.EventRecord{}, nil, ErrLogClosed
	}

	rec, ok := l.records[id]
	if !ok {
		return entity.EventRecord{}, nil, ErrNotFound
	}
	if rec.InFlight {
		return *rec, nil, ErrInFlight
	}
	if rec.Status != entity.EventStatusPending || !rec.RetryEligible {
		return *rec, nil, ErrNotRetryable
	}
	if !rec.RetryDue(now) {
		return *rec, nil, ErrRetryNotDue
	}

	return l.start(rec, now), l.ticket(rec), nil
}

// Complete applies the outcome of the attempt behind ticket. It reports false,
// and changes nothing, when the log was reset or closed in the meantime.
func (l *memoryEventLog) Complete(ticket *Ticket, outcome entity.Outcome, now time.Time) (entity.EventRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ticket == nil || l.closed || ticket.epoch != l.epoch {
		logger.Debug("EventLog:Complete:Discarded", "kind", outcome.Kind)
		return entity.EventRecord{}, false
	}

	rec, ok := l.records[ticket.Intent.ID]
	if !ok {
		return entity.EventRecord{}, false
	}

	updated := l.apply(*rec, outcome, now)
	updated.InFlight = false
	*rec = updated
	return *rec, true
}

func (l *memoryEventLog) Get(id string) (entity.EventRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.records[id]
	if !ok {
		return entity.EventRecord{}, false
	}
	return *rec, true
}

func (l *memoryEventLog) List() []entity.EventRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]entity.EventRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.records[id])
	}
	return out
}

// DueIDs lists, in insertion order, the records whose retry is due at now.
func (l *memoryEventLog) DueIDs(now time.Time) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []string
	for _, id := range l.order {
		if l.records[id].RetryDue(now) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reset empties the log. Attempts still in flight are discarded when they finish.
func (l *memoryEventLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[string]*entity.EventRecord)
	l.order = nil
	l.epoch++
}

func (l *memoryEventLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.epoch++
}

func (l *memoryEventLog) start(rec *entity.EventRecord, now time.Time) entity.EventRecord {
	rec.Attempts++
	rec.InFlight = true
	rec.RetryEligible = false
	rec.NextAttemptAt = nil
	rec.UpdatedAt = now
	return *rec
}

func (l *memoryEventLog) ticket(rec *entity.EventRecord) *Ticket {
	return &Ticket{
		Intent:        rec.Intent,
		ClientEventID: rec.ClientEventID,
		epoch:         l.epoch,
	}
}
