package service

import (
	"context"
	"time"

	"eventsync/core/constants"
	"eventsync/core/errors"
	"eventsync/core/logger"
	authEntity "eventsync/modules/auth/entity"
	"eventsync/modules/event/entity"
	"eventsync/modules/event/repository"

	"golang.org/x/sync/errgroup"
)

// Submitter performs one classified create-event attempt.
type Submitter interface {
	Submit(ctx context.Context, intent entity.EventIntent, clientEventID string) (entity.Outcome, error)
}

// TokenRefresher forces a new access token after the provider refused the current one.
type TokenRefresher interface {
	ForceRefresh(ctx context.Context) (authEntity.Credential, error)
}

type EventServiceInterface interface {
	Submit(ctx context.Context, intent entity.EventIntent) (entity.EventRecord, *errors.AppError)
	Retry(ctx context.Context, id string) (entity.EventRecord, *errors.AppError)
	RetryDue(ctx context.Context) ([]entity.EventRecord, *errors.AppError)
	Events(ctx context.Context) []entity.EventRecord
	Event(ctx context.Context, id string) (entity.EventRecord, *errors.AppError)
	ExportICS(ctx context.Context) ([]byte, *errors.AppError)
	Reset(ctx context.Context)
	Close()
}

type EventService struct {
	log             repository.EventLog
	submitter       Submitter
	tokens          TokenRefresher
	defaultTimeZone string
	exportName      string
	retryWorkers    int
	now             func() time.Time
}

type Option func(*EventService)

func WithClock(now func() time.Time) Option {
	return func(s *EventService) {
		s.now = now
	}
}

func WithExportName(name string) Option {
	return func(s *EventService) {
		if name != "" {
			s.exportName = name
		}
	}
}

func WithRetryWorkers(n int) Option {
	return func(s *EventService) {
		if n > 0 {
			s.retryWorkers = n
		}
	}
}

func NewEventService(log repository.EventLog, submitter Submitter, tokens TokenRefresher, defaultTimeZone string, opts ...Option) *EventService {
	if defaultTimeZone == "" {
		defaultTimeZone = constants.DefaultTimezone
	}
	s := &EventService{
		log:             log,
		submitter:       submitter,
		tokens:          tokens,
		defaultTimeZone: defaultTimeZone,
		exportName:      constants.AppName,
		retryWorkers:    4,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records the intent and makes one attempt to create it at the provider.
// An invalid intent creates no record.
func (s *EventService) Submit(ctx context.Context, intent entity.EventIntent) (entity.EventRecord, *errors.AppError) {
	intent = intent.Normalize(s.defaultTimeZone)
	if err := intent.Validate(); err != nil {
		return entity.EventRecord{}, errors.NewAppError(errors.ErrInvalidInput, err.Error(), err)
	}

	rec, ticket, err := s.log.Begin(intent, s.now())
	if err != nil {
		return rec, logError(err, intent.ID)
	}
	if ticket == nil {
		logger.Info("EventService:Submit:AlreadyConfirmed", "intent_id", intent.ID, "remote_id", rec.RemoteID)
		return rec, nil
	}

	return s.attempt(ctx, ticket)
}

// Retry makes one more attempt for a pending record whose retry is due.
func (s *EventService) Retry(ctx context.Context, id string) (entity.EventRecord, *errors.AppError) {
	rec, ticket, err := s.log.BeginRetry(id, s.now())
	if err != nil {
		return rec, logError(err, id)
	}
	return s.attempt(ctx, ticket)
}

// RetryDue retries every due record, a few at a time, and returns the updated records.
func (s *EventService) RetryDue(ctx context.Context) ([]entity.EventRecord, *errors.AppError) {
	ids := s.log.DueIDs(s.now())
	if len(ids) == 0 {
		return []entity.EventRecord{}, nil
	}

	results := make([]entity.EventRecord, len(ids))
	done := make([]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(s.retryWorkers)
	for i, id := range ids {
		g.Go(func() error {
			rec, appErr := s.Retry(ctx, id)
			if appErr != nil && rec.ID() == "" {
				// Reset or claimed elsewhere since listing.
				logger.Debug("EventService:RetryDue:Skipped", "intent_id", id, "code", appErr.Code)
				return nil
			}
			results[i] = rec
			done[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]entity.EventRecord, 0, len(ids))
	for i, ok := range done {
		if ok {
			out = append(out, results[i])
		}
	}
	return out, nil
}

func (s *EventService) Events(ctx context.Context) []entity.EventRecord {
	return s.log.List()
}

func (s *EventService) Event(ctx context.Context, id string) (entity.EventRecord, *errors.AppError) {
	rec, ok := s.log.Get(id)
	if !ok {
		return entity.EventRecord{}, errors.NewAppError(errors.ErrNotFound, "event not found", repository.ErrNotFound)
	}
	return rec, nil
}

// Reset empties the log, as happens on sign-out.
func (s *EventService) Reset(ctx context.Context) {
	s.log.Reset()
	logger.Info("EventService:Reset")
}

// Close stops accepting submissions. Attempts in flight still finish, but their
// outcomes are dropped.
func (s *EventService) Close() {
	s.log.Close()
}

// attempt submits once. A provider 401/403 earns exactly one forced refresh and
// one resubmission; the second answer is final.
func (s *EventService) attempt(ctx context.Context, ticket *repository.Ticket) (entity.EventRecord, *errors.AppError) {
	// The attempt outlives the caller; each network call carries its own timeout.
	ctx = context.WithoutCancel(ctx)

	outcome := s.submitOnce(ctx, ticket)
	if outcome.IsProviderAuthRejection() {
		logger.Warn("EventService:attempt:ProviderAuthRejected", "intent_id", ticket.Intent.ID, "status", outcome.StatusCode)
		if _, err := s.tokens.ForceRefresh(ctx); err != nil {
			outcome = outcome.WithCause(err)
		} else {
			outcome = s.submitOnce(ctx, ticket)
		}
	}

	rec, ok := s.log.Complete(ticket, outcome, s.now())
	if !ok {
		logger.Info("EventService:attempt:Discarded", "intent_id", ticket.Intent.ID, "kind", outcome.Kind)
		return entity.EventRecord{}, errors.NewAppError(errors.ErrNotFound, "the event log was reset while the event was being submitted", repository.ErrNotFound)
	}

	if appErr := outcomeError(outcome); appErr != nil {
		return rec, appErr
	}
	return rec, nil
}

func (s *EventService) submitOnce(ctx context.Context, ticket *repository.Ticket) entity.Outcome {
	outcome, err := s.submitter.Submit(ctx, ticket.Intent, ticket.ClientEventID)
	if err != nil {
		// The intent was validated before Begin, so this is not expected.
		logger.Error("EventService:submitOnce:Error", "error", err, "intent_id", ticket.Intent.ID)
		return entity.Rejected(entity.ReasonInvalidRequest, 0, err.Error())
	}
	return outcome
}

// outcomeError reports authentication failures to the caller. Other outcomes
// are fully described by the record.
func outcomeError(outcome entity.Outcome) *errors.AppError {
	if !outcome.IsRejected() || outcome.Reason != entity.ReasonNotAuthenticated {
		return nil
	}

	var authErr *authEntity.AuthError
	if errors.As(outcome.Cause, &authErr) && authErr.Kind == authEntity.AuthScopeMissing {
		return errors.NewAppError(errors.ErrScopeMissing, "calendar access was not granted, please sign in again", outcome.Cause)
	}
	return errors.NewAppError(errors.ErrAuthRequired, "please sign in again", outcome.Cause)
}

func logError(err error, id string) *errors.AppError {
	switch {
	case errors.Is(err, repository.ErrInFlight):
		return errors.NewAppError(errors.ErrEventInFlight, "a submission for this event is already in progress", err)
	case errors.Is(err, repository.ErrNotFound):
		return errors.NewAppError(errors.ErrNotFound, "event not found", err)
	case errors.Is(err, repository.ErrNotRetryable):
		return errors.NewAppError(errors.ErrNotRetryable, "event is not waiting for a retry", err)
	case errors.Is(err, repository.ErrRetryNotDue):
		return errors.NewAppError(errors.ErrRetryNotDue, "retry is not due yet", err)
	case errors.Is(err, repository.ErrIntentChanged):
		return errors.NewAppError(errors.ErrAlreadyExists, "event id is already used by a different event", err)
	case errors.Is(err, repository.ErrLogClosed):
		return errors.NewAppError(errors.ErrInternalServer, "event log is closed", err)
	default:
		logger.Error("EventService:logError", "error", err, "intent_id", id)
		return errors.NewAppError(errors.ErrInternalServer, "failed to record event", err)
	}
}
