package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"eventsync/core/config"
	"eventsync/core/constants"
	"eventsync/core/logger"
	"eventsync/core/utils"
	authEntity "eventsync/modules/auth/entity"
	"eventsync/modules/calendar/mapper"
	"eventsync/modules/event/entity"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// TokenProvider hands out a credential that is valid for the next call.
type TokenProvider interface {
	GetValidToken(ctx context.Context) (authEntity.Credential, error)
}

// GoogleSubmitter creates events through Google Calendar v3. Each Submit makes
// at most one HTTP request and never retries on its own.
type GoogleSubmitter struct {
	tokens     TokenProvider
	calendarID string
	endpoint   string
	timeout    time.Duration
	base       http.RoundTripper
	now        func() time.Time
}

// NewGoogleSubmitter uses client's transport for the provider calls; nil means http.DefaultTransport.
func NewGoogleSubmitter(tokens TokenProvider, cfg config.CalendarConfig, client *http.Client) *GoogleSubmitter {
	var base http.RoundTripper
	if client != nil {
		base = client.Transport
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = constants.DefaultTimeout
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = constants.DefaultCalendarID
	}

	return &GoogleSubmitter{
		tokens:     tokens,
		calendarID: calendarID,
		endpoint:   cfg.Endpoint,
		timeout:    timeout,
		base:       base,
		now:        time.Now,
	}
}

// Submit validates intent, acquires a token and performs the insert.
// The error is non-nil only for a ValidationError; every other failure is an Outcome.
func (s *GoogleSubmitter) Submit(ctx context.Context, intent entity.EventIntent, clientEventID string) (entity.Outcome, error) {
	if err := intent.Validate(); err != nil {
		return entity.Outcome{}, err
	}

	cred, err := s.tokens.GetValidToken(ctx)
	if err != nil {
		logger.Warn("GoogleSubmitter:Submit:GetValidToken:Error", "error", err, "intent_id", intent.ID)
		return entity.Rejected(entity.ReasonNotAuthenticated, 0, authMessage(err)).WithCause(err), nil
	}

	if clientEventID != "" && !utils.IsClientEventID(clientEventID) {
		logger.Warn("GoogleSubmitter:Submit:InvalidClientEventID", "intent_id", intent.ID, "client_event_id", clientEventID)
		clientEventID = ""
	}

	event, err := mapper.ToGoogleEvent(intent, clientEventID)
	if err != nil {
		return entity.Outcome{}, entity.NewValidationError("time_zone", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	svc, err := s.newService(ctx, cred)
	if err != nil {
		logger.Error("GoogleSubmitter:Submit:NewService:Error", "error", err)
		return entity.TransientFailure(nil, 0, "failed to create calendar client"), nil
	}

	created, err := svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	outcome := ClassifyInsert(created, err, clientEventID, s.now())

	logger.Info("GoogleSubmitter:Submit:Done",
		"intent_id", intent.ID,
		"kind", outcome.Kind,
		"status", outcome.StatusCode,
		"remote_id", outcome.RemoteID,
	)
	return outcome, nil
}

func (s *GoogleSubmitter) newService(ctx context.Context, cred authEntity.Credential) (*calendar.Service, error) {
	client := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(cred.OAuthToken()),
			Base:   s.base,
		},
		Timeout: s.timeout,
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	return calendar.NewService(ctx, opts...)
}

func authMessage(err error) string {
	var authErr *authEntity.AuthError
	if errors.As(err, &authErr) && authErr.Kind == authEntity.AuthScopeMissing {
		return "calendar access was not granted, please sign in again"
	}
	return "not signed in, please sign in again"
}
