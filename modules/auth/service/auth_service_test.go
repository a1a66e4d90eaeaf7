package service

import (
	"context"
	"testing"
	"time"

	"eventsync/core/errors"
	"eventsync/core/utils"
	"eventsync/modules/auth/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStateSecret = []byte("state-secret-for-tests")

func newAuthFixture() (*AuthService, *fakeIdentity, *TokenSupplier) {
	identity := &fakeIdentity{}
	tokens := newSupplier(identity, repository.NewMemoryCredentialRepository())
	svc := NewAuthService(identity, tokens, repository.NewMemoryOAuthStateRepository(), testStateSecret)
	return svc, identity, tokens
}

func TestGetGoogleAuthURLCarriesSignedState(t *testing.T) {
	svc, _, _ := newAuthFixture()

	authURL, appErr := svc.GetGoogleAuthURL(context.Background())

	require.Nil(t, appErr)
	assert.Contains(t, authURL, "state=")
}

func TestGetGoogleAuthURLWithoutConfiguration(t *testing.T) {
	svc := NewAuthService(nil, nil, repository.NewMemoryOAuthStateRepository(), testStateSecret)

	_, appErr := svc.GetGoogleAuthURL(context.Background())

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrInternalServer, appErr.Code)
}

func TestHandleGoogleCallbackInstallsCredential(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	state, err := utils.GenerateStateToken(testStateSecret, time.Minute)
	require.NoError(t, err)

	session, appErr := svc.HandleGoogleCallback(context.Background(), "auth-code", state)

	require.Nil(t, appErr)
	assert.True(t, session.SignedIn)
	assert.Equal(t, "user@example.com", session.Email)
	assert.True(t, session.CalendarWriteScope)
	assert.True(t, session.CanRefresh)

	cred, err := tokens.GetValidToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "signed-in", cred.AccessToken)
}

func TestHandleGoogleCallbackRejectsReusedState(t *testing.T) {
	svc, _, _ := newAuthFixture()
	state, err := utils.GenerateStateToken(testStateSecret, time.Minute)
	require.NoError(t, err)

	_, appErr := svc.HandleGoogleCallback(context.Background(), "auth-code", state)
	require.Nil(t, appErr)

	_, appErr = svc.HandleGoogleCallback(context.Background(), "auth-code", state)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
}

func TestHandleGoogleCallbackRejectsForeignState(t *testing.T) {
	svc, _, _ := newAuthFixture()
	state, err := utils.GenerateStateToken([]byte("another-secret"), time.Minute)
	require.NoError(t, err)

	_, appErr := svc.HandleGoogleCallback(context.Background(), "auth-code", state)

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
}

func TestHandleGoogleCallbackExchangeFailure(t *testing.T) {
	svc, _, tokens := newAuthFixture()
	state, err := utils.GenerateStateToken(testStateSecret, time.Minute)
	require.NoError(t, err)

	_, appErr := svc.HandleGoogleCallback(context.Background(), "bad", state)

	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)
	current, err := tokens.Current(context.Background())
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestSignOutRunsHooksAndRevokes(t *testing.T) {
	svc, identity, tokens := newAuthFixture()
	tokens.Install(context.Background(), calendarCredential("current", supplierNow.Add(time.Hour)))

	hookRan := 0
	svc.OnSignOut(func(ctx context.Context) { hookRan++ })

	appErr := svc.SignOut(context.Background())

	require.Nil(t, appErr)
	assert.Equal(t, 1, hookRan)
	assert.Equal(t, int32(1), identity.signOuts.Load())

	session, appErr := svc.Session(context.Background())
	require.Nil(t, appErr)
	assert.False(t, session.SignedIn)
}

func TestSignOutWithoutSession(t *testing.T) {
	svc, identity, _ := newAuthFixture()

	appErr := svc.SignOut(context.Background())

	require.Nil(t, appErr)
	assert.Equal(t, int32(0), identity.signOuts.Load())
}
