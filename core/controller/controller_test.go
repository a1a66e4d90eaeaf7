package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventsync/core/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromCode(t *testing.T) {
	tests := map[errors.ErrorCode]int{
		errors.ErrInvalidInput:   http.StatusBadRequest,
		errors.ErrAuthRequired:   http.StatusUnauthorized,
		errors.ErrScopeMissing:   http.StatusUnauthorized,
		errors.ErrForbidden:      http.StatusForbidden,
		errors.ErrNotFound:       http.StatusNotFound,
		errors.ErrEventInFlight:  http.StatusConflict,
		errors.ErrNotRetryable:   http.StatusConflict,
		errors.ErrRetryNotDue:    http.StatusTooEarly,
		errors.ErrInternalServer: http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, StatusFromCode(code), code)
	}
}

func TestFromAppError(t *testing.T) {
	h := NewBaseController()

	he := h.FromAppError(errors.NewAppError(errors.ErrEventInFlight, "busy", nil), map[string]string{"id": "x"})

	assert.Equal(t, http.StatusConflict, he.Code)
	body, ok := he.Message.(*ErrorResponse)
	require.True(t, ok)
	assert.Equal(t, errors.ErrEventInFlight, body.Code)
	assert.Equal(t, "busy", body.Message)
	assert.Equal(t, map[string]string{"id": "x"}, body.Details)

	assert.Equal(t, http.StatusInternalServerError, h.FromAppError(nil).Code)
}

func TestErrorResponseWritesJSON(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	err := NewBaseController().ErrorResponse(c, errors.NewAppError(errors.ErrScopeMissing, "sign in again", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, errors.ErrScopeMissing, body.Code)
	assert.Equal(t, "sign in again", body.Message)
}

func TestSuccessResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, NewBaseController().CreatedResponse(c, map[string]int{"n": 1}, "ok"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, string(mustField(t, rec.Body.Bytes(), "data")))
}

func mustField(t *testing.T, raw []byte, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	return m[field]
}
