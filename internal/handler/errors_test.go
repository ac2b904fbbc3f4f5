package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/border-control-ticketing/internal/repository"
	"github.com/iliyamo/border-control-ticketing/internal/ticketing"
)

func runServiceError(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, serviceError(c, err))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{repository.ErrTicketNotFound, http.StatusNotFound},
		{repository.ErrFormNotFound, http.StatusNotFound},
		{ticketing.ErrUnknownPort, http.StatusUnprocessableEntity},
		{ticketing.ErrInvalidTicketNo, http.StatusBadRequest},
		{ticketing.ErrInvalidPrefix, http.StatusBadRequest},
		{ticketing.ErrTicketNoTaken, http.StatusConflict},
		{ticketing.ErrTicketFinalized, http.StatusConflict},
		{ticketing.ErrAlreadyDecided, http.StatusConflict},
		{repository.ErrDuplicateDecision, http.StatusConflict},
		{ticketing.ErrNoPortAssigned, http.StatusForbidden},
		{ticketing.ErrWrongPort, http.StatusForbidden},
		{ticketing.ErrNotForeigner, http.StatusUnprocessableEntity},
		{ticketing.ErrDecisionPersistence, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		code, _ := runServiceError(t, tc.err)
		assert.Equal(t, tc.code, code, "error %v", tc.err)
	}
}

func TestServiceError_WrappedErrorsStillMap(t *testing.T) {
	code, _ := runServiceError(t, fmt.Errorf("%w: %v", ticketing.ErrDecisionPersistence, errors.New("disk full")))
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = runServiceError(t, fmt.Errorf("%w: %q", ticketing.ErrTicketNoTaken, "G00000001"))
	assert.Equal(t, http.StatusConflict, code)
}

func TestServiceError_ValidationCarriesFields(t *testing.T) {
	code, body := runServiceError(t, &ticketing.ValidationError{
		Fields: map[string]string{"sex": "must be \"M\" or \"F\""},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	fields, ok := body["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "sex")
}

func TestServiceError_LockHeldCarriesRemainingTime(t *testing.T) {
	code, body := runServiceError(t, &ticketing.LockHeldError{Remaining: 95 * time.Second})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, float64(95), body["remaining_time"])
}

func TestServiceError_ExpiredLockReportsZero(t *testing.T) {
	_, body := runServiceError(t, &ticketing.LockHeldError{Remaining: -3 * time.Second})
	assert.Equal(t, float64(0), body["remaining_time"])
}
