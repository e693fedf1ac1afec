package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("tournament: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrDuplicateEntry, http.StatusConflict},
		{fmt.Errorf("%w (max 3)", service.ErrCapacityExceeded), http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotEntered, http.StatusBadRequest},
		{service.ErrInvalidState, http.StatusBadRequest},
		{service.ErrInsufficientParticipants, http.StatusBadRequest},
		{service.ErrValidation, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "join failed", fmt.Errorf("%w (max 3)", service.ErrCapacityExceeded))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "waitlist full (max 3)", body["error"])

	rec = httptest.NewRecorder()
	WriteError(rec, "boom", errors.New("secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Court int `json:"court"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"court": 2}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, 2, v.Court)

	r = httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, 2, v.Court)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"courtz": 2}`))
	assert.Error(t, DecodeJSON(r, &v))
}
