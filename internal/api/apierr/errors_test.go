package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/services/pass"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: dial tcp: refused", auth.ErrStoreUnavailable), http.StatusServiceUnavailable, CodeStoreUnavailable},
		{gate.ErrCaptchaSoftLocked, http.StatusTooManyRequests, CodeCaptchaSoftLocked},
		{model.ErrWindowNotFound, http.StatusNotFound, CodeWindowNotFound},
		{model.ErrAccountNotFound, http.StatusNotFound, CodeAccountNotFound},
		{model.ErrDuplicateUsername, http.StatusConflict, CodeUsernameExists},
		{model.ErrAlreadyBlocked, http.StatusConflict, CodeAlreadyBlocked},
		{model.ErrNotBlocked, http.StatusConflict, CodeNotBlocked},
		{model.ErrMissingCredentials, http.StatusBadRequest, CodeMissingCredentials},
		{model.ErrInvalidPosition, http.StatusBadRequest, CodeInvalidPosition},
		{model.ErrSamePosition, http.StatusBadRequest, CodeSamePosition},
		{pass.ErrInvalidPass, http.StatusUnauthorized, CodeUnauthorized},
		{NewForbiddenError(), http.StatusForbidden, CodeForbidden},
		{NewPassRevokedError(), http.StatusForbidden, CodePassRevoked},
		{errors.New("surprise"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestStoreUnavailableHidesBackendDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, fmt.Errorf("%w: password authentication failed for user", auth.ErrStoreUnavailable))

	assert.NotContains(t, rr.Body.String(), "password authentication")
}

func TestValidationErrorCarriesFields(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, &auth.ValidationError{Fields: map[string]string{"username": "username is required"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "username is required", resp.Error.Fields["username"])
}
