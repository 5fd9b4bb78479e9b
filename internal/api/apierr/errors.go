package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/schoolgate/internal/model"
	"github.com/mcoot/schoolgate/internal/services/auth"
	"github.com/mcoot/schoolgate/internal/services/gate"
	"github.com/mcoot/schoolgate/internal/services/pass"
)

// APIError represents an API error response
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeMissingCredentials = "MISSING_CREDENTIALS"
	CodeInvalidPosition    = "INVALID_POSITION"
	CodeSamePosition       = "SAME_POSITION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodePassRevoked        = "PASS_REVOKED"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeWindowNotFound     = "WINDOW_NOT_FOUND"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeAlreadyBlocked     = "ALREADY_BLOCKED"
	CodeNotBlocked         = "NOT_BLOCKED"
	CodeCaptchaSoftLocked  = "CAPTCHA_SOFT_LOCKED"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeValidationFailed, "Account data is invalid", verr.Fields}}
	}

	switch {
	// Store failures first: they may wrap anything
	case errors.Is(err, auth.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeStoreUnavailable, Message: "Account storage is unavailable, try again later"}}

	// Model errors
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeAccountNotFound, Message: "Account not found"}}
	case errors.Is(err, model.ErrWindowNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeWindowNotFound, Message: "Login window not found or expired"}}
	case errors.Is(err, model.ErrDuplicateUsername):
		return &httpError{http.StatusConflict, APIError{Code: CodeUsernameExists, Message: "Username already exists"}}
	case errors.Is(err, model.ErrAlreadyBlocked):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyBlocked, Message: "Account is already blocked"}}
	case errors.Is(err, model.ErrNotBlocked):
		return &httpError{http.StatusConflict, APIError{Code: CodeNotBlocked, Message: "Account is not blocked"}}
	case errors.Is(err, model.ErrMissingCredentials):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeMissingCredentials, Message: "Fill in username and password"}}
	case errors.Is(err, model.ErrInvalidPosition):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidPosition, Message: "Tile position must be 0-3"}}
	case errors.Is(err, model.ErrSamePosition):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeSamePosition, Message: "Cannot swap a tile with itself"}}

	// Gate and pass errors
	case errors.Is(err, gate.ErrCaptchaSoftLocked):
		return &httpError{http.StatusTooManyRequests, APIError{Code: CodeCaptchaSoftLocked, Message: "Too many attempts, open a new login window"}}
	case errors.Is(err, pass.ErrInvalidPass):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired pass"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{Code: CodeForbidden, Message: "Your role cannot perform this action"}}
}

// NewPassRevokedError is for a pass whose account has since been blocked or
// had its role changed
func NewPassRevokedError() error {
	return &httpError{http.StatusForbidden, APIError{Code: CodePassRevoked, Message: "Your account no longer holds this role"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
