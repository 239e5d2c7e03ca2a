package handler

import (
	"net/http"

	"github.com/mcoot/invisiblewalls/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest     = apierr.CodeInvalidRequest
	CodeInvalidMode        = apierr.CodeInvalidMode
	CodeInvalidRound       = apierr.CodeInvalidRound
	CodeInvalidMove        = apierr.CodeInvalidMove
	CodeInvalidDifficulty  = apierr.CodeInvalidDifficulty
	CodeUnknownStrategy    = apierr.CodeUnknownStrategy
	CodeUnauthorized       = apierr.CodeUnauthorized
	CodeForbidden          = apierr.CodeForbidden
	CodePlayerNotFound     = apierr.CodePlayerNotFound
	CodeSessionNotFound    = apierr.CodeSessionNotFound
	CodeInvalidDisplayName = apierr.CodeInvalidDisplayName
	CodeInvalidUsername    = apierr.CodeInvalidUsername
	CodePasswordTooShort   = apierr.CodePasswordTooShort
	CodeUsernameExists     = apierr.CodeUsernameExists
	CodeInvalidCredentials = apierr.CodeInvalidCredentials
	CodeInternalError      = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}
