package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Void-Roleplay/backend/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodePlayerNotFound         = "PLAYER_NOT_FOUND"
	CodeUnknownExternalAccount = "UNKNOWN_EXTERNAL_ACCOUNT"
	CodeLinkAlreadyPending     = "LINK_ALREADY_PENDING"
	CodeNoVerification         = "NO_VERIFICATION"
	CodeNotLinked              = "NOT_LINKED"
	CodeUnknownPlatform        = "UNKNOWN_PLATFORM"
	CodeCatalogNotLoaded       = "CATALOG_NOT_LOADED"
	CodeInternalError          = "INTERNAL_ERROR"
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

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrInvalidPlayerID):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Player id must be a UUID"}}
	case errors.Is(err, model.ErrUnknownExternalAccount):
		return &httpError{http.StatusNotFound, APIError{CodeUnknownExternalAccount, "External account not found on platform"}}
	case errors.Is(err, model.ErrVerificationConflict):
		return &httpError{http.StatusConflict, APIError{CodeLinkAlreadyPending, "A verification is already pending for this account"}}
	case errors.Is(err, model.ErrNoVerification):
		return &httpError{http.StatusNotFound, APIError{CodeNoVerification, "No pending verification"}}
	case errors.Is(err, model.ErrNotLinked):
		return &httpError{http.StatusConflict, APIError{CodeNotLinked, "Player is not linked on this platform"}}
	case errors.Is(err, model.ErrUnknownPlatform):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownPlatform, "Unknown platform"}}
	case errors.Is(err, model.ErrCatalogNotLoaded):
		return &httpError{http.StatusConflict, APIError{CodeCatalogNotLoaded, "Role catalog has not been loaded"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
