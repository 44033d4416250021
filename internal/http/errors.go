package http

import (
	"errors"
	"net/http"

	"github.com/pulsegate/signal-service/internal/http/dto"
	issvc "github.com/pulsegate/signal-service/internal/service"
)

// MapError translates domain/DTO errors into an HTTP status and APIError body
func MapError(err error) (int, APIError) {
	switch {
	// DTO validation
	case errors.Is(err, dto.ErrSubjectRequired):
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "subject_key required"}
	case errors.Is(err, dto.ErrRepoRequired):
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "owner and repo required"}
	case errors.Is(err, dto.ErrCredentialRequired):
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "credential required"}
	case errors.Is(err, dto.ErrThresholdInvalid):
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "threshold must be positive"}
	case errors.Is(err, dto.ErrValueInvalid):
		return http.StatusBadRequest, APIError{Code: "invalid_request", Message: "value must be positive"}

	// Service errors
	case errors.Is(err, issvc.ErrUnsupportedAlg):
		return http.StatusServiceUnavailable, APIError{Code: "unsupported_alg", Message: "only EdDSA supported"}
	case errors.Is(err, issvc.ErrMalformedKey):
		return http.StatusServiceUnavailable, APIError{Code: "malformed_key", Message: "signer key unusable"}
	case errors.Is(err, issvc.ErrNotFound):
		return http.StatusNotFound, APIError{Code: "not_found", Message: "not found"}
	case errors.Is(err, issvc.ErrConflict):
		return http.StatusConflict, APIError{Code: "conflict", Message: "not Active"}
	case errors.Is(err, issvc.ErrSessionClosed):
		return http.StatusConflict, APIError{Code: "session_closed", Message: "session already closed"}
	}
	return http.StatusInternalServerError, APIError{Code: "internal", Message: "internal error"}
}
