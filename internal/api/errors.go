package api

import (
	"errors"
	"net/http"

	"querygate/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var notApproved *domain.NotApprovedError
	var concurrent *domain.ConcurrentModificationError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notApproved):
		return http.StatusForbidden
	case errors.As(err, &concurrent):
		return http.StatusConflict
	default:
		// MalformedPayloadError lands here: corrupt stored state is a
		// server-side failure, not a client mistake.
		return http.StatusInternalServerError
	}
}
