package helpers

import (
	"log/slog"
	"net/http"

	"eventinvites/internal/domain"
)

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:            http.StatusNotFound,
	domain.KindForbidden:           http.StatusForbidden,
	domain.KindInvalidState:        http.StatusConflict,
	domain.KindPaymentRequired:     http.StatusPaymentRequired,
	domain.KindValidation:          http.StatusUnprocessableEntity,
	domain.KindAllocationExhausted: http.StatusServiceUnavailable,
	domain.KindInactiveInvitation:  http.StatusConflict,
	domain.KindExpired:             http.StatusGone,
	domain.KindCapacityExceeded:    http.StatusConflict,
}

// StatusForKind returns the HTTP status for a domain error kind; unknown kinds map to 500.
func StatusForKind(kind domain.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteDomainError writes err using its domain kind as the error code.
// Internal errors are logged and replaced by a generic message.
func WriteDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	status := StatusForKind(kind)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		WriteJSONError(w, status, ErrCodeInternalError, "internal server error")
		return
	}
	if kind == domain.KindAllocationExhausted {
		logger.ErrorContext(r.Context(), "slug allocation exhausted", "path", r.URL.Path, "err", err)
	}
	WriteJSONError(w, status, string(kind), err.Error())
}
