package domain

import (
	"errors"
	"fmt"
)

// Kind is the externally meaningful category of a domain error.
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidState        Kind = "invalid_state"
	KindPaymentRequired     Kind = "payment_required"
	KindValidation          Kind = "validation_error"
	KindAllocationExhausted Kind = "allocation_exhausted"
	KindInactiveInvitation  Kind = "inactive_invitation"
	KindExpired             Kind = "expired"
	KindCapacityExceeded    Kind = "capacity_exceeded"
	KindInternal            Kind = "internal_error"
)

// Root sentinels. Every specific error below wraps exactly one of them.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidState        = errors.New("invalid state")
	ErrPaymentRequired     = errors.New("payment required")
	ErrValidation          = errors.New("validation error")
	ErrAllocationExhausted = errors.New("slug allocation exhausted")
	ErrInactiveInvitation  = errors.New("invitation is not active")
	ErrInvitationExpired   = errors.New("this invitation has expired")
	ErrCapacityExceeded    = errors.New("this invitation has reached its guest limit")
)

var (
	ErrEventNotFound    = fmt.Errorf("event %w", ErrNotFound)
	ErrPlanNotFound     = fmt.Errorf("plan %w", ErrNotFound)
	ErrCountryNotFound  = fmt.Errorf("country %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)
	ErrPaymentNotFound  = fmt.Errorf("payment %w", ErrNotFound)
)

var (
	ErrEventNotDraft           = fmt.Errorf("%w: event is no longer a draft", ErrInvalidState)
	ErrPaymentAlreadyCompleted = fmt.Errorf("%w: event already has a completed payment", ErrInvalidState)
)

var (
	ErrTemplatePlanMismatch = fmt.Errorf("%w: template does not belong to the event's plan", ErrValidation)
	ErrInvalidInput         = fmt.Errorf("%w: invalid input", ErrValidation)
)

// ErrSlugTaken is returned by storage when a slug collides with an existing one.
// It never leaves the services layer; the allocator retries on it.
var ErrSlugTaken = errors.New("slug already taken")

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.Is(err, ErrPaymentRequired):
		return KindPaymentRequired
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAllocationExhausted):
		return KindAllocationExhausted
	case errors.Is(err, ErrInactiveInvitation):
		return KindInactiveInvitation
	case errors.Is(err, ErrInvitationExpired):
		return KindExpired
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	default:
		return KindInternal
	}
}

// Validationf returns a validation error with a caller-facing message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
