package domain

import (
	"context"
	"time"
)

// Routing keys for lifecycle messages.
const (
	RoutingKeyPaymentCompleted    = "payment.completed"
	RoutingKeyPaymentFailed       = "payment.failed"
	RoutingKeyInvitationActivated = "invitation.activated"
	RoutingKeyInvitationExpired   = "invitation.expired"
	RoutingKeyGuestAdmitted       = "guest.admitted"
)

// LifecycleMessage is the payload published for every lifecycle change.
type LifecycleMessage struct {
	EventID    string      `json:"event_id"`
	OwnerID    string      `json:"owner_id"`
	Status     EventStatus `json:"status"`
	Slug       string      `json:"slug,omitempty"`
	GuestID    string      `json:"guest_id,omitempty"`
	IsTest     bool        `json:"is_test,omitempty"`
	PaymentID  string      `json:"payment_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher delivers lifecycle messages to downstream consumers (infrastructure port).
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}
