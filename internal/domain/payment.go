package domain

import (
	"context"
	"time"
)

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod is how the owner paid.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether m is a supported method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Payment is the single payment record of an event.
// swagger:model Payment
type Payment struct {
	ID            string        `json:"id"`
	EventID       string        `json:"event_id"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	CountryCode   string        `json:"country_code"`
	Status        PaymentStatus `json:"status"`
	Method        PaymentMethod `json:"payment_method"`
	TransactionID string        `json:"transaction_id"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Completed reports whether the payment unlocks activation.
func (p *Payment) Completed() bool {
	return p != nil && p.Status == PaymentStatusCompleted
}

// RecordPaymentInput is a payment attempt against an event.
type RecordPaymentInput struct {
	EventID     string
	OwnerID     string
	CountryCode string
	Method      PaymentMethod
	// ForceFailure simulates a declined payment.
	ForceFailure bool
}

// PaymentResult bundles the stored payment with the quote it was charged from.
type PaymentResult struct {
	Payment *Payment        `json:"payment"`
	Quote   *PriceBreakdown `json:"quote"`
}

// PaymentRepository defines storage operations for payments.
type PaymentRepository interface {
	GetByEventID(ctx context.Context, eventID string) (*Payment, error)
	// Upsert inserts the payment or replaces the event's existing one.
	Upsert(ctx context.Context, p *Payment) error
}

// PaymentService records payment outcomes.
type PaymentService interface {
	RecordAttempt(ctx context.Context, in RecordPaymentInput) (*PaymentResult, error)
}
