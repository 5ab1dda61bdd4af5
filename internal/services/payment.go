package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

type paymentService struct {
	eventRepo      domain.EventRepository
	paymentRepo    domain.PaymentRepository
	pricing        domain.PricingEngine
	txManager      domain.TxManager
	notifier       *Notifier
	clock          clock.Clock
	contextTimeout time.Duration
}

// NewPaymentService returns a PaymentService that simulates the gateway: every attempt
// succeeds unless ForceFailure is set.
func NewPaymentService(eventRepo domain.EventRepository,
	paymentRepo domain.PaymentRepository,
	pricing domain.PricingEngine,
	txManager domain.TxManager,
	notifier *Notifier,
	clk clock.Clock,
	timeout time.Duration,
) domain.PaymentService {
	return &paymentService{
		eventRepo:      eventRepo,
		paymentRepo:    paymentRepo,
		pricing:        pricing,
		txManager:      txManager,
		notifier:       notifier,
		clock:          clk,
		contextTimeout: timeout,
	}
}

func (s *paymentService) RecordAttempt(ctx context.Context, in domain.RecordPaymentInput) (*domain.PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !in.Method.Valid() {
		return nil, domain.Validationf("unsupported payment method %q", in.Method)
	}

	var (
		event  *domain.Event
		result *domain.PaymentResult
	)
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = s.eventRepo.GetByIDForUpdate(ctx, in.EventID)
		if err != nil {
			return wrapStorage("lock event", err)
		}
		if event.OwnerID != in.OwnerID {
			return domain.ErrForbidden
		}
		if event.Status != domain.EventStatusDraft {
			return domain.ErrEventNotDraft
		}

		quote, err := s.pricing.Quote(event.PlanCode, in.CountryCode)
		if err != nil {
			return err
		}

		existing, err := s.paymentRepo.GetByEventID(ctx, in.EventID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get payment: %w", err)
		}
		if existing.Completed() {
			return domain.ErrPaymentAlreadyCompleted
		}

		status := domain.PaymentStatusCompleted
		if in.ForceFailure {
			status = domain.PaymentStatusFailed
		}
		now := s.clock.Now()
		payment := &domain.Payment{
			ID:            uuid.NewString(),
			EventID:       event.ID,
			Amount:        quote.Final,
			Currency:      quote.Currency,
			CountryCode:   quote.CountryCode,
			Status:        status,
			Method:        in.Method,
			TransactionID: "txn_" + uuid.NewString(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.paymentRepo.Upsert(ctx, payment); err != nil {
			return wrapStorage("save payment", err)
		}
		result = &domain.PaymentResult{Payment: payment, Quote: quote}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.paymentRecorded(ctx, event, result.Payment)
	return result, nil
}
