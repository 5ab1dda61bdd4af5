package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvites/internal/domain"
)

func TestPaymentService_RecordAttempt(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(env *testEnv)
		in         domain.RecordPaymentInput
		wantErr    error
		wantStatus domain.PaymentStatus
		wantKey    string
	}{
		{
			name:       "completed",
			setup:      func(env *testEnv) { env.draft("ev-1") },
			in:         domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "us", Method: domain.PaymentMethodCard},
			wantStatus: domain.PaymentStatusCompleted,
			wantKey:    domain.RoutingKeyPaymentCompleted,
		},
		{
			name:       "forced failure",
			setup:      func(env *testEnv) { env.draft("ev-1") },
			in:         domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodUPI, ForceFailure: true},
			wantStatus: domain.PaymentStatusFailed,
			wantKey:    domain.RoutingKeyPaymentFailed,
		},
		{
			name: "retry after failure overwrites",
			setup: func(env *testEnv) {
				env.draft("ev-1")
				env.paid("ev-1", domain.PaymentStatusFailed)
			},
			in:         domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodPayPal},
			wantStatus: domain.PaymentStatusCompleted,
			wantKey:    domain.RoutingKeyPaymentCompleted,
		},
		{
			name: "second payment after completion",
			setup: func(env *testEnv) {
				env.draft("ev-1")
				env.paid("ev-1", domain.PaymentStatusCompleted)
			},
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodCard},
			wantErr: domain.ErrPaymentAlreadyCompleted,
		},
		{
			name:    "active event",
			setup:   func(env *testEnv) { env.active("ev-1", "slugslugslug", time.Hour) },
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodCard},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "missing event",
			setup:   func(env *testEnv) {},
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodCard},
			wantErr: domain.ErrEventNotFound,
		},
		{
			name:    "not owner",
			setup:   func(env *testEnv) { env.draft("ev-1") },
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-2", CountryCode: "US", Method: domain.PaymentMethodCard},
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "unknown country",
			setup:   func(env *testEnv) { env.draft("ev-1") },
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "FR", Method: domain.PaymentMethodCard},
			wantErr: domain.ErrCountryNotFound,
		},
		{
			name:    "unsupported method",
			setup:   func(env *testEnv) { env.draft("ev-1") },
			in:      domain.RecordPaymentInput{EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: "cash"},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			tt.setup(env)
			got, err := env.paymentSvc.RecordAttempt(ctx, tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, env.publisher.keys())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got.Payment.Status)
			assert.Equal(t, 6.98, got.Payment.Amount)
			assert.Equal(t, "USD", got.Payment.Currency)
			assert.Regexp(t, `^txn_[0-9a-f-]{36}$`, got.Payment.TransactionID)
			assert.Equal(t, 6.98, got.Quote.Final)
			assert.Equal(t, []string{tt.wantKey}, env.publisher.keys())

			stored, err := env.payments.GetByEventID(ctx, "ev-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
		})
	}
}

func TestPaymentThenActivate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.draft("ev-1")

	_, err := env.paymentSvc.RecordAttempt(ctx, domain.RecordPaymentInput{
		EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodCard, ForceFailure: true,
	})
	require.NoError(t, err)
	_, err = env.eventSvc.ActivateEvent(ctx, "ev-1", "owner-1")
	require.ErrorIs(t, err, domain.ErrPaymentRequired)

	_, err = env.paymentSvc.RecordAttempt(ctx, domain.RecordPaymentInput{
		EventID: "ev-1", OwnerID: "owner-1", CountryCode: "US", Method: domain.PaymentMethodCard,
	})
	require.NoError(t, err)
	got, err := env.eventSvc.ActivateEvent(ctx, "ev-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusActive, got.Status)
}
