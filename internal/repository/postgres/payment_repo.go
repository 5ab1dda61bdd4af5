package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventinvites/internal/domain"
)

type paymentRepository struct {
	DB *sql.DB
}

// NewPaymentRepository returns a domain.PaymentRepository implemented with Postgres.
func NewPaymentRepository(db *sql.DB) domain.PaymentRepository {
	return &paymentRepository{DB: db}
}

func (r *paymentRepository) GetByEventID(ctx context.Context, eventID string) (*domain.Payment, error) {
	query := `
		SELECT id, event_id, amount, currency, country_code, status, payment_method, transaction_id, created_at, updated_at
		FROM payments
		WHERE event_id = $1
	`
	p := &domain.Payment{}
	var status, method string
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(
		&p.ID, &p.EventID, &p.Amount, &p.Currency, &p.CountryCode, &status, &method, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	p.Method = domain.PaymentMethod(method)
	return p, nil
}

// Upsert never replaces a COMPLETED payment; that case returns ErrPaymentAlreadyCompleted.
func (r *paymentRepository) Upsert(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (id, event_id, amount, currency, country_code, status, payment_method, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			country_code = EXCLUDED.country_code,
			status = EXCLUDED.status,
			payment_method = EXCLUDED.payment_method,
			transaction_id = EXCLUDED.transaction_id,
			updated_at = EXCLUDED.updated_at
		WHERE payments.status <> $11
		RETURNING id, created_at
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query,
		p.ID, p.EventID, p.Amount, p.Currency, p.CountryCode, string(p.Status), string(p.Method),
		p.TransactionID, p.CreatedAt, p.UpdatedAt, string(domain.PaymentStatusCompleted),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrPaymentAlreadyCompleted
		}
		return err
	}
	return nil
}
