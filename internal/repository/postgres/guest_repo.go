package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"eventinvites/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

// NewGuestRepository returns a domain.GuestRepository implemented with Postgres.
func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{
		DB: db,
	}
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	query := `
		INSERT INTO guests (id, event_id, guest_name, is_test, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, g.ID, g.EventID, g.Name, g.IsTest, g.IPAddress, g.UserAgent, g.CreatedAt)
	return err
}

func (r *guestRepository) CountByEvent(ctx context.Context, eventID string, isTest bool) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guests WHERE event_id = $1 AND is_test = $2`, eventID, isTest).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return n, nil
}

func (r *guestRepository) Counts(ctx context.Context, eventID string) (regular, test int, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE NOT is_test), COUNT(*) FILTER (WHERE is_test)
		FROM guests
		WHERE event_id = $1
	`
	if err = conn(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&regular, &test); err != nil {
		return 0, 0, fmt.Errorf("count guests: %w", err)
	}
	return regular, test, nil
}

func (r *guestRepository) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM guests WHERE event_id = $1`, eventID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count guests: %w", err)
	}

	query := `
		SELECT id, event_id, guest_name, is_test, ip_address, user_agent, created_at
		FROM guests
		WHERE event_id = $1
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`
	limit := params.Limit()
	if limit == 0 {
		limit = total
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID, limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	guests, err := scanGuests(rows)
	if err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

func (r *guestRepository) ListAllByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	query := `
		SELECT id, event_id, guest_name, is_test, ip_address, user_agent, created_at
		FROM guests
		WHERE event_id = $1
		ORDER BY created_at, id
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()
	return scanGuests(rows)
}

func scanGuests(rows *sql.Rows) ([]*domain.Guest, error) {
	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g := &domain.Guest{}
		if err := rows.Scan(&g.ID, &g.EventID, &g.Name, &g.IsTest, &g.IPAddress, &g.UserAgent, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan guest: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}
