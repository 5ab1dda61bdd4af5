package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"eventinvites/internal/domain"
)

const eventColumns = `id, owner_id, owner_email, plan_code, template_id, title, host_names, event_date,
		venue, message, status, slug, activated_at, expires_at, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var status string
	var dateNull, activatedNull, expiresNull sql.NullTime
	var slugNull sql.NullString
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.OwnerEmail, &e.PlanCode, &e.TemplateID, &e.Title, &e.HostNames, &dateNull,
		&e.Venue, &e.Message, &status, &slugNull, &activatedNull, &expiresNull, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Status = domain.EventStatus(status)
	if dateNull.Valid {
		e.EventDate = &dateNull.Time
	}
	if slugNull.Valid {
		e.Slug = &slugNull.String
	}
	if activatedNull.Valid {
		e.ActivatedAt = &activatedNull.Time
	}
	if expiresNull.Valid {
		e.ExpiresAt = &expiresNull.Time
	}
	return e, nil
}

// getOne runs a single-row event query and maps missing rows and malformed ids to ErrEventNotFound.
func (r *eventRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Event, error) {
	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, owner_email, plan_code, template_id, title, host_names, event_date,
			venue, message, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query,
		e.OwnerID, e.OwnerEmail, e.PlanCode, e.TemplateID, e.Title, e.HostNames, e.EventDate,
		e.Venue, e.Message, string(e.Status), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, normalizeSlug(slug))
}

func (r *eventRepository) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Event, error) {
	return r.getOne(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1 FOR UPDATE`, normalizeSlug(slug))
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
		FROM events
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch, now time.Time) (*domain.Event, error) {
	setClauses := []string{"updated_at = $1"}
	args := []any{now}
	add := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.TemplateID != nil {
		add("template_id", *patch.TemplateID)
	}
	if patch.OwnerEmail != nil {
		add("owner_email", *patch.OwnerEmail)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.HostNames != nil {
		add("host_names", *patch.HostNames)
	}
	if patch.EventDate != nil {
		add("event_date", *patch.EventDate)
	}
	if patch.Venue != nil {
		add("venue", *patch.Venue)
	}
	if patch.Message != nil {
		add("message", *patch.Message)
	}
	args = append(args, id, string(domain.EventStatusDraft))
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d AND status = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), len(args)-1, len(args), eventColumns)

	e, err := scanEvent(conn(ctx, r.DB).QueryRowContext(ctx, query, args...))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrEventNotFound
		}
		if errors.Is(err, sql.ErrNoRows) {
			// Either the event is gone or it left DRAFT.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrEventNotDraft
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *eventRepository) Activate(ctx context.Context, id, slug string, activatedAt, expiresAt time.Time) (*domain.Event, error) {
	q := conn(ctx, r.DB)
	// A unique violation aborts the whole transaction unless we can roll back to a savepoint.
	inTx := txFromContext(ctx) != nil
	if inTx {
		if _, err := q.ExecContext(ctx, `SAVEPOINT activate_slug`); err != nil {
			return nil, fmt.Errorf("savepoint: %w", err)
		}
	}
	query := `
		UPDATE events
		SET status = $2, slug = $3, activated_at = $4, expires_at = $5, updated_at = $4
		WHERE id = $1 AND status = $6
		RETURNING ` + eventColumns
	e, err := scanEvent(q.QueryRowContext(ctx, query,
		id, string(domain.EventStatusActive), slug, activatedAt, expiresAt, string(domain.EventStatusDraft)))
	if err != nil {
		if isUniqueViolation(err) {
			if inTx {
				if _, rbErr := q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT activate_slug`); rbErr != nil {
					return nil, fmt.Errorf("rollback to savepoint: %w", rbErr)
				}
			}
			return nil, domain.ErrSlugTaken
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotDraft
		}
		return nil, err
	}
	if inTx {
		if _, err := q.ExecContext(ctx, `RELEASE SAVEPOINT activate_slug`); err != nil {
			return nil, fmt.Errorf("release savepoint: %w", err)
		}
	}
	return e, nil
}

func (r *eventRepository) ExpireDue(ctx context.Context, now time.Time, ids []string) ([]*domain.Event, error) {
	query := `
		UPDATE events
		SET status = $1, updated_at = $3
		WHERE status = $2 AND expires_at <= $3`
	args := []any{string(domain.EventStatusExpired), string(domain.EventStatusActive), now}
	if len(ids) > 0 {
		query += ` AND id = ANY($4::uuid[])`
		args = append(args, pq.Array(ids))
	}
	query += `
		RETURNING ` + eventColumns

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return []*domain.Event{}, nil
		}
		return nil, fmt.Errorf("expire due events: %w", err)
	}
	defer rows.Close()

	expired := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired event: %w", err)
		}
		expired = append(expired, e)
	}
	return expired, rows.Err()
}
