package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle state of an invitation event.
type EventStatus string

const (
	EventStatusDraft   EventStatus = "DRAFT"
	EventStatusActive  EventStatus = "ACTIVE"
	EventStatusExpired EventStatus = "EXPIRED"
)

// CanTransitionTo reports whether next directly follows s. Statuses never skip or go back.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	switch s {
	case EventStatusDraft:
		return next == EventStatusActive
	case EventStatusActive:
		return next == EventStatusExpired
	default:
		return false
	}
}

// Event is the invitation aggregate. Slug and ExpiresAt are set iff Status is not DRAFT.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	OwnerEmail  string      `json:"owner_email,omitempty"`
	PlanCode    string      `json:"plan_code"`
	TemplateID  string      `json:"template_id"`
	Title       string      `json:"title"`
	HostNames   string      `json:"host_names"`
	EventDate   *time.Time  `json:"event_date"`
	Venue       string      `json:"venue"`
	Message     string      `json:"message"`
	Status      EventStatus `json:"status"`
	Slug        *string     `json:"slug"`
	ActivatedAt *time.Time  `json:"activated_at"`
	ExpiresAt   *time.Time  `json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewEvent returns a DRAFT event. ID is set by the repository on create.
func NewEvent(ownerID string, in CreateEventInput, now time.Time) *Event {
	return &Event{
		OwnerID:    ownerID,
		OwnerEmail: in.OwnerEmail,
		PlanCode:   in.PlanCode,
		TemplateID: in.TemplateID,
		Title:      in.Title,
		HostNames:  in.HostNames,
		EventDate:  in.EventDate,
		Venue:      in.Venue,
		Message:    in.Message,
		Status:     EventStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ExpiredAt reports whether the live window has elapsed at now.
func (e *Event) ExpiredAt(now time.Time) bool {
	return e.ExpiresAt != nil && !now.Before(*e.ExpiresAt)
}

// SlugValue returns the slug or "" for drafts.
func (e *Event) SlugValue() string {
	if e.Slug == nil {
		return ""
	}
	return *e.Slug
}

// CreateEventInput carries the owner-supplied fields of a new event.
type CreateEventInput struct {
	PlanCode   string
	TemplateID string
	OwnerEmail string
	Title      string
	HostNames  string
	EventDate  *time.Time
	Venue      string
	Message    string
}

// EventPatch lists the fields an owner may change while the event is a draft. Nil means unchanged.
type EventPatch struct {
	TemplateID *string
	OwnerEmail *string
	Title      *string
	HostNames  *string
	EventDate  *time.Time
	Venue      *string
	Message    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.TemplateID == nil && p.OwnerEmail == nil && p.Title == nil && p.HostNames == nil &&
		p.EventDate == nil && p.Venue == nil && p.Message == nil
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	GetBySlugForUpdate(ctx context.Context, slug string) (*Event, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Event, error)
	// Update applies patch only while the event is a draft; otherwise ErrEventNotDraft.
	Update(ctx context.Context, id string, patch EventPatch, now time.Time) (*Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Activate assigns slug and flips DRAFT to ACTIVE in one statement.
	// Returns ErrSlugTaken on a uniqueness conflict and ErrEventNotDraft if the event left DRAFT.
	Activate(ctx context.Context, id, slug string, activatedAt, expiresAt time.Time) (*Event, error)
	// ExpireDue moves ACTIVE events with expires_at <= now to EXPIRED and returns them.
	// An empty ids slice means every due event.
	ExpireDue(ctx context.Context, now time.Time, ids []string) ([]*Event, error)
}

// TxManager runs fn in a transaction carried by the context passed to fn.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventService is the owner-facing lifecycle state machine.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID string, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	ListEvents(ctx context.Context, ownerID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, patch EventPatch) (*Event, error)
	ActivateEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
}

// ExpiryService owns the ACTIVE to EXPIRED transition.
type ExpiryService interface {
	ExpireIfDue(ctx context.Context, eventID string) (bool, error)
	Sweep(ctx context.Context) (int, error)
}
