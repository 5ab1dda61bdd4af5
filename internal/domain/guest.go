package domain

import (
	"context"
	"io"
	"time"
)

// Guest is a person admitted to an active invitation. Guests are never mutated.
// swagger:model Guest
type Guest struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"guest_name"`
	IsTest    bool      `json:"is_test"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// AdmitInput is one guest registration attempt.
type AdmitInput struct {
	Slug      string
	GuestName string
	IsTest    bool
	IP        string
	UserAgent string
}

// Admission is returned to an admitted guest: the guest row plus full event detail.
type Admission struct {
	Guest    *Guest    `json:"guest"`
	Event    *Event    `json:"event"`
	Template *Template `json:"template"`
}

// CapacityCounter describes one of the two per-event counters.
type CapacityCounter struct {
	Current   int `json:"current"`
	Max       int `json:"max"`
	Remaining int `json:"remaining"`
}

// NewCapacityCounter clamps Remaining at zero.
func NewCapacityCounter(current, max int) CapacityCounter {
	remaining := max - current
	if remaining < 0 {
		remaining = 0
	}
	return CapacityCounter{Current: current, Max: max, Remaining: remaining}
}

// GuestStats is a live recount of an event's guests.
// swagger:model GuestStats
type GuestStats struct {
	Regular CapacityCounter `json:"regular"`
	Test    CapacityCounter `json:"test"`
	Total   int             `json:"total"`
}

// GuestRepository defines storage operations for guests.
type GuestRepository interface {
	Create(ctx context.Context, g *Guest) error
	CountByEvent(ctx context.Context, eventID string, isTest bool) (int, error)
	Counts(ctx context.Context, eventID string) (regular, test int, err error)
	ListByEventID(ctx context.Context, eventID string, params PaginationParams) ([]*Guest, int, error)
	ListAllByEventID(ctx context.Context, eventID string) ([]*Guest, error)
}

// AdmissionService admits guests and reports on them.
type AdmissionService interface {
	Admit(ctx context.Context, in AdmitInput) (*Admission, error)
	Stats(ctx context.Context, eventID, ownerID string) (*GuestStats, error)
	ListGuests(ctx context.Context, eventID, ownerID string, params PaginationParams) ([]*Guest, int, error)
	ExportGuestsCSV(ctx context.Context, eventID, ownerID string, w io.Writer) error
}
