package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"eventinvites/internal/delivery/http/helpers"
	"eventinvites/internal/delivery/http/middleware"
	"eventinvites/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetUserID(r.Context(), userID))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Success bool              `json:"success"`
		Data    json.RawMessage   `json:"data"`
		Error   *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 && string(raw.Data) != "null" {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return helpers.APIResponse{Success: raw.Success, Error: raw.Error}
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	event  *domain.Event
	events []*domain.Event
	err    error

	lastOwnerID string
	lastEventID string
	lastCreate  domain.CreateEventInput
	lastPatch   domain.EventPatch
}

func (f *fakeEventService) CreateEvent(_ context.Context, ownerID string, in domain.CreateEventInput) (*domain.Event, error) {
	f.lastOwnerID, f.lastCreate = ownerID, in
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) GetEvent(_ context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.event, f.err
}

func (f *fakeEventService) ListEvents(_ context.Context, ownerID string) ([]*domain.Event, error) {
	f.lastOwnerID = ownerID
	return f.events, f.err
}

func (f *fakeEventService) UpdateEvent(_ context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID, f.lastPatch = eventID, ownerID, patch
	return f.event, f.err
}

func (f *fakeEventService) ActivateEvent(_ context.Context, eventID, ownerID string) (*domain.Event, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.event, f.err
}

type fakePaymentService struct {
	result *domain.PaymentResult
	err    error
	last   domain.RecordPaymentInput
}

func (f *fakePaymentService) RecordAttempt(_ context.Context, in domain.RecordPaymentInput) (*domain.PaymentResult, error) {
	f.last = in
	return f.result, f.err
}

type fakeAdmissionService struct {
	admission *domain.Admission
	stats     *domain.GuestStats
	guests    []*domain.Guest
	total     int
	csv       string
	err       error

	lastAdmit   domain.AdmitInput
	lastEventID string
	lastOwnerID string
	lastParams  domain.PaginationParams
}

func (f *fakeAdmissionService) Admit(_ context.Context, in domain.AdmitInput) (*domain.Admission, error) {
	f.lastAdmit = in
	return f.admission, f.err
}

func (f *fakeAdmissionService) Stats(_ context.Context, eventID, ownerID string) (*domain.GuestStats, error) {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	return f.stats, f.err
}

func (f *fakeAdmissionService) ListGuests(_ context.Context, eventID, ownerID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	f.lastEventID, f.lastOwnerID, f.lastParams = eventID, ownerID, params
	return f.guests, f.total, f.err
}

func (f *fakeAdmissionService) ExportGuestsCSV(_ context.Context, eventID, ownerID string, w io.Writer) error {
	f.lastEventID, f.lastOwnerID = eventID, ownerID
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.csv)
	return err
}

type fakeInvitationService struct {
	inv      *domain.PublicInvitation
	err      error
	lastSlug string
}

func (f *fakeInvitationService) GetPublicInvitation(_ context.Context, slug string) (*domain.PublicInvitation, error) {
	f.lastSlug = slug
	return f.inv, f.err
}
