package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Event
	nextID int
	err    error // returned by every call when set

	// takenOnActivate lists slugs that Activate rejects with ErrSlugTaken.
	takenOnActivate map[string]bool
	activateCalls   int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:            make(map[string]*domain.Event),
		nextID:          1,
		takenOnActivate: make(map[string]bool),
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	return &c
}

func (f *fakeEventRepo) put(e *domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[e.ID] = cloneEvent(e)
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = cloneEvent(e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.byID[id]; ok {
		return cloneEvent(e), nil
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.Event, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, e := range f.byID {
		if e.Slug != nil && *e.Slug == slug {
			return cloneEvent(e), nil
		}
	}
	return nil, domain.ErrEventNotFound
}

func (f *fakeEventRepo) GetBySlugForUpdate(ctx context.Context, slug string) (*domain.Event, error) {
	return f.GetBySlug(ctx, slug)
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, cloneEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, patch domain.EventPatch, now time.Time) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Status != domain.EventStatusDraft {
		return nil, domain.ErrEventNotDraft
	}
	if patch.TemplateID != nil {
		e.TemplateID = *patch.TemplateID
	}
	if patch.OwnerEmail != nil {
		e.OwnerEmail = *patch.OwnerEmail
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.HostNames != nil {
		e.HostNames = *patch.HostNames
	}
	if patch.EventDate != nil {
		e.EventDate = patch.EventDate
	}
	if patch.Venue != nil {
		e.Venue = *patch.Venue
	}
	if patch.Message != nil {
		e.Message = *patch.Message
	}
	e.UpdatedAt = now
	return cloneEvent(e), nil
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	for _, e := range f.byID {
		if e.Slug != nil && *e.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEventRepo) Activate(ctx context.Context, id, slug string, activatedAt, expiresAt time.Time) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activateCalls++
	if f.takenOnActivate[slug] {
		return nil, domain.ErrSlugTaken
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if e.Status != domain.EventStatusDraft {
		return nil, domain.ErrEventNotDraft
	}
	e.Status = domain.EventStatusActive
	e.Slug = &slug
	e.ActivatedAt = &activatedAt
	e.ExpiresAt = &expiresAt
	e.UpdatedAt = activatedAt
	return cloneEvent(e), nil
}

func (f *fakeEventRepo) ExpireDue(ctx context.Context, now time.Time, ids []string) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	only := make(map[string]bool, len(ids))
	for _, id := range ids {
		only[id] = true
	}
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if len(ids) > 0 && !only[e.ID] {
			continue
		}
		if e.Status == domain.EventStatusActive && e.ExpiredAt(now) {
			e.Status = domain.EventStatusExpired
			e.UpdatedAt = now
			out = append(out, cloneEvent(e))
		}
	}
	return out, nil
}

func (f *fakeEventRepo) status(id string) domain.EventStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Status
}

// fakeTxManager serialises transactions the way a row lock serialises them in Postgres.
type fakeTxManager struct {
	mu    sync.Mutex
	calls int
}

func (m *fakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return fn(ctx)
}

type fakePaymentRepo struct {
	mu      sync.Mutex
	byEvent map[string]*domain.Payment
	err     error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byEvent: make(map[string]*domain.Payment)}
}

func (f *fakePaymentRepo) GetByEventID(ctx context.Context, eventID string) (*domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byEvent[eventID]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakePaymentRepo) Upsert(ctx context.Context, p *domain.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byEvent[p.EventID]; ok {
		if existing.Completed() {
			return domain.ErrPaymentAlreadyCompleted
		}
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	c := *p
	f.byEvent[p.EventID] = &c
	return nil
}

type fakeGuestRepo struct {
	mu     sync.Mutex
	guests []*domain.Guest
	err    error
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c := *g
	f.guests = append(f.guests, &c)
	return nil
}

func (f *fakeGuestRepo) CountByEvent(ctx context.Context, eventID string, isTest bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, g := range f.guests {
		if g.EventID == eventID && g.IsTest == isTest {
			n++
		}
	}
	return n, nil
}

func (f *fakeGuestRepo) Counts(ctx context.Context, eventID string) (int, int, error) {
	regular, _ := f.CountByEvent(ctx, eventID, false)
	test, _ := f.CountByEvent(ctx, eventID, true)
	return regular, test, nil
}

func (f *fakeGuestRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	all, _ := f.ListAllByEventID(ctx, eventID)
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := total
	if params.Limit() > 0 && start+params.Limit() < total {
		end = start + params.Limit()
	}
	return all[start:end], total, nil
}

func (f *fakeGuestRepo) ListAllByEventID(ctx context.Context, eventID string) ([]*domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Guest, 0)
	for _, g := range f.guests {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.guests)
}

type fakeTemplateRepo struct {
	byID map[string]*domain.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{byID: map[string]*domain.Template{
		"basic-floral":    {ID: "basic-floral", PlanCode: "BASIC", Name: "Floral", PreviewURL: "/static/basic-floral.png"},
		"basic-minimal":   {ID: "basic-minimal", PlanCode: "BASIC", Name: "Minimal", PreviewURL: "/static/basic-minimal.png"},
		"premium-gold":    {ID: "premium-gold", PlanCode: "PREMIUM", Name: "Gold Foil", PreviewURL: "/static/premium-gold.png"},
		"standard-garden": {ID: "standard-garden", PlanCode: "STANDARD", Name: "Garden", PreviewURL: "/static/standard-garden.png"},
	}}
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return t, nil
}

func (f *fakeTemplateRepo) ListByPlan(ctx context.Context, planCode string) ([]*domain.Template, error) {
	out := make([]*domain.Template, 0)
	for _, t := range f.byID {
		if t.PlanCode == planCode {
			out = append(out, t)
		}
	}
	return out, nil
}

type published struct {
	routingKey string
	msg        domain.LifecycleMessage
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := payload.(domain.LifecycleMessage); ok {
		f.msgs = append(f.msgs, published{routingKey: routingKey, msg: msg})
	}
	return f.err
}

func (f *fakePublisher) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.msgs))
	for _, m := range f.msgs {
		out = append(out, m.routingKey)
	}
	return out
}

type fakeEmailService struct {
	mu      sync.Mutex
	live    []*domain.InvitationLiveEmailData
	expired []*domain.InvitationExpiredEmailData
}

func (f *fakeEmailService) SendInvitationLive(ctx context.Context, data *domain.InvitationLiveEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live = append(f.live, data)
	return nil
}

func (f *fakeEmailService) SendInvitationExpired(ctx context.Context, data *domain.InvitationExpiredEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, data)
	return nil
}

type fakePreviewCache struct {
	mu      sync.Mutex
	items   map[string]*domain.PublicInvitation
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func newFakePreviewCache() *fakePreviewCache {
	return &fakePreviewCache{
		items: make(map[string]*domain.PublicInvitation),
		ttls:  make(map[string]time.Duration),
	}
}

func (f *fakePreviewCache) Get(ctx context.Context, slug string) (*domain.PublicInvitation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	inv, ok := f.items[slug]
	return inv, ok, nil
}

func (f *fakePreviewCache) Set(ctx context.Context, inv *domain.PublicInvitation, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[inv.Slug] = inv
	f.ttls[inv.Slug] = ttl
	return nil
}

func (f *fakePreviewCache) Delete(ctx context.Context, slug string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, slug)
	f.deleted = append(f.deleted, slug)
	return nil
}

// testEnv wires every service against the in-memory fakes.
type testEnv struct {
	clock     *clock.Fixed
	events    *fakeEventRepo
	payments  *fakePaymentRepo
	guests    *fakeGuestRepo
	templates *fakeTemplateRepo
	tx        *fakeTxManager
	publisher *fakePublisher
	emails    *fakeEmailService
	cache     *fakePreviewCache
	catalog   domain.PlanCatalog

	eventSvc      domain.EventService
	paymentSvc    domain.PaymentService
	admissionSvc  domain.AdmissionService
	expirySvc     domain.ExpiryService
	invitationSvc domain.InvitationService
}

const testValidity = 120 * time.Hour

func newTestEnv() *testEnv {
	env := &testEnv{
		clock:     clock.NewFixed(testStart),
		events:    newFakeEventRepo(),
		payments:  newFakePaymentRepo(),
		guests:    &fakeGuestRepo{},
		templates: newFakeTemplateRepo(),
		tx:        &fakeTxManager{},
		publisher: &fakePublisher{},
		emails:    &fakeEmailService{},
		cache:     newFakePreviewCache(),
		catalog:   newTestCatalog(),
	}
	notifier := NewNotifier(env.publisher, env.emails, env.cache, "https://invites.example.com/i", env.clock, testLogger)
	slugs := NewSlugAllocator(env.events, nil, testLogger)
	env.expirySvc = NewExpiryService(env.events, notifier, env.clock, testLogger)
	env.eventSvc = NewEventService(env.events, env.payments, env.templates, env.catalog, env.tx, slugs, notifier, env.clock, testValidity, time.Second)
	env.paymentSvc = NewPaymentService(env.events, env.payments, NewPricingEngine(env.catalog), env.tx, notifier, env.clock, time.Second)
	env.admissionSvc = NewAdmissionService(env.events, env.guests, env.templates, env.catalog, env.tx, env.expirySvc, notifier, env.clock, testLogger, time.Second)
	env.invitationSvc = NewInvitationService(env.events, env.templates, env.cache, env.clock, 2*time.Minute, testLogger, time.Second)
	return env
}

// draft stores a DRAFT event owned by owner-1 on the BASIC plan.
func (env *testEnv) draft(id string) *domain.Event {
	e := domain.NewEvent("owner-1", domain.CreateEventInput{
		PlanCode:   "BASIC",
		TemplateID: "basic-floral",
		OwnerEmail: "owner@example.com",
		Title:      "Ana & Ben",
	}, env.clock.Now())
	e.ID = id
	env.events.put(e)
	return e
}

// active stores an ACTIVE event with the given slug expiring after ttl.
func (env *testEnv) active(id, slug string, ttl time.Duration) *domain.Event {
	e := env.draft(id)
	now := env.clock.Now()
	expires := now.Add(ttl)
	e.Status = domain.EventStatusActive
	e.Slug = &slug
	e.ActivatedAt = &now
	e.ExpiresAt = &expires
	env.events.put(e)
	return e
}

func (env *testEnv) paid(eventID string, status domain.PaymentStatus) {
	env.payments.byEvent[eventID] = &domain.Payment{
		ID: "pay-" + eventID, EventID: eventID, Status: status, Method: domain.PaymentMethodCard,
	}
}
