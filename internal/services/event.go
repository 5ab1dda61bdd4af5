package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	paymentRepo    domain.PaymentRepository
	templateRepo   domain.TemplateRepository
	catalog        domain.PlanCatalog
	txManager      domain.TxManager
	slugs          *SlugAllocator
	notifier       *Notifier
	clock          clock.Clock
	validity       time.Duration
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	paymentRepo domain.PaymentRepository,
	templateRepo domain.TemplateRepository,
	catalog domain.PlanCatalog,
	txManager domain.TxManager,
	slugs *SlugAllocator,
	notifier *Notifier,
	clk clock.Clock,
	validity time.Duration,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		paymentRepo:    paymentRepo,
		templateRepo:   templateRepo,
		catalog:        catalog,
		txManager:      txManager,
		slugs:          slugs,
		notifier:       notifier,
		clock:          clk,
		validity:       validity,
		contextTimeout: timeout,
	}
}

// wrapStorage keeps domain errors intact so callers can classify them, and annotates the rest.
func wrapStorage(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// loadOwnedEvent returns the event if ownerID owns it.
func loadOwnedEvent(ctx context.Context, repo domain.EventRepository, eventID, ownerID string) (*domain.Event, error) {
	event, err := repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, wrapStorage("get event", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

// checkTemplate ensures templateID exists and belongs to planCode.
func (s *eventService) checkTemplate(ctx context.Context, templateID, planCode string) error {
	tpl, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Validationf("unknown template %q", templateID)
		}
		return fmt.Errorf("get template: %w", err)
	}
	if tpl.PlanCode != planCode {
		return domain.ErrTemplatePlanMismatch
	}
	return nil
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID string, in domain.CreateEventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, domain.ErrForbidden
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, domain.Validationf("title is required")
	}
	plan, err := s.catalog.Plan(in.PlanCode)
	if err != nil {
		return nil, domain.Validationf("unknown plan %q", in.PlanCode)
	}
	in.PlanCode = plan.Code
	if err := s.checkTemplate(ctx, in.TemplateID, plan.Code); err != nil {
		return nil, err
	}

	event := domain.NewEvent(ownerID, in, s.clock.Now())
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusDraft {
		return nil, domain.ErrEventNotDraft
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, domain.Validationf("title must not be empty")
		}
		patch.Title = &title
	}
	if patch.TemplateID != nil && *patch.TemplateID != event.TemplateID {
		if err := s.checkTemplate(ctx, *patch.TemplateID, event.PlanCode); err != nil {
			return nil, err
		}
	}
	if patch.IsEmpty() {
		return event, nil
	}

	// The repository re-checks DRAFT in the same statement, so a concurrent activation wins cleanly.
	updated, err := s.eventRepo.Update(ctx, eventID, patch, s.clock.Now())
	if err != nil {
		return nil, wrapStorage("update event", err)
	}
	return updated, nil
}

// ActivateEvent checks, in order: existence, ownership, DRAFT status and a completed payment.
// The slug is assigned by the same statement that flips the status.
func (s *eventService) ActivateEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var activated *domain.Event
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, eventID)
		if err != nil {
			return wrapStorage("lock event", err)
		}
		if event.OwnerID != ownerID {
			return domain.ErrForbidden
		}
		if event.Status != domain.EventStatusDraft {
			return domain.ErrEventNotDraft
		}

		payment, err := s.paymentRepo.GetByEventID(ctx, eventID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get payment: %w", err)
		}
		if !payment.Completed() {
			return domain.ErrPaymentRequired
		}

		now := s.clock.Now()
		expiresAt := now.Add(s.validity)
		return s.slugs.AllocateWith(ctx, func(ctx context.Context, slug string) error {
			e, err := s.eventRepo.Activate(ctx, eventID, slug, now, expiresAt)
			if err != nil {
				return err
			}
			activated = e
			return nil
		})
	})
	if err != nil {
		return nil, wrapStorage("activate event", err)
	}

	s.notifier.activated(ctx, activated)
	return activated, nil
}
