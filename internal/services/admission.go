package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

const (
	maxGuestNameRunes  = 100
	maxUserAgentLength = 512
)

type admissionService struct {
	eventRepo      domain.EventRepository
	guestRepo      domain.GuestRepository
	templateRepo   domain.TemplateRepository
	catalog        domain.PlanCatalog
	txManager      domain.TxManager
	expiry         domain.ExpiryService
	notifier       *Notifier
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewAdmissionService(eventRepo domain.EventRepository,
	guestRepo domain.GuestRepository,
	templateRepo domain.TemplateRepository,
	catalog domain.PlanCatalog,
	txManager domain.TxManager,
	expiry domain.ExpiryService,
	notifier *Notifier,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AdmissionService {
	return &admissionService{
		eventRepo:      eventRepo,
		guestRepo:      guestRepo,
		templateRepo:   templateRepo,
		catalog:        catalog,
		txManager:      txManager,
		expiry:         expiry,
		notifier:       notifier,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

// Admit holds the event row lock from the status check until the guest row is written,
// so concurrent admissions against the last free slot cannot both pass the capacity check.
func (s *admissionService) Admit(ctx context.Context, in domain.AdmitInput) (*domain.Admission, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name := strings.TrimSpace(in.GuestName)
	if name == "" {
		return nil, domain.Validationf("guest name is required")
	}
	if utf8.RuneCountInString(name) > maxGuestNameRunes {
		return nil, domain.Validationf("guest name must be at most %d characters", maxGuestNameRunes)
	}

	var (
		admission *domain.Admission
		dueID     string
	)
	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetBySlugForUpdate(ctx, in.Slug)
		if err != nil {
			return wrapStorage("lock event", err)
		}
		if event.Status != domain.EventStatusActive {
			return fmt.Errorf("%w: status is %s", domain.ErrInactiveInvitation, event.Status)
		}
		now := s.clock.Now()
		if event.ExpiredAt(now) {
			dueID = event.ID
			return domain.ErrInvitationExpired
		}

		plan, err := s.catalog.Plan(event.PlanCode)
		if err != nil {
			return fmt.Errorf("plan for event %s: %w", event.ID, err)
		}
		current, err := s.guestRepo.CountByEvent(ctx, event.ID, in.IsTest)
		if err != nil {
			return err
		}
		if current >= plan.MaxGuests(in.IsTest) {
			return domain.ErrCapacityExceeded
		}

		guest := &domain.Guest{
			ID:        uuid.NewString(),
			EventID:   event.ID,
			Name:      name,
			IsTest:    in.IsTest,
			IPAddress: in.IP,
			UserAgent: truncateUTF8(in.UserAgent, maxUserAgentLength),
			CreatedAt: now,
		}
		if err := s.guestRepo.Create(ctx, guest); err != nil {
			return fmt.Errorf("create guest: %w", err)
		}
		tpl, err := s.templateRepo.GetByID(ctx, event.TemplateID)
		if err != nil {
			return fmt.Errorf("get template: %w", err)
		}
		admission = &domain.Admission{Guest: guest, Event: event, Template: tpl}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvitationExpired) && dueID != "" {
			// Runs after the admission transaction rolled back; the sweeper would reach the same result.
			if _, expErr := s.expiry.ExpireIfDue(ctx, dueID); expErr != nil {
				s.logger.WarnContext(ctx, "lazy expiry failed", "event_id", dueID, "err", expErr)
			}
		}
		return nil, err
	}

	s.notifier.guestAdmitted(ctx, admission.Event, admission.Guest)
	return admission, nil
}

func (s *admissionService) Stats(ctx context.Context, eventID, ownerID string) (*domain.GuestStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	plan, err := s.catalog.Plan(event.PlanCode)
	if err != nil {
		return nil, fmt.Errorf("plan for event %s: %w", event.ID, err)
	}
	regular, test, err := s.guestRepo.Counts(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &domain.GuestStats{
		Regular: domain.NewCapacityCounter(regular, plan.MaxRegularGuests),
		Test:    domain.NewCapacityCounter(test, plan.MaxTestGuests),
		Total:   regular + test,
	}, nil
}

func (s *admissionService) ListGuests(ctx context.Context, eventID, ownerID string, params domain.PaginationParams) ([]*domain.Guest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return nil, 0, err
	}
	guests, total, err := s.guestRepo.ListByEventID(ctx, eventID, params)
	if err != nil {
		return nil, 0, err
	}
	if guests == nil {
		guests = []*domain.Guest{}
	}
	return guests, total, nil
}

func (s *admissionService) ExportGuestsCSV(ctx context.Context, eventID, ownerID string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := loadOwnedEvent(ctx, s.eventRepo, eventID, ownerID); err != nil {
		return err
	}
	guests, err := s.guestRepo.ListAllByEventID(ctx, eventID)
	if err != nil {
		return err
	}
	return writeGuestsCSV(w, guests)
}
