package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

type expiryService struct {
	eventRepo domain.EventRepository
	notifier  *Notifier
	clock     clock.Clock
	logger    *slog.Logger
}

// NewExpiryService returns the single owner of the ACTIVE to EXPIRED transition.
// The sweeper and lazy expiry on admission both go through EventRepository.ExpireDue.
func NewExpiryService(eventRepo domain.EventRepository, notifier *Notifier, clk clock.Clock, logger *slog.Logger) domain.ExpiryService {
	return &expiryService{
		eventRepo: eventRepo,
		notifier:  notifier,
		clock:     clk,
		logger:    logger,
	}
}

func (s *expiryService) ExpireIfDue(ctx context.Context, eventID string) (bool, error) {
	expired, err := s.eventRepo.ExpireDue(ctx, s.clock.Now(), []string{eventID})
	if err != nil {
		return false, fmt.Errorf("expire event: %w", err)
	}
	s.notifier.expired(ctx, expired)
	return len(expired) > 0, nil
}

func (s *expiryService) Sweep(ctx context.Context) (int, error) {
	expired, err := s.eventRepo.ExpireDue(ctx, s.clock.Now(), nil)
	if err != nil {
		return 0, fmt.Errorf("sweep expired events: %w", err)
	}
	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "expired invitations", "count", len(expired))
	}
	s.notifier.expired(ctx, expired)
	return len(expired), nil
}
