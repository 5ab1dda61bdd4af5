package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

type invitationService struct {
	eventRepo      domain.EventRepository
	templateRepo   domain.TemplateRepository
	cache          domain.PreviewCache
	clock          clock.Clock
	cacheTTL       time.Duration
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewInvitationService(eventRepo domain.EventRepository,
	templateRepo domain.TemplateRepository,
	cache domain.PreviewCache,
	clk clock.Clock,
	cacheTTL time.Duration,
	logger *slog.Logger,
	timeout time.Duration,
) domain.InvitationService {
	return &invitationService{
		eventRepo:      eventRepo,
		templateRepo:   templateRepo,
		cache:          cache,
		clock:          clk,
		cacheTTL:       cacheTTL,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// GetPublicInvitation never reveals drafts. An ACTIVE event past its expiry is reported as EXPIRED
// even before the sweeper has run.
func (s *invitationService) GetPublicInvitation(ctx context.Context, slug string) (*domain.PublicInvitation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, domain.ErrEventNotFound
	}

	cached, ok, err := s.cache.Get(ctx, slug)
	if err != nil {
		s.logger.WarnContext(ctx, "preview cache read", "slug", slug, "err", err)
	}
	if ok {
		return cached, nil
	}

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapStorage("get event", err)
	}
	if event.Status == domain.EventStatusDraft {
		return nil, domain.ErrEventNotFound
	}
	tpl, err := s.templateRepo.GetByID(ctx, event.TemplateID)
	if err != nil {
		return nil, wrapStorage("get template", err)
	}

	now := s.clock.Now()
	inv := &domain.PublicInvitation{
		Slug:               event.SlugValue(),
		Status:             event.Status,
		ExpiresAt:          event.ExpiresAt,
		TemplateName:       tpl.Name,
		TemplatePreviewURL: tpl.PreviewURL,
	}
	if event.Status == domain.EventStatusActive && event.ExpiredAt(now) {
		inv.Status = domain.EventStatusExpired
	}

	ttl := s.cacheTTL
	if inv.Status == domain.EventStatusActive && event.ExpiresAt != nil {
		if untilExpiry := event.ExpiresAt.Sub(now); untilExpiry < ttl {
			ttl = untilExpiry
		}
	}
	if ttl > 0 {
		if err := s.cache.Set(ctx, inv, ttl); err != nil {
			s.logger.WarnContext(ctx, "preview cache write", "slug", slug, "err", err)
		}
	}
	return inv, nil
}
