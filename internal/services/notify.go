package services

import (
	"context"
	"log/slog"
	"strings"

	"eventinvites/internal/clock"
	"eventinvites/internal/domain"
)

// Notifier fans lifecycle changes out to the broker, owner e-mail and the preview cache.
// Every side effect runs after the state change is committed and failures are only logged.
type Notifier struct {
	publisher     domain.EventPublisher
	emails        domain.EmailService
	cache         domain.PreviewCache
	publicBaseURL string
	clock         clock.Clock
	logger        *slog.Logger
}

func NewNotifier(publisher domain.EventPublisher, emails domain.EmailService, cache domain.PreviewCache, publicBaseURL string, clk clock.Clock, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher:     publisher,
		emails:        emails,
		cache:         cache,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		clock:         clk,
		logger:        logger,
	}
}

// InvitationURL is the public link guests open.
func (n *Notifier) InvitationURL(slug string) string {
	return n.publicBaseURL + "/" + slug
}

func (n *Notifier) publish(ctx context.Context, routingKey string, msg domain.LifecycleMessage) {
	msg.OccurredAt = n.clock.Now()
	if err := n.publisher.Publish(ctx, routingKey, msg); err != nil {
		n.logger.WarnContext(ctx, "publish lifecycle message", "routing_key", routingKey, "event_id", msg.EventID, "err", err)
	}
}

func (n *Notifier) forget(ctx context.Context, slug string) {
	if slug == "" {
		return
	}
	if err := n.cache.Delete(ctx, slug); err != nil {
		n.logger.WarnContext(ctx, "invalidate preview cache", "slug", slug, "err", err)
	}
}

func (n *Notifier) paymentRecorded(ctx context.Context, event *domain.Event, p *domain.Payment) {
	key := domain.RoutingKeyPaymentFailed
	if p.Completed() {
		key = domain.RoutingKeyPaymentCompleted
	}
	n.publish(ctx, key, domain.LifecycleMessage{
		EventID:   event.ID,
		OwnerID:   event.OwnerID,
		Status:    event.Status,
		PaymentID: p.ID,
	})
}

func (n *Notifier) activated(ctx context.Context, event *domain.Event) {
	n.publish(ctx, domain.RoutingKeyInvitationActivated, domain.LifecycleMessage{
		EventID: event.ID,
		OwnerID: event.OwnerID,
		Status:  event.Status,
		Slug:    event.SlugValue(),
	})
	n.forget(ctx, event.SlugValue())
	if event.OwnerEmail == "" || event.ExpiresAt == nil {
		return
	}
	err := n.emails.SendInvitationLive(ctx, &domain.InvitationLiveEmailData{
		Email:         event.OwnerEmail,
		EventTitle:    event.Title,
		InvitationURL: n.InvitationURL(event.SlugValue()),
		ExpiresAt:     *event.ExpiresAt,
	})
	if err != nil {
		n.logger.WarnContext(ctx, "send invitation live email", "event_id", event.ID, "err", err)
	}
}

func (n *Notifier) expired(ctx context.Context, events []*domain.Event) {
	for _, event := range events {
		n.publish(ctx, domain.RoutingKeyInvitationExpired, domain.LifecycleMessage{
			EventID: event.ID,
			OwnerID: event.OwnerID,
			Status:  event.Status,
			Slug:    event.SlugValue(),
		})
		n.forget(ctx, event.SlugValue())
		if event.OwnerEmail == "" {
			continue
		}
		err := n.emails.SendInvitationExpired(ctx, &domain.InvitationExpiredEmailData{
			Email:      event.OwnerEmail,
			EventTitle: event.Title,
		})
		if err != nil {
			n.logger.WarnContext(ctx, "send invitation expired email", "event_id", event.ID, "err", err)
		}
	}
}

func (n *Notifier) guestAdmitted(ctx context.Context, event *domain.Event, guest *domain.Guest) {
	n.publish(ctx, domain.RoutingKeyGuestAdmitted, domain.LifecycleMessage{
		EventID: event.ID,
		OwnerID: event.OwnerID,
		Status:  event.Status,
		Slug:    event.SlugValue(),
		GuestID: guest.ID,
		IsTest:  guest.IsTest,
	})
}
