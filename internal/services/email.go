package services

import (
	"context"
	"fmt"
	"log/slog"

	"eventinvites/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

// SendInvitationLive tells the owner the invitation link is live, using the "invitation_live" template.
func (s *emailService) SendInvitationLive(ctx context.Context, data *domain.InvitationLiveEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation live data is nil")
	}
	return s.send(ctx, "invitation_live", data.Email, data)
}

// SendInvitationExpired tells the owner the invitation stopped admitting guests.
func (s *emailService) SendInvitationExpired(ctx context.Context, data *domain.InvitationExpiredEmailData) error {
	if data == nil {
		return fmt.Errorf("invitation expired data is nil")
	}
	return s.send(ctx, "invitation_expired", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", template, err)
	}
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", template, err)
	}
	s.logger.InfoContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
