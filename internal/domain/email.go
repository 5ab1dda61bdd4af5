package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InvitationLiveEmailData holds data for the "invitation is live" email.
type InvitationLiveEmailData struct {
	Email         string
	EventTitle    string
	InvitationURL string
	ExpiresAt     time.Time
}

// InvitationExpiredEmailData holds data for the "invitation expired" email.
type InvitationExpiredEmailData struct {
	Email      string
	EventTitle string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendInvitationLive(ctx context.Context, data *InvitationLiveEmailData) error
	SendInvitationExpired(ctx context.Context, data *InvitationExpiredEmailData) error
}
