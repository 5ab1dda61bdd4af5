package domain

import (
	"context"
	"time"
)

// PublicInvitation is what an unauthenticated visitor sees before admission.
// It deliberately omits host and venue details.
// swagger:model PublicInvitation
type PublicInvitation struct {
	Slug               string      `json:"slug"`
	Status             EventStatus `json:"status"`
	ExpiresAt          *time.Time  `json:"expires_at"`
	TemplateName       string      `json:"template_name"`
	TemplatePreviewURL string      `json:"template_preview_url"`
}

// PreviewCache caches public invitations by slug.
type PreviewCache interface {
	Get(ctx context.Context, slug string) (*PublicInvitation, bool, error)
	Set(ctx context.Context, inv *PublicInvitation, ttl time.Duration) error
	Delete(ctx context.Context, slug string) error
}

// InvitationService serves the public read surface.
type InvitationService interface {
	GetPublicInvitation(ctx context.Context, slug string) (*PublicInvitation, error)
}
