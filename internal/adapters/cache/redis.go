package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"eventinvites/internal/domain"
)

const previewKeyPrefix = "invitation:preview:"

func previewKey(slug string) string {
	return previewKeyPrefix + slug
}

// PreviewCache stores public invitations in Redis as JSON.
type PreviewCache struct {
	client rueidis.Client
}

// NewClient connects to a single Redis address.
func NewClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("redis connect: %w", err)
	}
	return client, nil
}

func NewPreviewCache(client rueidis.Client) *PreviewCache {
	return &PreviewCache{client: client}
}

func (c *PreviewCache) Get(ctx context.Context, slug string) (*domain.PublicInvitation, bool, error) {
	raw, err := c.client.Do(ctx, c.client.B().Get().Key(previewKey(slug)).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	inv, err := decodePreview(raw)
	if err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// Set is a no-op for ttl <= 0.
func (c *PreviewCache) Set(ctx context.Context, inv *domain.PublicInvitation, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	cmd := c.client.B().Set().Key(previewKey(inv.Slug)).Value(rueidis.BinaryString(raw)).Px(ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *PreviewCache) Delete(ctx context.Context, slug string) error {
	if err := c.client.Do(ctx, c.client.B().Del().Key(previewKey(slug)).Build()).Error(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func decodePreview(raw []byte) (*domain.PublicInvitation, error) {
	var inv domain.PublicInvitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &inv, nil
}

// NoopCache never stores anything. Used when REDIS_ADDR is empty.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*domain.PublicInvitation, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, *domain.PublicInvitation, time.Duration) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }

var (
	_ domain.PreviewCache = (*PreviewCache)(nil)
	_ domain.PreviewCache = NoopCache{}
)
