package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvites/internal/domain"
)

func TestExpiryService_Sweep(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.active("ev-1", "aaaaaaaaaaa1", time.Hour)
	env.active("ev-2", "aaaaaaaaaaa2", 3*time.Hour)
	env.draft("ev-3")

	n, err := env.expirySvc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "nothing is due yet")

	env.clock.Advance(2 * time.Hour)
	n, err = env.expirySvc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.EventStatusExpired, env.events.status("ev-1"))
	assert.Equal(t, domain.EventStatusActive, env.events.status("ev-2"))
	assert.Equal(t, domain.EventStatusDraft, env.events.status("ev-3"))

	n, err = env.expirySvc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "sweep is idempotent")

	assert.Equal(t, []string{domain.RoutingKeyInvitationExpired}, env.publisher.keys())
	require.Len(t, env.emails.expired, 1)
	assert.Equal(t, "owner@example.com", env.emails.expired[0].Email)
	assert.Contains(t, env.cache.deleted, "aaaaaaaaaaa1")
}

func TestExpiryService_ExpireIfDue(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.active("ev-1", "aaaaaaaaaaa1", time.Hour)
	env.active("ev-2", "aaaaaaaaaaa2", time.Hour)

	expired, err := env.expirySvc.ExpireIfDue(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, expired)

	env.clock.Advance(time.Hour)
	expired, err = env.expirySvc.ExpireIfDue(ctx, "ev-1")
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, domain.EventStatusActive, env.events.status("ev-2"), "scoped to one event")

	expired, err = env.expirySvc.ExpireIfDue(ctx, "ev-1")
	require.NoError(t, err)
	assert.False(t, expired)

	// The sweeper agrees with lazy expiry and only picks up the other event.
	n, err := env.expirySvc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExpiryService_StorageError(t *testing.T) {
	env := newTestEnv()
	env.events.err = errors.New("db down")

	_, err := env.expirySvc.Sweep(context.Background())
	require.ErrorIs(t, err, env.events.err)
	_, err = env.expirySvc.ExpireIfDue(context.Background(), "ev-1")
	require.ErrorIs(t, err, env.events.err)
}
