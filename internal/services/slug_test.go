package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventinvites/internal/domain"
)

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestSlugAllocator_Allocate(t *testing.T) {
	env := newTestEnv()
	a := NewSlugAllocator(env.events, nil, testLogger)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		slug, err := a.Allocate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, `^[a-z0-9]{12}$`, slug)
		seen[slug] = true
	}
	assert.Len(t, seen, 100)
}

func TestSlugAllocator_DegenerateSourceExhausts(t *testing.T) {
	env := newTestEnv()
	env.active("ev-1", "aaaaaaaaaaaa", 0)
	a := NewSlugAllocator(env.events, zeroReader{}, testLogger)

	_, err := a.Allocate(context.Background())
	require.ErrorIs(t, err, domain.ErrAllocationExhausted)
	assert.Equal(t, domain.KindAllocationExhausted, domain.KindOf(err))
}

func TestSlugAllocator_AllocateWith(t *testing.T) {
	ctx := context.Background()

	t.Run("retries lost claims", func(t *testing.T) {
		a := NewSlugAllocator(newFakeEventRepo(), nil, testLogger)
		claims := 0
		err := a.AllocateWith(ctx, func(ctx context.Context, slug string) error {
			claims++
			if claims < 3 {
				return domain.ErrSlugTaken
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, claims)
	})

	t.Run("other claim errors stop allocation", func(t *testing.T) {
		a := NewSlugAllocator(newFakeEventRepo(), nil, testLogger)
		boom := errors.New("boom")
		claims := 0
		err := a.AllocateWith(ctx, func(ctx context.Context, slug string) error {
			claims++
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, claims)
	})

	t.Run("storage error", func(t *testing.T) {
		repo := newFakeEventRepo()
		repo.err = errors.New("db down")
		a := NewSlugAllocator(repo, nil, testLogger)
		err := a.AllocateWith(ctx, func(ctx context.Context, slug string) error { return nil })
		require.ErrorIs(t, err, repo.err)
	})
}
