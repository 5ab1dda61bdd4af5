package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"eventinvites/internal/domain"
)

const (
	slugLength      = 12
	slugMaxAttempts = 10
)

var slugAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// SlugAllocator hands out globally unique public slugs.
type SlugAllocator struct {
	events domain.EventRepository
	random io.Reader
	logger *slog.Logger
}

// NewSlugAllocator returns an allocator reading from random, or crypto/rand when random is nil.
func NewSlugAllocator(events domain.EventRepository, random io.Reader, logger *slog.Logger) *SlugAllocator {
	if random == nil {
		random = rand.Reader
	}
	return &SlugAllocator{events: events, random: random, logger: logger}
}

func (a *SlugAllocator) generate() (string, error) {
	b := make([]rune, slugLength)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := 0; i < slugLength; i++ {
		n, err := rand.Int(a.random, max)
		if err != nil {
			return "", err
		}
		b[i] = slugAlphabet[n.Int64()]
	}
	return string(b), nil
}

// Allocate returns a slug no event currently uses.
func (a *SlugAllocator) Allocate(ctx context.Context) (string, error) {
	var slug string
	err := a.AllocateWith(ctx, func(ctx context.Context, candidate string) error {
		slug = candidate
		return nil
	})
	return slug, err
}

// AllocateWith offers unused candidates to claim until one is accepted.
// claim reports a lost race with domain.ErrSlugTaken; any other error stops allocation.
func (a *SlugAllocator) AllocateWith(ctx context.Context, claim func(ctx context.Context, slug string) error) error {
	for attempt := 1; attempt <= slugMaxAttempts; attempt++ {
		slug, err := a.generate()
		if err != nil {
			return fmt.Errorf("generate slug: %w", err)
		}
		exists, err := a.events.SlugExists(ctx, slug)
		if err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if exists {
			continue
		}
		err = claim(ctx, slug)
		if errors.Is(err, domain.ErrSlugTaken) {
			continue
		}
		return err
	}
	a.logger.ErrorContext(ctx, "slug allocation exhausted", "attempts", slugMaxAttempts)
	return domain.ErrAllocationExhausted
}
