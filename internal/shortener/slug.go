package shortener

import (
	"context"
	"errors"

	"github.com/gosimple/slug"
)

// SlugProcessor normalizes user-supplied aliases into URL-safe slugs and
// pre-checks that the slug is not already taken as a code.
//
// The pre-check is a fast path only: it races with concurrent requests for
// the same slug, and the store's unique constraint on short_code is the
// actual guarantee. The service maps a commit-time constraint violation to
// the same NonUniqueSlugError.
type SlugProcessor struct {
	repo Repository
}

// NewSlugProcessor creates a slug processor backed by the given repository.
func NewSlugProcessor(repo Repository) *SlugProcessor {
	return &SlugProcessor{repo: repo}
}

// Process returns the normalized slug for a requested alias, or an empty
// code when no alias was requested (the auto-generated path applies then).
// An alias that normalizes to nothing fails with InvalidSlugError rather
// than silently falling through to a derived code; a slug that already
// maps to a code fails with NonUniqueSlugError.
func (p *SlugProcessor) Process(ctx context.Context, rawSlug string) (Code, error) {
	if rawSlug == "" {
		return "", nil
	}

	normalized := slug.Make(rawSlug)
	if normalized == "" {
		return "", &InvalidSlugError{Slug: rawSlug}
	}

	_, err := p.repo.FindByCode(ctx, Code(normalized))
	if err == nil {
		return "", &NonUniqueSlugError{Slug: normalized}
	}

	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	return Code(normalized), nil
}
