package shortener

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ShortenRequest carries the inputs of a single shortening call.
type ShortenRequest struct {
	OriginalURL string
	Tags        []string
	ValidSince  *time.Time
	ValidUntil  *time.Time
	CustomSlug  string
	MaxVisits   *int
}

// Shortener maps URLs to short codes. Codes are either a validated custom
// slug or derived from the store-assigned row id, which makes the default
// path collision-free by construction.
type Shortener struct {
	repo     Repository
	alphabet *Alphabet
	slugs    *SlugProcessor
	checker  Checker
	logger   *zap.Logger
}

// NewShortener creates the shortening service. A nil checker disables the
// URL reachability validation.
func NewShortener(
	repo Repository,
	alphabet *Alphabet,
	slugs *SlugProcessor,
	checker Checker,
	logger *zap.Logger,
) *Shortener {
	return &Shortener{
		repo:     repo,
		alphabet: alphabet,
		slugs:    slugs,
		checker:  checker,
		logger:   logger,
	}
}

// Shorten returns the short code for the given URL, creating the mapping
// when none exists. Shortening the same URL twice returns the existing
// code without touching the store again.
//
// Failure kinds: *InvalidURLError when the reachability check fails,
// *InvalidSlugError when a requested alias normalizes to nothing,
// *NonUniqueSlugError when the requested slug is taken, *RuntimeError for
// anything that goes wrong inside the creation transaction (always after a
// completed rollback).
func (s *Shortener) Shorten(ctx context.Context, req ShortenRequest) (Code, error) {
	existing, err := s.repo.FindByOriginalURL(ctx, req.OriginalURL)
	if err == nil {
		return existing.Code, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return "", &RuntimeError{Cause: err}
	}

	if s.checker != nil {
		if err := s.checker.Check(ctx, req.OriginalURL); err != nil {
			return "", &InvalidURLError{URL: req.OriginalURL, Cause: err}
		}
	}

	slugCode, err := s.slugs.Process(ctx, req.CustomSlug)
	if err != nil {
		return "", err
	}

	return s.create(ctx, req, slugCode)
}

// create runs the two-phase persist: insert a draft row to obtain the id,
// derive the code (custom slug or encoded id), assign it, commit. The id
// must exist before the code can be computed, so the ordering is inherent,
// not incidental.
func (s *Shortener) create(ctx context.Context, req ShortenRequest, slugCode Code) (Code, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return "", &RuntimeError{Cause: err}
	}

	shortURL := &ShortURL{
		OriginalURL: req.OriginalURL,
		ValidSince:  req.ValidSince,
		ValidUntil:  req.ValidUntil,
		MaxVisits:   req.MaxVisits,
		Tags:        req.Tags,
		CreatedAt:   time.Now().UTC(),
	}

	if err := tx.CreateDraft(ctx, shortURL); err != nil {
		return "", s.abort(ctx, tx, shortURL, err)
	}

	shortURL.Code = slugCode
	if shortURL.Code == "" {
		shortURL.Code = s.alphabet.Encode(uint64(shortURL.ID))
	}

	if err := tx.AssignCode(ctx, shortURL); err != nil {
		return "", s.abort(ctx, tx, shortURL, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", s.abort(ctx, tx, shortURL, err)
	}

	s.logger.Info("short url created",
		zap.String("code", string(shortURL.Code)),
		zap.String("originalUrl", shortURL.OriginalURL),
		zap.Bool("customSlug", slugCode != ""),
	)

	return shortURL.Code, nil
}

// abort rolls the transaction back and translates the cause. A uniqueness
// violation on the code surfaces exactly like the slug pre-check failure;
// everything else becomes a RuntimeError.
func (s *Shortener) abort(ctx context.Context, tx Tx, shortURL *ShortURL, cause error) error {
	if rbErr := tx.Rollback(ctx); rbErr != nil {
		s.logger.Error("rollback failed",
			zap.String("originalUrl", shortURL.OriginalURL),
			zap.Error(rbErr),
		)
	}

	if errors.Is(cause, ErrCodeTaken) {
		return &NonUniqueSlugError{Slug: string(shortURL.Code)}
	}

	return &RuntimeError{Cause: cause}
}

// Resolver validates short code format and resolves codes to their
// ShortURL records.
type Resolver struct {
	repo     Repository
	alphabet *Alphabet
}

// NewResolver creates a resolver over the given repository and alphabet.
func NewResolver(repo Repository, alphabet *Alphabet) *Resolver {
	return &Resolver{repo: repo, alphabet: alphabet}
}

// Resolve returns the ShortURL mapped to the code. A code containing any
// character outside the alphabet fails with *InvalidShortCodeError before
// the store is consulted; a well-formed code with no mapping fails with
// *NotFoundError.
func (r *Resolver) Resolve(ctx context.Context, code Code) (*ShortURL, error) {
	if !r.alphabet.Contains(code) {
		return nil, &InvalidShortCodeError{Code: code, Alphabet: r.alphabet.String()}
	}

	shortURL, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Entity: "short url", Key: string(code)}
		}

		return nil, err
	}

	return shortURL, nil
}
