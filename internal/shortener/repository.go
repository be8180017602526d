package shortener

import "context"

// Repository is the transactional store behind the shortener. Lookups run
// outside any transaction; creation happens on an explicit Tx so the
// two-phase write (draft insert, then code assignment) commits or rolls
// back as a unit.
//
// Find methods return ErrNotFound when no row matches.
type Repository interface {
	FindByCode(ctx context.Context, code Code) (*ShortURL, error)
	FindByOriginalURL(ctx context.Context, originalURL string) (*ShortURL, error)
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one creation transaction.
//
// CreateDraft inserts the row without a code and sets ShortURL.ID.
// AssignCode persists the code and links the tags; it (or Commit, when the
// store defers constraint checks) returns an error wrapping ErrCodeTaken
// if the code is already assigned to another row.
type Tx interface {
	CreateDraft(ctx context.Context, shortURL *ShortURL) error
	AssignCode(ctx context.Context, shortURL *ShortURL) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
