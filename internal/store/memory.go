package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/nmarks/kurz/internal/shortener"
)

// MemoryRepository is an in-memory shortener.Repository for tests and
// dependency-free runs. Transactions stage their writes and publish them
// on Commit; code uniqueness is re-checked at commit time, mirroring the
// database constraint.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[shortener.Code]*shortener.ShortURL
	byURL  map[string]*shortener.ShortURL
}

// NewMemoryRepository creates a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		nextID: 1,
		byCode: make(map[shortener.Code]*shortener.ShortURL),
		byURL:  make(map[string]*shortener.ShortURL),
	}
}

func (m *MemoryRepository) FindByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if shortURL, ok := m.byCode[code]; ok {
		copied := *shortURL

		return &copied, nil
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryRepository) FindByOriginalURL(_ context.Context, originalURL string) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if shortURL, ok := m.byURL[originalURL]; ok {
		copied := *shortURL

		return &copied, nil
	}

	return nil, shortener.ErrNotFound
}

func (m *MemoryRepository) Begin(_ context.Context) (shortener.Tx, error) {
	return &memoryTx{repo: m}, nil
}

type memoryTx struct {
	repo   *MemoryRepository
	staged *shortener.ShortURL
	done   bool
}

func (t *memoryTx) CreateDraft(_ context.Context, shortURL *shortener.ShortURL) error {
	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	shortURL.ID = t.repo.nextID
	t.repo.nextID++

	copied := *shortURL
	t.staged = &copied

	return nil
}

func (t *memoryTx) AssignCode(_ context.Context, shortURL *shortener.ShortURL) error {
	if t.staged == nil || t.staged.ID != shortURL.ID {
		return fmt.Errorf("no draft staged for id %d", shortURL.ID)
	}

	t.repo.mu.RLock()
	_, taken := t.repo.byCode[shortURL.Code]
	t.repo.mu.RUnlock()

	if taken {
		return fmt.Errorf("code %q: %w", shortURL.Code, shortener.ErrCodeTaken)
	}

	copied := *shortURL
	t.staged = &copied

	return nil
}

func (t *memoryTx) Commit(_ context.Context) error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}

	t.done = true

	t.repo.mu.Lock()
	defer t.repo.mu.Unlock()

	// The constraint is enforced again here: a racing transaction may have
	// committed the same code after our AssignCode check.
	if _, taken := t.repo.byCode[t.staged.Code]; taken {
		return fmt.Errorf("code %q: %w", t.staged.Code, shortener.ErrCodeTaken)
	}

	t.repo.byCode[t.staged.Code] = t.staged
	t.repo.byURL[t.staged.OriginalURL] = t.staged

	return nil
}

func (t *memoryTx) Rollback(_ context.Context) error {
	t.done = true
	t.staged = nil

	return nil
}
