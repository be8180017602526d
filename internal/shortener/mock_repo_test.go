package shortener_test

import (
	"context"
	"errors"

	"github.com/nmarks/kurz/internal/shortener"
)

var errMock = errors.New("mock error")

// mockRepo is a configurable test double for shortener.Repository.
type mockRepo struct {
	byCode map[shortener.Code]*shortener.ShortURL
	byURL  map[string]*shortener.ShortURL

	findByCodeErr error
	findByURLErr  error
	beginErr      error

	findByCodeCalls int
	tx              *mockTx
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byCode: make(map[shortener.Code]*shortener.ShortURL),
		byURL:  make(map[string]*shortener.ShortURL),
	}
}

func (m *mockRepo) FindByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.findByCodeCalls++

	if m.findByCodeErr != nil {
		return nil, m.findByCodeErr
	}

	if su, ok := m.byCode[code]; ok {
		return su, nil
	}

	return nil, shortener.ErrNotFound
}

func (m *mockRepo) FindByOriginalURL(_ context.Context, originalURL string) (*shortener.ShortURL, error) {
	if m.findByURLErr != nil {
		return nil, m.findByURLErr
	}

	if su, ok := m.byURL[originalURL]; ok {
		return su, nil
	}

	return nil, shortener.ErrNotFound
}

func (m *mockRepo) Begin(_ context.Context) (shortener.Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}

	if m.tx == nil {
		m.tx = &mockTx{repo: m, nextID: 1}
	}

	return m.tx, nil
}

// mockTx stages writes and publishes them to the repo maps on Commit.
type mockTx struct {
	repo   *mockRepo
	nextID int64
	staged *shortener.ShortURL

	createDraftErr error
	assignCodeErr  error
	commitErr      error
	rollbackErr    error

	committed  bool
	rolledBack bool
}

func (t *mockTx) CreateDraft(_ context.Context, shortURL *shortener.ShortURL) error {
	if t.createDraftErr != nil {
		return t.createDraftErr
	}

	shortURL.ID = t.nextID
	t.nextID++
	t.staged = shortURL

	return nil
}

func (t *mockTx) AssignCode(_ context.Context, shortURL *shortener.ShortURL) error {
	if t.assignCodeErr != nil {
		return t.assignCodeErr
	}

	t.staged = shortURL

	return nil
}

func (t *mockTx) Commit(_ context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}

	t.committed = true
	t.repo.byCode[t.staged.Code] = t.staged
	t.repo.byURL[t.staged.OriginalURL] = t.staged

	return nil
}

func (t *mockTx) Rollback(_ context.Context) error {
	t.rolledBack = true
	t.staged = nil

	return t.rollbackErr
}

// mockChecker is a configurable test double for shortener.Checker.
type mockChecker struct {
	err   error
	calls int
}

func (m *mockChecker) Check(_ context.Context, _ string) error {
	m.calls++

	return m.err
}
