package visits_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nmarks/kurz/internal/visits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockStore struct {
	saved   []*visits.Visit
	saveErr error
}

func (m *mockStore) Save(_ context.Context, visit *visits.Visit) error {
	if m.saveErr != nil {
		return m.saveErr
	}

	m.saved = append(m.saved, visit)

	return nil
}

func (m *mockStore) List(_ context.Context, _ string, _ visits.DateRange) ([]visits.Visit, error) {
	return nil, nil
}

func TestNewEventHandler(t *testing.T) {
	t.Run("persists the event as a visit", func(t *testing.T) {
		store := &mockStore{}
		handler := visits.NewEventHandler(store, zap.NewNop())

		event := &visits.VisitOccurredEvent{
			Code:       "12C12",
			RemoteAddr: "203.0.113.7",
			UserAgent:  "TestAgent/1.0",
			VisitedAt:  time.Now(),
		}

		err := handler(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, store.saved, 1)
		assert.Equal(t, "12C12", store.saved[0].Code)
	})

	t.Run("returns the store error", func(t *testing.T) {
		store := &mockStore{saveErr: errors.New("store error")}
		handler := visits.NewEventHandler(store, zap.NewNop())

		err := handler(context.Background(), &visits.VisitOccurredEvent{Code: "12C12"})

		assert.Error(t, err)
	})
}
