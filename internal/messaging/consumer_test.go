package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/nmarks/kurz/internal/messaging"
	"github.com/nmarks/kurz/internal/visits"
	visitstore "github.com/nmarks/kurz/internal/visits/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	closed       bool
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (s *stubSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	return s.msgChan, nil
}

func (s *stubSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.msgChan)
	}

	return nil
}

func visitMessage(t *testing.T, event *visits.VisitOccurredEvent) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to the visit topic", func(t *testing.T) {
		sub := newStubSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(visitstore.NewMemory(), zap.NewNop()),
			zap.NewNop(),
		)

		err := consumer.Start(context.Background())

		require.NoError(t, err)
		assert.Equal(t, visits.TopicVisitOccurred, consumer.Topic())

		_ = consumer.Shutdown()
	})

	t.Run("returns the subscribe error", func(t *testing.T) {
		sub := &stubSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(visitstore.NewMemory(), zap.NewNop()),
			zap.NewNop(),
		)

		err := consumer.Start(context.Background())

		assert.Error(t, err)
	})
}

func TestConsumer_Process(t *testing.T) {
	t.Run("acks after the visit is persisted", func(t *testing.T) {
		sub := newStubSubscriber()
		store := visitstore.NewMemory()
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(store, zap.NewNop()),
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := visitMessage(t, &visits.VisitOccurredEvent{
			Code:       "12C12",
			Referer:    "https://referrer.example",
			RemoteAddr: "203.0.113.7",
			UserAgent:  "TestAgent/1.0",
			VisitedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		})

		sub.msgChan <- msg

		select {
		case <-msg.Acked():
		case <-msg.Nacked():
			t.Fatal("message was nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for ack")
		}

		stored, err := store.List(context.Background(), "12C12", visits.DateRange{})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "203.0.113.7", stored[0].RemoteAddr)
		assert.Equal(t, "https://referrer.example", stored[0].Referer)

		_ = consumer.Shutdown()
	})

	t.Run("nacks an undecodable payload without touching the store", func(t *testing.T) {
		sub := newStubSubscriber()
		store := visitstore.NewMemory()
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(store, zap.NewNop()),
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := message.NewMessage(uuid.NewString(), []byte("not json"))
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		stored, err := store.List(context.Background(), "12C12", visits.DateRange{})
		require.NoError(t, err)
		assert.Empty(t, stored)

		_ = consumer.Shutdown()
	})

	t.Run("nacks when persisting the visit fails", func(t *testing.T) {
		sub := newStubSubscriber()
		handlerErr := errors.New("store unavailable")
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			func(_ context.Context, _ *visits.VisitOccurredEvent) error { return handlerErr },
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		msg := visitMessage(t, &visits.VisitOccurredEvent{Code: "12C12", VisitedAt: time.Now()})
		sub.msgChan <- msg

		select {
		case <-msg.Nacked():
		case <-msg.Acked():
			t.Fatal("message should have been nacked")
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for nack")
		}

		_ = consumer.Shutdown()
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("waits for the consume loop", func(t *testing.T) {
		sub := newStubSubscriber()
		consumer := messaging.NewConsumer(
			sub,
			visits.TopicVisitOccurred,
			visits.NewEventHandler(visitstore.NewMemory(), zap.NewNop()),
			zap.NewNop(),
		)

		require.NoError(t, consumer.Start(context.Background()))

		err := consumer.Shutdown()

		require.NoError(t, err)
	})
}
