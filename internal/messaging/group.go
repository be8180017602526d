package messaging

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Worker is anything the group can start and stop.
type Worker interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup runs a set of consumers over one shared subscriber and
// tears the whole set down together.
type ConsumerGroup struct {
	workers    []Worker
	subscriber message.Subscriber
	logger     *zap.Logger
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{
		subscriber: subscriber,
		logger:     logger,
	}
}

// Add registers a worker. Not safe to call after Start.
func (g *ConsumerGroup) Add(worker Worker) {
	g.workers = append(g.workers, worker)
}

// Start starts every worker. When one fails, the workers already running
// are shut down again before the error is returned.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, worker := range g.workers {
		if err := worker.Start(ctx); err != nil {
			for _, running := range g.workers[:i] {
				_ = running.Shutdown()
			}

			return fmt.Errorf("starting worker %d: %w", i, err)
		}
	}

	g.logger.Info("consumer group running", zap.Int("workers", len(g.workers)))

	return nil
}

// Shutdown stops every worker and closes the subscriber, collecting every
// error along the way.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("consumer group stopping")

	var errs error

	for _, worker := range g.workers {
		errs = multierr.Append(errs, worker.Shutdown())
	}

	return multierr.Append(errs, g.subscriber.Close())
}
