package visits

import (
	"context"

	"go.uber.org/zap"
)

// Store persists and queries visits.
//
// List returns visits for a code restricted to the date range, ordered by
// visit date ascending.
type Store interface {
	Save(ctx context.Context, visit *Visit) error
	List(ctx context.Context, code string, dateRange DateRange) ([]Visit, error)
}

// NewEventHandler returns the consumer handler that persists incoming
// visit events through the store.
func NewEventHandler(store Store, logger *zap.Logger) func(ctx context.Context, event *VisitOccurredEvent) error {
	return func(ctx context.Context, event *VisitOccurredEvent) error {
		if err := store.Save(ctx, event.ToVisit()); err != nil {
			return err
		}

		logger.Debug("visit recorded",
			zap.String("code", event.Code),
			zap.Time("visitedAt", event.VisitedAt),
		)

		return nil
	}
}
