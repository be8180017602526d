package store

import (
	"context"

	"github.com/nmarks/kurz/internal/visits"
	"go.uber.org/zap"
)

// Noop is a visits.Store that only logs events. Used when no database is
// configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op visit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Save(_ context.Context, visit *visits.Visit) error {
	n.logger.Info("visit received",
		zap.String("code", visit.Code),
		zap.String("remoteAddr", visit.RemoteAddr),
		zap.Time("visitedAt", visit.VisitedAt),
	)

	return nil
}

func (n *Noop) List(_ context.Context, _ string, _ visits.DateRange) ([]visits.Visit, error) {
	return nil, nil
}
