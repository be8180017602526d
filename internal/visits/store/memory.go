package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nmarks/kurz/internal/visits"
)

// Memory is an in-memory implementation of visits.Store for tests and
// dependency-free runs.
type Memory struct {
	mu      sync.RWMutex
	byCode  map[string][]visits.Visit
}

// NewMemory creates a new in-memory visit store.
func NewMemory() *Memory {
	return &Memory{byCode: make(map[string][]visits.Visit)}
}

func (m *Memory) Save(_ context.Context, visit *visits.Visit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byCode[visit.Code] = append(m.byCode[visit.Code], *visit)

	return nil
}

func (m *Memory) List(_ context.Context, code string, dateRange visits.DateRange) ([]visits.Visit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []visits.Visit

	for _, visit := range m.byCode[code] {
		if dateRange.Contains(visit.VisitedAt) {
			result = append(result, visit)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].VisitedAt.Before(result[j].VisitedAt)
	})

	return result, nil
}
