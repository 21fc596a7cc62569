package counter

import (
	"context"
	"sync"
)

// memoryRepository keeps re-download counters for the process lifetime.
// It is used when no redis_url is configured.
type memoryRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryRepository() *memoryRepository {
	return &memoryRepository{
		counters: make(map[string]int64),
	}
}

func (r *memoryRepository) IncFileCounter(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[id]++

	return r.counters[id], nil
}

func (r *memoryRepository) GetCounters(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int64, len(r.counters))
	for id, c := range r.counters {
		out[id] = c
	}

	return out, nil
}
