package mocks

import (
	"sync"

	"github.com/examhub/exam-room-scheduler/internal/dependencies/random"
)

// MockRandom replays queued values from Intn, then returns 0.
type MockRandom struct {
	mu      sync.Mutex
	results []int
	next    int
}

var _ random.Random = (*MockRandom)(nil)

func NewMockRandom(values ...int) *MockRandom {
	return &MockRandom{results: values}
}

// Intn returns the next queued result modulo n.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next >= len(r.results) || n <= 0 {
		return 0
	}
	v := r.results[r.next]
	r.next++
	return v % n
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}

// Calls reports how many queued values have been consumed.
func (r *MockRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next
}
