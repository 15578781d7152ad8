package service

import "sync"

// Resource names something the UI can show a busy indicator for.
type Resource string

const (
	ResourceNumber       Resource = "number"
	ResourceExpenses     Resource = "expenses"
	ResourceTransactions Resource = "transactions"
)

// Tracker counts in-flight operations per resource.
type Tracker struct {
	mu       sync.Mutex
	inflight map[Resource]int
}

// Begin marks r busy until the returned func is called.
func (t *Tracker) Begin(r Resource) func() {
	t.mu.Lock()
	if t.inflight == nil {
		t.inflight = make(map[Resource]int)
	}
	t.inflight[r]++
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			t.inflight[r]--
			if t.inflight[r] <= 0 {
				delete(t.inflight, r)
			}
			t.mu.Unlock()
		})
	}
}

// Busy reports whether any operation on r is in flight.
func (t *Tracker) Busy(r Resource) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inflight[r] > 0
}

// AnyBusy reports whether anything is in flight.
func (t *Tracker) AnyBusy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight) > 0
}
