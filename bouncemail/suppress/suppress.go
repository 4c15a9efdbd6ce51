package suppress

import (
	"context"
	"sync"
	"time"
)

// Suppressor decides whether an alert for a key may go out. The first alert
// for a key within a window is allowed; repeats inside the window are not.
type Suppressor interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is an in-process Suppressor.
type Memory struct {
	Window time.Duration
	Now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time // key -> window expiry
}

// NewMemory creates a Memory suppressor. A zero window allows everything.
func NewMemory(window time.Duration) *Memory {
	return &Memory{Window: window, seen: make(map[string]time.Time)}
}

// Allow implements Suppressor.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.Window <= 0 {
		return true, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seen == nil {
		m.seen = make(map[string]time.Time)
	}
	if expiry, ok := m.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	m.seen[key] = now.Add(m.Window)

	// drop expired keys so the map does not grow without bound
	for k, expiry := range m.seen {
		if !now.Before(expiry) {
			delete(m.seen, k)
		}
	}
	return true, nil
}

func (m *Memory) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}
