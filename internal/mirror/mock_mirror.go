package mirror

import (
	"context"
	"sync"
)

// MockMirror records published payloads. Err, when set, is returned from
// every Publish.
type MockMirror struct {
	Err error

	mu       sync.Mutex
	payloads [][]byte
	closed   bool
}

func (m *MockMirror) Publish(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, append([]byte(nil), payload...))
	return m.Err
}

func (m *MockMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Payloads returns a copy of everything published so far.
func (m *MockMirror) Payloads() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.payloads))
	copy(out, m.payloads)
	return out
}

func (m *MockMirror) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
