// Package mirror republishes every snapshot the feed sends so tools other
// than the browser can watch the same fake data.
package mirror

import (
	"context"
)

// Mirror receives a copy of each serialized snapshot after it was written to
// a client. Implementations must be safe for concurrent use.
type Mirror interface {
	Publish(ctx context.Context, payload []byte) error
	Close() error
}

// NoOpMirror is a no-op implementation.
type NoOpMirror struct{}

func (n *NoOpMirror) Publish(ctx context.Context, payload []byte) error {
	return nil
}

func (n *NoOpMirror) Close() error {
	return nil
}
