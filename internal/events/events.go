// Package events fans status changes out to listeners: Redis pub/sub when a
// Redis URL is configured, an in-process broker otherwise. Both implement
// status.Notifier so the status engine can publish without knowing which.
package events

import (
	"context"
	"sync"

	"github.com/nexwork/nexwork/internal/status"
)

// Channel is the pub/sub channel carrying status changes.
const Channel = "application.status_changed"

// Bus publishes status changes and lets listeners subscribe to them.
type Bus interface {
	status.Notifier
	// Subscribe returns a stream of changes and a function that ends the
	// subscription and closes the stream.
	Subscribe(ctx context.Context) (<-chan status.Change, func(), error)
}

// subscriberBuffer bounds each listener's backlog. A slow listener misses
// events rather than blocking the publisher.
const subscriberBuffer = 16

// LocalBus is an in-process Bus.
type LocalBus struct {
	mu   sync.Mutex
	subs map[chan status.Change]struct{}
}

// NewLocalBus returns an empty LocalBus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[chan status.Change]struct{})}
}

// StatusChanged delivers c to every subscriber with room in its buffer.
func (b *LocalBus) StatusChanged(_ context.Context, c status.Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

// Subscribe registers a listener.
func (b *LocalBus) Subscribe(context.Context) (<-chan status.Change, func(), error) {
	ch := make(chan status.Change, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
