// Package notify delivers change notifications after successful mutations.
//
// Delivery is fire-and-forget: the store does not depend on any subscriber
// observing an event, and an optional rate limit may drop events under load.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/maruel/ksid"
	"golang.org/x/time/rate"
)

// Notifier is informed after a successful mutation of a type name.
type Notifier interface {
	Notify(typeName string)
}

// Event describes one observed mutation.
type Event struct {
	// ID is time-sortable, so subscribers can order events across type names.
	ID       ksid.ID   `json:"id"`
	TypeName string    `json:"type_name"`
	Time     time.Time `json:"time"`
}

// Bus fans out events to subscribers synchronously.
type Bus struct {
	logger  *slog.Logger
	limiter *rate.Limiter

	mu   sync.Mutex
	subs map[int]func(Event)
	next int
}

// NewBus creates a bus. maxPerSec caps event delivery; 0 means unlimited.
// Events over the cap are dropped, consistent with fire-and-forget delivery.
func NewBus(maxPerSec float64, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{logger: logger, subs: make(map[int]func(Event))}
	if maxPerSec > 0 {
		b.limiter = rate.NewLimiter(rate.Limit(maxPerSec), int(maxPerSec)+1)
	}
	return b
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Notify implements Notifier.
func (b *Bus) Notify(typeName string) {
	if b.limiter != nil && !b.limiter.Allow() {
		b.logger.Debug("notification dropped", "type", typeName)
		return
	}
	ev := Event{ID: ksid.NewID(), TypeName: typeName, Time: time.Now()}
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Discard is a Notifier that drops all notifications.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(string) {}
