// Package events provides a synchronous in-process publish/subscribe bus.
//
// Patterns are dot-delimited: "user.created" matches exactly, "user.*" matches
// one trailing segment and "**" matches any number of segments (including
// none). Handlers run on the publishing goroutine in subscription order.
package events

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/reqctx"
)

const defaultSource = "api"

// Handler receives a published event.
type Handler func(ctx context.Context, e domain.Event)

type subscription struct {
	id      uint64
	pattern string
	handler Handler
}

// Bus dispatches events to matching subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	source string
	now    func() time.Time
	log    zerolog.Logger
}

// NewBus returns an empty bus. Handler panics are logged on log.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		source: defaultSource,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

// Subscribe registers h for events matching pattern and returns a function
// that removes the subscription.
func (b *Bus) Subscribe(pattern string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, pattern: pattern, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

// Publish builds an event correlated with the request in ctx and delivers it.
func (b *Bus) Publish(ctx context.Context, eventType string, data any) {
	b.Dispatch(ctx, domain.Event{
		Type:          eventType,
		Data:          data,
		Timestamp:     b.now(),
		Source:        b.source,
		CorrelationID: reqctx.RequestID(ctx),
	})
}

// Dispatch delivers e to every matching subscriber.
func (b *Bus) Dispatch(ctx context.Context, e domain.Event) {
	b.mu.RLock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if Match(s.pattern, e.Type) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range matched {
		b.invoke(ctx, s, e)
	}
}

func (b *Bus) invoke(ctx context.Context, s subscription, e domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event", e.Type).
				Str("pattern", s.pattern).
				Msg("event handler panicked")
		}
	}()
	s.handler(ctx, e)
}

// ListenerCount returns the number of subscriptions registered with pattern.
func (b *Bus) ListenerCount(pattern string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.pattern == pattern {
			n++
		}
	}
	return n
}

// Patterns returns the distinct subscribed patterns, sorted.
func (b *Bus) Patterns() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.subs))
	for _, s := range b.subs {
		if !slices.Contains(out, s.pattern) {
			out = append(out, s.pattern)
		}
	}
	slices.Sort(out)
	return out
}

// Match reports whether eventType satisfies pattern.
func Match(pattern, eventType string) bool {
	return matchSegments(strings.Split(pattern, "."), strings.Split(eventType, "."))
}

func matchSegments(pat, typ []string) bool {
	for len(pat) > 0 {
		switch pat[0] {
		case "**":
			if len(pat) == 1 {
				return true
			}
			for i := 0; i <= len(typ); i++ {
				if matchSegments(pat[1:], typ[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(typ) == 0 {
				return false
			}
		default:
			if len(typ) == 0 || pat[0] != typ[0] {
				return false
			}
		}
		pat, typ = pat[1:], typ[1:]
	}
	return len(typ) == 0
}
