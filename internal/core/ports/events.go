package ports

import "context"

// EventPublisher emits side-effect events. Publishing never fails from the
// caller's point of view.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any)
}
