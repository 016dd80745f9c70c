package events

import "context"

// Outbox persists events in the caller's transaction.
// Implemented by the postgres outbox store.
type Outbox interface {
	Enqueue(ctx context.Context, evs ...Event) error
}

// Publisher delivers already-committed events to subscribers.
// Implemented by the redis notifier; used only by the relay worker.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
