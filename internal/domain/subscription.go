package domain

import "time"

// Snapshot is a full, point-in-time materialization of a subscribed
// query. Consumers replace their whole view on every snapshot.
type Snapshot struct {
	Tasks []Task
	At    time.Time
}

// Subscription is a live query. Updates is closed when the subscription
// ends; Err then reports the terminal error, or nil after Cancel.
// Cancel is synchronous and idempotent.
type Subscription interface {
	Updates() <-chan Snapshot
	Err() error
	Cancel()
}
