// Package live provides the cancellable snapshot stream shared by every
// task repository implementation.
package live

import (
	"sync"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// Feed implements domain.Subscription with a single-slot, latest-wins
// buffer: a slow consumer only ever sees the newest snapshot.
type Feed struct {
	mu       sync.Mutex
	updates  chan domain.Snapshot
	err      error
	closed   bool
	onCancel func()
	release  sync.Once
}

var _ domain.Subscription = (*Feed)(nil)

// New creates an open feed. onCancel, if non-nil, runs exactly once when
// the feed ends, either through Cancel or Fail, and must release whatever
// listener publishes into the feed.
func New(onCancel func()) *Feed {
	return &Feed{
		updates:  make(chan domain.Snapshot, 1),
		onCancel: onCancel,
	}
}

func (f *Feed) Updates() <-chan domain.Snapshot {
	return f.updates
}

func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Publish delivers a copy of tasks as the current snapshot, replacing an
// undelivered one. It reports false once the feed has ended.
func (f *Feed) Publish(tasks []domain.Task) bool {
	snap := domain.Snapshot{
		Tasks: append([]domain.Task(nil), tasks...),
		At:    time.Now(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	select {
	case <-f.updates:
	default:
	}
	f.updates <- snap
	return true
}

// Fail ends the feed with a terminal error.
func (f *Feed) Fail(err error) {
	f.end(err)
}

// Cancel ends the feed without an error. Calling it again is a no-op.
func (f *Feed) Cancel() {
	f.end(nil)
}

// Closed reports whether the feed has ended.
func (f *Feed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Feed) end(err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.err = err
	close(f.updates)
	f.mu.Unlock()

	// Outside the lock: onCancel typically takes the repository lock,
	// which is held while publishing.
	f.release.Do(func() {
		if f.onCancel != nil {
			f.onCancel()
		}
	})
}
