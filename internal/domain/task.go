package domain

import (
	"context"
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

// Valid reports whether s is one of the closed set of statuses.
func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

// DeadlineLayout is the wire format of Task.Deadline.
const DeadlineLayout = "2006-01-02"

// Task is a unit of work assigned by a coordinator to a member.
type Task struct {
	ID         string
	Title      string
	AssignedTo string // assignee email, immutable after creation
	Deadline   time.Time
	Status     TaskStatus
	CreatedBy  string
	CreatedAt  time.Time
}

// TaskRepository is the sole writer of tasks. Clients observe the
// collection only through subscriptions.
type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	UpdateStatus(ctx context.Context, id string, status TaskStatus) error
	// SubscribeAll streams every task, newest first.
	SubscribeAll(ctx context.Context) (Subscription, error)
	// SubscribeAssigned streams tasks assigned to email. Ordering is
	// applied by the subscriber with SortNewestFirst.
	SubscribeAssigned(ctx context.Context, email string) (Subscription, error)
}

// SortNewestFirst orders tasks by CreatedAt descending. Ties keep their
// incoming relative order.
func SortNewestFirst(tasks []Task) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
