package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/live"
)

// TaskRepository keeps tasks in insertion order and fans every change out
// to the registered feeds as a fresh snapshot.
type TaskRepository struct {
	mu    sync.Mutex
	tasks []domain.Task
	index map[string]int
	feeds map[*live.Feed]func() []domain.Task
	now   func() time.Time
	last  time.Time
}

func NewTaskRepository(now func() time.Time) *TaskRepository {
	return &TaskRepository{
		index: make(map[string]int),
		feeds: make(map[*live.Feed]func() []domain.Task),
		now:   now,
	}
}

func (r *TaskRepository) Create(_ context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	if !createdAt.After(r.last) {
		createdAt = r.last.Add(time.Nanosecond)
	}
	r.last = createdAt

	task.ID = uuid.NewString()
	task.Status = domain.TaskStatusPending
	task.CreatedAt = createdAt

	r.index[task.ID] = len(r.tasks)
	r.tasks = append(r.tasks, *task)
	r.broadcast()
	return nil
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	t := r.tasks[i]
	return &t, nil
}

func (r *TaskRepository) UpdateStatus(_ context.Context, id string, status domain.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.tasks[i].Status = status
	r.broadcast()
	return nil
}

func (r *TaskRepository) SubscribeAll(context.Context) (domain.Subscription, error) {
	return r.subscribe(func() []domain.Task {
		out := make([]domain.Task, 0, len(r.tasks))
		for i := len(r.tasks) - 1; i >= 0; i-- {
			out = append(out, r.tasks[i])
		}
		return out
	}, false), nil
}

func (r *TaskRepository) SubscribeAssigned(_ context.Context, email string) (domain.Subscription, error) {
	email = domain.NormalizeEmail(email)
	return r.subscribe(func() []domain.Task {
		var out []domain.Task
		for _, t := range r.tasks {
			if t.AssignedTo == email {
				out = append(out, t)
			}
		}
		return out
	}, true), nil
}

// subscribe registers query and publishes the initial snapshot. When
// sortOnDelivery is set the subscriber side orders each snapshot.
func (r *TaskRepository) subscribe(query func() []domain.Task, sortOnDelivery bool) *live.Feed {
	if sortOnDelivery {
		unsorted := query
		query = func() []domain.Task {
			tasks := unsorted()
			domain.SortNewestFirst(tasks)
			return tasks
		}
	}

	var feed *live.Feed
	feed = live.New(func() {
		r.mu.Lock()
		delete(r.feeds, feed)
		r.mu.Unlock()
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[feed] = query
	feed.Publish(query())
	return feed
}

// broadcast must be called with r.mu held.
func (r *TaskRepository) broadcast() {
	for feed, query := range r.feeds {
		feed.Publish(query())
	}
}

// Subscribers returns the number of live feeds.
func (r *TaskRepository) Subscribers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

func (r *TaskRepository) closeAll() {
	r.mu.Lock()
	feeds := make([]*live.Feed, 0, len(r.feeds))
	for f := range r.feeds {
		feeds = append(feeds, f)
	}
	r.mu.Unlock()
	for _, f := range feeds {
		f.Cancel()
	}
}
