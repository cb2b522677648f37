package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/live"
)

// TaskRepository implements domain.TaskRepository using SQLite. SQLite has
// no change stream, so every successful write re-runs the query of each
// registered feed and publishes the result.
type TaskRepository struct {
	db  *sql.DB
	now func() time.Time

	mu    sync.Mutex
	last  time.Time
	feeds map[*live.Feed]taskQuery
}

type taskQuery func(ctx context.Context) ([]domain.Task, error)

// NewTaskRepository creates a new SQLite-backed TaskRepository.
func NewTaskRepository(db *DB, now func() time.Time) *TaskRepository {
	return &TaskRepository{
		db:    db.SqlDB,
		now:   now,
		feeds: make(map[*live.Feed]taskQuery),
	}
}

// resumeClock raises the creation clock to the newest stored createdAt so
// tasks created after a restart still sort above older ones.
func (r *TaskRepository) resumeClock(ctx context.Context) error {
	var newest sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM tasks`).Scan(&newest); err != nil {
		return fmt.Errorf("query newest task: %w", err)
	}
	if !newest.Valid {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t := time.Unix(0, newest.Int64).UTC(); t.After(r.last) {
		r.last = t
	}
	return nil
}

const taskColumns = `id, title, assigned_to, deadline, status, created_by, created_at`

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	createdAt := r.now().UTC()
	if !createdAt.After(r.last) {
		createdAt = r.last.Add(time.Nanosecond)
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, task.Title, task.AssignedTo, formatDeadline(task.Deadline),
		string(domain.TaskStatusPending), task.CreatedBy, createdAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}

	r.last = createdAt
	task.ID = id
	task.Status = domain.TaskStatusPending
	task.CreatedAt = createdAt
	r.refresh()
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query task by id: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	r.refresh()
	return nil
}

func (r *TaskRepository) SubscribeAll(ctx context.Context) (domain.Subscription, error) {
	return r.subscribe(ctx, func(ctx context.Context) ([]domain.Task, error) {
		return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	})
}

func (r *TaskRepository) SubscribeAssigned(ctx context.Context, email string) (domain.Subscription, error) {
	email = domain.NormalizeEmail(email)
	return r.subscribe(ctx, func(ctx context.Context) ([]domain.Task, error) {
		tasks, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assigned_to = ?`, email)
		if err != nil {
			return nil, err
		}
		domain.SortNewestFirst(tasks)
		return tasks, nil
	})
}

func (r *TaskRepository) subscribe(ctx context.Context, q taskQuery) (domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := q(ctx)
	if err != nil {
		return nil, err
	}

	var feed *live.Feed
	feed = live.New(func() {
		r.mu.Lock()
		delete(r.feeds, feed)
		r.mu.Unlock()
	})
	r.feeds[feed] = q
	feed.Publish(tasks)
	return feed, nil
}

// refresh must be called with r.mu held. It runs detached from the writer's
// context so a cancelled request cannot starve other subscribers.
func (r *TaskRepository) refresh() {
	ctx := context.Background()
	for feed, q := range r.feeds {
		tasks, err := q(ctx)
		if err != nil {
			slog.Error("refresh task subscription", "error", err)
			delete(r.feeds, feed)
			go feed.Fail(err)
			continue
		}
		feed.Publish(tasks)
	}
}

func (r *TaskRepository) query(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (*domain.Task, error) {
	var (
		task      domain.Task
		deadline  string
		status    string
		createdAt int64
	)
	if err := s.Scan(&task.ID, &task.Title, &task.AssignedTo, &deadline, &status, &task.CreatedBy, &createdAt); err != nil {
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.CreatedAt = time.Unix(0, createdAt).UTC()
	if deadline != "" {
		d, err := time.Parse(domain.DeadlineLayout, deadline)
		if err != nil {
			return nil, fmt.Errorf("parse deadline %q: %w", deadline, err)
		}
		task.Deadline = d
	}
	return &task, nil
}

func formatDeadline(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DeadlineLayout)
}
