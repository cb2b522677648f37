package firebase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/live"
)

type taskDoc struct {
	Title      string    `firestore:"title"`
	AssignedTo string    `firestore:"assignedTo"`
	Deadline   string    `firestore:"deadline"`
	Status     string    `firestore:"status"`
	CreatedBy  string    `firestore:"createdBy"`
	CreatedAt  time.Time `firestore:"createdAt,serverTimestamp"`
}

func toTaskDoc(t *domain.Task) taskDoc {
	doc := taskDoc{
		Title:      t.Title,
		AssignedTo: t.AssignedTo,
		Status:     string(domain.TaskStatusPending),
		CreatedBy:  t.CreatedBy,
	}
	if !t.Deadline.IsZero() {
		doc.Deadline = t.Deadline.Format(domain.DeadlineLayout)
	}
	return doc
}

func (d taskDoc) toTask(id string) domain.Task {
	task := domain.Task{
		ID:         id,
		Title:      d.Title,
		AssignedTo: d.AssignedTo,
		Status:     domain.TaskStatus(d.Status),
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
	}
	// Older documents may carry a full timestamp; only the date matters.
	if len(d.Deadline) >= len(domain.DeadlineLayout) {
		if deadline, err := time.Parse(domain.DeadlineLayout, d.Deadline[:len(domain.DeadlineLayout)]); err == nil {
			task.Deadline = deadline
		}
	}
	return task
}

// TaskRepository implements domain.TaskRepository on the tasks collection.
type TaskRepository struct {
	tasks *firestore.CollectionRef

	mu    sync.Mutex
	feeds map[*live.Feed]struct{}
}

func newTaskRepository(tasks *firestore.CollectionRef) *TaskRepository {
	return &TaskRepository{tasks: tasks, feeds: make(map[*live.Feed]struct{})}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ref, _, err := r.tasks.Add(ctx, toTaskDoc(task))
	if err != nil {
		return writeError("add task", err)
	}
	task.ID = ref.ID
	task.Status = domain.TaskStatusPending

	// createdAt is assigned by the server; read it back for the caller.
	if stored, err := r.GetByID(ctx, ref.ID); err == nil {
		task.CreatedAt = stored.CreatedAt
	} else {
		slog.Warn("read back created task", "id", ref.ID, "error", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	snap, err := r.tasks.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	task, err := decodeTask(snap)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, s domain.TaskStatus) error {
	_, err := r.tasks.Doc(id).Update(ctx, []firestore.Update{{Path: "status", Value: string(s)}})
	if err != nil {
		return writeError("update task status", err)
	}
	return nil
}

func (r *TaskRepository) SubscribeAll(ctx context.Context) (domain.Subscription, error) {
	return r.listen(ctx, r.tasks.OrderBy("createdAt", firestore.Desc), false), nil
}

// SubscribeAssigned uses an equality filter only; ordering it server-side
// would need a composite index, so snapshots are sorted on delivery.
func (r *TaskRepository) SubscribeAssigned(ctx context.Context, email string) (domain.Subscription, error) {
	q := r.tasks.Where("assignedTo", "==", domain.NormalizeEmail(email))
	return r.listen(ctx, q, true), nil
}

func (r *TaskRepository) listen(ctx context.Context, q firestore.Query, sortOnDelivery bool) *live.Feed {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	feed := r.track(cancel)
	it := q.Snapshots(ctx)

	go func() {
		defer it.Stop()
		for {
			qs, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("task listener stopped", "error", err)
					feed.Fail(listenError(err))
				}
				return
			}

			docs, err := qs.Documents.GetAll()
			if err != nil {
				feed.Fail(listenError(err))
				return
			}
			tasks := make([]domain.Task, 0, len(docs))
			for _, ds := range docs {
				task, err := decodeTask(ds)
				if err != nil {
					slog.Warn("skip undecodable task", "id", ds.Ref.ID, "error", err)
					continue
				}
				tasks = append(tasks, task)
			}
			if sortOnDelivery {
				domain.SortNewestFirst(tasks)
			}
			if !feed.Publish(tasks) {
				return
			}
		}
	}()
	return feed
}

// track registers a new feed whose end runs stop and forgets it.
func (r *TaskRepository) track(stop context.CancelFunc) *live.Feed {
	var feed *live.Feed
	feed = live.New(func() {
		stop()
		r.mu.Lock()
		delete(r.feeds, feed)
		r.mu.Unlock()
	})
	r.mu.Lock()
	r.feeds[feed] = struct{}{}
	r.mu.Unlock()
	return feed
}

// closeAll ends every open feed without an error so its listener stops
// before the client goes away.
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

func (r *TaskRepository) open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.feeds)
}

func decodeTask(ds *firestore.DocumentSnapshot) (domain.Task, error) {
	var doc taskDoc
	if err := ds.DataTo(&doc); err != nil {
		return domain.Task{}, fmt.Errorf("decode task %s: %w", ds.Ref.ID, err)
	}
	return doc.toTask(ds.Ref.ID), nil
}
