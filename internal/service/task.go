package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// Policy decides who may write tasks.
type Policy string

const (
	// PolicyOpen lets any authenticated session create tasks and change
	// any task's status. Creation is still offered only to coordinators.
	PolicyOpen Policy = "open"
	// PolicyStrict restricts creation to coordinators and completion to
	// the assignee.
	PolicyStrict Policy = "strict"
)

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyOpen, PolicyStrict:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown task policy %q", s)
}

// CreateTaskInput carries the task form.
type CreateTaskInput struct {
	Title    string `validate:"required"`
	Assignee string `validate:"required,email"`
	Deadline string `validate:"required,datetime=2006-01-02"`
}

// TaskService writes through the task repository and opens role-scoped
// subscriptions for sessions.
type TaskService struct {
	tasks    domain.TaskRepository
	policy   Policy
	notifier *AssignmentNotifier
}

// NewTaskService creates a TaskService. notifier may be nil.
func NewTaskService(tasks domain.TaskRepository, policy Policy, notifier *AssignmentNotifier) *TaskService {
	return &TaskService{tasks: tasks, policy: policy, notifier: notifier}
}

// Create validates the form and stores a new Pending task created by actor.
func (s *TaskService) Create(ctx context.Context, actor *domain.User, in CreateTaskInput) (*domain.Task, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if s.policy == PolicyStrict && actor.Role != domain.RoleCoordinator {
		return nil, fmt.Errorf("%w: only coordinators can create tasks", domain.ErrWriteDenied)
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Assignee = domain.NormalizeEmail(in.Assignee)
	in.Deadline = strings.TrimSpace(in.Deadline)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	deadline, err := time.Parse(domain.DeadlineLayout, in.Deadline)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be a date (YYYY-MM-DD)", domain.ErrValidation)
	}

	task := &domain.Task{
		Title:      in.Title,
		AssignedTo: in.Assignee,
		Deadline:   deadline,
		CreatedBy:  actor.Email,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, *task); err != nil {
			slog.Error("notify assignee", "task", task.ID, "error", err)
		}
	}
	return task, nil
}

// UpdateStatus moves a task forward. Completed is terminal: completing
// again is a no-op and reopening is ErrInvalidTransition.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *domain.User, id string, status domain.TaskStatus) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("get task: %w", err)
	}

	if s.policy == PolicyStrict && task.AssignedTo != actor.Email {
		return fmt.Errorf("%w: only the assignee can change this task", domain.ErrWriteDenied)
	}

	switch {
	case task.Status == status:
		return nil
	case task.Status == domain.TaskStatusCompleted:
		return fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, task.Status, status)
	}

	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

// Complete marks a task Completed.
func (s *TaskService) Complete(ctx context.Context, actor *domain.User, id string) error {
	return s.UpdateStatus(ctx, actor, id, domain.TaskStatusCompleted)
}

// Subscribe opens the live view for the session's role and makes it the
// only subscription of tab: coordinators see every task, members only
// their own.
func (s *TaskService) Subscribe(ctx context.Context, sess *Session, tab string) (domain.Subscription, error) {
	user := sess.User()
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	var (
		sub domain.Subscription
		err error
	)
	switch Route(user) {
	case ViewCoordinator:
		sub, err = s.tasks.SubscribeAll(ctx)
	case ViewMember:
		sub, err = s.tasks.SubscribeAssigned(ctx, user.Email)
	default:
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("subscribe tasks: %w", err)
	}

	if err := sess.Attach(tab, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
