package service

import (
	"context"
	"fmt"

	"github.com/msomdec/task-tracker/internal/domain"
)

// ComposeFunc renders the assignment e-mail for a task.
type ComposeFunc func(ctx context.Context, task domain.Task) (domain.Mail, error)

// AssignmentNotifier e-mails the assignee of a newly created task.
type AssignmentNotifier struct {
	mailer  domain.Mailer
	compose ComposeFunc
}

func NewAssignmentNotifier(mailer domain.Mailer, compose ComposeFunc) *AssignmentNotifier {
	return &AssignmentNotifier{mailer: mailer, compose: compose}
}

func (n *AssignmentNotifier) Notify(ctx context.Context, task domain.Task) error {
	mail, err := n.compose(ctx, task)
	if err != nil {
		return fmt.Errorf("compose assignment mail: %w", err)
	}
	if err := n.mailer.Send(ctx, mail); err != nil {
		return fmt.Errorf("send assignment mail: %w", err)
	}
	return nil
}
