package view

import (
	"bytes"
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/task-tracker/internal/domain"
)

// AssignmentMail composes the e-mail sent to a task's assignee.
func AssignmentMail(ctx context.Context, task domain.Task) (domain.Mail, error) {
	var buf bytes.Buffer
	if err := assignmentBody(task).Render(ctx, &buf); err != nil {
		return domain.Mail{}, err
	}
	return domain.Mail{
		To:      []string{task.AssignedTo},
		Subject: "New task assigned: " + task.Title,
		HTML:    buf.String(),
	}, nil
}

func assignmentBody(task domain.Task) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<p>You have been assigned a new task.</p><p><strong>`)
		h.text(task.Title)
		h.raw(`</strong></p><p>Deadline: `)
		h.text(FormatDeadline(task.Deadline))
		h.raw(`</p><p>Assigned by: `)
		h.text(task.CreatedBy)
		h.raw(`</p>`)
	})
}
