package view

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

// Board renders the inner content of #task-board for a projected snapshot.
func Board(b service.Board, csrfToken string) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		if b.Role == domain.RoleCoordinator {
			coordinatorBoard(h, b)
			return
		}
		memberBoard(h, b, csrfToken)
	})
}

func stat(h *htmlWriter, id, label string, n int) {
	h.raw(`<div class="stat" id="`, id, `"><span class="stat-value">`, strconv.Itoa(n),
		`</span><span class="stat-label">`, label, `</span></div>`)
}

func statusBadge(h *htmlWriter, status domain.TaskStatus) {
	class := "status-pending"
	if status == domain.TaskStatusCompleted {
		class = "status-completed"
	}
	h.raw(`<span class="badge `, class, `">`)
	h.text(string(status))
	h.raw(`</span>`)
}

func coordinatorBoard(h *htmlWriter, b service.Board) {
	h.raw(`<div class="stats">`)
	stat(h, "stat-total", "Total Tasks", b.Summary.Total)
	stat(h, "stat-pending", "Pending", b.Summary.Pending)
	stat(h, "stat-completed", "Completed", b.Summary.Completed)
	h.raw(`</div>`)

	if b.Empty() {
		h.raw(`<p class="empty">No tasks found.</p>`)
		return
	}

	h.raw(`<table class="tasks"><thead><tr>`,
		`<th>Title</th><th>Assigned To</th><th>Deadline</th><th>Status</th><th>Created By</th><th>Created At</th>`,
		`</tr></thead><tbody>`)
	for _, t := range b.Tasks {
		h.raw(`<tr id="task-`)
		h.text(t.ID)
		h.raw(`"><td>`)
		h.text(t.Title)
		h.raw(`</td><td>`)
		h.text(t.AssignedTo)
		h.raw(`</td><td>`)
		h.text(FormatDeadline(t.Deadline))
		h.raw(`</td><td>`)
		statusBadge(h, t.Status)
		h.raw(`</td><td>`)
		h.text(t.CreatedBy)
		h.raw(`</td><td>`)
		h.text(FormatCreatedAt(t.CreatedAt))
		h.raw(`</td></tr>`)
	}
	h.raw(`</tbody></table>`)
}

func memberBoard(h *htmlWriter, b service.Board, csrfToken string) {
	h.raw(`<div class="stats">`)
	stat(h, "stat-pending", "Pending", b.Summary.Pending)
	stat(h, "stat-total", "Assigned", b.Summary.Total)
	h.raw(`</div>`)

	if b.Empty() {
		h.raw(`<p class="empty">No tasks assigned to you yet.</p>`)
		return
	}

	h.raw(`<div class="cards">`)
	for _, t := range b.Tasks {
		h.raw(`<article class="card" id="task-`)
		h.text(t.ID)
		h.raw(`"><h3>`)
		h.text(t.Title)
		h.raw(`</h3><p>Deadline: `)
		h.text(FormatDeadline(t.Deadline))
		h.raw(`</p><p>Assigned by: `)
		h.text(t.CreatedBy)
		h.raw(`</p>`)
		statusBadge(h, t.Status)

		if t.CanComplete {
			action := "/tasks/" + url.PathEscape(t.ID) + "/complete"
			h.raw(`<form method="post" action="`)
			h.text(action)
			h.raw(`" data-on:submit__prevent="@post('`)
			h.text(action)
			h.raw(`', {contentType: 'form'})">`)
			h.csrf(csrfToken)
			h.raw(`<button type="submit">Mark Completed</button></form>`)
		} else {
			h.raw(`<span class="done">&#10003; Done</span>`)
		}
		h.raw(`</article>`)
	}
	h.raw(`</div>`)
}
