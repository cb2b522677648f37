package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

var filterOptions = []struct {
	value service.Filter
	label string
}{
	{service.FilterAll, "All Tasks"},
	{service.FilterPending, "Pending"},
	{service.FilterCompleted, "Completed"},
}

func header(h *htmlWriter, user *domain.User, csrfToken string) {
	h.raw(`<header><h1>Welcome, `)
	h.text(user.DisplayName())
	h.raw(`</h1><span class="role">`)
	h.text(string(user.Role))
	h.raw(`</span><form method="post" action="/logout">`)
	h.csrf(csrfToken)
	h.raw(`<button type="submit">Logout</button></form></header>`)
}

// liveBoard is the subscription host: it opens the stream once loaded and
// the stream keeps #task-board current.
func liveBoard(h *htmlWriter, tab string, filter service.Filter) {
	h.raw(`<section id="task-live" data-init="@get('`)
	h.text(streamURL(tab, string(filter)))
	h.raw(`')"><div id="`, BoardID, `"><p class="loading">Loading tasks...</p></div></section>`)
}

// CoordinatorDashboard renders the task form, status filter and the live
// task table. tab scopes the board's subscription to this page load.
func CoordinatorDashboard(user *domain.User, filter service.Filter, tab string, notice *domain.Notice, csrfToken string) templ.Component {
	return Page("Coordinator Dashboard", notice, component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<main id="coordinator-dashboard">`)
		header(h, user, csrfToken)

		h.raw(`<section class="create-task"><h2>Assign a task</h2>`,
			`<form id="task-form" method="post" action="/tasks" `,
			`data-on:submit__prevent="@post('/tasks', {contentType: 'form'})">`)
		h.csrf(csrfToken)
		h.raw(`<label>Title <input type="text" name="title" required></label>`,
			`<label>Assign to <input type="email" name="assignee" placeholder="member@example.com" required></label>`,
			`<label>Deadline <input type="date" name="deadline" required></label>`,
			`<button type="submit">Assign Task</button></form></section>`)

		h.raw(`<label>Filter <select id="status-filter" name="filter" data-on:change="@get('`)
		h.text(streamURL(tab, ""))
		h.raw(`' + el.value)">`)
		for _, opt := range filterOptions {
			h.raw(`<option value="`, string(opt.value), `"`)
			if opt.value == filter {
				h.raw(` selected`)
			}
			h.raw(`>`, opt.label, `</option>`)
		}
		h.raw(`</select></label>`)

		liveBoard(h, tab, filter)
		h.raw(`</main>`)
	}))
}

// MemberDashboard renders the member's live task cards.
func MemberDashboard(user *domain.User, tab string, notice *domain.Notice, csrfToken string) templ.Component {
	return Page("My Tasks", notice, component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<main id="member-dashboard">`)
		header(h, user, csrfToken)
		h.raw(`<h2>My Tasks</h2>`)
		liveBoard(h, tab, service.FilterAll)
		h.raw(`</main>`)
	}))
}
