package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

// AuthPage renders the login or registration form.
func AuthPage(mode service.AuthMode, notice *domain.Notice, csrfToken string) templ.Component {
	return Page("Task Tracker", notice, component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<main id="auth" class="auth">`)
		if mode == service.AuthModeRegister {
			h.raw(`<h1>Create an account</h1>`,
				`<form method="post" action="/register">`)
			h.csrf(csrfToken)
			h.raw(`<label>Name <input type="text" name="name" required></label>`,
				`<label>Email <input type="email" name="email" required></label>`,
				`<label>Password <input type="password" name="password" minlength="6" required></label>`,
				`<label>Role <select name="role" required>`,
				`<option value="">Select a role</option>`,
				`<option value="coordinator">Coordinator</option>`,
				`<option value="member">Member</option>`,
				`</select></label>`,
				`<button type="submit">Register</button></form>`,
				`<p><a href="/?mode=`, string(mode.Toggle()), `">Already have an account? Login</a></p>`)
		} else {
			h.raw(`<h1>Login</h1>`,
				`<form method="post" action="/login">`)
			h.csrf(csrfToken)
			h.raw(`<label>Email <input type="email" name="email" required></label>`,
				`<label>Password <input type="password" name="password" required></label>`,
				`<button type="submit">Login</button></form>`,
				`<p><a href="/?mode=`, string(mode.Toggle()), `">Don't have an account? Register</a></p>`)
		}
		h.raw(`</main>`)
	}))
}
