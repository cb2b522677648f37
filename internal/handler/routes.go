package handler

import (
	"net/http"

	"github.com/msomdec/task-tracker/internal/service"
)

// Deps are the collaborators the routes are served by.
type Deps struct {
	Auth         *service.AuthService
	Tasks        *service.TaskService
	Sessions     *service.SessionRegistry
	Limiter      *service.AttemptLimiter
	CookieSecure bool
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	authHandler := NewAuthHandler(deps.Auth, deps.Limiter, deps.CookieSecure)
	taskHandler := NewTaskHandler(deps.Tasks)

	session := func(h http.HandlerFunc) http.Handler {
		return WithSession(deps.Sessions, deps.Auth, deps.CookieSecure, h)
	}
	protected := func(h http.HandlerFunc) http.Handler {
		return WithSession(deps.Sessions, deps.Auth, deps.CookieSecure, RequireAuth(h))
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.Handle("GET /{$}", session(HandleHome))
	mux.Handle("POST /login", session(authHandler.HandleLogin))
	mux.Handle("POST /register", session(authHandler.HandleRegister))
	mux.Handle("POST /logout", session(authHandler.HandleLogout))
	mux.Handle("GET /api/me", session(authHandler.HandleMe))

	mux.Handle("POST /tasks", protected(taskHandler.HandleCreate))
	mux.Handle("POST /tasks/{id}/complete", protected(taskHandler.HandleComplete))
	mux.Handle("GET /tasks/stream", protected(taskHandler.HandleStream))
}
