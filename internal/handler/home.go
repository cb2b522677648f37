package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
	"github.com/msomdec/task-tracker/internal/view"
)

// HandleHome renders the one view the session's identity routes to.
// Every dashboard load gets a fresh tab id that scopes its live board.
// GET /
func HandleHome(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	token := csrf.Token(r)

	var notice *domain.Notice
	if sess := SessionFromContext(r.Context()); sess != nil {
		notice = sess.TakeFlash()
	}

	var page templ.Component
	switch service.Route(user) {
	case service.ViewCoordinator:
		page = view.CoordinatorDashboard(user, service.ParseFilter(r.URL.Query().Get("filter")), uuid.NewString(), notice, token)
	case service.ViewMember:
		page = view.MemberDashboard(user, uuid.NewString(), notice, token)
	default:
		page = view.AuthPage(service.ParseAuthMode(r.URL.Query().Get("mode")), notice, token)
	}

	w.Header().Set("Cache-Control", "no-store")
	if err := page.Render(r.Context(), w); err != nil {
		slog.Error("render home", "error", err)
	}
}
