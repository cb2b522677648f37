package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
	"github.com/msomdec/task-tracker/internal/view"
)

// isDatastar reports whether r was issued by a Datastar action.
func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

// statusFor maps the error taxonomy onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProfileMissing), errors.Is(err, domain.ErrWriteDenied):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondNotice answers a form action. Datastar requests get the toast
// patched in place; plain form posts get the notice flashed and are
// redirected to the dashboard. resetForm names a form to clear on success.
func respondNotice(w http.ResponseWriter, r *http.Request, notice domain.Notice, resetForm string) {
	if isDatastar(r) {
		sse := datastar.NewSSE(w, r)
		if err := sse.PatchElementTempl(view.Toast(&notice)); err != nil {
			slog.Error("patch toast", "error", err)
			return
		}
		if resetForm != "" && notice.Severity == domain.SeveritySuccess {
			sse.ExecuteScript("document.getElementById('" + resetForm + "').reset()")
		}
		return
	}

	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.Flash(notice)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// noticeForError logs unexpected errors and maps err onto a notice.
func noticeForError(op string, err error) domain.Notice {
	if statusFor(err) == http.StatusInternalServerError {
		slog.Error(op, "error", err)
	}
	return service.NoticeFor(err)
}
