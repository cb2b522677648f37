package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
	"github.com/msomdec/task-tracker/internal/view"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth         *service.AuthService
	limiter      *service.AttemptLimiter
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. limiter may be nil.
func NewAuthHandler(auth *service.AuthService, limiter *service.AttemptLimiter, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter, cookieSecure: cookieSecure}
}

// HandleLogin processes the login form.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, service.AuthModeLogin) {
		return
	}

	user, err := h.auth.Login(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		h.renderFailure(w, r, service.AuthModeLogin, "login user", err)
		return
	}

	h.establish(w, r, user, service.NoticeLoggedIn)
}

// HandleRegister processes the registration form and logs the new user in.
// POST /register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, service.AuthModeRegister) {
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     domain.Role(r.FormValue("role")),
	})
	if err != nil {
		h.renderFailure(w, r, service.AuthModeRegister, "register user", err)
		return
	}

	h.establish(w, r, user, service.NoticeRegistered)
}

// HandleLogout clears the auth cookie and the session.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w, h.cookieSecure)
	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.Logout()
		sess.Flash(service.NoticeLoggedOut)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleMe returns the currently authenticated user.
// GET /api/me
// Response: {"user": {...}} or 401
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}

func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request, mode service.AuthMode) bool {
	if h.limiter == nil || h.limiter.Allow(clientIP(r)) {
		return true
	}
	notice := service.NoticeRateLimited
	w.WriteHeader(http.StatusTooManyRequests)
	if err := view.AuthPage(mode, &notice, csrf.Token(r)).Render(r.Context(), w); err != nil {
		slog.Error("render auth page", "error", err)
	}
	return false
}

// renderFailure re-renders the form with the error notice.
func (h *AuthHandler) renderFailure(w http.ResponseWriter, r *http.Request, mode service.AuthMode, op string, err error) {
	notice := noticeForError(op, err)
	w.WriteHeader(statusFor(err))
	if err := view.AuthPage(mode, &notice, csrf.Token(r)).Render(r.Context(), w); err != nil {
		slog.Error("render auth page", "error", err)
	}
}

// establish installs user in the session, issues the token and routes to
// the dashboard.
func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, user *domain.User, notice domain.Notice) {
	token, err := h.auth.IssueToken(user)
	if err != nil {
		slog.Error("issue token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if h.limiter != nil {
		h.limiter.Forget(clientIP(r))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(service.TokenTTL.Seconds()),
	})

	if sess := SessionFromContext(r.Context()); sess != nil {
		sess.Login(user)
		sess.Flash(notice)
	}
	slog.Info("session established", "user", user.ID, "role", user.Role)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func clearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
