package handler

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

type contextKey string

const (
	userContextKey    contextKey = "user"
	sessionContextKey contextKey = "session"
)

const (
	authCookie    = "auth_token"
	sessionCookie = "sid"
)

// UserFromContext extracts the authenticated user from the request context.
// Returns nil if no user is authenticated.
func UserFromContext(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

// SessionFromContext returns the browser session attached by WithSession.
func SessionFromContext(ctx context.Context) *service.Session {
	sess, _ := ctx.Value(sessionContextKey).(*service.Session)
	return sess
}

// WithSession resolves the browser session from the sid cookie, creating
// one on first visit, and synchronizes its identity with the auth_token
// cookie. A token whose user record is missing leaves the session
// unauthenticated with a ProfileMissing notice.
func WithSession(sessions *service.SessionRegistry, auth *service.AuthService, cookieSecure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			sid = c.Value
		} else {
			sid = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sid,
				Path:     "/",
				HttpOnly: true,
				Secure:   cookieSecure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		sess := sessions.Get(sid)

		user, err := authenticateRequest(r, auth, sess)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrProfileMissing):
			sess.Logout()
			sess.Flash(service.NoticeFor(err))
			clearAuthCookie(w, cookieSecure)
		case errors.Is(err, http.ErrNoCookie), errors.Is(err, domain.ErrUnauthorized):
			sess.Logout()
		default:
			slog.Error("restore session", "error", err)
			sess.Logout()
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		if user != nil {
			ctx = context.WithValue(ctx, userContextKey, user)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticateRequest validates the auth_token cookie. The user record is
// only read when the session does not already hold that identity.
func authenticateRequest(r *http.Request, auth *service.AuthService, sess *service.Session) (*domain.User, error) {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return nil, err
	}

	userID, err := auth.ValidateToken(cookie.Value)
	if err != nil {
		return nil, err
	}

	if current := sess.User(); current != nil && current.ID == userID {
		return current, nil
	}

	user, err := auth.Restore(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	sess.Login(user)
	return user, nil
}

// RequireAuth is middleware that protects routes requiring authentication.
// Returns 401 for unauthenticated requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SecurityHeaders sets conservative browser security headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-eval' https://cdn.jsdelivr.net; style-src 'self' 'unsafe-inline'; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRF protects form submissions with gorilla/csrf. JSON API requests are
// exempt. Without secure cookies requests are treated as plaintext HTTP so
// local development works.
func CSRF(authKey []byte, secure bool, trustedOrigins ...string) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(trustedOrigins),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") == "application/json" {
				next.ServeHTTP(w, r)
				return
			}
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the remote host used to key attempt limits.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
