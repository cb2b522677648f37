package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/msomdec/task-tracker/internal/repository/memory"
	"github.com/msomdec/task-tracker/internal/service"
)

func TestIntegration_RegisterRoutesToDashboard(t *testing.T) {
	app := newTestApp(t, nil)
	client := newClient(t)

	status, body := app.get(t, client, "/")
	if status != http.StatusOK || !strings.Contains(body, `action="/login"`) {
		t.Fatalf("anonymous home should show login: %d\n%s", status, body)
	}

	_, body = app.get(t, client, "/?mode=register")
	if !strings.Contains(body, `action="/register"`) {
		t.Fatalf("expected register form:\n%s", body)
	}

	app.register(t, client, "coord@ieee.org", "coordinator")

	_, body = app.get(t, client, "/")
	if !strings.Contains(body, `id="coordinator-dashboard"`) {
		t.Fatalf("expected coordinator dashboard:\n%s", body)
	}
	if !strings.Contains(body, "Registration successful! Welcome.") {
		t.Fatal("expected registration notice")
	}

	_, again := app.get(t, client, "/")
	if strings.Contains(again, "Registration successful! Welcome.") {
		t.Fatal("notice must only be shown once")
	}
	if tabID(t, body) == tabID(t, again) {
		t.Fatal("every dashboard load must get its own tab id")
	}
}

var tabPattern = regexp.MustCompile(`/tasks/stream\?tab=([0-9a-f-]{36})`)

func tabID(t *testing.T, page string) string {
	t.Helper()
	m := tabPattern.FindStringSubmatch(page)
	if m == nil {
		t.Fatalf("no tab-scoped stream in page:\n%s", page)
	}
	return m[1]
}

func TestIntegration_MemberDashboard(t *testing.T) {
	app := newTestApp(t, nil)
	client := newClient(t)

	app.register(t, client, "member@ieee.org", "member")

	_, body := app.get(t, client, "/")
	if !strings.Contains(body, `id="member-dashboard"`) || strings.Contains(body, `id="task-form"`) {
		t.Fatalf("expected member dashboard without task form:\n%s", body)
	}
}

func TestIntegration_LoginLogout(t *testing.T) {
	app := newTestApp(t, nil)
	app.register(t, newClient(t), "member@ieee.org", "member")

	client := newClient(t)
	status, body := app.postForm(t, client, "/login", url.Values{
		"email":    {"Member@IEEE.org"},
		"password": {"secret1"},
	})
	if status != http.StatusSeeOther {
		t.Fatalf("login: expected 303, got %d\n%s", status, body)
	}

	srvURL, _ := url.Parse(app.srv.URL)
	var hasAuthToken bool
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == "auth_token" {
			hasAuthToken = true
		}
	}
	if !hasAuthToken {
		t.Fatal("expected auth_token cookie to be set after login")
	}

	_, body = app.get(t, client, "/")
	if !strings.Contains(body, "Logged in successfully!") {
		t.Fatal("expected login notice")
	}

	status, body = app.get(t, client, "/api/me")
	if status != http.StatusOK {
		t.Fatalf("/api/me: expected 200, got %d", status)
	}
	var me struct {
		User struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(body), &me); err != nil {
		t.Fatalf("decode /api/me: %v", err)
	}
	if me.User.Email != "member@ieee.org" || me.User.Role != "member" {
		t.Fatalf("unexpected /api/me: %+v", me.User)
	}

	status, _ = app.postForm(t, client, "/logout", nil)
	if status != http.StatusSeeOther {
		t.Fatalf("logout: expected 303, got %d", status)
	}

	_, body = app.get(t, client, "/")
	if !strings.Contains(body, `action="/login"`) || !strings.Contains(body, "Logged out successfully") {
		t.Fatalf("expected auth view with logout notice:\n%s", body)
	}

	status, _ = app.get(t, client, "/api/me")
	if status != http.StatusUnauthorized {
		t.Fatalf("/api/me after logout: expected 401, got %d", status)
	}
}

func TestIntegration_AuthFailures(t *testing.T) {
	app := newTestApp(t, nil)
	client := newClient(t)
	app.register(t, client, "taken@ieee.org", "member")

	tests := []struct {
		name   string
		path   string
		form   url.Values
		status int
		notice string
	}{
		{
			name:   "wrong password",
			path:   "/login",
			form:   url.Values{"email": {"taken@ieee.org"}, "password": {"badpassword"}},
			status: http.StatusUnauthorized,
			notice: "Invalid email or password",
		},
		{
			name:   "duplicate account",
			path:   "/register",
			form:   url.Values{"name": {"X"}, "email": {"taken@ieee.org"}, "password": {"secret1"}, "role": {"coordinator"}},
			status: http.StatusConflict,
			notice: "Account with this email already exists",
		},
		{
			name:   "short password",
			path:   "/register",
			form:   url.Values{"name": {"X"}, "email": {"new@ieee.org"}, "password": {"123"}, "role": {"member"}},
			status: http.StatusUnprocessableEntity,
			notice: "Password should be at least 6 characters",
		},
		{
			name:   "missing role",
			path:   "/register",
			form:   url.Values{"name": {"X"}, "email": {"new@ieee.org"}, "password": {"secret1"}},
			status: http.StatusUnprocessableEntity,
			notice: "Role is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := app.postForm(t, newClient(t), tc.path, tc.form)
			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if !strings.Contains(body, tc.notice) {
				t.Fatalf("expected notice %q in:\n%s", tc.notice, body)
			}
		})
	}
}

func TestIntegration_LoginRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	app := newTestApp(t, service.NewAttemptLimiter(ctx, 0.001, 2))
	client := newClient(t)

	form := url.Values{"email": {"ghost@ieee.org"}, "password": {"secret1"}}
	for i := 0; i < 2; i++ {
		if status, _ := app.postForm(t, client, "/login", form); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, status)
		}
	}

	status, body := app.postForm(t, client, "/login", form)
	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if !strings.Contains(body, "Too many attempts") {
		t.Fatalf("expected rate limit notice:\n%s", body)
	}
}

func TestIntegration_ProfileMissing(t *testing.T) {
	app := newTestApp(t, nil)
	client := newClient(t)
	app.register(t, client, "orphan@ieee.org", "member")

	_, body := app.get(t, client, "/api/me")
	var me struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal([]byte(body), &me); err != nil {
		t.Fatalf("decode /api/me: %v", err)
	}
	app.store.Users().(*memory.UserRepository).Delete(me.User.ID)

	// A fresh browser session carrying only the token must re-read the record.
	srvURL, _ := url.Parse(app.srv.URL)
	jar, _ := cookiejar.New(nil)
	for _, c := range client.Jar.Cookies(srvURL) {
		if c.Name == "auth_token" {
			jar.SetCookies(srvURL, []*http.Cookie{c})
		}
	}
	reloaded := newClient(t)
	reloaded.Jar = jar

	status, body := app.get(t, reloaded, "/")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if strings.Contains(body, "member-dashboard") {
		t.Fatal("no dashboard may be shown without a user record")
	}
	if !strings.Contains(body, "User profile not found. Please contact an admin.") {
		t.Fatalf("expected profile missing notice:\n%s", body)
	}

	status, _ = app.get(t, reloaded, "/api/me")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}
