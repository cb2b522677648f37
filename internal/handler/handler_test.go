package handler_test

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/handler"
	"github.com/msomdec/task-tracker/internal/repository/memory"
	"github.com/msomdec/task-tracker/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456"

type testApp struct {
	srv      *httptest.Server
	store    *memory.Store
	sessions *service.SessionRegistry
	auth     *service.AuthService
}

func newTestApp(t *testing.T, limiter *service.AttemptLimiter) *testApp {
	t.Helper()
	return newTestAppWithTasks(t, limiter, func(s *memory.Store) domain.TaskRepository { return s.Tasks() })
}

// newTestAppWithTasks serves the routes over the task repository returned
// by tasks, which may wrap the in-memory one.
func newTestAppWithTasks(t *testing.T, limiter *service.AttemptLimiter, tasks func(*memory.Store) domain.TaskRepository) *testApp {
	t.Helper()
	store := memory.New(4)
	sessions := service.NewSessionRegistry()
	auth := service.NewAuthService(store.Identities(), store.Users(), testJWTSecret)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Deps{
		Auth:     auth,
		Tasks:    service.NewTaskService(tasks(store), service.PolicyOpen, nil),
		Sessions: sessions,
		Limiter:  limiter,
	})

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})
	return &testApp{srv: srv, store: store, sessions: sessions, auth: auth}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func (a *testApp) postForm(t *testing.T, c *http.Client, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+path, form)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) (int, string) {
	t.Helper()
	resp, err := c.Get(a.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func (a *testApp) register(t *testing.T, c *http.Client, email, role string) {
	t.Helper()
	status, body := a.postForm(t, c, "/register", url.Values{
		"name":     {"Test " + role},
		"email":    {email},
		"password": {"secret1"},
		"role":     {role},
	})
	if status != http.StatusSeeOther {
		t.Fatalf("register %s: expected 303, got %d\n%s", email, status, body)
	}
}

// stream is an open SSE response.
type stream struct {
	body   io.ReadCloser
	lines  *bufio.Reader
	cancel context.CancelFunc
}

// openStream opens the live board of one browser tab.
func (a *testApp) openStream(t *testing.T, c *http.Client, tab, filter string) *stream {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	streamURL := a.srv.URL + "/tasks/stream?tab=" + url.QueryEscape(tab) + "&filter=" + url.QueryEscape(filter)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		cancel()
		t.Fatalf("new request: %v", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("GET /tasks/stream: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		cancel()
		resp.Body.Close()
		t.Fatalf("stream: expected 200, got %d", resp.StatusCode)
	}
	s := &stream{body: resp.Body, lines: bufio.NewReader(resp.Body), cancel: cancel}
	t.Cleanup(s.close)
	return s
}

func (s *stream) close() {
	s.cancel()
	s.body.Close()
}

// waitFor reads events until one contains every want substring and
// returns that event.
func (s *stream) waitFor(t *testing.T, want ...string) string {
	t.Helper()
	var event strings.Builder
	for {
		line, err := s.lines.ReadString('\n')
		if err != nil {
			t.Fatalf("stream ended before %q: %v", want, err)
		}
		if strings.TrimSpace(line) != "" {
			event.WriteString(line)
			continue
		}
		got := event.String()
		event.Reset()
		if containsAll(got, want...) {
			return got
		}
	}
}

// ended reports whether the server closed the stream.
func (s *stream) ended() bool {
	_, err := io.Copy(io.Discard, s.lines)
	return err == nil
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}
