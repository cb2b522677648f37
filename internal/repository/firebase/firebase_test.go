package firebase

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/msomdec/task-tracker/internal/domain"
)

func TestTaskDocRoundTrip(t *testing.T) {
	in := &domain.Task{
		Title:      "Book venue",
		AssignedTo: "member@ieee.org",
		Deadline:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     domain.TaskStatusCompleted,
		CreatedBy:  "coord@ieee.org",
	}

	doc := toTaskDoc(in)
	if doc.Status != "Pending" {
		t.Fatalf("new task documents must start Pending, got %q", doc.Status)
	}
	if doc.Deadline != "2025-01-10" {
		t.Fatalf("expected deadline 2025-01-10, got %q", doc.Deadline)
	}
	if !doc.CreatedAt.IsZero() {
		t.Fatal("createdAt must be left for the server timestamp")
	}

	out := doc.toTask("abc")
	if out.ID != "abc" || out.Title != in.Title || out.AssignedTo != in.AssignedTo || out.CreatedBy != in.CreatedBy {
		t.Fatalf("unexpected task: %+v", out)
	}
	if !out.Deadline.Equal(in.Deadline) {
		t.Fatalf("expected deadline %v, got %v", in.Deadline, out.Deadline)
	}
}

func TestTaskDoc_DeadlineWithTime(t *testing.T) {
	out := taskDoc{Deadline: "2025-01-10T18:00"}.toTask("x")
	if out.Deadline.Format(domain.DeadlineLayout) != "2025-01-10" {
		t.Fatalf("expected 2025-01-10, got %v", out.Deadline)
	}

	out = taskDoc{Deadline: "soon"}.toTask("y")
	if !out.Deadline.IsZero() {
		t.Fatalf("expected zero deadline for malformed value, got %v", out.Deadline)
	}
}

func TestListenError(t *testing.T) {
	tests := []struct {
		name string
		code codes.Code
		want error
	}{
		{"permission denied", codes.PermissionDenied, domain.ErrSubscriptionDenied},
		{"missing index", codes.FailedPrecondition, domain.ErrIndexUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := listenError(status.Error(tc.code, "boom"))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	err := listenError(status.Error(codes.Unavailable, "down"))
	if errors.Is(err, domain.ErrSubscriptionDenied) || errors.Is(err, domain.ErrIndexUnavailable) {
		t.Fatalf("transport errors must not be classified, got %v", err)
	}
}

func TestWriteError(t *testing.T) {
	if err := writeError("add task", status.Error(codes.PermissionDenied, "rules")); !errors.Is(err, domain.ErrWriteDenied) {
		t.Fatalf("expected ErrWriteDenied, got %v", err)
	}
	if err := writeError("update", status.Error(codes.NotFound, "gone")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsRejectedSignIn(t *testing.T) {
	if !isRejectedSignIn(&googleapi.Error{Code: http.StatusBadRequest, Message: "INVALID_PASSWORD"}) {
		t.Fatal("expected 400 to be a rejected sign-in")
	}
	if isRejectedSignIn(&googleapi.Error{Code: http.StatusServiceUnavailable}) {
		t.Fatal("expected 503 not to be a rejected sign-in")
	}
	if isRejectedSignIn(errors.New("dial tcp")) {
		t.Fatal("expected plain errors not to be a rejected sign-in")
	}
}

func TestTaskRepository_CloseAllEndsFeeds(t *testing.T) {
	r := newTaskRepository(nil)
	stopped := 0
	stop := func() { stopped++ }

	cancelled := r.track(stop)
	open := r.track(stop)
	cancelled.Cancel()
	if n := r.open(); n != 1 {
		t.Fatalf("expected 1 open feed, got %d", n)
	}

	r.closeAll()
	if !open.Closed() || open.Err() != nil {
		t.Fatalf("expected the feed to end without an error, got %v", open.Err())
	}
	if stopped != 2 {
		t.Fatalf("expected both listeners stopped, got %d", stopped)
	}
	if n := r.open(); n != 0 {
		t.Fatalf("expected no open feeds, got %d", n)
	}
}
