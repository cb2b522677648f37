package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/task-tracker/internal/service"
	"github.com/msomdec/task-tracker/internal/view"
)

// TaskHandler handles task writes and the live board stream.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// HandleCreate assigns a new task.
// POST /tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	_, err := h.tasks.Create(r.Context(), user, service.CreateTaskInput{
		Title:    r.FormValue("title"),
		Assignee: r.FormValue("assignee"),
		Deadline: r.FormValue("deadline"),
	})
	if err != nil {
		respondNotice(w, r, noticeForError("create task", err), "")
		return
	}
	respondNotice(w, r, service.NoticeTaskAssigned, "task-form")
}

// HandleComplete marks a task Completed.
// POST /tasks/{id}/complete
func (h *TaskHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.tasks.Complete(r.Context(), user, r.PathValue("id")); err != nil {
		respondNotice(w, r, noticeForError("complete task", err), "")
		return
	}
	respondNotice(w, r, service.NoticeCompleted, "")
}

// HandleStream opens the tab's role-scoped subscription and patches
// #task-board with every snapshot until the client goes away or the
// subscription ends. Opening a new stream from the same tab ends the
// previous one; other tabs of the browser keep theirs.
// GET /tasks/stream?tab={uuid}&filter=all|pending|completed
func (h *TaskHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	sess := SessionFromContext(r.Context())
	if user == nil || sess == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tab := r.URL.Query().Get("tab")
	if tab != "" {
		if _, err := uuid.Parse(tab); err != nil {
			http.Error(w, "Invalid tab", http.StatusBadRequest)
			return
		}
	}
	filter := service.ParseFilter(r.URL.Query().Get("filter"))
	token := csrf.Token(r)

	sub, err := h.tasks.Subscribe(r.Context(), sess, tab)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		notice := noticeForError("subscribe tasks", err)
		sse.PatchElementTempl(view.Toast(&notice))
		return
	}
	defer sess.Release(tab, sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					notice := noticeForError("task subscription", err)
					sse.PatchElementTempl(view.Toast(&notice))
				}
				return
			}

			board := service.ProjectBoard(snap.Tasks, user.Role, filter)
			if err := sse.PatchElementTempl(
				view.Board(board, token),
				datastar.WithSelectorID(view.BoardID),
				datastar.WithModeInner(),
			); err != nil {
				slog.Error("patch task board", "error", err)
				return
			}
		}
	}
}
