package service_test

import (
	"testing"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/service"
)

func sampleTasks() []domain.Task {
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	return []domain.Task{
		{ID: "3", Title: "Print badges", AssignedTo: member.Email, Status: domain.TaskStatusPending, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", Title: "Book venue", AssignedTo: member.Email, Status: domain.TaskStatusCompleted, CreatedAt: base.Add(time.Hour)},
		{ID: "1", Title: "Order food", AssignedTo: "other@ieee.org", Status: domain.TaskStatusPending, CreatedAt: base},
	}
}

func TestProjectBoard_CoordinatorFilters(t *testing.T) {
	tests := []struct {
		filter service.Filter
		want   []string
	}{
		{service.FilterAll, []string{"3", "2", "1"}},
		{service.FilterPending, []string{"3", "1"}},
		{service.FilterCompleted, []string{"2"}},
	}

	for _, tc := range tests {
		t.Run(string(tc.filter), func(t *testing.T) {
			board := service.ProjectBoard(sampleTasks(), domain.RoleCoordinator, tc.filter)

			// Counts ignore the filter.
			if board.Summary != (service.Summary{Total: 3, Pending: 2, Completed: 1}) {
				t.Fatalf("unexpected summary %+v", board.Summary)
			}
			if len(board.Tasks) != len(tc.want) {
				t.Fatalf("expected %d rows, got %d", len(tc.want), len(board.Tasks))
			}
			for i, id := range tc.want {
				if board.Tasks[i].ID != id {
					t.Fatalf("row %d: expected %s, got %s", i, id, board.Tasks[i].ID)
				}
				if board.Tasks[i].CanComplete {
					t.Fatal("coordinator rows never offer completion")
				}
			}
		})
	}
}

func TestProjectBoard_Member(t *testing.T) {
	board := service.ProjectBoard(sampleTasks()[:2], domain.RoleMember, service.FilterCompleted)

	if board.Filter != service.FilterAll {
		t.Fatalf("members are never filtered, got %s", board.Filter)
	}
	if len(board.Tasks) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(board.Tasks))
	}
	if !board.Tasks[0].CanComplete {
		t.Fatal("pending card should offer completion")
	}
	if board.Tasks[1].CanComplete {
		t.Fatal("completed card should not offer completion")
	}
}

func TestProjectBoard_Empty(t *testing.T) {
	board := service.ProjectBoard(nil, domain.RoleMember, service.FilterAll)
	if !board.Empty() {
		t.Fatal("expected empty board")
	}
	if board.Summary != (service.Summary{}) {
		t.Fatalf("expected zero summary, got %+v", board.Summary)
	}

	filtered := service.ProjectBoard(sampleTasks(), domain.RoleCoordinator, service.FilterCompleted)
	if filtered.Empty() {
		t.Fatal("expected a completed row")
	}
}

func TestProjectBoard_CountsNeverExceedTotal(t *testing.T) {
	tasks := append(sampleTasks(), domain.Task{ID: "4", Status: "Archived"})
	board := service.ProjectBoard(tasks, domain.RoleCoordinator, service.FilterAll)

	s := board.Summary
	if s.Pending+s.Completed > s.Total {
		t.Fatalf("pending+completed exceeds total: %+v", s)
	}
	if s.Total != 4 {
		t.Fatalf("expected total 4, got %d", s.Total)
	}
}

func TestParseFilter(t *testing.T) {
	tests := map[string]service.Filter{
		"":          service.FilterAll,
		"all":       service.FilterAll,
		"pending":   service.FilterPending,
		"completed": service.FilterCompleted,
		"Pending":   service.FilterAll,
	}
	for in, want := range tests {
		if got := service.ParseFilter(in); got != want {
			t.Fatalf("ParseFilter(%q) = %s, want %s", in, got, want)
		}
	}
}
