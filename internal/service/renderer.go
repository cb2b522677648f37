package service

import "github.com/msomdec/task-tracker/internal/domain"

// Filter restricts the coordinator table by status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

// ParseFilter returns the filter named by s, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterPending, FilterCompleted:
		return Filter(s)
	}
	return FilterAll
}

func (f Filter) matches(status domain.TaskStatus) bool {
	switch f {
	case FilterPending:
		return status == domain.TaskStatusPending
	case FilterCompleted:
		return status == domain.TaskStatusCompleted
	}
	return true
}

// Summary counts tasks by status.
type Summary struct {
	Total     int
	Pending   int
	Completed int
}

// TaskCard is one rendered task.
type TaskCard struct {
	domain.Task
	// CanComplete is set on a member's Pending tasks.
	CanComplete bool
}

// Board is the role-specific projection of a snapshot.
type Board struct {
	Role    domain.Role
	Filter  Filter
	Summary Summary
	Tasks   []TaskCard
}

// Empty reports whether there is nothing to list.
func (b Board) Empty() bool {
	return len(b.Tasks) == 0
}

// ProjectBoard projects a snapshot for role. Counts always cover the whole
// snapshot; the filter only narrows the coordinator's rows. Members see all
// of their tasks.
func ProjectBoard(tasks []domain.Task, role domain.Role, filter Filter) Board {
	board := Board{Role: role, Filter: filter}
	if role != domain.RoleCoordinator {
		board.Filter = FilterAll
	}

	for _, t := range tasks {
		board.Summary.Total++
		switch t.Status {
		case domain.TaskStatusPending:
			board.Summary.Pending++
		case domain.TaskStatusCompleted:
			board.Summary.Completed++
		}

		if !board.Filter.matches(t.Status) {
			continue
		}
		board.Tasks = append(board.Tasks, TaskCard{
			Task:        t,
			CanComplete: role == domain.RoleMember && t.Status == domain.TaskStatusPending,
		})
	}
	return board
}
