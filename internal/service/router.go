package service

import "github.com/msomdec/task-tracker/internal/domain"

// View is one of the three mutually exclusive top-level regions.
type View string

const (
	ViewAuth        View = "auth"
	ViewCoordinator View = "coordinator"
	ViewMember      View = "member"
)

// Route selects the visible view for the session's identity. The role alone
// decides the dashboard, so there is no way to move between dashboards.
func Route(user *domain.User) View {
	if user == nil {
		return ViewAuth
	}
	switch user.Role {
	case domain.RoleCoordinator:
		return ViewCoordinator
	case domain.RoleMember:
		return ViewMember
	}
	return ViewAuth
}
