package service

import (
	"errors"
	"strings"

	"github.com/msomdec/task-tracker/internal/domain"
)

// Success notices.
var (
	NoticeRegistered   = domain.Notice{Message: "Registration successful! Welcome.", Severity: domain.SeveritySuccess}
	NoticeLoggedIn     = domain.Notice{Message: "Logged in successfully!", Severity: domain.SeveritySuccess}
	NoticeLoggedOut    = domain.Notice{Message: "Logged out successfully", Severity: domain.SeveritySuccess}
	NoticeTaskAssigned = domain.Notice{Message: "Task assigned successfully", Severity: domain.SeveritySuccess}
	NoticeCompleted    = domain.Notice{Message: "Task marked as Completed", Severity: domain.SeveritySuccess}
	NoticeRateLimited  = domain.Notice{Message: "Too many attempts. Please wait a moment and try again.", Severity: domain.SeverityError}
)

// NoticeFor maps an error onto the notice shown to the user. Every error is
// recoverable; IndexUnavailable is only a warning because partial data is
// still shown.
func NoticeFor(err error) domain.Notice {
	msg := "An unexpected error occurred. Please try again."
	sev := domain.SeverityError

	switch {
	case errors.Is(err, domain.ErrValidation):
		msg = validationMessage(err)
	case errors.Is(err, domain.ErrDuplicateAccount):
		msg = "Account with this email already exists"
	case errors.Is(err, domain.ErrInvalidCredentials):
		msg = "Invalid email or password"
	case errors.Is(err, domain.ErrProfileMissing):
		msg = "User profile not found. Please contact an admin."
	case errors.Is(err, domain.ErrWriteDenied):
		msg = "Missing permissions. Check Firestore rules."
	case errors.Is(err, domain.ErrSubscriptionDenied):
		msg = "Access Denied. Ensure Firestore rules are public/setup."
	case errors.Is(err, domain.ErrIndexUnavailable):
		msg = "Index not built yet. Tasks might be missing."
		sev = domain.SeverityWarning
	case errors.Is(err, domain.ErrInvalidTransition):
		msg = "A completed task cannot be reopened."
	case errors.Is(err, domain.ErrNotFound):
		msg = "Task not found."
	case errors.Is(err, domain.ErrUnauthorized):
		msg = "Please log in to continue."
	}
	return domain.Notice{Message: msg, Severity: sev}
}

// validationMessage strips the sentinel prefix from a wrapped validation error.
func validationMessage(err error) string {
	prefix := domain.ErrValidation.Error() + ": "
	full := err.Error()
	if i := strings.Index(full, prefix); i >= 0 {
		return full[i+len(prefix):]
	}
	return "Please fill all required fields"
}
