package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a transient, toast-style message for the user.
type Notice struct {
	Message  string
	Severity Severity
}
