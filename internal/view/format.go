package view

import (
	"net/http"
	"strconv"
	"time"
)

const (
	deadlineLayout  = "Jan 2, 2006"
	createdAtLayout = "Jan 2, 2006 03:04 PM"
)

// FormatDeadline renders a deadline date, or N/A when unset.
func FormatDeadline(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(deadlineLayout)
}

// FormatCreatedAt renders a creation timestamp, or N/A while the server
// timestamp is still pending.
func FormatCreatedAt(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(createdAtLayout)
}

func httpStatusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "Error " + strconv.Itoa(status)
}
