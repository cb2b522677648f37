package email

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/msomdec/task-tracker/internal/domain"
)

// noopHistory bounds how many mails a NoopSender remembers.
const noopHistory = 32

// NoopSender logs and records mail without delivering it. Used when no
// provider is configured, and in tests. Only the most recent noopHistory
// mails are kept.
type NoopSender struct {
	mu   sync.Mutex
	sent []domain.Mail
}

var _ domain.Mailer = (*NoopSender)(nil)

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(_ context.Context, mail domain.Mail) error {
	slog.Info("email not delivered (noop sender)", "to", mail.To, "subject", mail.Subject)
	s.mu.Lock()
	s.sent = append(s.sent, mail)
	if len(s.sent) > noopHistory {
		s.sent = slices.Clone(s.sent[len(s.sent)-noopHistory:])
	}
	s.mu.Unlock()
	return nil
}

// Sent returns a copy of the recorded mail, oldest first.
func (s *NoopSender) Sent() []domain.Mail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Mail(nil), s.sent...)
}
