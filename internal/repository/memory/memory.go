// Package memory is an in-process backend used for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
)

// Store bundles the in-memory collaborators.
type Store struct {
	identities *IdentityProvider
	users      *UserRepository
	tasks      *TaskRepository
}

var _ domain.Backend = (*Store)(nil)

// New creates an empty store. bcryptCost applies to stored passwords.
func New(bcryptCost int) *Store {
	return &Store{
		identities: NewIdentityProvider(bcryptCost),
		users:      NewUserRepository(),
		tasks:      NewTaskRepository(time.Now),
	}
}

func (s *Store) Migrate(context.Context) error { return nil }

// Close ends every open subscription.
func (s *Store) Close() error {
	s.tasks.closeAll()
	return nil
}

func (s *Store) Identities() domain.IdentityProvider { return s.identities }
func (s *Store) Users() domain.UserRepository        { return s.users }
func (s *Store) Tasks() domain.TaskRepository        { return s.tasks }
