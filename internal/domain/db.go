package domain

import "context"

// Database defines lifecycle operations for the underlying backend.
// Each implementation owns its own schema strategy, so the whole
// persistence layer can be swapped at construction time.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}

// Backend bundles the three collaborators a running tracker needs.
type Backend interface {
	Database
	Identities() IdentityProvider
	Users() UserRepository
	Tasks() TaskRepository
}
