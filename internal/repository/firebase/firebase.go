// Package firebase is the hosted backend: Firebase Auth for identities and
// Cloud Firestore for user records and tasks.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/msomdec/task-tracker/internal/domain"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"
)

// Config locates the Firebase project.
type Config struct {
	ProjectID       string
	CredentialsFile string // service account key; empty uses application default credentials
	APIKey          string // web API key, required for password sign-in
}

// Backend holds the Firebase clients.
type Backend struct {
	store      *firestore.Client
	identities *IdentityProvider
	users      *UserRepository
	tasks      *TaskRepository
}

var _ domain.Backend = (*Backend)(nil)

// New initializes the Firebase app and its Firestore and Auth clients.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("firebase: API key is required for password sign-in")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	store, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("get firestore client: %w", err)
	}

	admin, err := app.Auth(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("get auth client: %w", err)
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create identity toolkit service: %w", err)
	}

	slog.Info("firebase initialized", "project", cfg.ProjectID)
	return &Backend{
		store:      store,
		identities: &IdentityProvider{admin: admin, toolkit: toolkit},
		users:      &UserRepository{users: store.Collection(usersCollection)},
		tasks:      newTaskRepository(store.Collection(tasksCollection)),
	}, nil
}

// Migrate is a no-op: Firestore collections are schemaless. Composite
// indexes are managed in the Firebase console.
func (b *Backend) Migrate(context.Context) error { return nil }

// Close ends every open subscription, then closes the Firestore client.
func (b *Backend) Close() error {
	b.tasks.closeAll()
	return b.store.Close()
}

func (b *Backend) Identities() domain.IdentityProvider { return b.identities }
func (b *Backend) Users() domain.UserRepository        { return b.users }
func (b *Backend) Tasks() domain.TaskRepository        { return b.tasks }
