package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/task-tracker/internal/domain"
	"github.com/msomdec/task-tracker/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection and hands out the repositories built on it.
type DB struct {
	SqlDB *sql.DB

	identities *IdentityProvider
	users      *UserRepository
	tasks      *TaskRepository
}

var _ domain.Backend = (*DB)(nil)

// New opens a SQLite database at the given path and configures it for use.
// It enables WAL mode and foreign keys.
func New(dbPath string, opts ...Option) (*DB, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	// A single connection serializes writers; SQLite allows only one anyway.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := &DB{SqlDB: sqlDB}
	db.identities = NewIdentityProvider(db, cfg.bcryptCost)
	db.users = NewUserRepository(db)
	now := cfg.now
	if now == nil {
		now = time.Now
	}
	db.tasks = NewTaskRepository(db, now)
	return db, nil
}

type options struct {
	bcryptCost int
	now        func() time.Time
}

// Option configures New.
type Option func(*options)

// WithBcryptCost sets the cost used to hash stored passwords. Zero selects
// bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// WithClock sets the clock tasks are stamped with.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Migrate applies all pending embedded migrations and resumes task
// timestamps after the newest stored one.
func (db *DB) Migrate(ctx context.Context) error {
	if err := migrations.Run(ctx, db.SqlDB); err != nil {
		return err
	}
	return db.tasks.resumeClock(ctx)
}

// Close ends every open subscription and closes the connection.
func (db *DB) Close() error {
	db.tasks.closeAll()
	return db.SqlDB.Close()
}

func (db *DB) Identities() domain.IdentityProvider { return db.identities }
func (db *DB) Users() domain.UserRepository        { return db.users }
func (db *DB) Tasks() domain.TaskRepository        { return db.tasks }

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: PRIMARY KEY")
}
