package migrations_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/msomdec/task-tracker/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first migration run: %v", err)
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, assigned_to, deadline, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"t1", "Book venue", "member@ieee.org", "2025-01-10", "Pending", "coord@ieee.org", 1,
	)
	if err != nil {
		t.Fatalf("insert into tasks: %v", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, assigned_to, deadline, status, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"t2", "Bad", "member@ieee.org", "", "Archived", "coord@ieee.org", 2,
	)
	if err == nil {
		t.Fatal("expected status outside the closed set to be rejected")
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := openMemoryDB(t)
	ctx := context.Background()

	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("second run (idempotent): %v", err)
	}

	pending, err := migrations.Pending(ctx, db)
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending migrations, got %v", pending)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count schema_migrations: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 migration records, got %d", count)
	}
}
