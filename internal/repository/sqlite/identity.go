package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/task-tracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// IdentityProvider stores bcrypt-hashed credentials in the identities table.
type IdentityProvider struct {
	db   *sql.DB
	cost int
}

func NewIdentityProvider(db *DB, bcryptCost int) *IdentityProvider {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityProvider{db: db.SqlDB, cost: bcryptCost}
}

func (p *IdentityProvider) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO identities (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, email, string(hash), time.Now().UTC(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}
	return &domain.Identity{ID: id, Email: email}, nil
}

func (p *IdentityProvider) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)

	var id, hash string
	err := p.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM identities WHERE email = ?`, email,
	).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Identity{ID: id, Email: email}, nil
}
