package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/msomdec/task-tracker/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type credential struct {
	id   string
	hash []byte
}

// IdentityProvider keeps bcrypt-hashed credentials keyed by email.
type IdentityProvider struct {
	mu      sync.Mutex
	byEmail map[string]credential
	cost    int
}

func NewIdentityProvider(bcryptCost int) *IdentityProvider {
	return &IdentityProvider{byEmail: make(map[string]credential), cost: bcryptCost}
}

func (p *IdentityProvider) Register(_ context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byEmail[email]; ok {
		return nil, domain.ErrDuplicateAccount
	}
	cred := credential{id: uuid.NewString(), hash: hash}
	p.byEmail[email] = cred
	return &domain.Identity{ID: cred.id, Email: email}, nil
}

func (p *IdentityProvider) Login(_ context.Context, email, password string) (*domain.Identity, error) {
	email = domain.NormalizeEmail(email)

	p.mu.Lock()
	cred, ok := p.byEmail[email]
	p.mu.Unlock()
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(cred.hash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Identity{ID: cred.id, Email: email}, nil
}
