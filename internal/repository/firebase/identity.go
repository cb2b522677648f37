package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"

	"github.com/msomdec/task-tracker/internal/domain"
)

// IdentityProvider registers through the Admin SDK and signs in through the
// Identity Toolkit REST API, since the Admin SDK cannot verify passwords.
type IdentityProvider struct {
	admin   *auth.Client
	toolkit *identitytoolkit.Service
}

func (p *IdentityProvider) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(domain.NormalizeEmail(email)).
		Password(password)

	rec, err := p.admin.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, domain.ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	return &domain.Identity{ID: rec.UID, Email: rec.Email}, nil
}

func (p *IdentityProvider) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             domain.NormalizeEmail(email),
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := p.toolkit.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		if isRejectedSignIn(err) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return &domain.Identity{ID: resp.LocalId, Email: resp.Email}, nil
}
