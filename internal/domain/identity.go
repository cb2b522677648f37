package domain

import "context"

// Identity is the opaque result of a successful sign-up or sign-in.
type Identity struct {
	ID    string
	Email string
}

// IdentityProvider owns credentials. Register fails with
// ErrDuplicateAccount and Login with ErrInvalidCredentials.
type IdentityProvider interface {
	Register(ctx context.Context, email, password string) (*Identity, error)
	Login(ctx context.Context, email, password string) (*Identity, error)
}
