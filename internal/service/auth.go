package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/task-tracker/internal/domain"
)

// TokenTTL is the lifetime of a session token.
const TokenTTL = 24 * time.Hour

// AuthMode is the state of the auth form.
type AuthMode string

const (
	AuthModeLogin    AuthMode = "login"
	AuthModeRegister AuthMode = "register"
)

// ParseAuthMode returns the mode named by s, defaulting to login.
func ParseAuthMode(s string) AuthMode {
	if AuthMode(s) == AuthModeRegister {
		return AuthModeRegister
	}
	return AuthModeLogin
}

// Toggle is the only transition between modes.
func (m AuthMode) Toggle() AuthMode {
	if m == AuthModeRegister {
		return AuthModeLogin
	}
	return AuthModeRegister
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Name     string      `validate:"required"`
	Email    string      `validate:"required,email"`
	Password string      `validate:"required,min=6"`
	Role     domain.Role `validate:"required,oneof=coordinator member"`
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// AuthService handles registration, login, session restore and the JWT
// that carries the identity between requests.
type AuthService struct {
	identities domain.IdentityProvider
	users      domain.UserRepository
	jwtSecret  []byte
}

// NewAuthService creates a new AuthService.
func NewAuthService(identities domain.IdentityProvider, users domain.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		identities: identities,
		users:      users,
		jwtSecret:  []byte(jwtSecret),
	}
}

// Register creates the identity and its linked user record.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = domain.NormalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	identity, err := s.identities.Register(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return nil, err
		}
		return nil, fmt.Errorf("register identity: %w", err)
	}

	user := &domain.User{
		ID:    identity.ID,
		Email: identity.Email,
		Name:  in.Name,
		Role:  in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user record: %w", err)
	}
	return user, nil
}

// Login verifies credentials and loads the linked user record.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	in := loginInput{Email: domain.NormalizeEmail(email), Password: password}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	identity, err := s.identities.Login(ctx, in.Email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s.Restore(ctx, identity.ID)
}

// Restore re-hydrates the user record for an already authenticated
// identity. A missing record is ErrProfileMissing.
func (s *AuthService) Restore(ctx context.Context, identityID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileMissing
		}
		return nil, fmt.Errorf("get user record: %w", err)
	}
	return user, nil
}

// IssueToken signs a session token for user.
func (s *AuthService) IssueToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and validates a session token and returns the
// identity id from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}
