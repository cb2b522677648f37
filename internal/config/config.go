// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/msomdec/task-tracker/internal/service"
)

const (
	BackendMemory    = "memory"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

type Config struct {
	Port         string
	Backend      string
	DatabasePath string
	JWTSecret    string
	BcryptCost   int
	CookieSecure bool
	CSRFKey      string
	TaskPolicy   service.Policy

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseAPIKey          string

	ResendAPIKey string
	MailFrom     string
}

// Load reads an optional .env file, then the environment. Variables already
// set in the environment take precedence over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:         envOrDefault("PORT", "8080"),
		Backend:      envOrDefault("BACKEND", BackendSQLite),
		DatabasePath: envOrDefault("DATABASE_PATH", "tasks.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		// Default to secure cookies; disable only for local development.
		CookieSecure: os.Getenv("COOKIE_SECURE") != "false",
		CSRFKey:      os.Getenv("CSRF_KEY"),
		TaskPolicy:   service.Policy(envOrDefault("TASK_POLICY", string(service.PolicyOpen))),

		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseAPIKey:          os.Getenv("FIREBASE_API_KEY"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     envOrDefault("MAIL_FROM", "Task Tracker <noreply@example.org>"),
	}

	cfg.BcryptCost = 12
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		cfg.BcryptCost = parsed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.CSRFKey != "" && len(c.CSRFKey) != 32 {
		return errors.New("CSRF_KEY must be exactly 32 bytes")
	}

	switch c.Backend {
	case BackendMemory, BackendSQLite:
	case BackendFirestore:
		if c.FirebaseProjectID == "" || c.FirebaseAPIKey == "" {
			return errors.New("BACKEND=firestore requires FIREBASE_PROJECT_ID and FIREBASE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend)
	}

	if _, err := service.ParsePolicy(string(c.TaskPolicy)); err != nil {
		return fmt.Errorf("invalid TASK_POLICY: %w", err)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
