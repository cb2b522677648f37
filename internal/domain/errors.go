package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProfileMissing     = errors.New("user profile missing")
	ErrWriteDenied        = errors.New("write denied")
	ErrSubscriptionDenied = errors.New("subscription denied")
	ErrIndexUnavailable   = errors.New("index unavailable")
	ErrInvalidTransition  = errors.New("invalid status transition")
)
