package user

import "errors"

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUnknownAnimal      = errors.New("animal not found")
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("password reset is invalid or has expired")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrEmailReadOnly      = errors.New("the email field cannot be changed")
)
