package user

import (
	"context"

	"github.com/google/uuid"
)

// Service is the business-logic contract for accounts, auth and hearts.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)

	GetProfile(ctx context.Context, id uuid.UUID) (*UserResponse, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, req UpdateAccountRequest) (*UserResponse, error)

	// ForgotPassword issues a reset token and queues the reset email.
	// Returns ErrUserNotFound for unknown emails; the handler decides how
	// much of that to reveal.
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error

	// ResetPassword validates the token, stores the new password and logs
	// the user in.
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*AuthResponse, error)

	// ToggleHeart flips the heart for one animal and returns the updated
	// heart set.
	ToggleHeart(ctx context.Context, userID, animalID uuid.UUID) ([]uuid.UUID, error)
	HeartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// CleanupExpiredResetTokens is invoked by the periodic worker job.
	CleanupExpiredResetTokens(ctx context.Context) (int64, error)
}
