package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for users and their hearts.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)

	UpdateName(ctx context.Context, id uuid.UUID, name string) (*User, error)

	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error

	// GetByResetToken only matches tokens that have not expired.
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// UpdatePassword stores the new hash and clears the reset token.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// ClearExpiredResetTokens removes stale tokens; returns how many were
	// cleared.
	ClearExpiredResetTokens(ctx context.Context) (int64, error)

	// ToggleHeart adds the animal to the user's hearts if absent, removes
	// it if present. Returns true when the animal is hearted afterwards.
	ToggleHeart(ctx context.Context, userID, animalID uuid.UUID) (bool, error)

	// HeartIDs lists the user's hearted animal ids, newest heart first.
	HeartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
