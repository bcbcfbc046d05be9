package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wildbook-backend/internal/domains/user"
	"wildbook-backend/pkg/database"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) user.Repository {
	return &postgresRepository{pool: pool}
}

const userColumns = `id, email, name, password_hash, role, reset_token, reset_token_expires_at, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.ResetToken,
		&u.ResetTokenExpiresAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
        INSERT INTO users (email, name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + userColumns

	created, err := scanUser(r.pool.QueryRow(ctx, query, u.Email, u.Name, u.PasswordHash, u.Role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, user.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) (*user.User, error) {
	query := `
        UPDATE users SET name = $2, updated_at = now()
        WHERE id = $1
        RETURNING ` + userColumns

	u, err := scanUser(r.pool.QueryRow(ctx, query, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	ct, err := r.pool.Exec(ctx, `
        UPDATE users SET reset_token = $2, reset_token_expires_at = $3, updated_at = now()
        WHERE id = $1`, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) GetByResetToken(ctx context.Context, token string) (*user.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE reset_token = $1 AND reset_token_expires_at > now()`

	u, err := scanUser(r.pool.QueryRow(ctx, query, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by reset token: %w", err)
	}
	return u, nil
}

func (r *postgresRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	ct, err := r.pool.Exec(ctx, `
        UPDATE users
        SET password_hash = $2, reset_token = NULL, reset_token_expires_at = NULL, updated_at = now()
        WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *postgresRepository) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	ct, err := r.pool.Exec(ctx, `
        UPDATE users
        SET reset_token = NULL, reset_token_expires_at = NULL, updated_at = now()
        WHERE reset_token IS NOT NULL AND reset_token_expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired reset tokens: %w", err)
	}
	return ct.RowsAffected(), nil
}

// ToggleHeart runs remove-or-add in one transaction so a double click
// cannot leave a duplicate row behind.
func (r *postgresRepository) ToggleHeart(ctx context.Context, userID, animalID uuid.UUID) (bool, error) {
	var hearted bool

	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
            DELETE FROM animal_hearts WHERE user_id = $1 AND animal_id = $2`, userID, animalID)
		if err != nil {
			return fmt.Errorf("failed to remove heart: %w", err)
		}
		if ct.RowsAffected() > 0 {
			hearted = false
			return nil
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO animal_hearts (user_id, animal_id) VALUES ($1, $2)
            ON CONFLICT DO NOTHING`, userID, animalID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return user.ErrUnknownAnimal
			}
			return fmt.Errorf("failed to add heart: %w", err)
		}
		hearted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return hearted, nil
}

func (r *postgresRepository) HeartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT animal_id FROM animal_hearts
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hearts: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan heart id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
