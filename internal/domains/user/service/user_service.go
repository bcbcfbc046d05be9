package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"wildbook-backend/internal/domains/user"
	"wildbook-backend/internal/shared"
	"wildbook-backend/pkg/jwt"
	"wildbook-backend/pkg/logger"
)

const (
	resetTokenBytes = 20
	resetTokenTTL   = time.Hour
)

// TaskEnqueuer pushes email work onto the background queue.
type TaskEnqueuer interface {
	EnqueueResetEmail(payload shared.ResetEmailPayload) error
	EnqueueWelcomeEmail(payload shared.WelcomeEmailPayload) error
}

type UserService struct {
	repo    user.Repository
	jwt     *jwt.Manager
	queue   TaskEnqueuer
	baseURL string
}

func NewUserService(repo user.Repository, jwtManager *jwt.Manager, queue TaskEnqueuer, baseURL string) *UserService {
	return &UserService{
		repo:    repo,
		jwt:     jwtManager,
		queue:   queue,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *UserService) Register(ctx context.Context, req user.RegisterRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, &user.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         user.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.EnqueueWelcomeEmail(shared.WelcomeEmailPayload{
		Email: created.Email,
		Name:  created.Name,
	}); err != nil {
		// Registration still succeeds when the queue is down.
		logger.Error("failed to enqueue welcome email", err)
	}

	return s.issueTokens(created)
}

func (s *UserService) Login(ctx context.Context, req user.LoginRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*user.UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.ToResponse(), nil
}

func (s *UserService) UpdateAccount(ctx context.Context, id uuid.UUID, req user.UpdateAccountRequest) (*user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The email field is accepted in the form but never applied; submitting
	// a different address is rejected outright.
	if req.Email != "" && !strings.EqualFold(req.Email, u.Email) {
		return nil, user.ErrEmailReadOnly
	}

	updated, err := s.repo.UpdateName(ctx, id, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	return updated.ToResponse(), nil
}

func (s *UserService) ForgotPassword(ctx context.Context, req user.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	token, err := generateResetToken()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.repo.SetResetToken(ctx, u.ID, token, expiresAt); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/account/reset/%s", s.baseURL, token)
	if err := s.queue.EnqueueResetEmail(shared.ResetEmailPayload{
		Email:    u.Email,
		ResetURL: resetURL,
	}); err != nil {
		return fmt.Errorf("failed to enqueue reset email: %w", err)
	}

	logger.Info("password reset token issued", map[string]interface{}{"email": u.Email})
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) (*user.AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByResetToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return nil, err
	}

	return s.issueTokens(u)
}

func (s *UserService) ToggleHeart(ctx context.Context, userID, animalID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.repo.ToggleHeart(ctx, userID, animalID); err != nil {
		return nil, err
	}
	return s.repo.HeartIDs(ctx, userID)
}

func (s *UserService) HeartIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.HeartIDs(ctx, userID)
}

func (s *UserService) CleanupExpiredResetTokens(ctx context.Context) (int64, error) {
	cleared, err := s.repo.ClearExpiredResetTokens(ctx)
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		logger.Info("expired reset tokens cleared", map[string]interface{}{"count": cleared})
	}
	return cleared, nil
}

func (s *UserService) issueTokens(u *user.User) (*user.AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID.String(), u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refresh, err := s.jwt.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &user.AuthResponse{
		User:         u.ToResponse(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
