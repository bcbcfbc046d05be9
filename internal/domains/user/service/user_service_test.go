package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"wildbook-backend/internal/domains/user"
	"wildbook-backend/internal/shared"
	"wildbook-backend/pkg/jwt"
)

type fakeUserRepository struct {
	users  map[uuid.UUID]*user.User
	hearts map[uuid.UUID][]uuid.UUID // userID -> animal ids, newest first
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		users:  make(map[uuid.UUID]*user.User),
		hearts: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeUserRepository) Create(_ context.Context, u *user.User) (*user.User, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, user.ErrEmailAlreadyExists
		}
	}
	clone := *u
	clone.ID = uuid.New()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.users[clone.ID] = &clone
	copied := clone
	return &copied, nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepository) UpdateName(_ context.Context, id uuid.UUID, name string) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	u.Name = name
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepository) SetResetToken(_ context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepository) GetByResetToken(_ context.Context, token string) (*user.User, error) {
	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.IsPasswordResetValid() {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeUserRepository) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

func (r *fakeUserRepository) ClearExpiredResetTokens(_ context.Context) (int64, error) {
	var cleared int64
	for _, u := range r.users {
		if u.ResetToken != nil && !u.IsPasswordResetValid() {
			u.ResetToken = nil
			u.ResetTokenExpiresAt = nil
			cleared++
		}
	}
	return cleared, nil
}

func (r *fakeUserRepository) ToggleHeart(_ context.Context, userID, animalID uuid.UUID) (bool, error) {
	ids := r.hearts[userID]
	for i, id := range ids {
		if id == animalID {
			r.hearts[userID] = append(ids[:i], ids[i+1:]...)
			return false, nil
		}
	}
	r.hearts[userID] = append([]uuid.UUID{animalID}, ids...)
	return true, nil
}

func (r *fakeUserRepository) HeartIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids := r.hearts[userID]
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out, nil
}

type fakeQueue struct {
	resetEmails   []shared.ResetEmailPayload
	welcomeEmails []shared.WelcomeEmailPayload
}

func (q *fakeQueue) EnqueueResetEmail(p shared.ResetEmailPayload) error {
	q.resetEmails = append(q.resetEmails, p)
	return nil
}

func (q *fakeQueue) EnqueueWelcomeEmail(p shared.WelcomeEmailPayload) error {
	q.welcomeEmails = append(q.welcomeEmails, p)
	return nil
}

func newTestService() (*UserService, *fakeUserRepository, *fakeQueue) {
	repo := newFakeUserRepository()
	queue := &fakeQueue{}
	jwtManager := jwt.NewManager("test-secret", 15*time.Minute, 72*time.Hour)
	return NewUserService(repo, jwtManager, queue, "http://localhost:8080/"), repo, queue
}

func register(t *testing.T, svc *UserService) *user.AuthResponse {
	t.Helper()
	auth, err := svc.Register(context.Background(), user.RegisterRequest{
		Name:            "Jamie",
		Email:           "jamie@example.com",
		Password:        "hunter2hunter2",
		PasswordConfirm: "hunter2hunter2",
	})
	require.NoError(t, err)
	return auth
}

func TestRegisterIssuesTokensAndWelcomeEmail(t *testing.T) {
	svc, repo, queue := newTestService()

	auth := register(t, svc)
	assert.NotEmpty(t, auth.AccessToken)
	assert.NotEmpty(t, auth.RefreshToken)
	assert.Equal(t, user.RoleUser, auth.User.Role)

	stored, err := repo.GetByEmail(context.Background(), "jamie@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))

	require.Len(t, queue.welcomeEmails, 1)
	assert.Equal(t, "jamie@example.com", queue.welcomeEmails[0].Email)
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Name:            "Jamie",
		Email:           "jamie@example.com",
		Password:        "hunter2hunter2",
		PasswordConfirm: "different-password",
	})
	assert.ErrorIs(t, err, user.ErrPasswordMismatch)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc)

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Name:            "Other",
		Email:           "JAMIE@example.com",
		Password:        "hunter2hunter2",
		PasswordConfirm: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	register(t, svc)

	auth, err := svc.Login(context.Background(), user.LoginRequest{
		Email:    "jamie@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.AccessToken)

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "jamie@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter2hunter2",
	})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestUpdateAccountEmailIsReadOnly(t *testing.T) {
	svc, _, _ := newTestService()
	auth := register(t, svc)

	_, err := svc.UpdateAccount(context.Background(), auth.User.ID, user.UpdateAccountRequest{
		Name:  "New Name",
		Email: "other@example.com",
	})
	assert.ErrorIs(t, err, user.ErrEmailReadOnly)

	// Same email (any case) is fine, only the name changes.
	updated, err := svc.UpdateAccount(context.Background(), auth.User.ID, user.UpdateAccountRequest{
		Name:  "New Name",
		Email: "JAMIE@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "jamie@example.com", updated.Email)
}

func TestForgotPasswordIssuesTokenAndEmail(t *testing.T) {
	svc, repo, queue := newTestService()
	register(t, svc)

	err := svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "jamie@example.com"})
	require.NoError(t, err)

	stored, err := repo.GetByEmail(context.Background(), "jamie@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetToken)
	assert.Len(t, *stored.ResetToken, 40) // 20 random bytes, hex encoded
	assert.True(t, stored.IsPasswordResetValid())

	require.Len(t, queue.resetEmails, 1)
	assert.Equal(t, "http://localhost:8080/account/reset/"+*stored.ResetToken, queue.resetEmails[0].ResetURL)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestResetPasswordLogsUserIn(t *testing.T) {
	svc, repo, _ := newTestService()
	register(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), user.ForgotPasswordRequest{Email: "jamie@example.com"}))

	stored, err := repo.GetByEmail(context.Background(), "jamie@example.com")
	require.NoError(t, err)

	auth, err := svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:           *stored.ResetToken,
		Password:        "brand-new-password",
		PasswordConfirm: "brand-new-password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, auth.AccessToken)

	// The token is single-use.
	_, err = svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:           *stored.ResetToken,
		Password:        "another-password",
		PasswordConfirm: "another-password",
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	_, err = svc.Login(context.Background(), user.LoginRequest{
		Email:    "jamie@example.com",
		Password: "brand-new-password",
	})
	assert.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, repo, _ := newTestService()
	auth := register(t, svc)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.SetResetToken(context.Background(), auth.User.ID, "stale-token", expired))

	_, err := svc.ResetPassword(context.Background(), user.ResetPasswordRequest{
		Token:           "stale-token",
		Password:        "brand-new-password",
		PasswordConfirm: "brand-new-password",
	})
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

func TestToggleHeart(t *testing.T) {
	svc, _, _ := newTestService()
	auth := register(t, svc)

	animalID := uuid.New()

	hearts, err := svc.ToggleHeart(context.Background(), auth.User.ID, animalID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{animalID}, hearts)

	// Toggling again removes it.
	hearts, err = svc.ToggleHeart(context.Background(), auth.User.ID, animalID)
	require.NoError(t, err)
	assert.Empty(t, hearts)
}

func TestCleanupExpiredResetTokens(t *testing.T) {
	svc, repo, _ := newTestService()
	auth := register(t, svc)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.SetResetToken(context.Background(), auth.User.ID, "stale-token", expired))

	cleared, err := svc.CleanupExpiredResetTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}
