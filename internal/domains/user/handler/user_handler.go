package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"wildbook-backend/internal/domains/animal"
	"wildbook-backend/internal/domains/user"
	"wildbook-backend/internal/shared/response"
	"wildbook-backend/pkg/logger"
)

type UserHandler struct {
	service user.Service
	animals animal.Service
}

func NewUserHandler(service user.Service, animals animal.Service) *UserHandler {
	return &UserHandler{service: service, animals: animals}
}

// Register handles POST /auth/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	auth, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, auth)
}

// Login handles POST /auth/login.
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	auth, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, auth)
}

// Logout handles POST /auth/logout. Tokens are stateless, so this is a
// client-side affair; the endpoint exists so the client has something to
// call.
func (h *UserHandler) Logout(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"message": "you are now logged out"})
}

// ForgotPassword handles POST /auth/forgot-password. An unknown email gets the same
// answer as a known one so the endpoint cannot be used to probe accounts.
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	err := h.service.ForgotPassword(c.Request.Context(), req)
	if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "a password reset link has been sent if an account exists for that email",
	})
}

// ResetPassword handles POST /auth/reset-password/:token.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	req.Token = c.Param("token")

	auth, err := h.service.ResetPassword(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, auth)
}

// GetProfile handles GET /users/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// UpdateAccount handles PUT /users/me. Only the name can change.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req user.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	profile, err := h.service.UpdateAccount(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, profile)
}

// ToggleHeart handles POST /animals/:id/heart and returns the caller's
// updated heart set.
func (h *UserHandler) ToggleHeart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	animalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid animal id")
		return
	}

	hearts, err := h.service.ToggleHeart(c.Request.Context(), userID, animalID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"hearts": hearts})
}

// ListHearts handles GET /hearts, returning the caller's hearted animals.
func (h *UserHandler) ListHearts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	ids, err := h.service.HeartIDs(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	animals, err := h.animals.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, animals)
}

func (h *UserHandler) handleError(c *gin.Context, err error) {
	var validationErrs validation.Errors
	switch {
	case errors.As(err, &validationErrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid input", validationErrs)
	case errors.Is(err, user.ErrPasswordMismatch):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrEmailReadOnly):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, user.ErrInvalidToken):
		response.BadRequest(c, err.Error())
	case errors.Is(err, user.ErrEmailAlreadyExists):
		response.Conflict(c, "an account with this email already exists")
	case errors.Is(err, user.ErrUnknownAnimal):
		response.NotFound(c, "animal not found")
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(c, "user not found")
	default:
		logger.Error("user handler error", err)
		response.InternalServerError(c, "something went wrong")
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
