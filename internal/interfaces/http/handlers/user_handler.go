package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"savingz.backend/internal/domain/entities"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/middleware"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/internal/usecases"
)

// UserHandler handles registration and profile endpoints
type UserHandler struct {
	userUsecase      *usecases.UserUsecase
	portfolioUsecase *usecases.PortfolioUsecase
}

// NewUserHandler creates a new user handler
func NewUserHandler(userUsecase *usecases.UserUsecase, portfolioUsecase *usecases.PortfolioUsecase) *UserHandler {
	return &UserHandler{
		userUsecase:      userUsecase,
		portfolioUsecase: portfolioUsecase,
	}
}

// Register creates the caller's user record on first sign-in
// POST /api/v1/user/register
func (h *UserHandler) Register(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return
	}

	var input entities.RegisterUserInput
	if !bindJSON(c, &input, true) {
		return
	}

	user, err := h.userUsecase.Register(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User registered",
		"user":    user,
	})
}

// GetProfile returns the caller's valued profile
// GET /api/v1/user/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	view, err := h.portfolioUsecase.GetProfileView(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// UpdateProfile changes the caller's name fields
// POST /api/v1/user/profile/update
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	var input entities.UpdateProfileInput
	if !bindJSON(c, &input, false) {
		return
	}

	user, err := h.userUsecase.UpdateProfile(c.Request.Context(), uid, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Profile updated",
		"user":    user,
	})
}

// RegisterPushToken stores the caller's device push token
// PUT /api/v1/user/push-token
func (h *UserHandler) RegisterPushToken(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	var input entities.PushTokenInput
	if !bindJSON(c, &input, false) {
		return
	}

	if _, err := h.userUsecase.RegisterPushToken(c.Request.Context(), uid, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Push token updated"})
}
