package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/internal/usecases"
)

// LeaderboardHandler serves the public savings leaderboard
type LeaderboardHandler struct {
	leaderboardUsecase *usecases.LeaderboardUsecase
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardUsecase *usecases.LeaderboardUsecase) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardUsecase: leaderboardUsecase}
}

// GetLeaderboard returns the top savers
// GET /api/v1/leaderboard?limit=10
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	limit := h.leaderboardUsecase.DefaultLimit()
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, domainerrors.Invalid("limit must be an integer"))
			return
		}
		limit = parsed
	}

	entries, err := h.leaderboardUsecase.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}
