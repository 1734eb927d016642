package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"savingz.backend/internal/domain/entities"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/internal/usecases"
)

// SavingsHandler handles deposit endpoints
type SavingsHandler struct {
	savingsUsecase *usecases.SavingsUsecase
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(savingsUsecase *usecases.SavingsUsecase) *SavingsHandler {
	return &SavingsHandler{savingsUsecase: savingsUsecase}
}

// Save records a deposit
// POST /api/v1/user/save
func (h *SavingsHandler) Save(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}

	var input entities.RecordDepositInput
	if !bindJSON(c, &input, false) {
		return
	}

	result, err := h.savingsUsecase.RecordDeposit(c.Request.Context(), uid, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListSavings lists the caller's deposits, newest first
// GET /api/v1/user/savings
func (h *SavingsHandler) ListSavings(c *gin.Context) {
	uid, ok := requireUID(c)
	if !ok {
		return
	}
	pagination, ok := bindPagination(c)
	if !ok {
		return
	}

	items, meta, err := h.savingsUsecase.ListDeposits(c.Request.Context(), uid, pagination)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": items,
		"meta":  meta,
	})
}
