package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/internal/usecases"
)

// MarketHandler serves asset prices
type MarketHandler struct {
	marketUsecase *usecases.MarketUsecase
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketUsecase *usecases.MarketUsecase) *MarketHandler {
	return &MarketHandler{marketUsecase: marketUsecase}
}

// ListPrices lists prices of every supported asset
// GET /api/v1/prices
func (h *MarketHandler) ListPrices(c *gin.Context) {
	prices, err := h.marketUsecase.ListPrices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"prices": prices})
}
