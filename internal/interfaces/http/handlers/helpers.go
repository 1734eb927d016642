package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	domainerrors "savingz.backend/internal/domain/errors"
	"savingz.backend/internal/interfaces/http/middleware"
	"savingz.backend/internal/interfaces/http/response"
	"savingz.backend/pkg/utils"
)

// requireUID writes a 401 and returns false when no identity was verified
func requireUID(c *gin.Context) (string, bool) {
	uid, ok := middleware.GetUID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("unauthorized"))
		return "", false
	}
	return uid, true
}

// bindJSON decodes the body into dst. An empty body is accepted when
// allowEmpty is set.
func bindJSON(c *gin.Context, dst interface{}, allowEmpty bool) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		response.Error(c, domainerrors.Invalid("invalid request body"))
		return false
	}
	return true
}

func bindPagination(c *gin.Context) (utils.PaginationParams, bool) {
	var params utils.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.Error(c, domainerrors.Invalid("page and limit must be integers"))
		return params, false
	}
	return utils.GetPaginationParams(params.Page, params.Limit), true
}
