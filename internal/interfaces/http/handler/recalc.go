package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/restobo/backend/internal/application/recalc"
	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/interfaces/http/dto"
)

// RecalcHandler handles the recalculation job API endpoint
type RecalcHandler struct {
	BaseHandler
	recalculation *recalc.RecalculationService
}

// NewRecalcHandler creates a new RecalcHandler
func NewRecalcHandler(recalculation *recalc.RecalculationService) *RecalcHandler {
	return &RecalcHandler{recalculation: recalculation}
}

// Recalculate replays every ledger and stock history from source entries.
// A second request while one is running gets a 409; per-key failures
// surface as a 422 with the summary embedded in the error response.
// @Summary Recalculate balances and stocks
// @Tags ledger
// @Router /ledger/recalculate [post]
func (h *RecalcHandler) Recalculate(c *gin.Context) {
	result, err := h.recalculation.RecalculateAll(c.Request.Context())
	if err != nil {
		// A partial run still produced a summary; ship it with the error
		var domainErr *shared.DomainError
		if result != nil && errors.As(err, &domainErr) {
			code := dto.NormalizeErrorCode(domainErr.Code)
			resp := dto.NewErrorResponseWithRequestID(code, domainErr.Message, getRequestID(c))
			resp.Data = result
			c.JSON(dto.GetHTTPStatus(code), resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
