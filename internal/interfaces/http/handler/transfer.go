package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/restobo/backend/internal/application/stock"
)

// TransferHandler handles inter-warehouse transfer API endpoints
type TransferHandler struct {
	BaseHandler
	transfers *appstock.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transfers *appstock.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

// CreateTransferRequest is the payload for requesting a transfer
type CreateTransferRequest struct {
	FromWarehouseID string `json:"from_warehouse_id" binding:"required,uuid"`
	ToWarehouseID   string `json:"to_warehouse_id" binding:"required,uuid"`
	MaterialID      string `json:"material_id" binding:"required,uuid"`
	Quantity        string `json:"quantity" binding:"required"`
	Reason          string `json:"reason" binding:"omitempty,max=500"`
	RequestDate     string `json:"request_date" binding:"required"`
}

// UpdateTransferStatusRequest moves a transfer to COMPLETED or CANCELLED
type UpdateTransferStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}

// Create records a pending transfer request
// @Summary Create transfer
// @Tags inventory
// @Router /inventory/transfers [post]
func (h *TransferHandler) Create(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}
	requestDate, err := parseDate(req.RequestDate)
	if err != nil {
		h.BadRequest(c, "Invalid request_date, expected YYYY-MM-DD")
		return
	}

	transfer, err := h.transfers.Create(c.Request.Context(), appstock.TransferInput{
		FromWarehouseID: uuid.MustParse(req.FromWarehouseID),
		ToWarehouseID:   uuid.MustParse(req.ToWarehouseID),
		MaterialID:      uuid.MustParse(req.MaterialID),
		Quantity:        quantity,
		Reason:          req.Reason,
		RequestDate:     requestDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, transfer)
}

// UpdateStatus completes or cancels a pending transfer
// @Summary Update transfer status
// @Tags inventory
// @Router /inventory/transfers/{id}/status [patch]
func (h *TransferHandler) UpdateStatus(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	var req UpdateTransferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	var (
		transfer *appstock.TransferDTO
		err      error
	)
	if req.Status == "COMPLETED" {
		transfer, err = h.transfers.Complete(c.Request.Context(), transferID)
	} else {
		transfer, err = h.transfers.Cancel(c.Request.Context(), transferID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// Get retrieves one transfer
// @Summary Get transfer
// @Tags inventory
// @Router /inventory/transfers/{id} [get]
func (h *TransferHandler) Get(c *gin.Context) {
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transfers.Get(c.Request.Context(), transferID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfer)
}

// List returns transfers, optionally filtered by status or warehouse
// @Summary List transfers
// @Tags inventory
// @Router /inventory/transfers [get]
func (h *TransferHandler) List(c *gin.Context) {
	filter := listFilter(c)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		filter.Filters["warehouse_id"] = warehouseID
	}

	transfers, err := h.transfers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, transfers)
}
