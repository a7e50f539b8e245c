package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/restobo/backend/internal/application/stock"
	"github.com/restobo/backend/internal/domain/stock"
)

// StockHandler handles warehouse stock API endpoints
type StockHandler struct {
	BaseHandler
	stocks *appstock.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stocks *appstock.StockService) *StockHandler {
	return &StockHandler{stocks: stocks}
}

// StockEntryRequest is the payload for recording a stock movement.
// Kind selects the operation: PURCHASE, ADJUSTMENT or RETURN.
type StockEntryRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=PURCHASE ADJUSTMENT RETURN"`
	MaterialID  string `json:"material_id" binding:"required,uuid"`
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
	Quantity    string `json:"quantity" binding:"required"`
	UnitCost    string `json:"unit_cost" binding:"omitempty"`
	Unit        string `json:"unit" binding:"omitempty,oneof=purchase consumption"`
	Increase    *bool  `json:"increase" binding:"omitempty"`
	OccurredAt  string `json:"occurred_at" binding:"required"`
	Note        string `json:"note" binding:"omitempty,max=500"`
}

// ReservationRequest is the payload for reserving or releasing stock
type ReservationRequest struct {
	MaterialID  string `json:"material_id" binding:"required,uuid"`
	WarehouseID string `json:"warehouse_id" binding:"required,uuid"`
	Quantity    string `json:"quantity" binding:"required"`
}

// RecordEntry records a purchase, adjustment or supplier return
// @Summary Record stock movement
// @Tags inventory
// @Router /inventory/entries [post]
func (h *StockHandler) RecordEntry(c *gin.Context) {
	var req StockEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	materialID := uuid.MustParse(req.MaterialID)
	warehouseID := uuid.MustParse(req.WarehouseID)

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}
	unitCost, err := parseDecimal(req.UnitCost)
	if err != nil {
		h.BadRequest(c, "Invalid unit_cost")
		return
	}
	occurredAt, err := parseDate(req.OccurredAt)
	if err != nil {
		h.BadRequest(c, "Invalid occurred_at, expected YYYY-MM-DD")
		return
	}

	unit := stock.UnitTag(req.Unit)
	if req.Unit == "" {
		unit = stock.UnitConsumption
	}

	var entry *appstock.StockEntryDTO
	switch req.Kind {
	case "PURCHASE":
		entry, err = h.stocks.RecordPurchase(c.Request.Context(), appstock.PurchaseInput{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
			UnitCost:    unitCost,
			Unit:        unit,
			OccurredAt:  occurredAt,
			Note:        req.Note,
		})
	case "ADJUSTMENT":
		increase := req.Increase != nil && *req.Increase
		entry, err = h.stocks.RecordAdjustment(c.Request.Context(), appstock.AdjustmentInput{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
			UnitCost:    unitCost,
			Increase:    increase,
			OccurredAt:  occurredAt,
			Note:        req.Note,
		})
	case "RETURN":
		entry, err = h.stocks.RecordReturn(c.Request.Context(), appstock.ReturnInput{
			MaterialID:  materialID,
			WarehouseID: warehouseID,
			Quantity:    quantity,
			OccurredAt:  occurredAt,
			Note:        req.Note,
		})
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// GetStock returns the current projection for one material/warehouse key
// @Summary Get stock level
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/materials/{material_id} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	materialID, ok := parseUUIDParam(c, "material_id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	row, err := h.stocks.GetStock(c.Request.Context(), materialID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ListByWarehouse lists stock projections in one warehouse
// @Summary List warehouse stocks
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/stocks [get]
func (h *StockHandler) ListByWarehouse(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	filter := listFilter(c)
	rows, err := h.stocks.ListByWarehouse(c.Request.Context(), warehouseID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ListLowStock lists stocks at or below their minimum in one warehouse
// @Summary List low stocks
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/low-stock [get]
func (h *StockHandler) ListLowStock(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	rows, err := h.stocks.ListLowStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// GetSnapshot reconstructs quantity and average cost at a past date
// @Summary Get stock snapshot
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/materials/{material_id}/snapshot [get]
func (h *StockHandler) GetSnapshot(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	materialID, ok := parseUUIDParam(c, "material_id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	asOf := time.Now()
	if asOfStr := c.Query("as_of"); asOfStr != "" {
		parsed, err := parseDate(asOfStr)
		if err != nil {
			h.BadRequest(c, "Invalid as_of, expected YYYY-MM-DD")
			return
		}
		asOf = endOfDay(parsed)
	}

	snapshot, err := h.stocks.SnapshotAsOf(c.Request.Context(), materialID, warehouseID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, snapshot)
}

// GetEntries lists the stock ledger for one material/warehouse key
// @Summary List stock entries
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/materials/{material_id}/entries [get]
func (h *StockHandler) GetEntries(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}
	materialID, ok := parseUUIDParam(c, "material_id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	entries, err := h.stocks.GetEntries(c.Request.Context(), materialID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Reserve puts stock on hold without moving it
// @Summary Reserve stock
// @Tags inventory
// @Router /inventory/reservations [post]
func (h *StockHandler) Reserve(c *gin.Context) {
	h.handleReservation(c, true)
}

// Release frees a previous reservation
// @Summary Release reservation
// @Tags inventory
// @Router /inventory/reservations/release [post]
func (h *StockHandler) Release(c *gin.Context) {
	h.handleReservation(c, false)
}

func (h *StockHandler) handleReservation(c *gin.Context, reserve bool) {
	var req ReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		h.BadRequest(c, "Invalid quantity")
		return
	}
	materialID := uuid.MustParse(req.MaterialID)
	warehouseID := uuid.MustParse(req.WarehouseID)

	if reserve {
		err = h.stocks.Reserve(c.Request.Context(), materialID, warehouseID, quantity)
	} else {
		err = h.stocks.ReleaseReservation(c.Request.Context(), materialID, warehouseID, quantity)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetUtilization reports a warehouse's fill level against its capacity
// @Summary Get warehouse utilization
// @Tags inventory
// @Router /inventory/warehouses/{warehouse_id}/utilization [get]
func (h *StockHandler) GetUtilization(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "warehouse_id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	utilization, err := h.stocks.GetUtilization(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, utilization)
}
