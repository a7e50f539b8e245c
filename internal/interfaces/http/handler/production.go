package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/restobo/backend/internal/application/stock"
)

// ProductionHandler handles production run API endpoints
type ProductionHandler struct {
	BaseHandler
	productions *appstock.ProductionService
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productions *appstock.ProductionService) *ProductionHandler {
	return &ProductionHandler{productions: productions}
}

// ProductionItemRequest is one raw material line of a production run
type ProductionItemRequest struct {
	RawMaterialID string `json:"raw_material_id" binding:"required,uuid"`
	Quantity      string `json:"quantity" binding:"required"`
}

// CreateProductionRequest is the payload for opening a production run
type CreateProductionRequest struct {
	ProducedMaterialID     string                  `json:"produced_material_id" binding:"required,uuid"`
	ProducedQuantity       string                  `json:"produced_quantity" binding:"required"`
	ProductionWarehouseID  string                  `json:"production_warehouse_id" binding:"required,uuid"`
	ConsumptionWarehouseID string                  `json:"consumption_warehouse_id" binding:"required,uuid"`
	ProductionDate         string                  `json:"production_date" binding:"required"`
	Items                  []ProductionItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateProductionStatusRequest moves a run to COMPLETED or CANCELLED
type UpdateProductionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=COMPLETED CANCELLED"`
}

func toProductionItemInput(req ProductionItemRequest) (appstock.ProductionItemInput, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return appstock.ProductionItemInput{}, err
	}
	return appstock.ProductionItemInput{
		RawMaterialID: uuid.MustParse(req.RawMaterialID),
		Quantity:      quantity,
	}, nil
}

// Create records a pending production run with its item list
// @Summary Create production run
// @Tags inventory
// @Router /inventory/productions [post]
func (h *ProductionHandler) Create(c *gin.Context) {
	var req CreateProductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	producedQuantity, err := decimal.NewFromString(req.ProducedQuantity)
	if err != nil {
		h.BadRequest(c, "Invalid produced_quantity")
		return
	}
	productionDate, err := parseDate(req.ProductionDate)
	if err != nil {
		h.BadRequest(c, "Invalid production_date, expected YYYY-MM-DD")
		return
	}

	items := make([]appstock.ProductionItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		input, err := toProductionItemInput(item)
		if err != nil {
			h.BadRequest(c, "Invalid item quantity")
			return
		}
		items = append(items, input)
	}

	production, err := h.productions.Create(c.Request.Context(), appstock.ProductionInput{
		ProducedMaterialID:     uuid.MustParse(req.ProducedMaterialID),
		ProducedQuantity:       producedQuantity,
		ProductionWarehouseID:  uuid.MustParse(req.ProductionWarehouseID),
		ConsumptionWarehouseID: uuid.MustParse(req.ConsumptionWarehouseID),
		Items:                  items,
		ProductionDate:         productionDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, production)
}

// AddItem appends a raw material line to a pending run
// @Summary Add production item
// @Tags inventory
// @Router /inventory/productions/{id}/items [post]
func (h *ProductionHandler) AddItem(c *gin.Context) {
	productionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid production ID")
		return
	}

	var req ProductionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input, err := toProductionItemInput(req)
	if err != nil {
		h.BadRequest(c, "Invalid item quantity")
		return
	}

	production, err := h.productions.AddItem(c.Request.Context(), productionID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, production)
}

// RemoveItem removes a raw material line from a pending run
// @Summary Remove production item
// @Tags inventory
// @Router /inventory/productions/{id}/items/{item_id} [delete]
func (h *ProductionHandler) RemoveItem(c *gin.Context) {
	productionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid production ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "item_id")
	if !ok {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	production, err := h.productions.RemoveItem(c.Request.Context(), productionID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, production)
}

// UpdateStatus completes or cancels a pending run
// @Summary Update production status
// @Tags inventory
// @Router /inventory/productions/{id}/status [patch]
func (h *ProductionHandler) UpdateStatus(c *gin.Context) {
	productionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid production ID")
		return
	}

	var req UpdateProductionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	var (
		production *appstock.ProductionDTO
		err        error
	)
	if req.Status == "COMPLETED" {
		production, err = h.productions.Complete(c.Request.Context(), productionID)
	} else {
		production, err = h.productions.Cancel(c.Request.Context(), productionID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, production)
}

// Delete removes a pending run entirely
// @Summary Delete production run
// @Tags inventory
// @Router /inventory/productions/{id} [delete]
func (h *ProductionHandler) Delete(c *gin.Context) {
	productionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid production ID")
		return
	}

	if err := h.productions.Delete(c.Request.Context(), productionID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get retrieves one production run
// @Summary Get production run
// @Tags inventory
// @Router /inventory/productions/{id} [get]
func (h *ProductionHandler) Get(c *gin.Context) {
	productionID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid production ID")
		return
	}

	production, err := h.productions.Get(c.Request.Context(), productionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, production)
}

// List returns production runs, optionally filtered by status
// @Summary List production runs
// @Tags inventory
// @Router /inventory/productions [get]
func (h *ProductionHandler) List(c *gin.Context) {
	filter := listFilter(c)
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}

	productions, err := h.productions.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, productions)
}
