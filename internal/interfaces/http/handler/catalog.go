package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/restobo/backend/internal/application/stock"
)

// CatalogHandler handles material, category and warehouse API endpoints
type CatalogHandler struct {
	BaseHandler
	catalog *appstock.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *appstock.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateMaterialRequest is the payload for registering a material
type CreateMaterialRequest struct {
	Name             string `json:"name" binding:"required,max=200"`
	CategoryID       string `json:"category_id" binding:"required,uuid"`
	PurchaseUnit     string `json:"purchase_unit" binding:"required,max=20"`
	ConsumptionUnit  string `json:"consumption_unit" binding:"required,max=20"`
	ConversionFactor string `json:"conversion_factor" binding:"required"`
	DefaultTaxRate   string `json:"default_tax_rate" binding:"omitempty"`
	MinimumStock     string `json:"minimum_stock" binding:"omitempty"`
}

// UpdateMaterialRequest is the payload for updating material fields
type UpdateMaterialRequest struct {
	Name           string `json:"name" binding:"omitempty,max=200"`
	CategoryID     string `json:"category_id" binding:"omitempty,uuid"`
	DefaultTaxRate string `json:"default_tax_rate" binding:"omitempty"`
	MinimumStock   string `json:"minimum_stock" binding:"omitempty"`
}

// CreateCategoryRequest is the payload for creating a category
type CreateCategoryRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	ParentID string `json:"parent_id" binding:"omitempty,uuid"`
}

// WarehouseRequest is the payload for creating or updating a warehouse
type WarehouseRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	Location string `json:"location" binding:"omitempty,max=200"`
	Capacity string `json:"capacity" binding:"omitempty"`
}

// parseOptionalDecimal parses a decimal field, returning nil for empty input
func parseOptionalDecimal(value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateMaterial registers a material with its unit pair
// @Summary Create material
// @Tags catalog
// @Router /catalog/materials [post]
func (h *CatalogHandler) CreateMaterial(c *gin.Context) {
	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	factor, err := decimal.NewFromString(req.ConversionFactor)
	if err != nil {
		h.BadRequest(c, "Invalid conversion_factor")
		return
	}
	taxRate, err := parseOptionalDecimal(req.DefaultTaxRate)
	if err != nil {
		h.BadRequest(c, "Invalid default_tax_rate")
		return
	}
	minStock, err := parseDecimal(req.MinimumStock)
	if err != nil {
		h.BadRequest(c, "Invalid minimum_stock")
		return
	}

	material, err := h.catalog.CreateMaterial(c.Request.Context(), appstock.CreateMaterialInput{
		Name:             req.Name,
		CategoryID:       uuid.MustParse(req.CategoryID),
		PurchaseUnit:     req.PurchaseUnit,
		ConsumptionUnit:  req.ConsumptionUnit,
		ConversionFactor: factor,
		DefaultTaxRate:   taxRate,
		MinimumStock:     minStock,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// UpdateMaterial changes material fields
// @Summary Update material
// @Tags catalog
// @Router /catalog/materials/{id} [put]
func (h *CatalogHandler) UpdateMaterial(c *gin.Context) {
	materialID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	taxRate, err := parseOptionalDecimal(req.DefaultTaxRate)
	if err != nil {
		h.BadRequest(c, "Invalid default_tax_rate")
		return
	}

	// Negative minimum stock means "leave unchanged"
	minStock := decimal.NewFromInt(-1)
	if req.MinimumStock != "" {
		minStock, err = decimal.NewFromString(req.MinimumStock)
		if err != nil {
			h.BadRequest(c, "Invalid minimum_stock")
			return
		}
	}

	input := appstock.UpdateMaterialInput{
		Name:           req.Name,
		DefaultTaxRate: taxRate,
		MinimumStock:   minStock,
	}
	if req.CategoryID != "" {
		input.CategoryID = uuid.MustParse(req.CategoryID)
	}

	material, err := h.catalog.UpdateMaterial(c.Request.Context(), materialID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// GetMaterial retrieves one material
// @Summary Get material
// @Tags catalog
// @Router /catalog/materials/{id} [get]
func (h *CatalogHandler) GetMaterial(c *gin.Context) {
	materialID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	material, err := h.catalog.GetMaterial(c.Request.Context(), materialID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// ListMaterials returns materials with pagination
// @Summary List materials
// @Tags catalog
// @Router /catalog/materials [get]
func (h *CatalogHandler) ListMaterials(c *gin.Context) {
	filter := listFilter(c)
	if categoryID := c.Query("category_id"); categoryID != "" {
		filter.Filters["category_id"] = categoryID
	}
	if isActive := c.Query("is_active"); isActive != "" {
		filter.Filters["is_active"] = isActive == "true"
	}

	page, err := h.catalog.ListMaterials(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// DeactivateMaterial soft-deletes a material
// @Summary Deactivate material
// @Tags catalog
// @Router /catalog/materials/{id} [delete]
func (h *CatalogHandler) DeactivateMaterial(c *gin.Context) {
	materialID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid material ID")
		return
	}

	if err := h.catalog.DeactivateMaterial(c.Request.Context(), materialID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateCategory creates a main or sub category
// @Summary Create category
// @Tags catalog
// @Router /catalog/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != "" {
		parsed := uuid.MustParse(req.ParentID)
		parentID = &parsed
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name, parentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// GetCategory retrieves one category
// @Summary Get category
// @Tags catalog
// @Router /catalog/categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	categoryID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.catalog.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// ListCategories returns main categories, or children of ?parent_id
// @Summary List categories
// @Tags catalog
// @Router /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	if parentStr := c.Query("parent_id"); parentStr != "" {
		parentID, err := uuid.Parse(parentStr)
		if err != nil {
			h.BadRequest(c, "Invalid parent_id")
			return
		}
		children, err := h.catalog.ListSubCategories(c.Request.Context(), parentID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, children)
		return
	}

	categories, err := h.catalog.ListCategories(c.Request.Context(), listFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// DeleteCategory removes an empty category
// @Summary Delete category
// @Tags catalog
// @Router /catalog/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// CreateWarehouse creates a warehouse
// @Summary Create warehouse
// @Tags catalog
// @Router /catalog/warehouses [post]
func (h *CatalogHandler) CreateWarehouse(c *gin.Context) {
	var req WarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	capacity, err := parseDecimal(req.Capacity)
	if err != nil {
		h.BadRequest(c, "Invalid capacity")
		return
	}

	warehouse, err := h.catalog.CreateWarehouse(c.Request.Context(), req.Name, req.Location, capacity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, warehouse)
}

// UpdateWarehouse changes warehouse fields
// @Summary Update warehouse
// @Tags catalog
// @Router /catalog/warehouses/{id} [put]
func (h *CatalogHandler) UpdateWarehouse(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	var req WarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	capacity, err := parseDecimal(req.Capacity)
	if err != nil {
		h.BadRequest(c, "Invalid capacity")
		return
	}

	warehouse, err := h.catalog.UpdateWarehouse(c.Request.Context(), warehouseID, req.Name, req.Location, capacity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// GetWarehouse retrieves one warehouse
// @Summary Get warehouse
// @Tags catalog
// @Router /catalog/warehouses/{id} [get]
func (h *CatalogHandler) GetWarehouse(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	warehouse, err := h.catalog.GetWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouse)
}

// ListWarehouses returns all warehouses
// @Summary List warehouses
// @Tags catalog
// @Router /catalog/warehouses [get]
func (h *CatalogHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.catalog.ListWarehouses(c.Request.Context(), listFilter(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, warehouses)
}

// DeactivateWarehouse soft-deletes a warehouse
// @Summary Deactivate warehouse
// @Tags catalog
// @Router /catalog/warehouses/{id} [delete]
func (h *CatalogHandler) DeactivateWarehouse(c *gin.Context) {
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	if err := h.catalog.DeactivateWarehouse(c.Request.Context(), warehouseID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
