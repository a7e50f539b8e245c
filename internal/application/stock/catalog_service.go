package stock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restobo/backend/internal/domain/shared"
	"github.com/restobo/backend/internal/domain/stock"
)

// CatalogService handles the configuration side of the stock module:
// materials, categories and warehouses. These are thin CRUD operations;
// the interesting behavior lives in the entry-applying services.
type CatalogService struct {
	materials  stock.MaterialRepository
	categories stock.CategoryRepository
	warehouses stock.WarehouseRepository
	logger     *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	materials stock.MaterialRepository,
	categories stock.CategoryRepository,
	warehouses stock.WarehouseRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		materials:  materials,
		categories: categories,
		warehouses: warehouses,
		logger:     logger,
	}
}

// CreateMaterialInput holds the fields for a new material
type CreateMaterialInput struct {
	Name             string
	CategoryID       uuid.UUID
	PurchaseUnit     string
	ConsumptionUnit  string
	ConversionFactor decimal.Decimal
	DefaultTaxRate   *decimal.Decimal
	MinimumStock     decimal.Decimal
}

// UpdateMaterialInput updates descriptive material fields. The conversion
// factor and units are fixed after creation so historical entries stay
// interpretable.
type UpdateMaterialInput struct {
	Name           string
	CategoryID     uuid.UUID
	DefaultTaxRate *decimal.Decimal
	MinimumStock   decimal.Decimal
}

// MaterialDTO is the API representation of a material
type MaterialDTO struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	CategoryID       uuid.UUID        `json:"category_id"`
	PurchaseUnit     string           `json:"purchase_unit"`
	ConsumptionUnit  string           `json:"consumption_unit"`
	ConversionFactor decimal.Decimal  `json:"conversion_factor"`
	AverageCost      decimal.Decimal  `json:"average_cost"`
	DefaultTaxRate   *decimal.Decimal `json:"default_tax_rate,omitempty"`
	MinimumStock     decimal.Decimal  `json:"minimum_stock"`
	IsActive         bool             `json:"is_active"`
}

// CategoryDTO is the API representation of a category
type CategoryDTO struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	IsActive bool       `json:"is_active"`
}

// WarehouseDTO is the API representation of a warehouse
type WarehouseDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Location string          `json:"location,omitempty"`
	Capacity decimal.Decimal `json:"capacity"`
	IsActive bool            `json:"is_active"`
}

// ToMaterialDTO maps a domain material to its API representation
func ToMaterialDTO(m *stock.Material) *MaterialDTO {
	return &MaterialDTO{
		ID:               m.ID,
		Name:             m.Name,
		CategoryID:       m.CategoryID,
		PurchaseUnit:     m.PurchaseUnit,
		ConsumptionUnit:  m.ConsumptionUnit,
		ConversionFactor: m.ConversionFactor,
		AverageCost:      m.AverageCost,
		DefaultTaxRate:   m.DefaultTaxRate,
		MinimumStock:     m.MinimumStock,
		IsActive:         m.IsActive,
	}
}

// ToCategoryDTO maps a domain category to its API representation
func ToCategoryDTO(c *stock.Category) *CategoryDTO {
	return &CategoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
		IsActive: c.IsActive,
	}
}

// ToWarehouseDTO maps a domain warehouse to its API representation
func ToWarehouseDTO(w *stock.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		ID:       w.ID,
		Name:     w.Name,
		Location: w.Location,
		Capacity: w.Capacity,
		IsActive: w.IsActive,
	}
}

// CreateMaterial creates a new material under an existing category
func (s *CatalogService) CreateMaterial(ctx context.Context, input CreateMaterialInput) (*MaterialDTO, error) {
	if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_INPUT", "Category not found")
		}
		return nil, err
	}

	material, err := stock.NewMaterial(input.Name, input.CategoryID, input.PurchaseUnit, input.ConsumptionUnit, input.ConversionFactor)
	if err != nil {
		return nil, err
	}
	if input.DefaultTaxRate != nil {
		if err := material.SetDefaultTaxRate(*input.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if !input.MinimumStock.IsZero() {
		if err := material.SetMinimumStock(input.MinimumStock); err != nil {
			return nil, err
		}
	}

	if err := s.materials.Save(ctx, material); err != nil {
		return nil, err
	}

	s.logger.Info("Material created",
		zap.String("material_id", material.ID.String()),
		zap.String("name", material.Name),
	)
	return ToMaterialDTO(material), nil
}

// UpdateMaterial updates descriptive material fields
func (s *CatalogService) UpdateMaterial(ctx context.Context, materialID uuid.UUID, input UpdateMaterialInput) (*MaterialDTO, error) {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		material.Name = input.Name
	}
	if input.CategoryID != uuid.Nil {
		if _, err := s.categories.FindByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_INPUT", "Category not found")
			}
			return nil, err
		}
		material.CategoryID = input.CategoryID
	}
	if input.DefaultTaxRate != nil {
		if err := material.SetDefaultTaxRate(*input.DefaultTaxRate); err != nil {
			return nil, err
		}
	}
	if !input.MinimumStock.IsNegative() {
		if err := material.SetMinimumStock(input.MinimumStock); err != nil {
			return nil, err
		}
	}

	material.IncrementVersion()
	if err := s.materials.SaveWithLock(ctx, material); err != nil {
		return nil, err
	}
	return ToMaterialDTO(material), nil
}

// DeactivateMaterial soft-deletes a material. Historical stock entries
// referencing it remain untouched.
func (s *CatalogService) DeactivateMaterial(ctx context.Context, materialID uuid.UUID) error {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		return err
	}
	material.Deactivate()
	material.IncrementVersion()
	return s.materials.SaveWithLock(ctx, material)
}

// GetMaterial retrieves a material by ID
func (s *CatalogService) GetMaterial(ctx context.Context, materialID uuid.UUID) (*MaterialDTO, error) {
	material, err := s.materials.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return ToMaterialDTO(material), nil
}

// ListMaterials returns materials matching the filter with pagination
func (s *CatalogService) ListMaterials(ctx context.Context, filter shared.Filter) (*shared.Paginated[MaterialDTO], error) {
	materials, err := s.materials.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.materials.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	dtos := make([]MaterialDTO, 0, len(materials))
	for i := range materials {
		dtos = append(dtos, *ToMaterialDTO(&materials[i]))
	}
	page := shared.NewPaginated(dtos, total, filter.Page, filter.PageSize)
	return &page, nil
}

// CreateCategory creates a main category, or a sub category when parentID
// is non-nil. Only two levels are allowed.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, parentID *uuid.UUID) (*CategoryDTO, error) {
	var category *stock.Category
	var err error

	if parentID != nil {
		parent, findErr := s.categories.FindByID(ctx, *parentID)
		if findErr != nil {
			if errors.Is(findErr, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_INPUT", "Parent category not found")
			}
			return nil, findErr
		}
		if !parent.IsMain() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Categories can only be nested one level deep")
		}
		category, err = stock.NewSubCategory(name, *parentID)
	} else {
		category, err = stock.NewCategory(name)
	}
	if err != nil {
		return nil, err
	}

	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return ToCategoryDTO(category), nil
}

// GetCategory retrieves a category by ID
func (s *CatalogService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*CategoryDTO, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return ToCategoryDTO(category), nil
}

// ListCategories returns categories matching the filter
func (s *CatalogService) ListCategories(ctx context.Context, filter shared.Filter) ([]CategoryDTO, error) {
	categories, err := s.categories.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, *ToCategoryDTO(&categories[i]))
	}
	return dtos, nil
}

// ListSubCategories returns the children of a main category
func (s *CatalogService) ListSubCategories(ctx context.Context, parentID uuid.UUID) ([]CategoryDTO, error) {
	children, err := s.categories.FindChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	dtos := make([]CategoryDTO, 0, len(children))
	for i := range children {
		dtos = append(dtos, *ToCategoryDTO(&children[i]))
	}
	return dtos, nil
}

// DeleteCategory removes a category. It refuses when sub categories or
// materials still reference it.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	children, err := s.categories.FindChildren(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Category has sub categories")
	}
	materials, err := s.materials.FindByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(materials) > 0 {
		return shared.NewDomainError("INVALID_STATE", "Category has materials")
	}
	return s.categories.Delete(ctx, categoryID)
}

// CreateWarehouse creates a new warehouse
func (s *CatalogService) CreateWarehouse(ctx context.Context, name, location string, capacity decimal.Decimal) (*WarehouseDTO, error) {
	warehouse, err := stock.NewWarehouse(name, location, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.warehouses.Save(ctx, warehouse); err != nil {
		return nil, err
	}

	s.logger.Info("Warehouse created",
		zap.String("warehouse_id", warehouse.ID.String()),
		zap.String("name", warehouse.Name),
	)
	return ToWarehouseDTO(warehouse), nil
}

// UpdateWarehouse updates warehouse fields
func (s *CatalogService) UpdateWarehouse(ctx context.Context, warehouseID uuid.UUID, name, location string, capacity decimal.Decimal) (*WarehouseDTO, error) {
	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if name != "" {
		warehouse.Name = name
	}
	if location != "" {
		warehouse.Location = location
	}
	if capacity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Capacity cannot be negative")
	}
	warehouse.Capacity = capacity
	warehouse.IncrementVersion()
	if err := s.warehouses.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	return ToWarehouseDTO(warehouse), nil
}

// DeactivateWarehouse soft-deletes a warehouse
func (s *CatalogService) DeactivateWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	warehouse.Deactivate()
	warehouse.IncrementVersion()
	return s.warehouses.Save(ctx, warehouse)
}

// GetWarehouse retrieves a warehouse by ID
func (s *CatalogService) GetWarehouse(ctx context.Context, warehouseID uuid.UUID) (*WarehouseDTO, error) {
	warehouse, err := s.warehouses.FindByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return ToWarehouseDTO(warehouse), nil
}

// ListWarehouses returns warehouses matching the filter
func (s *CatalogService) ListWarehouses(ctx context.Context, filter shared.Filter) ([]WarehouseDTO, error) {
	warehouses, err := s.warehouses.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	dtos := make([]WarehouseDTO, 0, len(warehouses))
	for i := range warehouses {
		dtos = append(dtos, *ToWarehouseDTO(&warehouses[i]))
	}
	return dtos, nil
}
