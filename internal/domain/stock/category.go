package stock

import (
	"github.com/google/uuid"

	"github.com/restobo/backend/internal/domain/shared"
)

// Category is a node in the two-level material hierarchy. A main category
// has no parent; a sub category points at its main category.
type Category struct {
	shared.BaseAggregateRoot
	Name     string     `gorm:"type:varchar(200);not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive bool       `gorm:"not null;default:true"`
}

// TableName returns the database table name
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a main category
func NewCategory(name string) (*Category, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Category name is required")
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}, nil
}

// NewSubCategory creates a category under an existing main category
func NewSubCategory(name string, parentID uuid.UUID) (*Category, error) {
	if parentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Parent category is required")
	}
	category, err := NewCategory(name)
	if err != nil {
		return nil, err
	}
	category.ParentID = &parentID
	return category, nil
}

// IsMain reports whether this is a top-level category
func (c *Category) IsMain() bool {
	return c.ParentID == nil
}
