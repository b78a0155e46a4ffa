package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaterialUnit represents the unit of measure for a material
type MaterialUnit string

// Possible material unit values
const (
	MaterialUnitEach        MaterialUnit = "ea"
	MaterialUnitKilogram    MaterialUnit = "kg"
	MaterialUnitMeter       MaterialUnit = "m"
	MaterialUnitSquareMeter MaterialUnit = "m2"
	MaterialUnitCubicMeter  MaterialUnit = "m3"
	MaterialUnitLiter       MaterialUnit = "l"
)

// Common validation errors for Material
var (
	ErrEmptyMaterialID              = errors.New("material ID cannot be empty")
	ErrEmptyMaterialSKU             = errors.New("material SKU cannot be empty")
	ErrMaterialSKUTooLong           = errors.New("material SKU must be at most 64 characters long")
	ErrEmptyMaterialName            = errors.New("material name cannot be empty")
	ErrMaterialNameTooLong          = errors.New("material name must be at most 200 characters long")
	ErrInvalidMaterialUnit          = errors.New("invalid material unit")
	ErrNegativeMaterialCost         = errors.New("material unit cost cannot be negative")
	ErrNegativeMaterialQuantity     = errors.New("material quantity on hand cannot be negative")
	ErrNegativeMaterialReorderLevel = errors.New("material reorder level cannot be negative")
)

// Material represents a stock item in the materials catalog. Costs are kept
// in integer cents to avoid floating point drift. The SKU is unique across
// the catalog and the unit of measure is fixed once the material exists.
type Material struct {
	ID             uuid.UUID    `json:"id"`
	SKU            string       `json:"sku"`
	Name           string       `json:"name"`
	Unit           MaterialUnit `json:"unit"`
	UnitCostCents  int64        `json:"unit_cost_cents"`
	QuantityOnHand int64        `json:"quantity_on_hand"`
	ReorderLevel   int64        `json:"reorder_level"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewMaterial creates a new Material with the given catalog fields.
// It generates a new UUID for the material ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewMaterial(sku, name string, unit MaterialUnit, unitCostCents, quantityOnHand, reorderLevel int64) (*Material, error) {
	material := &Material{
		ID:             uuid.New(),
		SKU:            sku,
		Name:           name,
		Unit:           unit,
		UnitCostCents:  unitCostCents,
		QuantityOnHand: quantityOnHand,
		ReorderLevel:   reorderLevel,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := material.Validate(); err != nil {
		return nil, err
	}

	return material, nil
}

// EntityID returns the material's unique identifier.
func (m *Material) EntityID() uuid.UUID {
	return m.ID
}

// Validate checks if the Material has valid data.
// Returns an error if any field fails validation.
func (m *Material) Validate() error {
	if m.ID == uuid.Nil {
		return ErrEmptyMaterialID
	}

	if m.SKU == "" {
		return ErrEmptyMaterialSKU
	}

	if len(m.SKU) > 64 {
		return ErrMaterialSKUTooLong
	}

	if m.Name == "" {
		return ErrEmptyMaterialName
	}

	if len(m.Name) > 200 {
		return ErrMaterialNameTooLong
	}

	if !isValidMaterialUnit(m.Unit) {
		return ErrInvalidMaterialUnit
	}

	if m.UnitCostCents < 0 {
		return ErrNegativeMaterialCost
	}

	if m.QuantityOnHand < 0 {
		return ErrNegativeMaterialQuantity
	}

	if m.ReorderLevel < 0 {
		return ErrNegativeMaterialReorderLevel
	}

	return nil
}

// BelowReorderLevel reports whether the quantity on hand has fallen below
// the configured reorder level.
func (m *Material) BelowReorderLevel() bool {
	return m.QuantityOnHand < m.ReorderLevel
}

// isValidMaterialUnit checks if the given unit is a valid MaterialUnit.
func isValidMaterialUnit(unit MaterialUnit) bool {
	switch unit {
	case MaterialUnitEach, MaterialUnitKilogram, MaterialUnitMeter,
		MaterialUnitSquareMeter, MaterialUnitCubicMeter, MaterialUnitLiter:
		return true
	default:
		return false
	}
}
