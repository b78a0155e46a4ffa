package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestNewMaterial(t *testing.T) {
	t.Parallel()

	material, err := NewMaterial("CBL-CAT6-305", "Cat6 Cable Drum 305m", MaterialUnitEach, 9900, 40, 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if material.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if material.SKU != "CBL-CAT6-305" {
		t.Errorf("Expected SKU %q, got %q", "CBL-CAT6-305", material.SKU)
	}

	if material.Unit != MaterialUnitEach {
		t.Errorf("Expected unit %s, got %s", MaterialUnitEach, material.Unit)
	}

	if material.CreatedAt.IsZero() || material.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Test empty SKU
	_, err = NewMaterial("", "Cat6 Cable Drum 305m", MaterialUnitEach, 9900, 40, 10)
	if !errors.Is(err, ErrEmptyMaterialSKU) {
		t.Errorf("Expected error %v, got %v", ErrEmptyMaterialSKU, err)
	}

	// Test invalid unit
	_, err = NewMaterial("CBL-CAT6-305", "Cat6 Cable Drum 305m", "yard", 9900, 40, 10)
	if !errors.Is(err, ErrInvalidMaterialUnit) {
		t.Errorf("Expected error %v, got %v", ErrInvalidMaterialUnit, err)
	}

	// Test negative quantity
	_, err = NewMaterial("CBL-CAT6-305", "Cat6 Cable Drum 305m", MaterialUnitEach, 9900, -1, 10)
	if !errors.Is(err, ErrNegativeMaterialQuantity) {
		t.Errorf("Expected error %v, got %v", ErrNegativeMaterialQuantity, err)
	}
}

func TestMaterialValidate(t *testing.T) {
	t.Parallel()

	validMaterial := Material{
		ID:             uuid.New(),
		SKU:            "CEM-42R-25KG",
		Name:           "Cement 42.5R 25kg Bag",
		Unit:           MaterialUnitEach,
		UnitCostCents:  650,
		QuantityOnHand: 120,
		ReorderLevel:   30,
	}

	if err := validMaterial.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := validMaterial
	invalid.ID = uuid.Nil
	if err := invalid.Validate(); !errors.Is(err, ErrEmptyMaterialID) {
		t.Errorf("Expected error %v, got %v", ErrEmptyMaterialID, err)
	}

	invalid = validMaterial
	invalid.Name = ""
	if err := invalid.Validate(); !errors.Is(err, ErrEmptyMaterialName) {
		t.Errorf("Expected error %v, got %v", ErrEmptyMaterialName, err)
	}

	invalid = validMaterial
	invalid.UnitCostCents = -1
	if err := invalid.Validate(); !errors.Is(err, ErrNegativeMaterialCost) {
		t.Errorf("Expected error %v, got %v", ErrNegativeMaterialCost, err)
	}

	invalid = validMaterial
	invalid.ReorderLevel = -5
	if err := invalid.Validate(); !errors.Is(err, ErrNegativeMaterialReorderLevel) {
		t.Errorf("Expected error %v, got %v", ErrNegativeMaterialReorderLevel, err)
	}
}

func TestMaterialBelowReorderLevel(t *testing.T) {
	t.Parallel()

	material := Material{
		ID:             uuid.New(),
		SKU:            "CEM-42R-25KG",
		Name:           "Cement 42.5R 25kg Bag",
		Unit:           MaterialUnitEach,
		QuantityOnHand: 10,
		ReorderLevel:   30,
	}

	if !material.BelowReorderLevel() {
		t.Error("Expected material below reorder level")
	}

	material.QuantityOnHand = 30
	if material.BelowReorderLevel() {
		t.Error("Expected material at reorder level to not be below it")
	}
}
