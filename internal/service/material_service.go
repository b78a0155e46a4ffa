package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// CreateMaterialInput carries the fields accepted at material creation.
type CreateMaterialInput struct {
	SKU            string
	Name           string
	Unit           domain.MaterialUnit
	UnitCostCents  int64
	QuantityOnHand int64
	ReorderLevel   int64
}

// UpdateMaterialInput is a full replacement of the mutable material fields.
// The SKU is fixed at creation and deliberately absent. Unit is present so
// the service can reject attempts to change it: quantities recorded against
// the old unit would silently change meaning.
type UpdateMaterialInput struct {
	Name           string
	Unit           domain.MaterialUnit
	UnitCostCents  int64
	QuantityOnHand int64
	ReorderLevel   int64
}

// MaterialService provides material catalog operations.
type MaterialService interface {
	// GetMaterial retrieves a material by its ID.
	GetMaterial(ctx context.Context, id uuid.UUID) (*domain.Material, error)

	// ListMaterials returns materials matching the filter.
	ListMaterials(ctx context.Context, filter store.MaterialFilter) ([]*domain.Material, error)

	// CreateMaterial adds a material to the catalog. SKUs are unique across
	// the catalog.
	CreateMaterial(ctx context.Context, input CreateMaterialInput) (*domain.Material, error)

	// UpdateMaterial replaces the mutable fields of a material. The unit of
	// measure is immutable after creation.
	UpdateMaterial(ctx context.Context, id uuid.UUID, input UpdateMaterialInput) (*domain.Material, error)

	// DeleteMaterial removes a material by its ID.
	DeleteMaterial(ctx context.Context, id uuid.UUID) error
}

// MaterialServiceImpl implements the MaterialService interface.
type MaterialServiceImpl struct {
	materialStore store.MaterialStore
	db            *sql.DB
	logger        *slog.Logger
}

// NewMaterialService creates a new MaterialService.
func NewMaterialService(
	materialStore store.MaterialStore,
	db *sql.DB,
	logger *slog.Logger,
) MaterialService {
	return &MaterialServiceImpl{
		materialStore: materialStore,
		db:            db,
		logger:        logger.With("component", "material_service"),
	}
}

// GetMaterial retrieves a material by its ID.
func (s *MaterialServiceImpl) GetMaterial(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	material, err := s.materialStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMaterialNotFound) {
			s.logger.Debug("material not found", "material_id", id)
		} else {
			s.logger.Error("failed to retrieve material",
				"error", err,
				"material_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve material: %w", err)
	}

	return material, nil
}

// ListMaterials returns materials matching the filter.
func (s *MaterialServiceImpl) ListMaterials(
	ctx context.Context,
	filter store.MaterialFilter,
) ([]*domain.Material, error) {
	materials, err := s.materialStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list materials", "error", err)
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	return materials, nil
}

// CreateMaterial adds a material to the catalog.
func (s *MaterialServiceImpl) CreateMaterial(
	ctx context.Context,
	input CreateMaterialInput,
) (*domain.Material, error) {
	material, err := domain.NewMaterial(
		input.SKU,
		input.Name,
		input.Unit,
		input.UnitCostCents,
		input.QuantityOnHand,
		input.ReorderLevel,
	)
	if err != nil {
		s.logger.Debug("rejected invalid material input",
			"error", err,
			"sku", input.SKU)
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.materialStore.WithTx(tx).Create(ctx, material)
	})
	if err != nil {
		if errors.Is(err, store.ErrMaterialSKUExists) {
			s.logger.Debug("attempted to create material with existing SKU",
				"sku", input.SKU)
		} else {
			s.logger.Error("failed to save material",
				"error", err,
				"sku", input.SKU)
		}
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("material created",
		"material_id", material.ID,
		"sku", material.SKU)

	return material, nil
}

// UpdateMaterial replaces the mutable fields of a material.
func (s *MaterialServiceImpl) UpdateMaterial(
	ctx context.Context,
	id uuid.UUID,
	input UpdateMaterialInput,
) (*domain.Material, error) {
	var updated *domain.Material

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.materialStore.WithTx(tx)

		material, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve material for update: %w", err)
		}

		if input.Unit != material.Unit {
			return domain.NewBusinessRuleError(RuleUnitImmutable,
				fmt.Sprintf("material unit cannot change from %s to %s", material.Unit, input.Unit))
		}

		material.Name = input.Name
		material.UnitCostCents = input.UnitCostCents
		material.QuantityOnHand = input.QuantityOnHand
		material.ReorderLevel = input.ReorderLevel
		material.UpdatedAt = time.Now().UTC()

		if err := txStore.Update(ctx, material); err != nil {
			return fmt.Errorf("failed to update material: %w", err)
		}

		updated = material
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrMaterialNotFound):
			s.logger.Debug("material not found for update", "material_id", id)
		case errors.Is(err, domain.ErrBusinessRule):
			s.logger.Debug("rejected material update", "error", err, "material_id", id)
		default:
			s.logger.Error("failed to update material",
				"error", err,
				"material_id", id)
		}
		return nil, fmt.Errorf("failed to update material: %w", err)
	}

	s.logger.Info("material updated", "material_id", id)

	return updated, nil
}

// DeleteMaterial removes a material by its ID.
func (s *MaterialServiceImpl) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.materialStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrMaterialNotFound) {
			s.logger.Debug("attempted to delete non-existent material", "material_id", id)
		} else {
			s.logger.Error("failed to delete material",
				"error", err,
				"material_id", id)
		}
		return fmt.Errorf("failed to delete material: %w", err)
	}

	s.logger.Info("material deleted", "material_id", id)

	return nil
}
