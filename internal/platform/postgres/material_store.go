package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Material queries. Materials are hard-deleted; the catalog carries no
// tombstones.
const (
	getMaterialQuery = `
		SELECT id, sku, name, unit, unit_cost_cents, quantity_on_hand, reorder_level, created_at, updated_at
		FROM materials
		WHERE id = $1
	`

	insertMaterialQuery = `
		INSERT INTO materials (id, sku, name, unit, unit_cost_cents, quantity_on_hand, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	updateMaterialQuery = `
		UPDATE materials
		SET sku = $1, name = $2, unit = $3, unit_cost_cents = $4, quantity_on_hand = $5, reorder_level = $6, updated_at = $7
		WHERE id = $8
	`

	deleteMaterialQuery = `
		DELETE FROM materials
		WHERE id = $1
	`

	listMaterialsQuery = `
		SELECT id, sku, name, unit, unit_cost_cents, quantity_on_hand, reorder_level, created_at, updated_at
		FROM materials
		WHERE TRUE
	`
)

// PostgresMaterialStore implements the store.MaterialStore interface
// using a PostgreSQL database as the storage backend.
type PostgresMaterialStore struct {
	crudTable[*domain.Material]
}

// NewPostgresMaterialStore creates a new PostgreSQL implementation of the
// MaterialStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresMaterialStore(db store.DBTX, logger *slog.Logger) *PostgresMaterialStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresMaterialStore{
		crudTable: crudTable[*domain.Material]{
			db:          db,
			logger:      logger.With(slog.String("component", "material_store")),
			entityName:  "material",
			getQuery:    getMaterialQuery,
			insertQuery: insertMaterialQuery,
			updateQuery: updateMaterialQuery,
			deleteQuery: deleteMaterialQuery,
			scanRow:     scanMaterial,
			insertArgs:  materialInsertArgs,
			updateArgs:  materialUpdateArgs,
			notFound:    store.ErrMaterialNotFound,
			duplicate:   store.ErrMaterialSKUExists,
		},
	}
}

// Ensure PostgresMaterialStore implements store.MaterialStore
var _ store.MaterialStore = (*PostgresMaterialStore)(nil)

// List retrieves materials matching the filter, newest first.
func (s *PostgresMaterialStore) List(
	ctx context.Context,
	filter store.MaterialFilter,
) ([]*domain.Material, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset := clampPage(filter.Limit, filter.Offset)

	log.Debug("listing materials",
		slog.String("unit", string(filter.Unit)),
		slog.Bool("below_reorder", filter.BelowReorder),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := listMaterialsQuery
	args := []any{}
	argIndex := 1

	if filter.Unit != "" {
		query += fmt.Sprintf(" AND unit = $%d", argIndex)
		args = append(args, filter.Unit)
		argIndex++
	}
	if filter.BelowReorder {
		query += " AND quantity_on_hand < reorder_level"
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return s.queryList(ctx, query, args...)
}

// WithTx returns a MaterialStore bound to the given transaction.
func (s *PostgresMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return &PostgresMaterialStore{crudTable: s.crudTable.withDB(tx)}
}

// scanMaterial reads one material row in the column order of getMaterialQuery.
func scanMaterial(row rowScanner) (*domain.Material, error) {
	var material domain.Material
	var unit string

	err := row.Scan(
		&material.ID,
		&material.SKU,
		&material.Name,
		&unit,
		&material.UnitCostCents,
		&material.QuantityOnHand,
		&material.ReorderLevel,
		&material.CreatedAt,
		&material.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	material.Unit = domain.MaterialUnit(unit)
	return &material, nil
}

func materialInsertArgs(m *domain.Material) []any {
	return []any{
		m.ID,
		m.SKU,
		m.Name,
		m.Unit,
		m.UnitCostCents,
		m.QuantityOnHand,
		m.ReorderLevel,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

func materialUpdateArgs(m *domain.Material) []any {
	return []any{
		m.SKU,
		m.Name,
		m.Unit,
		m.UnitCostCents,
		m.QuantityOnHand,
		m.ReorderLevel,
		m.UpdatedAt,
		m.ID,
	}
}
