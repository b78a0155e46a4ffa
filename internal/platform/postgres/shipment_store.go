package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Shipment queries. The order_id column carries a foreign key with ON DELETE
// RESTRICT, which is what turns purging an order with shipments into an
// error.
const (
	getShipmentQuery = `
		SELECT id, order_id, carrier, tracking_code, status, dispatched_at, delivered_at, created_at, updated_at
		FROM shipments
		WHERE id = $1
	`

	insertShipmentQuery = `
		INSERT INTO shipments (id, order_id, carrier, tracking_code, status, dispatched_at, delivered_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	updateShipmentQuery = `
		UPDATE shipments
		SET carrier = $1, tracking_code = $2, status = $3, dispatched_at = $4, delivered_at = $5, updated_at = $6
		WHERE id = $7
	`

	deleteShipmentQuery = `
		DELETE FROM shipments
		WHERE id = $1
	`

	listShipmentsQuery = `
		SELECT id, order_id, carrier, tracking_code, status, dispatched_at, delivered_at, created_at, updated_at
		FROM shipments
		WHERE TRUE
	`
)

// PostgresShipmentStore implements the store.ShipmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresShipmentStore struct {
	crudTable[*domain.Shipment]
}

// NewPostgresShipmentStore creates a new PostgreSQL implementation of the
// ShipmentStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresShipmentStore(db store.DBTX, logger *slog.Logger) *PostgresShipmentStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresShipmentStore{
		crudTable: crudTable[*domain.Shipment]{
			db:          db,
			logger:      logger.With(slog.String("component", "shipment_store")),
			entityName:  "shipment",
			getQuery:    getShipmentQuery,
			insertQuery: insertShipmentQuery,
			updateQuery: updateShipmentQuery,
			deleteQuery: deleteShipmentQuery,
			scanRow:     scanShipment,
			insertArgs:  shipmentInsertArgs,
			updateArgs:  shipmentUpdateArgs,
			notFound:    store.ErrShipmentNotFound,
			fkMissing:   store.ErrOrderNotFound,
		},
	}
}

// Ensure PostgresShipmentStore implements store.ShipmentStore
var _ store.ShipmentStore = (*PostgresShipmentStore)(nil)

// List retrieves shipments matching the filter, newest first.
func (s *PostgresShipmentStore) List(
	ctx context.Context,
	filter store.ShipmentFilter,
) ([]*domain.Shipment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset := clampPage(filter.Limit, filter.Offset)

	log.Debug("listing shipments",
		slog.String("status", string(filter.Status)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := listShipmentsQuery
	args := []any{}
	argIndex := 1

	if filter.OrderID != uuid.Nil {
		query += fmt.Sprintf(" AND order_id = $%d", argIndex)
		args = append(args, filter.OrderID)
		argIndex++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return s.queryList(ctx, query, args...)
}

// WithTx returns a ShipmentStore bound to the given transaction.
func (s *PostgresShipmentStore) WithTx(tx *sql.Tx) store.ShipmentStore {
	return &PostgresShipmentStore{crudTable: s.crudTable.withDB(tx)}
}

// scanShipment reads one shipment row in the column order of getShipmentQuery.
func scanShipment(row rowScanner) (*domain.Shipment, error) {
	var shipment domain.Shipment
	var status string
	var dispatchedAt, deliveredAt sql.NullTime

	err := row.Scan(
		&shipment.ID,
		&shipment.OrderID,
		&shipment.Carrier,
		&shipment.TrackingCode,
		&status,
		&dispatchedAt,
		&deliveredAt,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	shipment.Status = domain.ShipmentStatus(status)
	if dispatchedAt.Valid {
		t := dispatchedAt.Time.UTC()
		shipment.DispatchedAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time.UTC()
		shipment.DeliveredAt = &t
	}

	return &shipment, nil
}

func shipmentInsertArgs(sh *domain.Shipment) []any {
	return []any{
		sh.ID,
		sh.OrderID,
		sh.Carrier,
		sh.TrackingCode,
		sh.Status,
		nullTime(sh.DispatchedAt),
		nullTime(sh.DeliveredAt),
		sh.CreatedAt,
		sh.UpdatedAt,
	}
}

func shipmentUpdateArgs(sh *domain.Shipment) []any {
	return []any{
		sh.Carrier,
		sh.TrackingCode,
		sh.Status,
		nullTime(sh.DispatchedAt),
		nullTime(sh.DeliveredAt),
		sh.UpdatedAt,
		sh.ID,
	}
}
