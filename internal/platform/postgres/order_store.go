package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Order queries. Orders are soft-deleted like projects. The project_id column
// is a plain UUID; projects live in a different host's database, so there is
// no foreign key to them.
const (
	getOrderQuery = `
		SELECT id, reference, project_id, destination, priority, status, created_at, updated_at
		FROM orders
		WHERE id = $1 AND deleted_at IS NULL
	`

	insertOrderQuery = `
		INSERT INTO orders (id, reference, project_id, destination, priority, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	updateOrderQuery = `
		UPDATE orders
		SET reference = $1, project_id = $2, destination = $3, priority = $4, status = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`

	deleteOrderQuery = `
		UPDATE orders
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	listOrdersQuery = `
		SELECT id, reference, project_id, destination, priority, status, created_at, updated_at
		FROM orders
		WHERE deleted_at IS NULL
	`

	orderHasShipmentsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM shipments WHERE order_id = $1
		)
	`

	// Shipments hold a RESTRICT foreign key on orders. A stray reference to a
	// soft-deleted order must not fail the whole purge statement, so those
	// rows are excluded and stay behind.
	purgeOrdersQuery = `
		DELETE FROM orders
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM shipments WHERE shipments.order_id = orders.id
		)
	`
)

// PostgresOrderStore implements the store.OrderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresOrderStore struct {
	crudTable[*domain.Order]
}

// NewPostgresOrderStore creates a new PostgreSQL implementation of the
// OrderStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresOrderStore(db store.DBTX, logger *slog.Logger) *PostgresOrderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresOrderStore{
		crudTable: crudTable[*domain.Order]{
			db:          db,
			logger:      logger.With(slog.String("component", "order_store")),
			entityName:  "order",
			getQuery:    getOrderQuery,
			insertQuery: insertOrderQuery,
			updateQuery: updateOrderQuery,
			deleteQuery: deleteOrderQuery,
			scanRow:     scanOrder,
			insertArgs:  orderInsertArgs,
			updateArgs:  orderUpdateArgs,
			notFound:    store.ErrOrderNotFound,
			duplicate:   store.ErrOrderReferenceExists,
		},
	}
}

// Ensure PostgresOrderStore implements store.OrderStore
var _ store.OrderStore = (*PostgresOrderStore)(nil)

// List retrieves orders matching the filter, newest first.
func (s *PostgresOrderStore) List(
	ctx context.Context,
	filter store.OrderFilter,
) ([]*domain.Order, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset := clampPage(filter.Limit, filter.Offset)

	log.Debug("listing orders",
		slog.String("status", string(filter.Status)),
		slog.String("priority", string(filter.Priority)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := listOrdersQuery
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}
	if filter.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argIndex)
		args = append(args, filter.Priority)
		argIndex++
	}
	if filter.ProjectID != uuid.Nil {
		query += fmt.Sprintf(" AND project_id = $%d", argIndex)
		args = append(args, filter.ProjectID)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return s.queryList(ctx, query, args...)
}

// Delete soft-deletes an order. Orders that still have shipments cannot be
// deleted and yield store.ErrOrderHasShipments.
func (s *PostgresOrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var hasShipments bool
	if err := s.db.QueryRowContext(ctx, orderHasShipmentsQuery, id).Scan(&hasShipments); err != nil {
		log.Error("failed to check order shipments",
			slog.String("error", err.Error()),
			slog.String("order_id", id.String()))
		return err
	}

	if hasShipments {
		log.Warn("order delete rejected, shipments still reference it",
			slog.String("order_id", id.String()))
		return store.ErrOrderHasShipments
	}

	return s.crudTable.Delete(ctx, id)
}

// WithTx returns an OrderStore bound to the given transaction.
func (s *PostgresOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return &PostgresOrderStore{crudTable: s.crudTable.withDB(tx)}
}

// PurgeDeletedBefore permanently removes orders soft-deleted before cutoff
// and reports how many rows went away. The retention sweeper is the only
// caller.
func (s *PostgresOrderStore) PurgeDeletedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, purgeOrdersQuery, cutoff)
	if err != nil {
		log.Error("failed to purge orders",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, MapError(err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	log.Debug("purged soft-deleted orders",
		slog.Int64("purged", purged),
		slog.Time("cutoff", cutoff))
	return purged, nil
}

// scanOrder reads one order row in the column order of getOrderQuery.
func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var priority, status string

	err := row.Scan(
		&order.ID,
		&order.Reference,
		&order.ProjectID,
		&order.Destination,
		&priority,
		&status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Priority = domain.OrderPriority(priority)
	order.Status = domain.OrderStatus(status)
	return &order, nil
}

func orderInsertArgs(o *domain.Order) []any {
	return []any{
		o.ID,
		o.Reference,
		o.ProjectID,
		o.Destination,
		o.Priority,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	}
}

func orderUpdateArgs(o *domain.Order) []any {
	return []any{
		o.Reference,
		o.ProjectID,
		o.Destination,
		o.Priority,
		o.Status,
		o.UpdatedAt,
		o.ID,
	}
}
