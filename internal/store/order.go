package store

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/domain"
)

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status    domain.OrderStatus   // filter by fulfilment status when non-empty
	Priority  domain.OrderPriority // filter by priority when non-empty
	ProjectID uuid.UUID            // filter by owning project when non-nil
	Limit     int
	Offset    int
}

// OrderStore defines the persistence contract for orders.
//
// Orders are soft-deleted like projects. Delete returns ErrOrderHasShipments
// when shipments still reference the order.
type OrderStore interface {
	Store[*domain.Order, OrderFilter]

	// WithTx returns an OrderStore bound to the given transaction.
	WithTx(tx *sql.Tx) OrderStore
}
