package store

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/domain"
)

// ShipmentFilter narrows shipment listings.
type ShipmentFilter struct {
	OrderID uuid.UUID             // filter by fulfilled order when non-nil
	Status  domain.ShipmentStatus // filter by transit status when non-empty
	Limit   int
	Offset  int
}

// ShipmentStore defines the persistence contract for shipments.
// Create returns ErrOrderNotFound when the referenced order does not exist.
type ShipmentStore interface {
	Store[*domain.Shipment, ShipmentFilter]

	// WithTx returns a ShipmentStore bound to the given transaction.
	WithTx(tx *sql.Tx) ShipmentStore
}
