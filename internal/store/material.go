package store

import (
	"database/sql"

	"github.com/gridstonehq/gridstone-api/internal/domain"
)

// MaterialFilter narrows material listings.
type MaterialFilter struct {
	Unit         domain.MaterialUnit // filter by unit of measure when non-empty
	BelowReorder bool                // only materials under their reorder level
	Limit        int
	Offset       int
}

// MaterialStore defines the persistence contract for catalog materials.
// Create returns ErrMaterialSKUExists when the SKU is already taken.
type MaterialStore interface {
	Store[*domain.Material, MaterialFilter]

	// WithTx returns a MaterialStore bound to the given transaction.
	WithTx(tx *sql.Tx) MaterialStore
}
