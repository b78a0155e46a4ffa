package store

import (
	"database/sql"

	"github.com/gridstonehq/gridstone-api/internal/domain"
)

// ProjectFilter narrows project listings. Zero values mean "no constraint";
// a zero Limit falls back to the implementation default.
type ProjectFilter struct {
	Status domain.ProjectStatus // filter by lifecycle status when non-empty
	Limit  int
	Offset int
}

// ProjectStore defines the persistence contract for projects.
//
// Projects are soft-deleted: Delete marks the row and all reads exclude
// marked rows. Purging is the retention sweeper's job.
type ProjectStore interface {
	Store[*domain.Project, ProjectFilter]

	// WithTx returns a ProjectStore bound to the given transaction, allowing
	// multiple operations to execute atomically. The transaction lifecycle is
	// managed by the caller, typically via RunInTransaction.
	WithTx(tx *sql.Tx) ProjectStore
}
