package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// List pagination bounds shared by all entity stores.
const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// entity is the constraint for table-backed types: a UUID identity for
// logging plus structural validation before writes.
type entity interface {
	store.Entity
	Validate() error
}

// rowScanner abstracts scanning a single row. Both *sql.Row and *sql.Rows
// satisfy it, so one scan function per entity serves point reads and lists.
type rowScanner interface {
	Scan(dest ...any) error
}

// crudTable implements the uniform portion of a store.Store for one table.
// Entity stores embed it, supply the SQL and adapters below, and add their
// own List implementation on top of queryList.
type crudTable[E entity] struct {
	db     store.DBTX
	logger *slog.Logger

	// entityName appears in log records, e.g. "project".
	entityName string

	getQuery    string
	insertQuery string
	updateQuery string
	deleteQuery string

	scanRow    func(row rowScanner) (E, error)
	insertArgs func(e E) []any
	updateArgs func(e E) []any

	notFound  error // entity-specific not-found sentinel
	duplicate error // entity-specific duplicate sentinel, nil when no unique key
	fkMissing error // returned when an insert references a missing row, nil when no FK
}

// withDB returns a copy of the helper bound to a different executor. Used by
// the WithTx methods to run the same store inside a transaction.
func (t crudTable[E]) withDB(db store.DBTX) crudTable[E] {
	t.db = db
	return t
}

// GetByID retrieves an entity by its unique ID.
// Returns the entity's not-found sentinel if no row matches.
func (t *crudTable[E]) GetByID(ctx context.Context, id uuid.UUID) (E, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	var zero E
	e, err := t.scanRow(t.db.QueryRowContext(ctx, t.getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("entity not found",
				slog.String("entity", t.entityName),
				slog.String("id", id.String()))
			return zero, t.notFound
		}
		log.Error("failed to get entity by ID",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return zero, MapError(err)
	}

	return e, nil
}

// Create saves a new entity after validating it. Unique violations map to
// the entity's duplicate sentinel, foreign key violations to fkMissing.
func (t *crudTable[E]) Create(ctx context.Context, e E) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	if err := e.Validate(); err != nil {
		log.Warn("entity validation failed during create",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", e.EntityID().String()))
		return err
	}

	_, err := t.db.ExecContext(ctx, t.insertQuery, t.insertArgs(e)...)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("unique constraint violation during create",
				slog.String("entity", t.entityName),
				slog.String("error", err.Error()),
				slog.String("id", e.EntityID().String()))
			return MapUniqueViolation(err, t.duplicate)
		}
		if t.fkMissing != nil && IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during create",
				slog.String("entity", t.entityName),
				slog.String("error", err.Error()),
				slog.String("id", e.EntityID().String()))
			return fmt.Errorf("%w: %v", t.fkMissing, err)
		}
		log.Error("failed to create entity",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", e.EntityID().String()))
		return MapError(err)
	}

	log.Info("entity created",
		slog.String("entity", t.entityName),
		slog.String("id", e.EntityID().String()))
	return nil
}

// Update saves changes to an existing entity after validating it.
// Returns the entity's not-found sentinel if no row was updated.
func (t *crudTable[E]) Update(ctx context.Context, e E) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	if err := e.Validate(); err != nil {
		log.Warn("entity validation failed during update",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", e.EntityID().String()))
		return err
	}

	result, err := t.db.ExecContext(ctx, t.updateQuery, t.updateArgs(e)...)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("unique constraint violation during update",
				slog.String("entity", t.entityName),
				slog.String("error", err.Error()),
				slog.String("id", e.EntityID().String()))
			return MapUniqueViolation(err, t.duplicate)
		}
		log.Error("failed to update entity",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", e.EntityID().String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, t.notFound); err != nil {
		log.Debug("entity not found for update",
			slog.String("entity", t.entityName),
			slog.String("id", e.EntityID().String()))
		return err
	}

	log.Info("entity updated",
		slog.String("entity", t.entityName),
		slog.String("id", e.EntityID().String()))
	return nil
}

// Delete removes an entity by its ID. Returns the entity's not-found sentinel
// if no row was affected; deleting a missing entity is never reported as
// success.
func (t *crudTable[E]) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	result, err := t.db.ExecContext(ctx, t.deleteQuery, id)
	if err != nil {
		log.Error("failed to delete entity",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()),
			slog.String("id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, t.notFound); err != nil {
		log.Debug("entity not found for delete",
			slog.String("entity", t.entityName),
			slog.String("id", id.String()))
		return err
	}

	log.Info("entity deleted",
		slog.String("entity", t.entityName),
		slog.String("id", id.String()))
	return nil
}

// queryList runs a list query and scans every row with the table's scanRow.
// It always returns a non-nil slice so empty results encode as [] and not
// null.
func (t *crudTable[E]) queryList(ctx context.Context, query string, args ...any) ([]E, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query entities",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var entities []E
	for rows.Next() {
		e, err := t.scanRow(rows)
		if err != nil {
			log.Error("failed to scan entity row",
				slog.String("entity", t.entityName),
				slog.String("error", err.Error()))
			return nil, err
		}
		entities = append(entities, e)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("entity", t.entityName),
			slog.String("error", err.Error()))
		return nil, err
	}

	if entities == nil {
		entities = []E{}
	}

	log.Debug("listed entities",
		slog.String("entity", t.entityName),
		slog.Int("count", len(entities)))
	return entities, nil
}

// clampPage normalizes limit and offset for list queries.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// nullTime adapts an optional timestamp for a nullable column.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
