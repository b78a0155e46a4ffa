package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Project queries. Projects are soft-deleted: reads exclude marked rows and
// Delete stamps deleted_at so the retention sweeper can purge the row later.
const (
	getProjectQuery = `
		SELECT id, name, code, description, status, start_date, end_date, created_at, updated_at
		FROM projects
		WHERE id = $1 AND deleted_at IS NULL
	`

	insertProjectQuery = `
		INSERT INTO projects (id, name, code, description, status, start_date, end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	updateProjectQuery = `
		UPDATE projects
		SET name = $1, code = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`

	deleteProjectQuery = `
		UPDATE projects
		SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`

	listProjectsQuery = `
		SELECT id, name, code, description, status, start_date, end_date, created_at, updated_at
		FROM projects
		WHERE deleted_at IS NULL
	`

	purgeProjectsQuery = `
		DELETE FROM projects
		WHERE deleted_at IS NOT NULL AND deleted_at < $1
	`
)

// PostgresProjectStore implements the store.ProjectStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProjectStore struct {
	crudTable[*domain.Project]
}

// NewPostgresProjectStore creates a new PostgreSQL implementation of the
// ProjectStore interface. It accepts a database connection or transaction
// managed by the caller. If logger is nil, a default logger will be used.
func NewPostgresProjectStore(db store.DBTX, logger *slog.Logger) *PostgresProjectStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProjectStore{
		crudTable: crudTable[*domain.Project]{
			db:          db,
			logger:      logger.With(slog.String("component", "project_store")),
			entityName:  "project",
			getQuery:    getProjectQuery,
			insertQuery: insertProjectQuery,
			updateQuery: updateProjectQuery,
			deleteQuery: deleteProjectQuery,
			scanRow:     scanProject,
			insertArgs:  projectInsertArgs,
			updateArgs:  projectUpdateArgs,
			notFound:    store.ErrProjectNotFound,
			duplicate:   store.ErrProjectCodeExists,
		},
	}
}

// Ensure PostgresProjectStore implements store.ProjectStore
var _ store.ProjectStore = (*PostgresProjectStore)(nil)

// List retrieves projects matching the filter, newest first.
func (s *PostgresProjectStore) List(
	ctx context.Context,
	filter store.ProjectFilter,
) ([]*domain.Project, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit, offset := clampPage(filter.Limit, filter.Offset)

	log.Debug("listing projects",
		slog.String("status", string(filter.Status)),
		slog.Int("limit", limit),
		slog.Int("offset", offset))

	query := listProjectsQuery
	args := []any{}
	argIndex := 1

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, filter.Status)
		argIndex++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	return s.queryList(ctx, query, args...)
}

// WithTx returns a ProjectStore bound to the given transaction.
func (s *PostgresProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &PostgresProjectStore{crudTable: s.crudTable.withDB(tx)}
}

// PurgeDeletedBefore permanently removes projects soft-deleted before cutoff
// and reports how many rows went away. The retention sweeper is the only
// caller.
func (s *PostgresProjectStore) PurgeDeletedBefore(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, purgeProjectsQuery, cutoff)
	if err != nil {
		log.Error("failed to purge projects",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return 0, MapError(err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	log.Debug("purged soft-deleted projects",
		slog.Int64("purged", purged),
		slog.Time("cutoff", cutoff))
	return purged, nil
}

// scanProject reads one project row in the column order of getProjectQuery.
func scanProject(row rowScanner) (*domain.Project, error) {
	var project domain.Project
	var status string
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Code,
		&project.Description,
		&status,
		&startDate,
		&endDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.Status = domain.ProjectStatus(status)
	if startDate.Valid {
		t := startDate.Time.UTC()
		project.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time.UTC()
		project.EndDate = &t
	}

	return &project, nil
}

func projectInsertArgs(p *domain.Project) []any {
	return []any{
		p.ID,
		p.Name,
		p.Code,
		p.Description,
		p.Status,
		nullTime(p.StartDate),
		nullTime(p.EndDate),
		p.CreatedAt,
		p.UpdatedAt,
	}
}

func projectUpdateArgs(p *domain.Project) []any {
	return []any{
		p.Name,
		p.Code,
		p.Description,
		p.Status,
		nullTime(p.StartDate),
		nullTime(p.EndDate),
		p.UpdatedAt,
		p.ID,
	}
}
