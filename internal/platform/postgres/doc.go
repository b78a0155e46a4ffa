// Package postgres provides the PostgreSQL implementations of the repository
// interfaces defined in internal/store. A generic crudTable helper carries the
// shared query execution, error mapping, and logging for all entities; each
// entity store supplies its SQL, row scanning, and list filtering on top.
package postgres
