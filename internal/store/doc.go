// Package store defines the persistence contracts for the platform's
// entities. A single generic Store interface describes CRUD for every entity
// type; per-entity interfaces instantiate it, add the entity's list filter,
// and allow binding to a transaction. Implementations live in
// internal/platform/postgres so business logic stays independent of the
// database technology.
package store
