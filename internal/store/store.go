package store

import (
	"context"

	"github.com/google/uuid"
)

// Entity constrains the types a Store can manage to those exposing a UUID
// identity. The domain entity pointer types satisfy it.
type Entity interface {
	EntityID() uuid.UUID
}

// Store is the uniform CRUD contract shared by every entity type. E is the
// entity pointer type and F the entity's list filter struct. All methods are
// synchronous and honor context cancellation.
type Store[E Entity, F any] interface {
	// GetByID retrieves an entity by its unique ID.
	// Returns the entity's not-found sentinel if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (E, error)

	// List retrieves entities matching the filter, newest first.
	// Implementations apply a default limit when the filter does not set one.
	List(ctx context.Context, filter F) ([]E, error)

	// Create saves a new entity.
	// Returns a duplicate sentinel when a unique constraint is violated.
	Create(ctx context.Context, entity E) error

	// Update modifies an existing entity.
	// Returns the entity's not-found sentinel if it does not exist.
	Update(ctx context.Context, entity E) error

	// Delete removes an entity by its ID.
	// Returns the entity's not-found sentinel if it does not exist; deleting
	// a missing entity is never silent.
	Delete(ctx context.Context, id uuid.UUID) error
}
