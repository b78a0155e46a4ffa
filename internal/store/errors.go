package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrProjectNotFound, ErrOrderNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a material with an existing SKU).
	ErrDuplicate = errors.New("entity already exists")

	// ErrConflict is returned when an operation is rejected because other
	// rows still reference the entity (e.g., deleting an order that has
	// shipments).
	ErrConflict = errors.New("entity conflict")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrProjectNotFound indicates that the requested project does not exist in the store.
	ErrProjectNotFound = fmt.Errorf("%w: project", ErrNotFound)

	// ErrMaterialNotFound indicates that the requested material does not exist in the store.
	ErrMaterialNotFound = fmt.Errorf("%w: material", ErrNotFound)

	// ErrOrderNotFound indicates that the requested order does not exist in the store.
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)

	// ErrShipmentNotFound indicates that the requested shipment does not exist in the store.
	ErrShipmentNotFound = fmt.Errorf("%w: shipment", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrProjectCodeExists indicates that a project with the given code already exists.
	ErrProjectCodeExists = fmt.Errorf("%w: project code", ErrDuplicate)

	// ErrMaterialSKUExists indicates that a material with the given SKU already exists.
	ErrMaterialSKUExists = fmt.Errorf("%w: material SKU", ErrDuplicate)

	// ErrOrderReferenceExists indicates that an order with the given reference already exists.
	ErrOrderReferenceExists = fmt.Errorf("%w: order reference", ErrDuplicate)

	// Entity-specific "conflict" errors

	// ErrOrderHasShipments indicates that an order cannot be deleted while
	// shipments still reference it.
	ErrOrderHasShipments = fmt.Errorf("%w: order has shipments", ErrConflict)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific not found errors wrap ErrNotFound, so a single errors.Is
// covers them all.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsConflictError checks if the error is any kind of referential conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}
