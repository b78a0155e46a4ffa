package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

// Possible order status values
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAllocated  OrderStatus = "allocated"
	OrderStatusDispatched OrderStatus = "dispatched"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderPriority represents how urgently an order should be fulfilled
type OrderPriority string

// Possible order priority values
const (
	OrderPriorityStandard OrderPriority = "standard"
	OrderPriorityRush     OrderPriority = "rush"
)

// Common validation errors for Order
var (
	ErrEmptyOrderID             = errors.New("order ID cannot be empty")
	ErrEmptyOrderReference      = errors.New("order reference cannot be empty")
	ErrOrderReferenceTooLong    = errors.New("order reference must be at most 40 characters long")
	ErrEmptyOrderProjectID      = errors.New("order project ID cannot be empty")
	ErrEmptyOrderDestination    = errors.New("order destination cannot be empty")
	ErrOrderDestinationTooLong  = errors.New("order destination must be at most 500 characters long")
	ErrInvalidOrderPriority     = errors.New("invalid order priority")
	ErrInvalidOrderStatus       = errors.New("invalid order status")
)

// Order represents a request to move materials to a destination on behalf of
// a project. The project is referenced by plain UUID; projects live in a
// different host and there is no cross-host join.
type Order struct {
	ID          uuid.UUID     `json:"id"`
	Reference   string        `json:"reference"`
	ProjectID   uuid.UUID     `json:"project_id"`
	Destination string        `json:"destination"`
	Priority    OrderPriority `json:"priority"`
	Status      OrderStatus   `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewOrder creates a new Order with the given reference, project, destination,
// and priority. It generates a new UUID for the order ID, sets the status to
// pending, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewOrder(reference string, projectID uuid.UUID, destination string, priority OrderPriority) (*Order, error) {
	order := &Order{
		ID:          uuid.New(),
		Reference:   reference,
		ProjectID:   projectID,
		Destination: destination,
		Priority:    priority,
		Status:      OrderStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := order.Validate(); err != nil {
		return nil, err
	}

	return order, nil
}

// EntityID returns the order's unique identifier.
func (o *Order) EntityID() uuid.UUID {
	return o.ID
}

// Validate checks if the Order has valid data.
// Returns an error if any field fails validation.
func (o *Order) Validate() error {
	if o.ID == uuid.Nil {
		return ErrEmptyOrderID
	}

	if o.Reference == "" {
		return ErrEmptyOrderReference
	}

	if len(o.Reference) > 40 {
		return ErrOrderReferenceTooLong
	}

	if o.ProjectID == uuid.Nil {
		return ErrEmptyOrderProjectID
	}

	if o.Destination == "" {
		return ErrEmptyOrderDestination
	}

	if len(o.Destination) > 500 {
		return ErrOrderDestinationTooLong
	}

	if !isValidOrderPriority(o.Priority) {
		return ErrInvalidOrderPriority
	}

	if !isValidOrderStatus(o.Status) {
		return ErrInvalidOrderStatus
	}

	return nil
}

// UpdateStatus sets the order's status and updates the UpdatedAt timestamp.
// Returns an error if the new status is not in the order status vocabulary.
// Transition legality is enforced by the service layer.
func (o *Order) UpdateStatus(status OrderStatus) error {
	if !isValidOrderStatus(status) {
		return ErrInvalidOrderStatus
	}

	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidOrderStatus checks if the given status is a valid OrderStatus.
func isValidOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderStatusPending, OrderStatusAllocated, OrderStatusDispatched,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// isValidOrderPriority checks if the given priority is a valid OrderPriority.
func isValidOrderPriority(priority OrderPriority) bool {
	switch priority {
	case OrderPriorityStandard, OrderPriorityRush:
		return true
	default:
		return false
	}
}
