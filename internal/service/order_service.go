package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// orderTransitions lists the legal target statuses per current status.
// Pending and allocated orders may still be cancelled; once dispatched the
// only way forward is delivery.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusAllocated, domain.OrderStatusCancelled},
	domain.OrderStatusAllocated:  {domain.OrderStatusDispatched, domain.OrderStatusCancelled},
	domain.OrderStatusDispatched: {domain.OrderStatusDelivered},
}

func orderTransitionAllowed(from, to domain.OrderStatus) bool {
	if from == to {
		return true
	}
	for _, target := range orderTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// orderPriorityFrozen reports whether the order has progressed far enough
// that its priority no longer influences handling and must not change.
func orderPriorityFrozen(status domain.OrderStatus) bool {
	return status == domain.OrderStatusDispatched || status == domain.OrderStatusDelivered
}

// CreateOrderInput carries the fields accepted at order creation.
type CreateOrderInput struct {
	Reference   string
	ProjectID   uuid.UUID
	Destination string
	Priority    domain.OrderPriority
}

// UpdateOrderInput is a full replacement of the mutable order fields. The
// reference and project binding are fixed at creation and deliberately
// absent.
type UpdateOrderInput struct {
	Destination string
	Status      domain.OrderStatus
	Priority    domain.OrderPriority
}

// OrderService provides logistics order operations.
type OrderService interface {
	// GetOrder retrieves an order by its ID.
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)

	// ListOrders returns orders matching the filter.
	ListOrders(ctx context.Context, filter store.OrderFilter) ([]*domain.Order, error)

	// CreateOrder creates a new order in pending status. References are
	// unique across orders.
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)

	// UpdateOrder replaces the mutable fields of an order, enforcing status
	// transitions and the priority freeze after dispatch.
	UpdateOrder(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*domain.Order, error)

	// DeleteOrder removes an order. Orders with shipments cannot be deleted.
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// OrderServiceImpl implements the OrderService interface.
type OrderServiceImpl struct {
	orderStore store.OrderStore
	db         *sql.DB
	logger     *slog.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderStore store.OrderStore, db *sql.DB, logger *slog.Logger) OrderService {
	return &OrderServiceImpl{
		orderStore: orderStore,
		db:         db,
		logger:     logger.With("component", "order_service"),
	}
}

// GetOrder retrieves an order by its ID.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orderStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			s.logger.Debug("order not found", "order_id", id)
		} else {
			s.logger.Error("failed to retrieve order",
				"error", err,
				"order_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	return order, nil
}

// ListOrders returns orders matching the filter.
func (s *OrderServiceImpl) ListOrders(
	ctx context.Context,
	filter store.OrderFilter,
) ([]*domain.Order, error) {
	orders, err := s.orderStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

// CreateOrder creates a new order in pending status.
func (s *OrderServiceImpl) CreateOrder(
	ctx context.Context,
	input CreateOrderInput,
) (*domain.Order, error) {
	order, err := domain.NewOrder(input.Reference, input.ProjectID, input.Destination, input.Priority)
	if err != nil {
		s.logger.Debug("rejected invalid order input",
			"error", err,
			"reference", input.Reference)
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.orderStore.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		if errors.Is(err, store.ErrOrderReferenceExists) {
			s.logger.Debug("attempted to create order with existing reference",
				"reference", input.Reference)
		} else {
			s.logger.Error("failed to save order",
				"error", err,
				"reference", input.Reference)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"reference", order.Reference)

	return order, nil
}

// UpdateOrder replaces the mutable fields of an order.
func (s *OrderServiceImpl) UpdateOrder(
	ctx context.Context,
	id uuid.UUID,
	input UpdateOrderInput,
) (*domain.Order, error) {
	var updated *domain.Order

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.orderStore.WithTx(tx)

		order, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve order for update: %w", err)
		}

		if !orderTransitionAllowed(order.Status, input.Status) {
			return domain.NewBusinessRuleError(RuleStatusTransition,
				fmt.Sprintf("order cannot move from %s to %s", order.Status, input.Status))
		}

		if input.Priority != order.Priority && orderPriorityFrozen(order.Status) {
			return domain.NewBusinessRuleError(RulePriorityFrozen,
				fmt.Sprintf("order priority cannot change once %s", order.Status))
		}

		order.Destination = input.Destination
		order.Priority = input.Priority

		if err := order.UpdateStatus(input.Status); err != nil {
			return domain.NewValidationError("status", "is not a valid order status", err)
		}

		if err := txStore.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		updated = order
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			s.logger.Debug("order not found for update", "order_id", id)
		case errors.Is(err, domain.ErrBusinessRule):
			s.logger.Debug("rejected order update", "error", err, "order_id", id)
		default:
			s.logger.Error("failed to update order",
				"error", err,
				"order_id", id)
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("order updated", "order_id", id)

	return updated, nil
}

// DeleteOrder removes an order. The store refuses deletion while shipments
// still reference the order.
func (s *OrderServiceImpl) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.orderStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			s.logger.Debug("attempted to delete non-existent order", "order_id", id)
		case errors.Is(err, store.ErrOrderHasShipments):
			s.logger.Debug("refused to delete order with shipments", "order_id", id)
		default:
			s.logger.Error("failed to delete order",
				"error", err,
				"order_id", id)
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info("order deleted", "order_id", id)

	return nil
}
