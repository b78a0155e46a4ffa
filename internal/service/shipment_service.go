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

// shipmentTransitions lists the legal target statuses per current status.
// Shipments only move forward: prepared, in transit, delivered.
var shipmentTransitions = map[domain.ShipmentStatus][]domain.ShipmentStatus{
	domain.ShipmentStatusPreparing: {domain.ShipmentStatusInTransit},
	domain.ShipmentStatusInTransit: {domain.ShipmentStatusDelivered},
}

func shipmentTransitionAllowed(from, to domain.ShipmentStatus) bool {
	if from == to {
		return true
	}
	for _, target := range shipmentTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

// orderShippable reports whether an order may have shipments created against
// it. Stock is committed at allocation, so earlier and terminal statuses
// must not ship.
func orderShippable(status domain.OrderStatus) bool {
	return status == domain.OrderStatusAllocated || status == domain.OrderStatusDispatched
}

// CreateShipmentInput carries the fields accepted at shipment creation.
type CreateShipmentInput struct {
	OrderID      uuid.UUID
	Carrier      string
	TrackingCode string
}

// UpdateShipmentInput is a full replacement of the mutable shipment fields.
// The order binding is fixed at creation and deliberately absent.
type UpdateShipmentInput struct {
	Carrier      string
	TrackingCode string
	Status       domain.ShipmentStatus
}

// ShipmentService provides shipment operations.
type ShipmentService interface {
	// GetShipment retrieves a shipment by its ID.
	GetShipment(ctx context.Context, id uuid.UUID) (*domain.Shipment, error)

	// ListShipments returns shipments matching the filter, typically scoped
	// to one order.
	ListShipments(ctx context.Context, filter store.ShipmentFilter) ([]*domain.Shipment, error)

	// CreateShipment creates a shipment against an order. The order must
	// exist and be allocated or dispatched.
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*domain.Shipment, error)

	// UpdateShipment replaces the mutable fields of a shipment, enforcing
	// the forward-only status transitions.
	UpdateShipment(ctx context.Context, id uuid.UUID, input UpdateShipmentInput) (*domain.Shipment, error)

	// DeleteShipment removes a shipment by its ID.
	DeleteShipment(ctx context.Context, id uuid.UUID) error
}

// ShipmentServiceImpl implements the ShipmentService interface.
type ShipmentServiceImpl struct {
	shipmentStore store.ShipmentStore
	orderStore    store.OrderStore
	db            *sql.DB
	logger        *slog.Logger
}

// NewShipmentService creates a new ShipmentService. Shipments are validated
// against their order, so the service needs both stores.
func NewShipmentService(
	shipmentStore store.ShipmentStore,
	orderStore store.OrderStore,
	db *sql.DB,
	logger *slog.Logger,
) ShipmentService {
	return &ShipmentServiceImpl{
		shipmentStore: shipmentStore,
		orderStore:    orderStore,
		db:            db,
		logger:        logger.With("component", "shipment_service"),
	}
}

// GetShipment retrieves a shipment by its ID.
func (s *ShipmentServiceImpl) GetShipment(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	shipment, err := s.shipmentStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrShipmentNotFound) {
			s.logger.Debug("shipment not found", "shipment_id", id)
		} else {
			s.logger.Error("failed to retrieve shipment",
				"error", err,
				"shipment_id", id)
		}
		return nil, fmt.Errorf("failed to retrieve shipment: %w", err)
	}

	return shipment, nil
}

// ListShipments returns shipments matching the filter.
func (s *ShipmentServiceImpl) ListShipments(
	ctx context.Context,
	filter store.ShipmentFilter,
) ([]*domain.Shipment, error) {
	shipments, err := s.shipmentStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list shipments", "error", err)
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	return shipments, nil
}

// CreateShipment creates a shipment against an order. The order lookup and
// the insert run in one transaction so the order cannot be deleted between
// the check and the write.
func (s *ShipmentServiceImpl) CreateShipment(
	ctx context.Context,
	input CreateShipmentInput,
) (*domain.Shipment, error) {
	shipment, err := domain.NewShipment(input.OrderID, input.Carrier, input.TrackingCode)
	if err != nil {
		s.logger.Debug("rejected invalid shipment input",
			"error", err,
			"order_id", input.OrderID)
		return nil, domain.NewValidationError("", err.Error(), err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		order, err := s.orderStore.WithTx(tx).GetByID(ctx, input.OrderID)
		if err != nil {
			return fmt.Errorf("failed to retrieve order for shipment: %w", err)
		}

		if !orderShippable(order.Status) {
			return domain.NewBusinessRuleError(RuleOrderNotShippable,
				fmt.Sprintf("order %s is %s and cannot be shipped", order.Reference, order.Status))
		}

		return s.shipmentStore.WithTx(tx).Create(ctx, shipment)
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrOrderNotFound):
			s.logger.Debug("shipment references missing order", "order_id", input.OrderID)
		case errors.Is(err, domain.ErrBusinessRule):
			s.logger.Debug("rejected shipment creation", "error", err, "order_id", input.OrderID)
		default:
			s.logger.Error("failed to save shipment",
				"error", err,
				"order_id", input.OrderID)
		}
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	s.logger.Info("shipment created",
		"shipment_id", shipment.ID,
		"order_id", shipment.OrderID)

	return shipment, nil
}

// UpdateShipment replaces the mutable fields of a shipment. Dispatch and
// delivery timestamps are stamped by the domain entity on first entry into
// the corresponding status.
func (s *ShipmentServiceImpl) UpdateShipment(
	ctx context.Context,
	id uuid.UUID,
	input UpdateShipmentInput,
) (*domain.Shipment, error) {
	var updated *domain.Shipment

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.shipmentStore.WithTx(tx)

		shipment, err := txStore.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to retrieve shipment for update: %w", err)
		}

		if !shipmentTransitionAllowed(shipment.Status, input.Status) {
			return domain.NewBusinessRuleError(RuleStatusTransition,
				fmt.Sprintf("shipment cannot move from %s to %s", shipment.Status, input.Status))
		}

		shipment.Carrier = input.Carrier
		shipment.TrackingCode = input.TrackingCode

		if err := shipment.UpdateStatus(input.Status); err != nil {
			return domain.NewValidationError("status", "is not a valid shipment status", err)
		}

		if err := txStore.Update(ctx, shipment); err != nil {
			return fmt.Errorf("failed to update shipment: %w", err)
		}

		updated = shipment
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrShipmentNotFound):
			s.logger.Debug("shipment not found for update", "shipment_id", id)
		case errors.Is(err, domain.ErrBusinessRule):
			s.logger.Debug("rejected shipment update", "error", err, "shipment_id", id)
		default:
			s.logger.Error("failed to update shipment",
				"error", err,
				"shipment_id", id)
		}
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	s.logger.Info("shipment updated", "shipment_id", id)

	return updated, nil
}

// DeleteShipment removes a shipment by its ID.
func (s *ShipmentServiceImpl) DeleteShipment(ctx context.Context, id uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.shipmentStore.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, store.ErrShipmentNotFound) {
			s.logger.Debug("attempted to delete non-existent shipment", "shipment_id", id)
		} else {
			s.logger.Error("failed to delete shipment",
				"error", err,
				"shipment_id", id)
		}
		return fmt.Errorf("failed to delete shipment: %w", err)
	}

	s.logger.Info("shipment deleted", "shipment_id", id)

	return nil
}
