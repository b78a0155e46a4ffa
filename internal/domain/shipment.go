package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ShipmentStatus represents the transit state of a shipment
type ShipmentStatus string

// Possible shipment status values
const (
	ShipmentStatusPreparing ShipmentStatus = "preparing"
	ShipmentStatusInTransit ShipmentStatus = "in_transit"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// Common validation errors for Shipment
var (
	ErrEmptyShipmentID           = errors.New("shipment ID cannot be empty")
	ErrEmptyShipmentOrderID      = errors.New("shipment order ID cannot be empty")
	ErrEmptyShipmentCarrier      = errors.New("shipment carrier cannot be empty")
	ErrShipmentCarrierTooLong    = errors.New("shipment carrier must be at most 100 characters long")
	ErrShipmentTrackingTooLong   = errors.New("shipment tracking code must be at most 100 characters long")
	ErrInvalidShipmentStatus     = errors.New("invalid shipment status")
)

// Shipment represents a physical consignment fulfilling an order. DispatchedAt
// and DeliveredAt record when the shipment entered the corresponding status
// and are stamped by UpdateStatus.
type Shipment struct {
	ID           uuid.UUID      `json:"id"`
	OrderID      uuid.UUID      `json:"order_id"`
	Carrier      string         `json:"carrier"`
	TrackingCode string         `json:"tracking_code"`
	Status       ShipmentStatus `json:"status"`
	DispatchedAt *time.Time     `json:"dispatched_at,omitempty"`
	DeliveredAt  *time.Time     `json:"delivered_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewShipment creates a new Shipment for the given order.
// It generates a new UUID for the shipment ID, sets the status to preparing,
// and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewShipment(orderID uuid.UUID, carrier, trackingCode string) (*Shipment, error) {
	shipment := &Shipment{
		ID:           uuid.New(),
		OrderID:      orderID,
		Carrier:      carrier,
		TrackingCode: trackingCode,
		Status:       ShipmentStatusPreparing,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := shipment.Validate(); err != nil {
		return nil, err
	}

	return shipment, nil
}

// EntityID returns the shipment's unique identifier.
func (s *Shipment) EntityID() uuid.UUID {
	return s.ID
}

// Validate checks if the Shipment has valid data.
// Returns an error if any field fails validation.
func (s *Shipment) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyShipmentID
	}

	if s.OrderID == uuid.Nil {
		return ErrEmptyShipmentOrderID
	}

	if s.Carrier == "" {
		return ErrEmptyShipmentCarrier
	}

	if len(s.Carrier) > 100 {
		return ErrShipmentCarrierTooLong
	}

	if len(s.TrackingCode) > 100 {
		return ErrShipmentTrackingTooLong
	}

	if !isValidShipmentStatus(s.Status) {
		return ErrInvalidShipmentStatus
	}

	return nil
}

// UpdateStatus sets the shipment's status and updates the UpdatedAt timestamp.
// Moving to in_transit stamps DispatchedAt; moving to delivered stamps
// DeliveredAt. Timestamps are only stamped once. Returns an error if the new
// status is not in the shipment status vocabulary.
func (s *Shipment) UpdateStatus(status ShipmentStatus) error {
	if !isValidShipmentStatus(status) {
		return ErrInvalidShipmentStatus
	}

	now := time.Now().UTC()

	switch status {
	case ShipmentStatusInTransit:
		if s.DispatchedAt == nil {
			s.DispatchedAt = &now
		}
	case ShipmentStatusDelivered:
		if s.DeliveredAt == nil {
			s.DeliveredAt = &now
		}
	}

	s.Status = status
	s.UpdatedAt = now
	return nil
}

// isValidShipmentStatus checks if the given status is a valid ShipmentStatus.
func isValidShipmentStatus(status ShipmentStatus) bool {
	switch status {
	case ShipmentStatusPreparing, ShipmentStatusInTransit, ShipmentStatusDelivered:
		return true
	default:
		return false
	}
}
