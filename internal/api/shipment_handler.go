package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/platform/logger"
	"github.com/gridstonehq/gridstone-api/internal/service"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// ShipmentV1 is the shipment shape served under the v1 contract. Dispatch
// and delivery timestamps appear once the shipment reaches those states.
type ShipmentV1 struct {
	ID           string     `json:"id"`
	OrderID      string     `json:"order_id"`
	Carrier      string     `json:"carrier"`
	TrackingCode string     `json:"tracking_code"`
	Status       string     `json:"status"`
	DispatchedAt *time.Time `json:"dispatched_at,omitempty"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateShipmentRequestV1 represents the request body for creating a
// shipment against an order.
type CreateShipmentRequestV1 struct {
	OrderID      string `json:"order_id"      validate:"required,uuid"`
	Carrier      string `json:"carrier"       validate:"required,max=100"`
	TrackingCode string `json:"tracking_code" validate:"max=100"`
}

// UpdateShipmentRequestV1 represents the request body for replacing a
// shipment's mutable fields. The order binding is fixed at creation.
type UpdateShipmentRequestV1 struct {
	Carrier      string `json:"carrier"       validate:"required,max=100"`
	TrackingCode string `json:"tracking_code" validate:"max=100"`
	Status       string `json:"status"        validate:"required,oneof=preparing in_transit delivered"`
}

// ShipmentListResponseV1 is the v1 list envelope.
type ShipmentListResponseV1 struct {
	Shipments []ShipmentV1 `json:"shipments"`
	Count     int          `json:"count"`
}

// shipmentCodec translates between one contract version's wire shapes and
// the service layer's inputs and entities.
type shipmentCodec interface {
	createInput(r *http.Request) (service.CreateShipmentInput, error)
	updateInput(r *http.Request) (service.UpdateShipmentInput, error)
	dto(shipment *domain.Shipment) any
	listDTO(shipments []*domain.Shipment) any
}

// shipmentCodecs pairs each published shipments contract with its DTO codec.
var shipmentCodecs = map[apiversion.Version]shipmentCodec{
	apiversion.MustParse("v1"): shipmentCodecV1{},
}

type shipmentCodecV1 struct{}

func (shipmentCodecV1) createInput(r *http.Request) (service.CreateShipmentInput, error) {
	var req CreateShipmentRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.CreateShipmentInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.CreateShipmentInput{}, err
	}
	return createShipmentInputV1(req), nil
}

func (shipmentCodecV1) updateInput(r *http.Request) (service.UpdateShipmentInput, error) {
	var req UpdateShipmentRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.UpdateShipmentInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.UpdateShipmentInput{}, err
	}
	return updateShipmentInputV1(req), nil
}

func (shipmentCodecV1) dto(shipment *domain.Shipment) any {
	return shipmentToV1(shipment)
}

func (shipmentCodecV1) listDTO(shipments []*domain.Shipment) any {
	items := make([]ShipmentV1, 0, len(shipments))
	for _, shipment := range shipments {
		items = append(items, shipmentToV1(shipment))
	}
	return ShipmentListResponseV1{Shipments: items, Count: len(items)}
}

// createShipmentInputV1 converts a v1 create request to the service input.
// The order_id is tag-validated as a UUID before the parse.
func createShipmentInputV1(req CreateShipmentRequestV1) service.CreateShipmentInput {
	orderID, _ := uuid.Parse(req.OrderID)

	return service.CreateShipmentInput{
		OrderID:      orderID,
		Carrier:      req.Carrier,
		TrackingCode: req.TrackingCode,
	}
}

// updateShipmentInputV1 converts a v1 update request to the service input.
func updateShipmentInputV1(req UpdateShipmentRequestV1) service.UpdateShipmentInput {
	return service.UpdateShipmentInput{
		Carrier:      req.Carrier,
		TrackingCode: req.TrackingCode,
		Status:       domain.ShipmentStatus(req.Status),
	}
}

// shipmentToV1 converts a domain.Shipment to its v1 projection.
func shipmentToV1(shipment *domain.Shipment) ShipmentV1 {
	return ShipmentV1{
		ID:           shipment.ID.String(),
		OrderID:      shipment.OrderID.String(),
		Carrier:      shipment.Carrier,
		TrackingCode: shipment.TrackingCode,
		Status:       string(shipment.Status),
		DispatchedAt: shipment.DispatchedAt,
		DeliveredAt:  shipment.DeliveredAt,
		CreatedAt:    shipment.CreatedAt,
		UpdatedAt:    shipment.UpdatedAt,
	}
}

// ShipmentHandler handles shipment resource requests, dispatching each
// request to the service variant and DTO codec selected by the resolved API
// version.
type ShipmentHandler struct {
	variants map[apiversion.Version]shipmentVariant
	logger   *slog.Logger
}

type shipmentVariant struct {
	service service.ShipmentService
	codec   shipmentCodec
}

// NewShipmentHandler creates a ShipmentHandler serving the given service
// variants. Every wired version must have a DTO codec, so a bad wiring fails
// at startup rather than per request.
func NewShipmentHandler(
	services map[apiversion.Version]service.ShipmentService,
	logger *slog.Logger,
) *ShipmentHandler {
	if logger == nil {
		panic("logger cannot be nil for ShipmentHandler")
	}

	variants := make(map[apiversion.Version]shipmentVariant, len(services))
	for version, svc := range services {
		codec, ok := shipmentCodecs[version]
		if !ok {
			panic(fmt.Sprintf("no shipments DTO codec for version %s", version))
		}
		variants[version] = shipmentVariant{service: svc, codec: codec}
	}

	return &ShipmentHandler{
		variants: variants,
		logger:   logger.With(slog.String("component", "shipment_handler")),
	}
}

// variant selects the service/codec pair for the resolved version.
func (h *ShipmentHandler) variant(w http.ResponseWriter, r *http.Request) (shipmentVariant, bool) {
	res, ok := apiversion.FromContext(r.Context())
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: no version resolution in request context", service.ErrVariantUnavailable))
		return shipmentVariant{}, false
	}

	variant, ok := h.variants[res.Version]
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: shipments %s", service.ErrVariantUnavailable, res.Version))
		return shipmentVariant{}, false
	}

	return variant, true
}

// CreateShipment handles POST /api/{version}/shipments requests. The
// referenced order must exist and be allocated or dispatched.
func (h *ShipmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	input, err := variant.codec.createInput(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shipment, err := variant.service.CreateShipment(r.Context(), input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("shipment created",
		slog.String("shipment_id", shipment.ID.String()),
		slog.String("order_id", shipment.OrderID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, variant.codec.dto(shipment))
}

// GetShipment handles GET /api/{version}/shipments/{id} requests.
func (h *ShipmentHandler) GetShipment(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shipment, err := variant.service.GetShipment(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(shipment))
}

// ListShipments handles GET /api/{version}/shipments requests, typically
// filtered by order_id.
func (h *ShipmentHandler) ListShipments(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	filter, err := shipmentFilterFromQuery(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shipments, err := variant.service.ListShipments(r.Context(), filter)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.listDTO(shipments))
}

// UpdateShipment handles PUT /api/{version}/shipments/{id} requests.
func (h *ShipmentHandler) UpdateShipment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	input, err := variant.codec.updateInput(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shipment, err := variant.service.UpdateShipment(r.Context(), id, input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("shipment updated", slog.String("shipment_id", shipment.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(shipment))
}

// DeleteShipment handles DELETE /api/{version}/shipments/{id} requests.
func (h *ShipmentHandler) DeleteShipment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := variant.service.DeleteShipment(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("shipment deleted", slog.String("shipment_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// shipmentFilterFromQuery builds the list filter from query parameters.
func shipmentFilterFromQuery(r *http.Request) (store.ShipmentFilter, error) {
	limit, offset, err := listWindow(r)
	if err != nil {
		return store.ShipmentFilter{}, err
	}

	orderID, err := uuidQuery(r, "order_id")
	if err != nil {
		return store.ShipmentFilter{}, err
	}

	return store.ShipmentFilter{
		OrderID: orderID,
		Status:  domain.ShipmentStatus(r.URL.Query().Get("status")),
		Limit:   limit,
		Offset:  offset,
	}, nil
}
