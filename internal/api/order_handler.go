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

// OrderV1 is the order shape served under the v1 contract.
type OrderV1 struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	ProjectID   string    `json:"project_id"`
	Destination string    `json:"destination"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateOrderRequestV1 represents the request body for creating an order.
// Priority defaults to standard when omitted.
type CreateOrderRequestV1 struct {
	Reference   string `json:"reference"   validate:"required,max=40"`
	ProjectID   string `json:"project_id"  validate:"required,uuid"`
	Destination string `json:"destination" validate:"required,max=500"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=standard rush"`
}

// UpdateOrderRequestV1 represents the request body for replacing an order's
// mutable fields. The reference and project binding are fixed at creation.
type UpdateOrderRequestV1 struct {
	Destination string `json:"destination" validate:"required,max=500"`
	Status      string `json:"status"      validate:"required,oneof=pending allocated dispatched delivered cancelled"`
	Priority    string `json:"priority"    validate:"required,oneof=standard rush"`
}

// OrderListResponseV1 is the v1 list envelope.
type OrderListResponseV1 struct {
	Orders []OrderV1 `json:"orders"`
	Count  int       `json:"count"`
}

// orderCodec translates between one contract version's wire shapes and the
// service layer's inputs and entities.
type orderCodec interface {
	createInput(r *http.Request) (service.CreateOrderInput, error)
	updateInput(r *http.Request) (service.UpdateOrderInput, error)
	dto(order *domain.Order) any
	listDTO(orders []*domain.Order) any
}

// orderCodecs pairs each published orders contract with its DTO codec.
var orderCodecs = map[apiversion.Version]orderCodec{
	apiversion.MustParse("v1"): orderCodecV1{},
}

type orderCodecV1 struct{}

func (orderCodecV1) createInput(r *http.Request) (service.CreateOrderInput, error) {
	var req CreateOrderRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.CreateOrderInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.CreateOrderInput{}, err
	}
	return createOrderInputV1(req), nil
}

func (orderCodecV1) updateInput(r *http.Request) (service.UpdateOrderInput, error) {
	var req UpdateOrderRequestV1
	if err := shared.DecodeJSON(r, &req); err != nil {
		return service.UpdateOrderInput{}, err
	}
	if err := shared.ValidateRequest(req); err != nil {
		return service.UpdateOrderInput{}, err
	}
	return updateOrderInputV1(req), nil
}

func (orderCodecV1) dto(order *domain.Order) any {
	return orderToV1(order)
}

func (orderCodecV1) listDTO(orders []*domain.Order) any {
	items := make([]OrderV1, 0, len(orders))
	for _, order := range orders {
		items = append(items, orderToV1(order))
	}
	return OrderListResponseV1{Orders: items, Count: len(items)}
}

// createOrderInputV1 converts a v1 create request to the service input. The
// project_id is tag-validated as a UUID before the parse, so the parse cannot
// fail here.
func createOrderInputV1(req CreateOrderRequestV1) service.CreateOrderInput {
	priority := domain.OrderPriority(req.Priority)
	if priority == "" {
		priority = domain.OrderPriorityStandard
	}

	projectID, _ := uuid.Parse(req.ProjectID)

	return service.CreateOrderInput{
		Reference:   req.Reference,
		ProjectID:   projectID,
		Destination: req.Destination,
		Priority:    priority,
	}
}

// updateOrderInputV1 converts a v1 update request to the service input.
func updateOrderInputV1(req UpdateOrderRequestV1) service.UpdateOrderInput {
	return service.UpdateOrderInput{
		Destination: req.Destination,
		Status:      domain.OrderStatus(req.Status),
		Priority:    domain.OrderPriority(req.Priority),
	}
}

// orderToV1 converts a domain.Order to its v1 projection.
func orderToV1(order *domain.Order) OrderV1 {
	return OrderV1{
		ID:          order.ID.String(),
		Reference:   order.Reference,
		ProjectID:   order.ProjectID.String(),
		Destination: order.Destination,
		Priority:    string(order.Priority),
		Status:      string(order.Status),
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// OrderHandler handles order resource requests, dispatching each request to
// the service variant and DTO codec selected by the resolved API version.
type OrderHandler struct {
	variants map[apiversion.Version]orderVariant
	logger   *slog.Logger
}

type orderVariant struct {
	service service.OrderService
	codec   orderCodec
}

// NewOrderHandler creates an OrderHandler serving the given service
// variants. Every wired version must have a DTO codec, so a bad wiring fails
// at startup rather than per request.
func NewOrderHandler(
	services map[apiversion.Version]service.OrderService,
	logger *slog.Logger,
) *OrderHandler {
	if logger == nil {
		panic("logger cannot be nil for OrderHandler")
	}

	variants := make(map[apiversion.Version]orderVariant, len(services))
	for version, svc := range services {
		codec, ok := orderCodecs[version]
		if !ok {
			panic(fmt.Sprintf("no orders DTO codec for version %s", version))
		}
		variants[version] = orderVariant{service: svc, codec: codec}
	}

	return &OrderHandler{
		variants: variants,
		logger:   logger.With(slog.String("component", "order_handler")),
	}
}

// variant selects the service/codec pair for the resolved version.
func (h *OrderHandler) variant(w http.ResponseWriter, r *http.Request) (orderVariant, bool) {
	res, ok := apiversion.FromContext(r.Context())
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: no version resolution in request context", service.ErrVariantUnavailable))
		return orderVariant{}, false
	}

	variant, ok := h.variants[res.Version]
	if !ok {
		RespondWithMappedError(w, r,
			fmt.Errorf("%w: orders %s", service.ErrVariantUnavailable, res.Version))
		return orderVariant{}, false
	}

	return variant, true
}

// CreateOrder handles POST /api/{version}/orders requests.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
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

	order, err := variant.service.CreateOrder(r.Context(), input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("reference", order.Reference))
	shared.RespondWithJSON(w, r, http.StatusCreated, variant.codec.dto(order))
}

// GetOrder handles GET /api/{version}/orders/{id} requests.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	id, err := idParam(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	order, err := variant.service.GetOrder(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(order))
}

// ListOrders handles GET /api/{version}/orders requests.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	variant, ok := h.variant(w, r)
	if !ok {
		return
	}

	filter, err := orderFilterFromQuery(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	orders, err := variant.service.ListOrders(r.Context(), filter)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.listDTO(orders))
}

// UpdateOrder handles PUT /api/{version}/orders/{id} requests.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
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

	order, err := variant.service.UpdateOrder(r.Context(), id, input)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("order updated", slog.String("order_id", order.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, variant.codec.dto(order))
}

// DeleteOrder handles DELETE /api/{version}/orders/{id} requests. Orders
// with shipments are refused with a 409.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
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

	if err := variant.service.DeleteOrder(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	log.Debug("order deleted", slog.String("order_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// orderFilterFromQuery builds the list filter from query parameters.
func orderFilterFromQuery(r *http.Request) (store.OrderFilter, error) {
	limit, offset, err := listWindow(r)
	if err != nil {
		return store.OrderFilter{}, err
	}

	projectID, err := uuidQuery(r, "project_id")
	if err != nil {
		return store.OrderFilter{}, err
	}

	return store.OrderFilter{
		Status:    domain.OrderStatus(r.URL.Query().Get("status")),
		Priority:  domain.OrderPriority(r.URL.Query().Get("priority")),
		ProjectID: projectID,
		Limit:     limit,
		Offset:    offset,
	}, nil
}
