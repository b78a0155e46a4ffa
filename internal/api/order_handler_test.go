package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/service"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

type mockOrderService struct {
	getFunc    func(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	listFunc   func(ctx context.Context, filter store.OrderFilter) ([]*domain.Order, error)
	createFunc func(ctx context.Context, input service.CreateOrderInput) (*domain.Order, error)
	updateFunc func(ctx context.Context, id uuid.UUID, input service.UpdateOrderInput) (*domain.Order, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if m.getFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.getFunc(ctx, id)
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter store.OrderFilter) ([]*domain.Order, error) {
	if m.listFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.listFunc(ctx, filter)
}

func (m *mockOrderService) CreateOrder(ctx context.Context, input service.CreateOrderInput) (*domain.Order, error) {
	if m.createFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.createFunc(ctx, input)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, id uuid.UUID, input service.UpdateOrderInput) (*domain.Order, error) {
	if m.updateFunc == nil {
		return nil, errUnexpectedCall
	}
	return m.updateFunc(ctx, id, input)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc == nil {
		return errUnexpectedCall
	}
	return m.deleteFunc(ctx, id)
}

// newOrderRouter mounts the handler the way the logistics host does.
func newOrderRouter(t *testing.T, svc service.OrderService) http.Handler {
	t.Helper()

	registry := apiversion.NewRegistry()
	require.NoError(t, registry.Register("orders", apiversion.MustParse("v1")))

	handler := NewOrderHandler(map[apiversion.Version]service.OrderService{
		apiversion.MustParse("v1"): svc,
	}, newTestLogger())

	router := chi.NewRouter()
	router.Route("/api/{version}/orders", func(r chi.Router) {
		r.Use(apiversion.Middleware(registry, "orders"))
		r.Get("/", handler.ListOrders)
		r.Post("/", handler.CreateOrder)
		r.Get("/{id}", handler.GetOrder)
		r.Put("/{id}", handler.UpdateOrder)
		r.Delete("/{id}", handler.DeleteOrder)
	})
	return router
}

func testOrder(t *testing.T, reference string) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(reference, uuid.New(), "North yard, gate 3", domain.OrderPriorityStandard)
	require.NoError(t, err)
	return order
}

func TestOrderHandlerCreate(t *testing.T) {
	t.Parallel()

	t.Run("creates a pending order", func(t *testing.T) {
		t.Parallel()

		var captured service.CreateOrderInput
		svc := &mockOrderService{
			createFunc: func(_ context.Context, input service.CreateOrderInput) (*domain.Order, error) {
				captured = input
				return domain.NewOrder(input.Reference, input.ProjectID, input.Destination, input.Priority)
			},
		}
		router := newOrderRouter(t, svc)

		projectID := uuid.New()
		rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", CreateOrderRequestV1{
			Reference:   "ORD-2025-0042",
			ProjectID:   projectID.String(),
			Destination: "North yard, gate 3",
			Priority:    "rush",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		assert.Equal(t, projectID, captured.ProjectID)
		assert.Equal(t, domain.OrderPriorityRush, captured.Priority)

		body := decodeBody[OrderV1](t, rec)
		assert.Equal(t, "ORD-2025-0042", body.Reference)
		assert.Equal(t, "pending", body.Status)
	})

	t.Run("omitted priority defaults to standard", func(t *testing.T) {
		t.Parallel()

		var captured service.CreateOrderInput
		svc := &mockOrderService{
			createFunc: func(_ context.Context, input service.CreateOrderInput) (*domain.Order, error) {
				captured = input
				return domain.NewOrder(input.Reference, input.ProjectID, input.Destination, input.Priority)
			},
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]string{
			"reference":   "ORD-2025-0043",
			"project_id":  uuid.NewString(),
			"destination": "South depot",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, domain.OrderPriorityStandard, captured.Priority)
	})

	t.Run("non-uuid project reference fails validation", func(t *testing.T) {
		t.Parallel()

		router := newOrderRouter(t, &mockOrderService{})

		rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", map[string]string{
			"reference":   "ORD-2025-0044",
			"project_id":  "not-a-uuid",
			"destination": "South depot",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must be a valid UUID", decodeProblem(t, rec).Errors["project_id"])
	})

	t.Run("missing project is not found", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			createFunc: func(_ context.Context, _ service.CreateOrderInput) (*domain.Order, error) {
				return nil, store.ErrProjectNotFound
			},
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", CreateOrderRequestV1{
			Reference:   "ORD-2025-0045",
			ProjectID:   uuid.NewString(),
			Destination: "South depot",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "project not found", decodeProblem(t, rec).Detail)
	})

	t.Run("duplicate reference conflicts", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			createFunc: func(_ context.Context, _ service.CreateOrderInput) (*domain.Order, error) {
				return nil, store.ErrOrderReferenceExists
			},
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodPost, "/api/v1/orders", CreateOrderRequestV1{
			Reference:   "ORD-2025-0042",
			ProjectID:   uuid.NewString(),
			Destination: "South depot",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "an order with this reference already exists", decodeProblem(t, rec).Detail)
	})
}

func TestOrderHandlerUpdate(t *testing.T) {
	t.Parallel()

	t.Run("illegal status transition violates a business rule", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			updateFunc: func(_ context.Context, _ uuid.UUID, _ service.UpdateOrderInput) (*domain.Order, error) {
				return nil, domain.NewBusinessRuleError(
					service.RuleStatusTransition,
					"cannot transition order from delivered to pending",
				)
			},
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodPut, "/api/v1/orders/"+uuid.NewString(), UpdateOrderRequestV1{
			Destination: "South depot",
			Status:      "pending",
			Priority:    "standard",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "Business Rule Violation", decodeProblem(t, rec).Title)
	})

	t.Run("priority change after dispatch violates a business rule", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			updateFunc: func(_ context.Context, _ uuid.UUID, _ service.UpdateOrderInput) (*domain.Order, error) {
				return nil, domain.NewBusinessRuleError(
					service.RulePriorityFrozen,
					"order priority is frozen once the order is dispatched",
				)
			},
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodPut, "/api/v1/orders/"+uuid.NewString(), UpdateOrderRequestV1{
			Destination: "South depot",
			Status:      "dispatched",
			Priority:    "rush",
		})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, decodeProblem(t, rec).Detail, "frozen")
	})

	t.Run("unknown status fails validation before the service", func(t *testing.T) {
		t.Parallel()

		router := newOrderRouter(t, &mockOrderService{})

		rec := doRequest(t, router, http.MethodPut, "/api/v1/orders/"+uuid.NewString(), map[string]string{
			"destination": "South depot",
			"status":      "teleported",
			"priority":    "standard",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, decodeProblem(t, rec).Errors["status"])
	})
}

func TestOrderHandlerList(t *testing.T) {
	t.Parallel()

	var captured store.OrderFilter
	svc := &mockOrderService{
		listFunc: func(_ context.Context, filter store.OrderFilter) ([]*domain.Order, error) {
			captured = filter
			return []*domain.Order{testOrder(t, "ORD-2025-0042")}, nil
		},
	}
	router := newOrderRouter(t, svc)

	projectID := uuid.New()
	rec := doRequest(t, router, http.MethodGet,
		"/api/v1/orders?project_id="+projectID.String()+"&status=allocated&priority=rush", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, projectID, captured.ProjectID)
	assert.Equal(t, domain.OrderStatusAllocated, captured.Status)
	assert.Equal(t, domain.OrderPriorityRush, captured.Priority)
	assert.Equal(t, 1, decodeBody[OrderListResponseV1](t, rec).Count)
}

func TestOrderHandlerListRejectsMalformedProjectID(t *testing.T) {
	t.Parallel()

	router := newOrderRouter(t, &mockOrderService{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders?project_id=42", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "must be a valid UUID", decodeProblem(t, rec).Errors["project_id"])
}

func TestOrderHandlerDelete(t *testing.T) {
	t.Parallel()

	t.Run("delete succeeds with no content", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			deleteFunc: func(_ context.Context, _ uuid.UUID) error { return nil },
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodDelete, "/api/v1/orders/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("orders with shipments cannot be deleted", func(t *testing.T) {
		t.Parallel()

		svc := &mockOrderService{
			deleteFunc: func(_ context.Context, _ uuid.UUID) error { return store.ErrOrderHasShipments },
		}
		router := newOrderRouter(t, svc)

		rec := doRequest(t, router, http.MethodDelete, "/api/v1/orders/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusConflict, rec.Code)

		p := decodeProblem(t, rec)
		assert.Equal(t, "Conflict", p.Title)
		assert.Equal(t, "order cannot be deleted while shipments reference it", p.Detail)
	})
}
