package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// newTestDB returns a sqlmock-backed database for exercising the service
// transaction flow without PostgreSQL. Expectations are queued by the tests.
func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db, mock
}

// expectCommits queues n begin/commit pairs, one per expected service write.
func expectCommits(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

// expectRollback queues a begin/rollback pair for a write that is expected
// to fail inside the transaction.
func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProjectStore is an in-memory ProjectStore. WithTx returns the same
// instance so transactional and non-transactional calls share state, which
// matches how the service uses one store for reads and writes. The forced
// error fields simulate failures the real store would surface.
type fakeProjectStore struct {
	projects  map[uuid.UUID]*domain.Project
	createErr error
	getErr    error
	updateErr error
	deleteErr error
}

func newFakeProjectStore() *fakeProjectStore {
	return &fakeProjectStore{projects: make(map[uuid.UUID]*domain.Project)}
}

func (f *fakeProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	project, ok := f.projects[id]
	if !ok {
		return nil, store.ErrProjectNotFound
	}
	copied := *project
	return &copied, nil
}

func (f *fakeProjectStore) List(
	ctx context.Context,
	filter store.ProjectFilter,
) ([]*domain.Project, error) {
	var projects []*domain.Project
	for _, project := range f.projects {
		if filter.Status != "" && project.Status != filter.Status {
			continue
		}
		copied := *project
		projects = append(projects, &copied)
	}
	return projects, nil
}

func (f *fakeProjectStore) Create(ctx context.Context, project *domain.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.projects {
		if existing.Code == project.Code {
			return store.ErrProjectCodeExists
		}
	}
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeProjectStore) Update(ctx context.Context, project *domain.Project) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.projects[project.ID]; !ok {
		return store.ErrProjectNotFound
	}
	copied := *project
	f.projects[project.ID] = &copied
	return nil
}

func (f *fakeProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.projects[id]; !ok {
		return store.ErrProjectNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return f
}

// mustSeedProject puts a project with the given status directly into the
// fake, bypassing the service so tests can start from any lifecycle state.
func (f *fakeProjectStore) mustSeedProject(
	t *testing.T,
	code string,
	status domain.ProjectStatus,
) *domain.Project {
	t.Helper()

	project, err := domain.NewProject("Project "+code, code, "")
	require.NoError(t, err)
	project.Status = status
	f.projects[project.ID] = project

	copied := *project
	return &copied
}

// fakeMaterialStore is an in-memory MaterialStore.
type fakeMaterialStore struct {
	materials map[uuid.UUID]*domain.Material
	createErr error
	updateErr error
}

func newFakeMaterialStore() *fakeMaterialStore {
	return &fakeMaterialStore{materials: make(map[uuid.UUID]*domain.Material)}
}

func (f *fakeMaterialStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	material, ok := f.materials[id]
	if !ok {
		return nil, store.ErrMaterialNotFound
	}
	copied := *material
	return &copied, nil
}

func (f *fakeMaterialStore) List(
	ctx context.Context,
	filter store.MaterialFilter,
) ([]*domain.Material, error) {
	var materials []*domain.Material
	for _, material := range f.materials {
		if filter.Unit != "" && material.Unit != filter.Unit {
			continue
		}
		if filter.BelowReorder && !material.BelowReorderLevel() {
			continue
		}
		copied := *material
		materials = append(materials, &copied)
	}
	return materials, nil
}

func (f *fakeMaterialStore) Create(ctx context.Context, material *domain.Material) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.materials {
		if existing.SKU == material.SKU {
			return store.ErrMaterialSKUExists
		}
	}
	copied := *material
	f.materials[material.ID] = &copied
	return nil
}

func (f *fakeMaterialStore) Update(ctx context.Context, material *domain.Material) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.materials[material.ID]; !ok {
		return store.ErrMaterialNotFound
	}
	copied := *material
	f.materials[material.ID] = &copied
	return nil
}

func (f *fakeMaterialStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.materials[id]; !ok {
		return store.ErrMaterialNotFound
	}
	delete(f.materials, id)
	return nil
}

func (f *fakeMaterialStore) WithTx(tx *sql.Tx) store.MaterialStore {
	return f
}

// mustSeedMaterial puts a material directly into the fake.
func (f *fakeMaterialStore) mustSeedMaterial(
	t *testing.T,
	sku string,
	unit domain.MaterialUnit,
) *domain.Material {
	t.Helper()

	material, err := domain.NewMaterial(sku, "Material "+sku, unit, 1250, 40, 10)
	require.NoError(t, err)
	f.materials[material.ID] = material

	copied := *material
	return &copied
}

// fakeOrderStore is an in-memory OrderStore.
type fakeOrderStore struct {
	orders    map[uuid.UUID]*domain.Order
	createErr error
	deleteErr error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[uuid.UUID]*domain.Order)}
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderStore) List(
	ctx context.Context,
	filter store.OrderFilter,
) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range f.orders {
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && order.Priority != filter.Priority {
			continue
		}
		if filter.ProjectID != uuid.Nil && order.ProjectID != filter.ProjectID {
			continue
		}
		copied := *order
		orders = append(orders, &copied)
	}
	return orders, nil
}

func (f *fakeOrderStore) Create(ctx context.Context, order *domain.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.orders {
		if existing.Reference == order.Reference {
			return store.ErrOrderReferenceExists
		}
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderStore) Update(ctx context.Context, order *domain.Order) error {
	if _, ok := f.orders[order.ID]; !ok {
		return store.ErrOrderNotFound
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.orders[id]; !ok {
		return store.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) WithTx(tx *sql.Tx) store.OrderStore {
	return f
}

// mustSeedOrder puts an order with the given status directly into the fake,
// bypassing the service so tests can start from any fulfilment state.
func (f *fakeOrderStore) mustSeedOrder(
	t *testing.T,
	reference string,
	status domain.OrderStatus,
) *domain.Order {
	t.Helper()

	order, err := domain.NewOrder(reference, uuid.New(), "Yard 4, North Gate", domain.OrderPriorityStandard)
	require.NoError(t, err)
	order.Status = status
	f.orders[order.ID] = order

	copied := *order
	return &copied
}

// fakeShipmentStore is an in-memory ShipmentStore.
type fakeShipmentStore struct {
	shipments map[uuid.UUID]*domain.Shipment
	createErr error
}

func newFakeShipmentStore() *fakeShipmentStore {
	return &fakeShipmentStore{shipments: make(map[uuid.UUID]*domain.Shipment)}
}

func (f *fakeShipmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Shipment, error) {
	shipment, ok := f.shipments[id]
	if !ok {
		return nil, store.ErrShipmentNotFound
	}
	copied := *shipment
	return &copied, nil
}

func (f *fakeShipmentStore) List(
	ctx context.Context,
	filter store.ShipmentFilter,
) ([]*domain.Shipment, error) {
	var shipments []*domain.Shipment
	for _, shipment := range f.shipments {
		if filter.OrderID != uuid.Nil && shipment.OrderID != filter.OrderID {
			continue
		}
		if filter.Status != "" && shipment.Status != filter.Status {
			continue
		}
		copied := *shipment
		shipments = append(shipments, &copied)
	}
	return shipments, nil
}

func (f *fakeShipmentStore) Create(ctx context.Context, shipment *domain.Shipment) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *shipment
	f.shipments[shipment.ID] = &copied
	return nil
}

func (f *fakeShipmentStore) Update(ctx context.Context, shipment *domain.Shipment) error {
	if _, ok := f.shipments[shipment.ID]; !ok {
		return store.ErrShipmentNotFound
	}
	copied := *shipment
	f.shipments[shipment.ID] = &copied
	return nil
}

func (f *fakeShipmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.shipments[id]; !ok {
		return store.ErrShipmentNotFound
	}
	delete(f.shipments, id)
	return nil
}

func (f *fakeShipmentStore) WithTx(tx *sql.Tx) store.ShipmentStore {
	return f
}

// mustSeedShipment puts a shipment with the given status directly into the
// fake, bypassing the service so tests can start from any transit state.
func (f *fakeShipmentStore) mustSeedShipment(
	t *testing.T,
	orderID uuid.UUID,
	status domain.ShipmentStatus,
) *domain.Shipment {
	t.Helper()

	shipment, err := domain.NewShipment(orderID, "Meridian Freight", "MF-0000041")
	require.NoError(t, err)
	require.NoError(t, shipment.UpdateStatus(status))
	f.shipments[shipment.ID] = shipment

	copied := *shipment
	return &copied
}
