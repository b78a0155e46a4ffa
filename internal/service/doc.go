// Package service implements the business logic between the HTTP handlers
// and the stores: projects, materials, orders, and shipments.
//
// Services own the rules the stores do not enforce. They decide which
// status transitions are legal and which fields are frozen after creation,
// and they check cross-entity conditions (an order must be allocated or
// dispatched before a shipment may reference it). Where rules differ
// between API contract versions, a service is constructed with an explicit
// rule variant and hosts run one instance per registered version,
// dispatched by the resolved version rather than by type hierarchies.
//
// Writes run inside database transactions via store.RunInTransaction.
// Expected failures surface as sentinel or typed errors that the API layer
// maps to HTTP statuses; unexpected failures are wrapped with operation
// context.
package service
