// Package domain contains the core business entities and domain errors of the
// platform: projects, materials, orders, and shipments. Entities carry their
// data along with construction rules and structural validation;
// version-specific business rules live in the service layer.
package domain
