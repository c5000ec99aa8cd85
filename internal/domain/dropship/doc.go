// Package dropship contains the domain model for supplier fulfillment:
// the SupplierAdapter port implemented by every supplier integration,
// the Supplier/SupplierProductLink/SupplierOrder aggregates, the
// fulfillment status state machine, and the repository and collaborator
// ports consumed by the application services.
//
// Concrete adapter implementations live in internal/infrastructure/supplier,
// persistence lives in internal/infrastructure/persistence, and the
// orchestration services live in internal/application/dropship.
package dropship
