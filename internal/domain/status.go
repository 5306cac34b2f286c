package domain

import "time"

// EntityType identifies which kind of business object a status vocabulary
// applies to. Each type carries its own independent state machine.
type EntityType string

const (
	EntityOrder         EntityType = "order"
	EntityRepair        EntityType = "repair"
	EntityMemo          EntityType = "memo"
	EntityReturn        EntityType = "return"
	EntityPurchaseOrder EntityType = "purchase_order"
	EntityTransaction   EntityType = "transaction"
)

// EntityTypes lists every supported entity type in a stable order.
var EntityTypes = []EntityType{
	EntityOrder,
	EntityRepair,
	EntityMemo,
	EntityReturn,
	EntityPurchaseOrder,
	EntityTransaction,
}

// Valid reports whether t is one of the supported entity types.
func (t EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Status is a named state in a per-entity-type state machine. Statuses are
// tenant-scoped configuration data: the set of rows for one
// (tenant, entity type) pair defines the states that entities of that type
// can occupy.
type Status struct {
	ID          string
	TenantID    string
	EntityType  EntityType
	Slug        string
	Name        string
	Color       string
	Icon        string
	Description string

	// IsDefault marks the status assigned to newly created entities.
	// Exactly one status per (tenant, entity type) holds it at a time.
	IsDefault bool

	// IsFinal marks a terminal status: no transition may be executed out
	// of it, even when the graph defines outgoing edges.
	IsFinal bool

	// IsSystem protects seeded statuses from deletion.
	IsSystem bool

	SortOrder int

	// Behavior is free-form configuration interpreted by the hosting
	// entity (e.g. "decrement inventory on enter"). The engine stores and
	// returns it verbatim.
	Behavior map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStatus creates a status row with timestamps set.
func NewStatus(id, tenantID string, entityType EntityType, slug, name string) Status {
	now := time.Now().UTC()
	return Status{
		ID:         id,
		TenantID:   tenantID,
		EntityType: entityType,
		Slug:       slug,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
