package domain

import "time"

// Statusable is the capability every business object needs to participate
// in the transition protocol: identity, a current-status pointer, and named
// field access for guard evaluation. The engine never depends on concrete
// entity tables; one engine instance drives orders, repairs, memos, returns,
// purchase orders and transactions through this interface.
type Statusable interface {
	EntityID() string
	EntityKind() EntityType
	EntityTenant() string
	CurrentStatusID() string

	// Field returns a named value from the entity's data for guard
	// evaluation. The second result reports whether the field exists.
	Field(name string) (any, bool)
}

// Entity is a generic statusable record: a tenant-scoped business object
// identified by an entity type tag, holding a pointer to its current status
// and a free-form data map. Deployments with dedicated business tables
// register their own Statusable stores instead.
type Entity struct {
	ID        string
	TenantID  string
	Type      EntityType
	StatusID  string
	Data      map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Compile-time check: Entity implements Statusable.
var _ Statusable = Entity{}

func (e Entity) EntityID() string        { return e.ID }
func (e Entity) EntityKind() EntityType  { return e.Type }
func (e Entity) EntityTenant() string    { return e.TenantID }
func (e Entity) CurrentStatusID() string { return e.StatusID }

func (e Entity) Field(name string) (any, bool) {
	v, ok := e.Data[name]
	return v, ok
}

// NewEntity creates an entity record in the given initial status.
func NewEntity(id, tenantID string, entityType EntityType, statusID string, data map[string]any) Entity {
	now := time.Now().UTC()
	return Entity{
		ID:        id,
		TenantID:  tenantID,
		Type:      entityType,
		StatusID:  statusID,
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HistoryRecord is one append-only entry in an entity's transition log.
// Records are written in the same transaction as the status change they
// describe and are never mutated or deleted.
type HistoryRecord struct {
	ID           string
	TenantID     string
	EntityType   EntityType
	EntityID     string
	FromStatusID string
	ToStatusID   string
	Actor        string
	Notes        string
	CreatedAt    time.Time
}

// ChangeEvent is the snapshot published after a committed transition for
// downstream consumers.
type ChangeEvent struct {
	TenantID   string
	EntityType EntityType
	EntityID   string
	FromStatus string
	ToStatus   string
	Actor      string
	OccurredAt time.Time
}
