package domain

import "context"

// StatusRepository defines the persistence contract for status rows.
// SetDefault and Reorder are single transactions: no intermediate state
// with zero or multiple defaults, or a partially applied order, is ever
// observable.
type StatusRepository interface {
	Create(ctx context.Context, status Status) error
	GetByID(ctx context.Context, tenantID, id string) (Status, error)
	GetBySlug(ctx context.Context, tenantID string, entityType EntityType, slug string) (Status, error)
	List(ctx context.Context, tenantID string, entityType EntityType) ([]Status, error)
	Default(ctx context.Context, tenantID string, entityType EntityType) (Status, error)
	Update(ctx context.Context, status Status) error
	SetDefault(ctx context.Context, tenantID string, entityType EntityType, id string) error
	Reorder(ctx context.Context, tenantID string, entityType EntityType, ids []string) error
	Delete(ctx context.Context, tenantID, id string) error
	NextSortOrder(ctx context.Context, tenantID string, entityType EntityType) (int, error)
}

// TransitionRepository defines the persistence contract for graph edges.
type TransitionRepository interface {
	Create(ctx context.Context, transition Transition) error
	GetByID(ctx context.Context, tenantID, id string) (Transition, error)
	ListFrom(ctx context.Context, tenantID, fromStatusID string) ([]Transition, error)
	List(ctx context.Context, tenantID string, entityType EntityType) ([]Transition, error)
	Exists(ctx context.Context, tenantID, fromStatusID, toStatusID string) (bool, error)
	SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error
	Delete(ctx context.Context, tenantID, id string) error
}

// AutomationRepository defines the persistence contract for automations.
// ListForTrigger returns only enabled automations, ordered by sort order.
type AutomationRepository interface {
	Create(ctx context.Context, automation Automation) error
	GetByID(ctx context.Context, tenantID, id string) (Automation, error)
	ListForStatus(ctx context.Context, tenantID, statusID string) ([]Automation, error)
	ListForTrigger(ctx context.Context, tenantID, statusID string, trigger Trigger) ([]Automation, error)
	SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error
	Delete(ctx context.Context, tenantID, id string) error
	NextSortOrder(ctx context.Context, tenantID, statusID string, trigger Trigger) (int, error)
}

// EntityStore loads and mutates statusable entities of one entity type.
// SwapStatus is the engine's single write path: it sets the status pointer
// only when the stored current status still equals fromStatusID, and
// appends the history record in the same transaction. A lost race returns
// ErrStatusConflict.
type EntityStore interface {
	Get(ctx context.Context, tenantID, id string) (Statusable, error)
	SwapStatus(ctx context.Context, tenantID, id, fromStatusID, toStatusID string, record HistoryRecord) error
	CountInStatus(ctx context.Context, tenantID, statusID string) (int64, error)
	History(ctx context.Context, tenantID, id string) ([]HistoryRecord, error)
}

// EntityRepository persists the generic entity records that back the
// shipped EntityStore implementation.
type EntityRepository interface {
	Create(ctx context.Context, entity Entity) error
	Get(ctx context.Context, tenantID string, entityType EntityType, id string) (Entity, error)
}

// StoreRegistry maps entity type tags to their stores. This indirection is
// how one engine serves unrelated business-entity tables.
type StoreRegistry struct {
	stores map[EntityType]EntityStore
}

// NewStoreRegistry creates an empty registry.
func NewStoreRegistry() *StoreRegistry {
	return &StoreRegistry{stores: make(map[EntityType]EntityStore)}
}

// Register binds a store to an entity type, replacing any previous binding.
func (r *StoreRegistry) Register(entityType EntityType, store EntityStore) {
	r.stores[entityType] = store
}

// Lookup resolves the store for an entity type.
func (r *StoreRegistry) Lookup(entityType EntityType) (EntityStore, error) {
	store, ok := r.stores[entityType]
	if !ok {
		return nil, ErrUnknownEntityType
	}
	return store, nil
}

// TransitionResolver finds the edge connecting two statuses within a set of
// candidate edges. Implementations return ErrTransitionNotFound when no
// edge connects them.
type TransitionResolver interface {
	Resolve(ctx context.Context, currentStatusID, targetStatusID string, edges []Transition) (Transition, error)
}

// NotificationSender hands a rendered-notification request to the external
// notification pipeline. The engine supplies only the template id and an
// entity-derived context; it never composes content.
type NotificationSender interface {
	Send(ctx context.Context, templateID string, entity Statusable, context map[string]any) error
}

// WebhookCaller performs an outbound call with a JSON-serializable snapshot
// of the entity and context.
type WebhookCaller interface {
	Call(ctx context.Context, url string, payload any) error
}

// CustomActionExecutor runs tenant-specific logic identified by an action
// key. The engine is agnostic to its implementation.
type CustomActionExecutor interface {
	Execute(ctx context.Context, action string, entity Statusable, context map[string]any) error
}

// EventPublisher emits a change event after a committed transition.
type EventPublisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}
