package app

import (
	"context"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// Well-known status slugs used by the domain-action wrappers. Seeded
// vocabularies define these; tenants that rename them lose the wrappers
// and use the generic transition endpoint instead.
const (
	slugOrderConfirmed      = "confirmed"
	slugOrderShipped        = "shipped"
	slugPurchaseOrderSubmit = "submitted"
	slugPurchaseOrderOK     = "approved"
	slugRepairReady         = "ready"
	slugRepairPickedUp      = "picked_up"
)

// ActionError is a domain-action precondition failure carrying a
// human-readable message, e.g. "only submitted purchase orders can be
// approved". Callers translate it alongside the generic transition errors.
type ActionError struct {
	Action  string
	Message string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// Actions bundles the status-specific domain operations. Each is a thin
// wrapper over TransitionTo that resolves a well-known target slug and
// checks entity-specific preconditions first, surfacing a domain message
// instead of the generic guard error.
type Actions struct {
	workflow *WorkflowService
	statuses domain.StatusRepository
	stores   *domain.StoreRegistry
}

// NewActions creates the domain-action wrappers.
func NewActions(workflow *WorkflowService, statuses domain.StatusRepository, stores *domain.StoreRegistry) *Actions {
	return &Actions{
		workflow: workflow,
		statuses: statuses,
		stores:   stores,
	}
}

// ApprovePurchaseOrder moves a purchase order to "approved". Purchase
// orders can only be approved while submitted.
func (a *Actions) ApprovePurchaseOrder(ctx context.Context, tenantID, purchaseOrderID, actor string) (TransitionOutcome, error) {
	current, err := a.currentSlug(ctx, tenantID, domain.EntityPurchaseOrder, purchaseOrderID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if current != slugPurchaseOrderSubmit {
		return TransitionOutcome{}, &ActionError{
			Action:  "approve purchase order",
			Message: fmt.Sprintf("only submitted purchase orders can be approved; this one is %q", current),
		}
	}
	return a.workflow.TransitionTo(ctx, tenantID, domain.EntityPurchaseOrder, purchaseOrderID, slugPurchaseOrderOK, nil, actor)
}

// MarkOrderShipped moves a confirmed order to "shipped". The payload
// passes through to the transition so required fields such as tracking
// data reach the guard checks.
func (a *Actions) MarkOrderShipped(ctx context.Context, tenantID, orderID string, payload map[string]any, actor string) (TransitionOutcome, error) {
	current, err := a.currentSlug(ctx, tenantID, domain.EntityOrder, orderID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if current != slugOrderConfirmed {
		return TransitionOutcome{}, &ActionError{
			Action:  "mark order shipped",
			Message: fmt.Sprintf("only confirmed orders can be shipped; this one is %q", current),
		}
	}
	return a.workflow.TransitionTo(ctx, tenantID, domain.EntityOrder, orderID, slugOrderShipped, payload, actor)
}

// CloseRepair moves a ready repair to "picked_up".
func (a *Actions) CloseRepair(ctx context.Context, tenantID, repairID, actor string) (TransitionOutcome, error) {
	current, err := a.currentSlug(ctx, tenantID, domain.EntityRepair, repairID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if current != slugRepairReady {
		return TransitionOutcome{}, &ActionError{
			Action:  "close repair",
			Message: fmt.Sprintf("only repairs that are ready can be picked up; this one is %q", current),
		}
	}
	return a.workflow.TransitionTo(ctx, tenantID, domain.EntityRepair, repairID, slugRepairPickedUp, nil, actor)
}

func (a *Actions) currentSlug(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (string, error) {
	store, err := a.stores.Lookup(entityType)
	if err != nil {
		return "", err
	}
	entity, err := store.Get(ctx, tenantID, entityID)
	if err != nil {
		return "", err
	}
	current, err := a.statuses.GetByID(ctx, tenantID, entity.CurrentStatusID())
	if err != nil {
		return "", fmt.Errorf("loading current status: %w", err)
	}
	return current.Slug, nil
}
