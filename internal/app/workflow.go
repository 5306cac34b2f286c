package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// WorkflowService executes the entity transition protocol: available-edge
// queries, guarded transition execution, history recording and automation
// dispatch. States are data-defined; the same service drives every entity
// type through the store registry.
type WorkflowService struct {
	statuses    domain.StatusRepository
	transitions domain.TransitionRepository
	stores      *domain.StoreRegistry
	resolver    domain.TransitionResolver
	dispatcher  *Dispatcher
	publisher   domain.EventPublisher
	logger      *slog.Logger
}

// NewWorkflowService creates a workflow service with the given adapters.
func NewWorkflowService(
	statuses domain.StatusRepository,
	transitions domain.TransitionRepository,
	stores *domain.StoreRegistry,
	resolver domain.TransitionResolver,
	dispatcher *Dispatcher,
	publisher domain.EventPublisher,
	logger *slog.Logger,
) *WorkflowService {
	return &WorkflowService{
		statuses:    statuses,
		transitions: transitions,
		stores:      stores,
		resolver:    resolver,
		dispatcher:  dispatcher,
		publisher:   publisher,
		logger:      logger,
	}
}

// TransitionOutcome reports a successful transition: the entity as
// reloaded after the swap, the statuses involved, and the per-automation
// dispatch results.
type TransitionOutcome struct {
	Entity   domain.Statusable
	From     domain.Status
	To       domain.Status
	Dispatch []DispatchResult
}

// AvailableTransitions returns the enabled edges leaving the entity's
// current status. With evaluateGuards set, edges whose conditions do not
// hold against the entity's present data are filtered out, using the same
// evaluator the execution path applies. A final current status has no
// available transitions.
func (s *WorkflowService) AvailableTransitions(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string, evaluateGuards bool) ([]domain.Transition, error) {
	entity, current, err := s.loadEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		return nil, err
	}

	if current.IsFinal {
		return []domain.Transition{}, nil
	}

	edges, err := s.enabledEdges(ctx, tenantID, current.ID)
	if err != nil {
		return nil, err
	}

	if evaluateGuards {
		edges = EvaluateEdges(edges, entity)
	}
	return edges, nil
}

// CanTransitionTo reports whether the entity can move to the target status
// right now: an enabled edge exists, the current status is not final, and
// the edge's guards hold against the entity's present data.
func (s *WorkflowService) CanTransitionTo(ctx context.Context, tenantID string, entityType domain.EntityType, entityID, targetSlug string) (bool, error) {
	entity, current, err := s.loadEntity(ctx, tenantID, entityType, entityID)
	if err != nil {
		return false, err
	}
	target, err := s.statuses.GetBySlug(ctx, tenantID, entityType, targetSlug)
	if err != nil {
		return false, err
	}

	if current.IsFinal {
		return false, nil
	}

	edges, err := s.enabledEdges(ctx, tenantID, current.ID)
	if err != nil {
		return false, err
	}

	edge, err := s.resolver.Resolve(ctx, current.ID, target.ID, edges)
	if err != nil {
		if errors.Is(err, domain.ErrTransitionNotFound) {
			return false, nil
		}
		return false, err
	}

	return domain.CheckGuards(edge.Conditions, entity, nil) == nil, nil
}

// TransitionTo moves the entity to the target status. The error ladder is
// fixed: unknown edge, then terminal source, then failed guards, then
// missing required fields. The status swap and history append commit in
// one transaction with a compare-and-swap on the current status; exit and
// enter automations dispatch after the commit and never fail the call.
func (s *WorkflowService) TransitionTo(ctx context.Context, tenantID string, entityType domain.EntityType, entityID, targetSlug string, payload map[string]any, actor string) (TransitionOutcome, error) {
	store, err := s.stores.Lookup(entityType)
	if err != nil {
		return TransitionOutcome{}, err
	}
	entity, err := store.Get(ctx, tenantID, entityID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	current, err := s.statuses.GetByID(ctx, tenantID, entity.CurrentStatusID())
	if err != nil {
		return TransitionOutcome{}, fmt.Errorf("loading current status: %w", err)
	}
	target, err := s.statuses.GetBySlug(ctx, tenantID, entityType, targetSlug)
	if err != nil {
		return TransitionOutcome{}, err
	}

	edges, err := s.enabledEdges(ctx, tenantID, current.ID)
	if err != nil {
		return TransitionOutcome{}, err
	}

	edge, err := s.resolver.Resolve(ctx, current.ID, target.ID, edges)
	if err != nil {
		if errors.Is(err, domain.ErrTransitionNotFound) {
			return TransitionOutcome{}, &domain.NoSuchTransitionError{From: current.Slug, To: target.Slug}
		}
		return TransitionOutcome{}, err
	}

	if current.IsFinal {
		return TransitionOutcome{}, &domain.TerminalStateError{Status: current.Slug}
	}

	if err := domain.CheckGuards(edge.Conditions, entity, payload); err != nil {
		return TransitionOutcome{}, err
	}
	if err := domain.CheckRequiredFields(edge.RequiredFields, payload); err != nil {
		return TransitionOutcome{}, err
	}

	notes, _ := payload["notes"].(string)
	record := domain.HistoryRecord{
		ID:           newID(),
		TenantID:     tenantID,
		EntityType:   entityType,
		EntityID:     entityID,
		FromStatusID: current.ID,
		ToStatusID:   target.ID,
		Actor:        actor,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}

	if err := store.SwapStatus(ctx, tenantID, entityID, current.ID, target.ID, record); err != nil {
		return TransitionOutcome{}, err
	}

	updated, err := store.Get(ctx, tenantID, entityID)
	if err != nil {
		return TransitionOutcome{}, fmt.Errorf("reloading entity: %w", err)
	}

	results := s.dispatcher.Dispatch(ctx, tenantID, current, domain.TriggerOnExit, updated, payload)
	results = append(results, s.dispatcher.Dispatch(ctx, tenantID, target, domain.TriggerOnEnter, updated, payload)...)

	event := domain.ChangeEvent{
		TenantID:   tenantID,
		EntityType: entityType,
		EntityID:   entityID,
		FromStatus: current.Slug,
		ToStatus:   target.Slug,
		Actor:      actor,
		OccurredAt: record.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The swap is already committed; a publish failure cannot fail
		// the transition.
		s.logger.ErrorContext(ctx, "publishing change event",
			"entity_type", entityType,
			"entity_id", entityID,
			"to_status", target.Slug,
			"error", err,
		)
	}

	return TransitionOutcome{Entity: updated, From: current, To: target, Dispatch: results}, nil
}

// History returns the entity's transition log, newest first.
func (s *WorkflowService) History(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) ([]domain.HistoryRecord, error) {
	store, err := s.stores.Lookup(entityType)
	if err != nil {
		return nil, err
	}
	return store.History(ctx, tenantID, entityID)
}

func (s *WorkflowService) loadEntity(ctx context.Context, tenantID string, entityType domain.EntityType, entityID string) (domain.Statusable, domain.Status, error) {
	store, err := s.stores.Lookup(entityType)
	if err != nil {
		return nil, domain.Status{}, err
	}
	entity, err := store.Get(ctx, tenantID, entityID)
	if err != nil {
		return nil, domain.Status{}, err
	}
	current, err := s.statuses.GetByID(ctx, tenantID, entity.CurrentStatusID())
	if err != nil {
		return nil, domain.Status{}, fmt.Errorf("loading current status: %w", err)
	}
	return entity, current, nil
}

func (s *WorkflowService) enabledEdges(ctx context.Context, tenantID, fromStatusID string) ([]domain.Transition, error) {
	edges, err := s.transitions.ListFrom(ctx, tenantID, fromStatusID)
	if err != nil {
		return nil, fmt.Errorf("loading outgoing edges: %w", err)
	}
	enabled := make([]domain.Transition, 0, len(edges))
	for _, edge := range edges {
		if edge.IsEnabled {
			enabled = append(enabled, edge)
		}
	}
	return enabled, nil
}
