package app

import (
	"context"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// GraphService owns the transition graph: the directed, optionally guarded
// edges between statuses of one entity type.
type GraphService struct {
	statuses    domain.StatusRepository
	transitions domain.TransitionRepository
}

// NewGraphService creates a graph service with the given adapters.
func NewGraphService(statuses domain.StatusRepository, transitions domain.TransitionRepository) *GraphService {
	return &GraphService{
		statuses:    statuses,
		transitions: transitions,
	}
}

// DefineTransitionParams carries the fields for a new edge.
type DefineTransitionParams struct {
	TenantID       string
	FromStatusID   string
	ToStatusID     string
	Conditions     []domain.Condition
	RequiredFields []string
}

// Define creates an edge between two statuses. Both statuses must exist,
// share an entity type, and not already be connected in this direction.
func (s *GraphService) Define(ctx context.Context, params DefineTransitionParams) (domain.Transition, error) {
	from, err := s.statuses.GetByID(ctx, params.TenantID, params.FromStatusID)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("loading from-status: %w", err)
	}
	to, err := s.statuses.GetByID(ctx, params.TenantID, params.ToStatusID)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("loading to-status: %w", err)
	}

	if from.EntityType != to.EntityType {
		return domain.Transition{}, &domain.ValidationError{
			Field:   "to_status_id",
			Message: fmt.Sprintf("cannot connect %s status %q to %s status %q", from.EntityType, from.Slug, to.EntityType, to.Slug),
		}
	}
	if from.ID == to.ID {
		return domain.Transition{}, &domain.ValidationError{Field: "to_status_id", Message: "a status cannot transition to itself"}
	}

	for _, c := range params.Conditions {
		if c.Field == "" {
			return domain.Transition{}, &domain.ValidationError{Field: "conditions", Message: "condition field is required"}
		}
		if !c.Op.Valid() {
			return domain.Transition{}, &domain.ValidationError{Field: "conditions", Message: fmt.Sprintf("unknown operator %q", c.Op)}
		}
	}

	exists, err := s.transitions.Exists(ctx, params.TenantID, from.ID, to.ID)
	if err != nil {
		return domain.Transition{}, fmt.Errorf("checking for existing edge: %w", err)
	}
	if exists {
		return domain.Transition{}, &domain.ValidationError{
			Field:   "to_status_id",
			Message: fmt.Sprintf("a transition from %q to %q already exists", from.Slug, to.Slug),
		}
	}

	transition := domain.NewTransition(newID(), from, to)
	transition.Conditions = params.Conditions
	transition.RequiredFields = params.RequiredFields

	if err := s.transitions.Create(ctx, transition); err != nil {
		return domain.Transition{}, fmt.Errorf("creating transition: %w", err)
	}
	return transition, nil
}

// List returns every edge for an entity type.
func (s *GraphService) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Transition, error) {
	return s.transitions.List(ctx, tenantID, entityType)
}

// OutgoingEdges returns the enabled edges leaving a status. Guards are not
// evaluated here; execution-time evaluation happens in the workflow
// service, and UI pre-filtering goes through EvaluateEdges so both paths
// share one evaluator.
func (s *GraphService) OutgoingEdges(ctx context.Context, tenantID, fromStatusID string) ([]domain.Transition, error) {
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

// EvaluateEdges filters edges to those whose guards hold against the
// entity's current data. Used for UI display; the workflow service applies
// the same CheckGuards during execution.
func EvaluateEdges(edges []domain.Transition, entity domain.Statusable) []domain.Transition {
	available := make([]domain.Transition, 0, len(edges))
	for _, edge := range edges {
		if domain.CheckGuards(edge.Conditions, entity, nil) == nil {
			available = append(available, edge)
		}
	}
	return available
}

// SetEnabled toggles an edge without deleting its configuration.
func (s *GraphService) SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error {
	return s.transitions.SetEnabled(ctx, tenantID, id, enabled)
}

// Delete removes an edge.
func (s *GraphService) Delete(ctx context.Context, tenantID, id string) error {
	return s.transitions.Delete(ctx, tenantID, id)
}
