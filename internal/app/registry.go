package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// StatusService is the status registry: it owns creation, mutation and
// deletion of the per-entity-type status vocabularies.
type StatusService struct {
	statuses domain.StatusRepository
	stores   *domain.StoreRegistry
}

// NewStatusService creates a registry service with the given adapters.
func NewStatusService(statuses domain.StatusRepository, stores *domain.StoreRegistry) *StatusService {
	return &StatusService{
		statuses: statuses,
		stores:   stores,
	}
}

// CreateStatusParams carries the caller-supplied fields for a new status.
// SortOrder nil means "append after the existing statuses".
type CreateStatusParams struct {
	TenantID    string
	EntityType  domain.EntityType
	Slug        string
	Name        string
	Color       string
	Icon        string
	Description string
	IsDefault   bool
	IsFinal     bool
	IsSystem    bool
	SortOrder   *int
	Behavior    map[string]any
}

// Create persists a new status. The slug must be unique within the
// (tenant, entity type) scope; the sort order defaults to max+1.
func (s *StatusService) Create(ctx context.Context, params CreateStatusParams) (domain.Status, error) {
	if !params.EntityType.Valid() {
		return domain.Status{}, &domain.ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", params.EntityType)}
	}
	if params.Slug == "" {
		return domain.Status{}, &domain.ValidationError{Field: "slug", Message: "slug is required"}
	}

	// Check slug uniqueness before creating; the unique index backs this
	// up under concurrent creates.
	if _, err := s.statuses.GetBySlug(ctx, params.TenantID, params.EntityType, params.Slug); err == nil {
		return domain.Status{}, &domain.ValidationError{Field: "slug", Message: fmt.Sprintf("slug %q is already in use for %s statuses", params.Slug, params.EntityType)}
	} else if !errors.Is(err, domain.ErrStatusNotFound) {
		return domain.Status{}, fmt.Errorf("checking slug: %w", err)
	}

	status := domain.NewStatus(newID(), params.TenantID, params.EntityType, params.Slug, params.Name)
	status.Color = params.Color
	status.Icon = params.Icon
	status.Description = params.Description
	status.IsFinal = params.IsFinal
	status.IsSystem = params.IsSystem
	status.Behavior = params.Behavior

	if params.SortOrder != nil {
		status.SortOrder = *params.SortOrder
	} else {
		next, err := s.statuses.NextSortOrder(ctx, params.TenantID, params.EntityType)
		if err != nil {
			return domain.Status{}, fmt.Errorf("assigning sort order: %w", err)
		}
		status.SortOrder = next
	}

	if err := s.statuses.Create(ctx, status); err != nil {
		return domain.Status{}, fmt.Errorf("creating status: %w", err)
	}

	if params.IsDefault {
		if err := s.statuses.SetDefault(ctx, params.TenantID, params.EntityType, status.ID); err != nil {
			return domain.Status{}, fmt.Errorf("setting default: %w", err)
		}
		status.IsDefault = true
	}

	return status, nil
}

// UpdateStatusParams carries the mutable display fields of a status.
// Nil fields are left unchanged.
type UpdateStatusParams struct {
	Name        *string
	Color       *string
	Icon        *string
	Description *string
	Behavior    map[string]any
}

// Update changes a status's display fields. Slug, entity type and the
// default/final/system flags are not mutable through this path.
func (s *StatusService) Update(ctx context.Context, tenantID, id string, params UpdateStatusParams) (domain.Status, error) {
	status, err := s.statuses.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Status{}, err
	}

	if params.Name != nil {
		status.Name = *params.Name
	}
	if params.Color != nil {
		status.Color = *params.Color
	}
	if params.Icon != nil {
		status.Icon = *params.Icon
	}
	if params.Description != nil {
		status.Description = *params.Description
	}
	if params.Behavior != nil {
		status.Behavior = params.Behavior
	}

	if err := s.statuses.Update(ctx, status); err != nil {
		return domain.Status{}, fmt.Errorf("updating status: %w", err)
	}
	return status, nil
}

// GetByID returns a status by its identifier.
func (s *StatusService) GetByID(ctx context.Context, tenantID, id string) (domain.Status, error) {
	return s.statuses.GetByID(ctx, tenantID, id)
}

// List returns the tenant's statuses for an entity type in sort order.
func (s *StatusService) List(ctx context.Context, tenantID string, entityType domain.EntityType) ([]domain.Status, error) {
	if !entityType.Valid() {
		return nil, &domain.ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", entityType)}
	}
	return s.statuses.List(ctx, tenantID, entityType)
}

// SetDefault marks the status as the default for its (tenant, entity type)
// scope. The unset-all/set-one sequence runs in a single transaction so the
// single-default invariant holds at every observable point.
func (s *StatusService) SetDefault(ctx context.Context, tenantID, id string) (domain.Status, error) {
	status, err := s.statuses.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Status{}, err
	}

	if err := s.statuses.SetDefault(ctx, tenantID, status.EntityType, status.ID); err != nil {
		return domain.Status{}, fmt.Errorf("setting default: %w", err)
	}

	status.IsDefault = true
	return status, nil
}

// Delete removes a status. System statuses, the current default, and
// statuses still referenced by transitions, automations or live entities
// are protected.
func (s *StatusService) Delete(ctx context.Context, tenantID, id string) error {
	status, err := s.statuses.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if status.IsSystem {
		return &domain.ProtectedResourceError{Slug: status.Slug, Reason: "system statuses cannot be deleted"}
	}
	if status.IsDefault {
		return &domain.ProtectedResourceError{Slug: status.Slug, Reason: "reassign the default status first"}
	}

	store, err := s.stores.Lookup(status.EntityType)
	if err != nil {
		return err
	}
	count, err := store.CountInStatus(ctx, tenantID, status.ID)
	if err != nil {
		return fmt.Errorf("counting entities in status: %w", err)
	}
	if count > 0 {
		return &domain.ProtectedResourceError{Slug: status.Slug, Reason: fmt.Sprintf("%d entities are currently in this status", count)}
	}

	return s.statuses.Delete(ctx, tenantID, id)
}

// Reorder assigns each status the sort order of its position in ids. All
// ids must belong to the same (tenant, entity type) scope; the repository
// rejects the whole batch otherwise.
func (s *StatusService) Reorder(ctx context.Context, tenantID string, entityType domain.EntityType, ids []string) error {
	if !entityType.Valid() {
		return &domain.ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", entityType)}
	}
	if len(ids) == 0 {
		return &domain.ValidationError{Field: "ids", Message: "at least one status id is required"}
	}
	return s.statuses.Reorder(ctx, tenantID, entityType, ids)
}
