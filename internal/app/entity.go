package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// EntityService creates and reads the generic entity records backing the
// shipped entity store. Deployments with dedicated business tables bypass
// this service and register their own stores.
type EntityService struct {
	entities domain.EntityRepository
	statuses domain.StatusRepository
}

// NewEntityService creates an entity service with the given adapters.
func NewEntityService(entities domain.EntityRepository, statuses domain.StatusRepository) *EntityService {
	return &EntityService{
		entities: entities,
		statuses: statuses,
	}
}

// Create persists a new entity in the default status for its type.
func (s *EntityService) Create(ctx context.Context, tenantID string, entityType domain.EntityType, data map[string]any) (domain.Entity, error) {
	if !entityType.Valid() {
		return domain.Entity{}, &domain.ValidationError{Field: "entity_type", Message: fmt.Sprintf("unknown entity type %q", entityType)}
	}

	initial, err := s.statuses.Default(ctx, tenantID, entityType)
	if err != nil {
		if errors.Is(err, domain.ErrStatusNotFound) {
			return domain.Entity{}, &domain.ValidationError{
				Field:   "entity_type",
				Message: fmt.Sprintf("no default status configured for %s entities", entityType),
			}
		}
		return domain.Entity{}, fmt.Errorf("loading default status: %w", err)
	}

	entity := domain.NewEntity(newID(), tenantID, entityType, initial.ID, data)
	if err := s.entities.Create(ctx, entity); err != nil {
		return domain.Entity{}, fmt.Errorf("creating entity: %w", err)
	}
	return entity, nil
}

// Get returns an entity record.
func (s *EntityService) Get(ctx context.Context, tenantID string, entityType domain.EntityType, id string) (domain.Entity, error) {
	return s.entities.Get(ctx, tenantID, entityType, id)
}
