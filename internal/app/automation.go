package app

import (
	"context"
	"fmt"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// AutomationService owns the configuration of status automations.
type AutomationService struct {
	statuses    domain.StatusRepository
	automations domain.AutomationRepository
}

// NewAutomationService creates an automation service with the given adapters.
func NewAutomationService(statuses domain.StatusRepository, automations domain.AutomationRepository) *AutomationService {
	return &AutomationService{
		statuses:    statuses,
		automations: automations,
	}
}

// CreateAutomationParams carries the fields for a new automation.
// SortOrder nil means "append after the automations sharing the trigger".
type CreateAutomationParams struct {
	TenantID     string
	StatusID     string
	Trigger      domain.Trigger
	ActionType   domain.ActionType
	ActionConfig map[string]any
	SortOrder    *int
}

// Create persists a new automation after validating its action config
// against the action type's required keys.
func (s *AutomationService) Create(ctx context.Context, params CreateAutomationParams) (domain.Automation, error) {
	if !params.Trigger.Valid() {
		return domain.Automation{}, &domain.ValidationError{Field: "trigger", Message: fmt.Sprintf("unknown trigger %q", params.Trigger)}
	}
	if err := domain.ValidateActionConfig(params.ActionType, params.ActionConfig); err != nil {
		return domain.Automation{}, err
	}

	status, err := s.statuses.GetByID(ctx, params.TenantID, params.StatusID)
	if err != nil {
		return domain.Automation{}, fmt.Errorf("loading status: %w", err)
	}

	automation := domain.Automation{
		ID:           newID(),
		TenantID:     params.TenantID,
		StatusID:     status.ID,
		Trigger:      params.Trigger,
		ActionType:   params.ActionType,
		ActionConfig: params.ActionConfig,
		IsEnabled:    true,
		CreatedAt:    time.Now().UTC(),
	}

	if params.SortOrder != nil {
		automation.SortOrder = *params.SortOrder
	} else {
		next, err := s.automations.NextSortOrder(ctx, params.TenantID, status.ID, params.Trigger)
		if err != nil {
			return domain.Automation{}, fmt.Errorf("assigning sort order: %w", err)
		}
		automation.SortOrder = next
	}

	if err := s.automations.Create(ctx, automation); err != nil {
		return domain.Automation{}, fmt.Errorf("creating automation: %w", err)
	}
	return automation, nil
}

// ListForStatus returns every automation bound to a status, both triggers.
func (s *AutomationService) ListForStatus(ctx context.Context, tenantID, statusID string) ([]domain.Automation, error) {
	return s.automations.ListForStatus(ctx, tenantID, statusID)
}

// SetEnabled toggles an automation without deleting its configuration.
func (s *AutomationService) SetEnabled(ctx context.Context, tenantID, id string, enabled bool) error {
	return s.automations.SetEnabled(ctx, tenantID, id, enabled)
}

// Delete removes an automation.
func (s *AutomationService) Delete(ctx context.Context, tenantID, id string) error {
	return s.automations.Delete(ctx, tenantID, id)
}
