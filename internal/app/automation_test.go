package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

func automationFixture(t *testing.T) (*app.AutomationService, *mockAutomationRepo, domain.Status) {
	t.Helper()
	statuses := newMockStatusRepo()
	status := domain.NewStatus("st-confirmed", "t-1", domain.EntityOrder, "confirmed", "Confirmed")
	statuses.statuses[status.ID] = status
	automations := newMockAutomationRepo()
	return app.NewAutomationService(statuses, automations), automations, status
}

func TestAutomationCreate_Success(t *testing.T) {
	svc, repo, status := automationFixture(t)

	automation, err := svc.Create(context.Background(), app.CreateAutomationParams{
		TenantID:     "t-1",
		StatusID:     status.ID,
		Trigger:      domain.TriggerOnEnter,
		ActionType:   domain.ActionNotification,
		ActionConfig: map[string]any{"template_id": "tpl-1"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !automation.IsEnabled {
		t.Error("new automation should be enabled")
	}
	if automation.SortOrder != 1 {
		t.Errorf("SortOrder = %d, want 1", automation.SortOrder)
	}
	if _, ok := repo.automations[automation.ID]; !ok {
		t.Error("automation was not persisted")
	}
}

func TestAutomationCreate_AppendsSortOrderPerTrigger(t *testing.T) {
	svc, _, status := automationFixture(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnEnter,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "a"},
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second, err := svc.Create(ctx, app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnEnter,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "b"},
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	other, err := svc.Create(ctx, app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnExit,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "c"},
	})
	if err != nil {
		t.Fatalf("Create exit: %v", err)
	}
	if second.SortOrder != first.SortOrder+1 {
		t.Errorf("second SortOrder = %d, want %d", second.SortOrder, first.SortOrder+1)
	}
	if other.SortOrder != 1 {
		t.Errorf("exit-trigger SortOrder = %d, want its own sequence starting at 1", other.SortOrder)
	}
}

func TestAutomationCreate_InvalidTrigger(t *testing.T) {
	svc, _, status := automationFixture(t)

	_, err := svc.Create(context.Background(), app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: "on_delete",
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "a"},
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Field != "trigger" {
		t.Errorf("Field = %q, want %q", verr.Field, "trigger")
	}
}

func TestAutomationCreate_InvalidConfig(t *testing.T) {
	svc, _, status := automationFixture(t)

	tests := []struct {
		name       string
		actionType domain.ActionType
		config     map[string]any
	}{
		{"notification without template", domain.ActionNotification, map[string]any{}},
		{"webhook without url", domain.ActionWebhook, map[string]any{}},
		{"custom without action", domain.ActionCustom, map[string]any{}},
		{"unknown action type", "sms", map[string]any{"to": "+15551234"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), app.CreateAutomationParams{
				TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnEnter,
				ActionType: tt.actionType, ActionConfig: tt.config,
			})
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestAutomationCreate_UnknownStatus(t *testing.T) {
	svc, _, _ := automationFixture(t)

	_, err := svc.Create(context.Background(), app.CreateAutomationParams{
		TenantID: "t-1", StatusID: "missing", Trigger: domain.TriggerOnEnter,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "a"},
	})
	if !errors.Is(err, domain.ErrStatusNotFound) {
		t.Errorf("err = %v, want ErrStatusNotFound", err)
	}
}

func TestAutomationSetEnabled(t *testing.T) {
	svc, repo, status := automationFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnEnter,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "a"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.SetEnabled(ctx, "t-1", created.ID, false); err != nil {
		t.Fatalf("SetEnabled: %v", err)
	}
	if repo.automations[created.ID].IsEnabled {
		t.Error("automation should be disabled")
	}
}

func TestAutomationDelete(t *testing.T) {
	svc, repo, status := automationFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, app.CreateAutomationParams{
		TenantID: "t-1", StatusID: status.ID, Trigger: domain.TriggerOnEnter,
		ActionType: domain.ActionCustom, ActionConfig: map[string]any{"action": "a"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, "t-1", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.automations[created.ID]; ok {
		t.Error("automation still present after delete")
	}

	if err := svc.Delete(ctx, "t-1", created.ID); !errors.Is(err, domain.ErrAutomationNotFound) {
		t.Errorf("second delete err = %v, want ErrAutomationNotFound", err)
	}
}
