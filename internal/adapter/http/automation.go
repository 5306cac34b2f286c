package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

// AutomationResponse is the API representation of an automation.
type AutomationResponse struct {
	ID           string         `json:"id" doc:"Unique identifier"`
	StatusID     string         `json:"status_id" doc:"Status the automation is bound to"`
	Trigger      string         `json:"trigger" enum:"on_enter,on_exit" doc:"When the automation fires"`
	ActionType   string         `json:"action_type" enum:"notification,webhook,custom" doc:"Kind of side effect"`
	ActionConfig map[string]any `json:"action_config" doc:"Action-specific settings"`
	SortOrder    int            `json:"sort_order" doc:"Execution position within the trigger"`
	IsEnabled    bool           `json:"is_enabled" doc:"Disabled automations never fire"`
	CreatedAt    string         `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toAutomationResponse(a domain.Automation) AutomationResponse {
	return AutomationResponse{
		ID:           a.ID,
		StatusID:     a.StatusID,
		Trigger:      string(a.Trigger),
		ActionType:   string(a.ActionType),
		ActionConfig: a.ActionConfig,
		SortOrder:    a.SortOrder,
		IsEnabled:    a.IsEnabled,
		CreatedAt:    formatTime(a.CreatedAt),
	}
}

type CreateAutomationInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	StatusID string `path:"id" doc:"Status ID"`
	Body     struct {
		Trigger      string         `json:"trigger" enum:"on_enter,on_exit" doc:"When the automation fires"`
		ActionType   string         `json:"action_type" enum:"notification,webhook,custom" doc:"Kind of side effect"`
		ActionConfig map[string]any `json:"action_config" doc:"Action-specific settings"`
		SortOrder    *int           `json:"sort_order,omitempty" doc:"Execution position (defaults to end)"`
	}
}

type AutomationOutput struct {
	Body AutomationResponse
}

type ListAutomationsInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	StatusID string `path:"id" doc:"Status ID"`
}

type ListAutomationsOutput struct {
	Body []AutomationResponse
}

type SetAutomationEnabledInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Automation ID"`
	Body     struct {
		IsEnabled bool `json:"is_enabled" doc:"Whether the automation fires"`
	}
}

type SetAutomationEnabledOutput struct {
	Status int
}

type DeleteAutomationInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Automation ID"`
}

type DeleteAutomationOutput struct {
	Status int
}

func registerAutomationRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-automation",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses/{id}/automations",
		Summary:     "Attach an automation to a status",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *CreateAutomationInput) (*AutomationOutput, error) {
		automation, err := svc.Automations.Create(ctx, app.CreateAutomationParams{
			TenantID:     input.TenantID,
			StatusID:     input.StatusID,
			Trigger:      domain.Trigger(input.Body.Trigger),
			ActionType:   domain.ActionType(input.Body.ActionType),
			ActionConfig: input.Body.ActionConfig,
			SortOrder:    input.Body.SortOrder,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AutomationOutput{Body: toAutomationResponse(automation)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-automations",
		Method:      http.MethodGet,
		Path:        "/api/v1/statuses/{id}/automations",
		Summary:     "List a status's automations",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *ListAutomationsInput) (*ListAutomationsOutput, error) {
		automations, err := svc.Automations.ListForStatus(ctx, input.TenantID, input.StatusID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AutomationResponse, len(automations))
		for i, a := range automations {
			resp[i] = toAutomationResponse(a)
		}
		return &ListAutomationsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-automation-enabled",
		Method:      http.MethodPatch,
		Path:        "/api/v1/automations/{id}",
		Summary:     "Enable or disable an automation",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *SetAutomationEnabledInput) (*SetAutomationEnabledOutput, error) {
		if err := svc.Automations.SetEnabled(ctx, input.TenantID, input.ID, input.Body.IsEnabled); err != nil {
			return nil, toHumaError(err)
		}
		return &SetAutomationEnabledOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-automation",
		Method:      http.MethodDelete,
		Path:        "/api/v1/automations/{id}",
		Summary:     "Delete an automation",
		Tags:        []string{"Automations"},
	}, func(ctx context.Context, input *DeleteAutomationInput) (*DeleteAutomationOutput, error) {
		if err := svc.Automations.Delete(ctx, input.TenantID, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteAutomationOutput{Status: http.StatusNoContent}, nil
	})
}
