package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

// TransitionResponse is the API representation of a graph edge.
type TransitionResponse struct {
	ID             string              `json:"id" doc:"Unique identifier"`
	EntityType     string              `json:"entity_type" doc:"Entity type the edge belongs to"`
	FromStatusID   string              `json:"from_status_id" doc:"Source status"`
	ToStatusID     string              `json:"to_status_id" doc:"Destination status"`
	Conditions     []ConditionResponse `json:"conditions,omitempty" doc:"Guard conditions, all must hold"`
	RequiredFields []string            `json:"required_fields,omitempty" doc:"Payload fields the transition requires"`
	IsEnabled      bool                `json:"is_enabled" doc:"Disabled edges are invisible to the engine"`
	CreatedAt      string              `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

// ConditionResponse mirrors a guard condition.
type ConditionResponse struct {
	Field string `json:"field" doc:"Entity field or payload key"`
	Op    string `json:"op" enum:"eq,neq,gt,gte,lt,lte,contains,present" doc:"Comparison operator"`
	Value any    `json:"value,omitempty" doc:"Comparison operand"`
}

func toTransitionResponse(tr domain.Transition) TransitionResponse {
	conditions := make([]ConditionResponse, len(tr.Conditions))
	for i, c := range tr.Conditions {
		conditions[i] = ConditionResponse{Field: c.Field, Op: string(c.Op), Value: c.Value}
	}
	if len(conditions) == 0 {
		conditions = nil
	}
	return TransitionResponse{
		ID:             tr.ID,
		EntityType:     string(tr.EntityType),
		FromStatusID:   tr.FromStatusID,
		ToStatusID:     tr.ToStatusID,
		Conditions:     conditions,
		RequiredFields: tr.RequiredFields,
		IsEnabled:      tr.IsEnabled,
		CreatedAt:      formatTime(tr.CreatedAt),
	}
}

type DefineTransitionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		FromStatusID   string              `json:"from_status_id" minLength:"1" doc:"Source status ID"`
		ToStatusID     string              `json:"to_status_id" minLength:"1" doc:"Destination status ID"`
		Conditions     []ConditionResponse `json:"conditions,omitempty" doc:"Guard conditions"`
		RequiredFields []string            `json:"required_fields,omitempty" doc:"Payload fields the transition requires"`
	}
}

type TransitionEdgeOutput struct {
	Body TransitionResponse
}

type ListTransitionsInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `query:"entity_type" enum:"order,repair,memo,return,purchase_order,transaction" doc:"Entity type"`
}

type ListTransitionsOutput struct {
	Body []TransitionResponse
}

type SetTransitionEnabledInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Transition ID"`
	Body     struct {
		IsEnabled bool `json:"is_enabled" doc:"Whether the edge participates in resolution"`
	}
}

type SetTransitionEnabledOutput struct {
	Status int
}

type DeleteTransitionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Transition ID"`
}

type DeleteTransitionOutput struct {
	Status int
}

func registerTransitionRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "define-transition",
		Method:      http.MethodPost,
		Path:        "/api/v1/transitions",
		Summary:     "Define a transition between two statuses",
		Tags:        []string{"Transitions"},
	}, func(ctx context.Context, input *DefineTransitionInput) (*TransitionEdgeOutput, error) {
		conditions := make([]domain.Condition, len(input.Body.Conditions))
		for i, c := range input.Body.Conditions {
			conditions[i] = domain.Condition{Field: c.Field, Op: domain.Operator(c.Op), Value: c.Value}
		}
		transition, err := svc.Graph.Define(ctx, app.DefineTransitionParams{
			TenantID:       input.TenantID,
			FromStatusID:   input.Body.FromStatusID,
			ToStatusID:     input.Body.ToStatusID,
			Conditions:     conditions,
			RequiredFields: input.Body.RequiredFields,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &TransitionEdgeOutput{Body: toTransitionResponse(transition)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-transitions",
		Method:      http.MethodGet,
		Path:        "/api/v1/transitions",
		Summary:     "List transitions for an entity type",
		Tags:        []string{"Transitions"},
	}, func(ctx context.Context, input *ListTransitionsInput) (*ListTransitionsOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		transitions, err := svc.Graph.List(ctx, input.TenantID, entityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]TransitionResponse, len(transitions))
		for i, tr := range transitions {
			resp[i] = toTransitionResponse(tr)
		}
		return &ListTransitionsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-transition-enabled",
		Method:      http.MethodPatch,
		Path:        "/api/v1/transitions/{id}",
		Summary:     "Enable or disable a transition",
		Tags:        []string{"Transitions"},
	}, func(ctx context.Context, input *SetTransitionEnabledInput) (*SetTransitionEnabledOutput, error) {
		if err := svc.Graph.SetEnabled(ctx, input.TenantID, input.ID, input.Body.IsEnabled); err != nil {
			return nil, toHumaError(err)
		}
		return &SetTransitionEnabledOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-transition",
		Method:      http.MethodDelete,
		Path:        "/api/v1/transitions/{id}",
		Summary:     "Delete a transition",
		Tags:        []string{"Transitions"},
	}, func(ctx context.Context, input *DeleteTransitionInput) (*DeleteTransitionOutput, error) {
		if err := svc.Graph.Delete(ctx, input.TenantID, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteTransitionOutput{Status: http.StatusNoContent}, nil
	})
}
