package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

// EntityResponse is the API representation of a generic entity record.
type EntityResponse struct {
	ID         string         `json:"id" doc:"Unique identifier"`
	EntityType string         `json:"entity_type" doc:"Entity type"`
	StatusID   string         `json:"status_id" doc:"Current status"`
	Data       map[string]any `json:"data,omitempty" doc:"Entity fields"`
	CreatedAt  string         `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt  string         `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toEntityResponse(e domain.Entity) EntityResponse {
	return EntityResponse{
		ID:         e.ID,
		EntityType: string(e.Type),
		StatusID:   e.StatusID,
		Data:       e.Data,
		CreatedAt:  formatTime(e.CreatedAt),
		UpdatedAt:  formatTime(e.UpdatedAt),
	}
}

// DispatchResultResponse reports one automation run during a transition.
type DispatchResultResponse struct {
	AutomationID string `json:"automation_id" doc:"Automation that ran"`
	ActionType   string `json:"action_type" doc:"Kind of side effect"`
	Trigger      string `json:"trigger" doc:"Trigger that fired it"`
	DurationMS   int64  `json:"duration_ms" doc:"Execution time in milliseconds"`
	Error        string `json:"error,omitempty" doc:"Failure message, empty on success"`
}

// TransitionOutcomeResponse reports a committed transition.
type TransitionOutcomeResponse struct {
	EntityID   string                   `json:"entity_id" doc:"Entity that moved"`
	EntityType string                   `json:"entity_type" doc:"Entity type"`
	FromStatus StatusResponse           `json:"from_status" doc:"Status before the transition"`
	ToStatus   StatusResponse           `json:"to_status" doc:"Status after the transition"`
	Dispatch   []DispatchResultResponse `json:"dispatch,omitempty" doc:"Automation results, in execution order"`
}

func toOutcomeResponse(outcome app.TransitionOutcome) TransitionOutcomeResponse {
	dispatch := make([]DispatchResultResponse, len(outcome.Dispatch))
	for i, d := range outcome.Dispatch {
		r := DispatchResultResponse{
			AutomationID: d.AutomationID,
			ActionType:   string(d.ActionType),
			Trigger:      string(d.Trigger),
			DurationMS:   d.Duration.Milliseconds(),
		}
		if d.Err != nil {
			r.Error = d.Err.Error()
		}
		dispatch[i] = r
	}
	if len(dispatch) == 0 {
		dispatch = nil
	}
	return TransitionOutcomeResponse{
		EntityID:   outcome.Entity.EntityID(),
		EntityType: string(outcome.Entity.EntityKind()),
		FromStatus: toStatusResponse(outcome.From),
		ToStatus:   toStatusResponse(outcome.To),
		Dispatch:   dispatch,
	}
}

// HistoryRecordResponse is one entry of an entity's status history.
type HistoryRecordResponse struct {
	ID           string `json:"id" doc:"Unique identifier"`
	FromStatusID string `json:"from_status_id" doc:"Status before the transition"`
	ToStatusID   string `json:"to_status_id" doc:"Status after the transition"`
	Actor        string `json:"actor,omitempty" doc:"Who executed the transition"`
	Notes        string `json:"notes,omitempty" doc:"Free-form note supplied with the transition"`
	CreatedAt    string `json:"created_at" doc:"When the transition committed (ISO 8601)"`
}

type CreateEntityInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `path:"type" doc:"Entity type"`
	Body       struct {
		Data map[string]any `json:"data,omitempty" doc:"Entity fields"`
	}
}

type EntityOutput struct {
	Body EntityResponse
}

type GetEntityInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `path:"type" doc:"Entity type"`
	ID         string `path:"id" doc:"Entity ID"`
}

type AvailableTransitionsInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `path:"type" doc:"Entity type"`
	ID         string `path:"id" doc:"Entity ID"`
	Evaluate   bool   `query:"evaluate" required:"false" doc:"Filter out edges whose guards do not currently hold"`
}

type AvailableTransitionsOutput struct {
	Body []TransitionResponse
}

type ExecuteTransitionInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `path:"type" doc:"Entity type"`
	ID         string `path:"id" doc:"Entity ID"`
	Body       struct {
		To      string         `json:"to" minLength:"1" doc:"Target status slug"`
		Payload map[string]any `json:"payload,omitempty" doc:"Transition payload (guards, required fields, notes)"`
		Actor   string         `json:"actor,omitempty" doc:"Who is executing the transition"`
	}
}

type ExecuteTransitionOutput struct {
	Body TransitionOutcomeResponse
}

type HistoryInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `path:"type" doc:"Entity type"`
	ID         string `path:"id" doc:"Entity ID"`
}

type HistoryOutput struct {
	Body []HistoryRecordResponse
}

func registerEntityRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-entity",
		Method:      http.MethodPost,
		Path:        "/api/v1/entities/{type}",
		Summary:     "Create an entity in its default status",
		Tags:        []string{"Entities"},
	}, func(ctx context.Context, input *CreateEntityInput) (*EntityOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		entity, err := svc.Entities.Create(ctx, input.TenantID, entityType, input.Body.Data)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EntityOutput{Body: toEntityResponse(entity)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-entity",
		Method:      http.MethodGet,
		Path:        "/api/v1/entities/{type}/{id}",
		Summary:     "Get an entity by ID",
		Tags:        []string{"Entities"},
	}, func(ctx context.Context, input *GetEntityInput) (*EntityOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		entity, err := svc.Entities.Get(ctx, input.TenantID, entityType, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EntityOutput{Body: toEntityResponse(entity)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "available-transitions",
		Method:      http.MethodGet,
		Path:        "/api/v1/entities/{type}/{id}/transitions",
		Summary:     "List the transitions available from the entity's current status",
		Tags:        []string{"Entities"},
	}, func(ctx context.Context, input *AvailableTransitionsInput) (*AvailableTransitionsOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		transitions, err := svc.Workflow.AvailableTransitions(ctx, input.TenantID, entityType, input.ID, input.Evaluate)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]TransitionResponse, len(transitions))
		for i, tr := range transitions {
			resp[i] = toTransitionResponse(tr)
		}
		return &AvailableTransitionsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "execute-transition",
		Method:      http.MethodPost,
		Path:        "/api/v1/entities/{type}/{id}/transition",
		Summary:     "Move an entity to a new status",
		Tags:        []string{"Entities"},
	}, func(ctx context.Context, input *ExecuteTransitionInput) (*ExecuteTransitionOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		outcome, err := svc.Workflow.TransitionTo(ctx, input.TenantID, entityType, input.ID, input.Body.To, input.Body.Payload, input.Body.Actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExecuteTransitionOutput{Body: toOutcomeResponse(outcome)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "entity-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/entities/{type}/{id}/history",
		Summary:     "List an entity's status history, newest first",
		Tags:        []string{"Entities"},
	}, func(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		records, err := svc.Workflow.History(ctx, input.TenantID, entityType, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]HistoryRecordResponse, len(records))
		for i, rec := range records {
			resp[i] = HistoryRecordResponse{
				ID:           rec.ID,
				FromStatusID: rec.FromStatusID,
				ToStatusID:   rec.ToStatusID,
				Actor:        rec.Actor,
				Notes:        rec.Notes,
				CreatedAt:    formatTime(rec.CreatedAt),
			}
		}
		return &HistoryOutput{Body: resp}, nil
	})
}
