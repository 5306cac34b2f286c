package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

// StatusResponse is the API representation of a status.
type StatusResponse struct {
	ID          string         `json:"id" doc:"Unique identifier"`
	EntityType  string         `json:"entity_type" doc:"Entity type the status belongs to"`
	Slug        string         `json:"slug" doc:"Stable machine identifier"`
	Name        string         `json:"name" doc:"Display name"`
	Color       string         `json:"color,omitempty" doc:"Display color"`
	Icon        string         `json:"icon,omitempty" doc:"Display icon"`
	Description string         `json:"description,omitempty" doc:"Human-readable description"`
	IsDefault   bool           `json:"is_default" doc:"Assigned to newly created entities"`
	IsFinal     bool           `json:"is_final" doc:"Terminal status, no outgoing transitions execute"`
	IsSystem    bool           `json:"is_system" doc:"Seeded status, protected from deletion"`
	SortOrder   int            `json:"sort_order" doc:"Display position"`
	Behavior    map[string]any `json:"behavior,omitempty" doc:"Tenant-defined behavior settings"`
	CreatedAt   string         `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt   string         `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toStatusResponse(s domain.Status) StatusResponse {
	return StatusResponse{
		ID:          s.ID,
		EntityType:  string(s.EntityType),
		Slug:        s.Slug,
		Name:        s.Name,
		Color:       s.Color,
		Icon:        s.Icon,
		Description: s.Description,
		IsDefault:   s.IsDefault,
		IsFinal:     s.IsFinal,
		IsSystem:    s.IsSystem,
		SortOrder:   s.SortOrder,
		Behavior:    s.Behavior,
		CreatedAt:   formatTime(s.CreatedAt),
		UpdatedAt:   formatTime(s.UpdatedAt),
	}
}

type CreateStatusInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		EntityType  string         `json:"entity_type" enum:"order,repair,memo,return,purchase_order,transaction" doc:"Entity type"`
		Slug        string         `json:"slug" minLength:"1" maxLength:"100" pattern:"^[a-z0-9]+(?:_[a-z0-9]+)*$" doc:"Stable machine identifier (lowercase, underscores)"`
		Name        string         `json:"name" minLength:"1" maxLength:"255" doc:"Display name"`
		Color       string         `json:"color,omitempty" doc:"Display color"`
		Icon        string         `json:"icon,omitempty" doc:"Display icon"`
		Description string         `json:"description,omitempty" doc:"Human-readable description"`
		IsDefault   bool           `json:"is_default,omitempty" doc:"Make this the default status for its entity type"`
		IsFinal     bool           `json:"is_final,omitempty" doc:"Mark as terminal"`
		SortOrder   *int           `json:"sort_order,omitempty" doc:"Display position (defaults to end of list)"`
		Behavior    map[string]any `json:"behavior,omitempty" doc:"Tenant-defined behavior settings"`
	}
}

type StatusOutput struct {
	Body StatusResponse
}

type GetStatusInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Status ID"`
}

type ListStatusesInput struct {
	TenantID   string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	EntityType string `query:"entity_type" enum:"order,repair,memo,return,purchase_order,transaction" doc:"Entity type"`
}

type ListStatusesOutput struct {
	Body []StatusResponse
}

type UpdateStatusInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Status ID"`
	Body     struct {
		Name        *string        `json:"name,omitempty" doc:"Display name"`
		Color       *string        `json:"color,omitempty" doc:"Display color"`
		Icon        *string        `json:"icon,omitempty" doc:"Display icon"`
		Description *string        `json:"description,omitempty" doc:"Human-readable description"`
		Behavior    map[string]any `json:"behavior,omitempty" doc:"Tenant-defined behavior settings"`
	}
}

type DeleteStatusInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Status ID"`
}

type DeleteStatusOutput struct {
	Status int
}

type SetDefaultStatusInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Status ID"`
}

type ReorderStatusesInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	Body     struct {
		EntityType string   `json:"entity_type" enum:"order,repair,memo,return,purchase_order,transaction" doc:"Entity type"`
		IDs        []string `json:"ids" minItems:"1" doc:"Status IDs in the desired display order"`
	}
}

type ReorderStatusesOutput struct {
	Status int
}

func registerStatusRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "create-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses",
		Summary:     "Create a status",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *CreateStatusInput) (*StatusOutput, error) {
		entityType, err := parseEntityType(input.Body.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		status, err := svc.Statuses.Create(ctx, app.CreateStatusParams{
			TenantID:    input.TenantID,
			EntityType:  entityType,
			Slug:        input.Body.Slug,
			Name:        input.Body.Name,
			Color:       input.Body.Color,
			Icon:        input.Body.Icon,
			Description: input.Body.Description,
			IsDefault:   input.Body.IsDefault,
			IsFinal:     input.Body.IsFinal,
			SortOrder:   input.Body.SortOrder,
			Behavior:    input.Body.Behavior,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StatusOutput{Body: toStatusResponse(status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/statuses/{id}",
		Summary:     "Get a status by ID",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *GetStatusInput) (*StatusOutput, error) {
		status, err := svc.Statuses.GetByID(ctx, input.TenantID, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StatusOutput{Body: toStatusResponse(status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-statuses",
		Method:      http.MethodGet,
		Path:        "/api/v1/statuses",
		Summary:     "List statuses for an entity type",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *ListStatusesInput) (*ListStatusesOutput, error) {
		entityType, err := parseEntityType(input.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		statuses, err := svc.Statuses.List(ctx, input.TenantID, entityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]StatusResponse, len(statuses))
		for i, s := range statuses {
			resp[i] = toStatusResponse(s)
		}
		return &ListStatusesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-status",
		Method:      http.MethodPatch,
		Path:        "/api/v1/statuses/{id}",
		Summary:     "Update a status's display fields",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *UpdateStatusInput) (*StatusOutput, error) {
		status, err := svc.Statuses.Update(ctx, input.TenantID, input.ID, app.UpdateStatusParams{
			Name:        input.Body.Name,
			Color:       input.Body.Color,
			Icon:        input.Body.Icon,
			Description: input.Body.Description,
			Behavior:    input.Body.Behavior,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StatusOutput{Body: toStatusResponse(status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-status",
		Method:      http.MethodDelete,
		Path:        "/api/v1/statuses/{id}",
		Summary:     "Delete a status",
		Description: "Fails when the status is seeded, is the default, or still has entities in it.",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *DeleteStatusInput) (*DeleteStatusOutput, error) {
		if err := svc.Statuses.Delete(ctx, input.TenantID, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteStatusOutput{Status: http.StatusNoContent}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-default-status",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses/{id}/default",
		Summary:     "Make a status the default for its entity type",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *SetDefaultStatusInput) (*StatusOutput, error) {
		status, err := svc.Statuses.SetDefault(ctx, input.TenantID, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StatusOutput{Body: toStatusResponse(status)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reorder-statuses",
		Method:      http.MethodPost,
		Path:        "/api/v1/statuses/reorder",
		Summary:     "Reorder statuses of an entity type",
		Tags:        []string{"Statuses"},
	}, func(ctx context.Context, input *ReorderStatusesInput) (*ReorderStatusesOutput, error) {
		entityType, err := parseEntityType(input.Body.EntityType)
		if err != nil {
			return nil, toHumaError(err)
		}
		if err := svc.Statuses.Reorder(ctx, input.TenantID, entityType, input.Body.IDs); err != nil {
			return nil, toHumaError(err)
		}
		return &ReorderStatusesOutput{Status: http.StatusNoContent}, nil
	})
}
