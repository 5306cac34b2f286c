package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type ApprovePurchaseOrderInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Purchase order ID"`
	Body     struct {
		Actor string `json:"actor,omitempty" doc:"Who is approving"`
	}
}

type ShipOrderInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Order ID"`
	Body     struct {
		Payload map[string]any `json:"payload,omitempty" doc:"Shipment details (carrier, tracking number)"`
		Actor   string         `json:"actor,omitempty" doc:"Who is shipping"`
	}
}

type CloseRepairInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
	ID       string `path:"id" doc:"Repair ID"`
	Body     struct {
		Actor string `json:"actor,omitempty" doc:"Who is closing"`
	}
}

// registerActionRoutes exposes the named business operations that wrap
// common transitions with their precondition checks.
func registerActionRoutes(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "approve-purchase-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/purchase-orders/{id}/approve",
		Summary:     "Approve a submitted purchase order",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *ApprovePurchaseOrderInput) (*ExecuteTransitionOutput, error) {
		outcome, err := svc.Actions.ApprovePurchaseOrder(ctx, input.TenantID, input.ID, input.Body.Actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExecuteTransitionOutput{Body: toOutcomeResponse(outcome)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ship-order",
		Method:      http.MethodPost,
		Path:        "/api/v1/orders/{id}/ship",
		Summary:     "Mark a confirmed order as shipped",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *ShipOrderInput) (*ExecuteTransitionOutput, error) {
		outcome, err := svc.Actions.MarkOrderShipped(ctx, input.TenantID, input.ID, input.Body.Payload, input.Body.Actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExecuteTransitionOutput{Body: toOutcomeResponse(outcome)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "close-repair",
		Method:      http.MethodPost,
		Path:        "/api/v1/repairs/{id}/close",
		Summary:     "Close a repair that is ready for pickup",
		Tags:        []string{"Actions"},
	}, func(ctx context.Context, input *CloseRepairInput) (*ExecuteTransitionOutput, error) {
		outcome, err := svc.Actions.CloseRepair(ctx, input.TenantID, input.ID, input.Body.Actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ExecuteTransitionOutput{Body: toOutcomeResponse(outcome)}, nil
	})
}
