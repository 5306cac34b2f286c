package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type SeedInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant scope"`
}

type SeedOutput struct {
	Status int
}

// registerSeedRoute exposes tenant provisioning: it installs the standard
// status vocabularies and transition graphs for every entity type that has
// none yet.
func registerSeedRoute(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "seed-tenant",
		Method:      http.MethodPost,
		Path:        "/api/v1/seed",
		Summary:     "Install the default status vocabularies for a tenant",
		Tags:        []string{"Provisioning"},
	}, func(ctx context.Context, input *SeedInput) (*SeedOutput, error) {
		if err := svc.Seeder.SeedTenant(ctx, input.TenantID); err != nil {
			return nil, toHumaError(err)
		}
		return &SeedOutput{Status: http.StatusNoContent}, nil
	})
}
