package app

import (
	"context"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// seedStatus is one entry in a seeded status vocabulary.
type seedStatus struct {
	slug      string
	name      string
	color     string
	isDefault bool
	isFinal   bool
}

// seedEdge is one seeded transition, by slug.
type seedEdge struct {
	from string
	to   string
}

type seedVocabulary struct {
	statuses []seedStatus
	edges    []seedEdge
}

// seedVocabularies defines the system status vocabulary installed for each
// entity type when a tenant is provisioned.
var seedVocabularies = map[domain.EntityType]seedVocabulary{
	domain.EntityOrder: {
		statuses: []seedStatus{
			{slug: "pending", name: "Pending", color: "#f59e0b", isDefault: true},
			{slug: "confirmed", name: "Confirmed", color: "#3b82f6"},
			{slug: "shipped", name: "Shipped", color: "#10b981", isFinal: true},
			{slug: "cancelled", name: "Cancelled", color: "#6b7280", isFinal: true},
		},
		edges: []seedEdge{
			{from: "pending", to: "confirmed"},
			{from: "pending", to: "cancelled"},
			{from: "confirmed", to: "shipped"},
			{from: "confirmed", to: "cancelled"},
		},
	},
	domain.EntityRepair: {
		statuses: []seedStatus{
			{slug: "intake", name: "Intake", color: "#f59e0b", isDefault: true},
			{slug: "in_progress", name: "In Progress", color: "#3b82f6"},
			{slug: "ready", name: "Ready for Pickup", color: "#8b5cf6"},
			{slug: "picked_up", name: "Picked Up", color: "#10b981", isFinal: true},
		},
		edges: []seedEdge{
			{from: "intake", to: "in_progress"},
			{from: "in_progress", to: "ready"},
			{from: "ready", to: "picked_up"},
		},
	},
	domain.EntityMemo: {
		statuses: []seedStatus{
			{slug: "draft", name: "Draft", color: "#f59e0b", isDefault: true},
			{slug: "out", name: "Out on Memo", color: "#3b82f6"},
			{slug: "returned", name: "Returned", color: "#10b981", isFinal: true},
			{slug: "purchased", name: "Purchased", color: "#10b981", isFinal: true},
		},
		edges: []seedEdge{
			{from: "draft", to: "out"},
			{from: "out", to: "returned"},
			{from: "out", to: "purchased"},
		},
	},
	domain.EntityReturn: {
		statuses: []seedStatus{
			{slug: "requested", name: "Requested", color: "#f59e0b", isDefault: true},
			{slug: "received", name: "Received", color: "#3b82f6"},
			{slug: "refunded", name: "Refunded", color: "#10b981", isFinal: true},
			{slug: "rejected", name: "Rejected", color: "#ef4444", isFinal: true},
		},
		edges: []seedEdge{
			{from: "requested", to: "received"},
			{from: "requested", to: "rejected"},
			{from: "received", to: "refunded"},
		},
	},
	domain.EntityPurchaseOrder: {
		statuses: []seedStatus{
			{slug: "draft", name: "Draft", color: "#f59e0b", isDefault: true},
			{slug: "submitted", name: "Submitted", color: "#3b82f6"},
			{slug: "approved", name: "Approved", color: "#8b5cf6"},
			{slug: "received", name: "Received", color: "#10b981", isFinal: true},
			{slug: "cancelled", name: "Cancelled", color: "#6b7280", isFinal: true},
		},
		edges: []seedEdge{
			{from: "draft", to: "submitted"},
			{from: "submitted", to: "approved"},
			{from: "submitted", to: "cancelled"},
			{from: "approved", to: "received"},
		},
	},
	domain.EntityTransaction: {
		statuses: []seedStatus{
			{slug: "pending", name: "Pending", color: "#f59e0b", isDefault: true},
			{slug: "completed", name: "Completed", color: "#10b981", isFinal: true},
			{slug: "voided", name: "Voided", color: "#6b7280", isFinal: true},
		},
		edges: []seedEdge{
			{from: "pending", to: "completed"},
			{from: "pending", to: "voided"},
		},
	},
}

// Seeder installs the system status vocabularies for a new tenant.
type Seeder struct {
	statuses *StatusService
	graph    *GraphService
}

// NewSeeder creates a seeder over the registry and graph services.
func NewSeeder(statuses *StatusService, graph *GraphService) *Seeder {
	return &Seeder{
		statuses: statuses,
		graph:    graph,
	}
}

// SeedTenant creates the seeded statuses and edges for every entity type.
// Entity types that already have statuses are skipped, so re-running the
// seed for a tenant is safe.
func (s *Seeder) SeedTenant(ctx context.Context, tenantID string) error {
	for _, entityType := range domain.EntityTypes {
		vocabulary := seedVocabularies[entityType]

		existing, err := s.statuses.List(ctx, tenantID, entityType)
		if err != nil {
			return fmt.Errorf("listing %s statuses: %w", entityType, err)
		}
		if len(existing) > 0 {
			continue
		}

		bySlug := make(map[string]domain.Status, len(vocabulary.statuses))
		for _, seed := range vocabulary.statuses {
			status, err := s.statuses.Create(ctx, CreateStatusParams{
				TenantID:   tenantID,
				EntityType: entityType,
				Slug:       seed.slug,
				Name:       seed.name,
				Color:      seed.color,
				IsDefault:  seed.isDefault,
				IsFinal:    seed.isFinal,
				IsSystem:   true,
			})
			if err != nil {
				return fmt.Errorf("seeding %s status %q: %w", entityType, seed.slug, err)
			}
			bySlug[seed.slug] = status
		}

		for _, edge := range vocabulary.edges {
			_, err := s.graph.Define(ctx, DefineTransitionParams{
				TenantID:     tenantID,
				FromStatusID: bySlug[edge.from].ID,
				ToStatusID:   bySlug[edge.to].ID,
			})
			if err != nil {
				return fmt.Errorf("seeding %s edge %s→%s: %w", entityType, edge.from, edge.to, err)
			}
		}
	}
	return nil
}
