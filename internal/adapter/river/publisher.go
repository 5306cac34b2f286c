package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/settatam/statusflow/internal/domain"
)

// Compile-time check: Publisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*Publisher)(nil)

// StatusChangedArgs carries a committed status change for asynchronous
// fan-out. River serializes this as JSON into its job queue table. It is a
// snapshot taken at publish time, so the worker never needs to query the
// database.
type StatusChangedArgs struct {
	TenantID   string    `json:"tenant_id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (StatusChangedArgs) Kind() string { return "status.changed" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Publisher implements domain.EventPublisher by enqueuing River jobs.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher backed by the given River client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish enqueues a status change event as an async job in River.
func (p *Publisher) Publish(ctx context.Context, event domain.ChangeEvent) error {
	_, err := p.client.Insert(ctx, StatusChangedArgs{
		TenantID:   event.TenantID,
		EntityType: string(event.EntityType),
		EntityID:   event.EntityID,
		FromStatus: event.FromStatus,
		ToStatus:   event.ToStatus,
		Actor:      event.Actor,
		OccurredAt: event.OccurredAt,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing status change job: %w", err)
	}
	return nil
}
