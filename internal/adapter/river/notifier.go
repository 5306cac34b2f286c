package river

import (
	"context"
	"fmt"

	"github.com/settatam/statusflow/internal/domain"
)

// Compile-time check: Notifier implements domain.NotificationSender.
var _ domain.NotificationSender = (*Notifier)(nil)

// NotificationArgs carries a notification request to the async pipeline.
// The engine never composes content; the worker side resolves the template
// and the delivery channel.
type NotificationArgs struct {
	TemplateID string         `json:"template_id"`
	TenantID   string         `json:"tenant_id"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Context    map[string]any `json:"context,omitempty"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationArgs) Kind() string { return "notification.send" }

// Notifier implements domain.NotificationSender by enqueuing River jobs,
// keeping notification delivery off the transition path.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Send enqueues a notification job for the entity.
func (n *Notifier) Send(ctx context.Context, templateID string, entity domain.Statusable, context map[string]any) error {
	_, err := n.client.Insert(ctx, NotificationArgs{
		TemplateID: templateID,
		TenantID:   entity.EntityTenant(),
		EntityType: string(entity.EntityKind()),
		EntityID:   entity.EntityID(),
		Context:    context,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
