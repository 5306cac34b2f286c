package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/settatam/statusflow/internal/domain"
)

// DispatchResult records the outcome of one automation execution. Partial
// failure is a first-class return value, not a log-only side channel.
type DispatchResult struct {
	AutomationID string
	ActionType   domain.ActionType
	Trigger      domain.Trigger
	Duration     time.Duration
	Err          error
}

// Dispatcher executes the automations bound to a (status, trigger) pair,
// in sort order, each bounded by a timeout. Automations are best-effort
// side effects: a failure is logged and recorded but never aborts the
// remaining automations or the transition that triggered the dispatch.
type Dispatcher struct {
	automations domain.AutomationRepository
	notifier    domain.NotificationSender
	webhooks    domain.WebhookCaller
	custom      domain.CustomActionExecutor
	logger      *slog.Logger
	timeout     time.Duration
}

// NewDispatcher creates a dispatcher with the given action adapters.
// timeout bounds each automation's execution; zero means 10 seconds.
func NewDispatcher(
	automations domain.AutomationRepository,
	notifier domain.NotificationSender,
	webhooks domain.WebhookCaller,
	custom domain.CustomActionExecutor,
	logger *slog.Logger,
	timeout time.Duration,
) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		automations: automations,
		notifier:    notifier,
		webhooks:    webhooks,
		custom:      custom,
		logger:      logger,
		timeout:     timeout,
	}
}

// Dispatch runs the enabled automations for (status, trigger) against the
// entity. Load failures and execution failures are logged with full
// context; the returned results let callers and tests observe partial
// failure directly.
func (d *Dispatcher) Dispatch(ctx context.Context, tenantID string, status domain.Status, trigger domain.Trigger, entity domain.Statusable, payload map[string]any) []DispatchResult {
	automations, err := d.automations.ListForTrigger(ctx, tenantID, status.ID, trigger)
	if err != nil {
		d.logger.ErrorContext(ctx, "loading automations",
			"status_id", status.ID,
			"trigger", trigger,
			"error", err,
		)
		return nil
	}

	results := make([]DispatchResult, 0, len(automations))
	for _, automation := range automations {
		start := time.Now()
		execErr := d.execute(ctx, automation, entity, payload)
		result := DispatchResult{
			AutomationID: automation.ID,
			ActionType:   automation.ActionType,
			Trigger:      trigger,
			Duration:     time.Since(start),
			Err:          execErr,
		}
		results = append(results, result)

		if execErr != nil {
			d.logger.ErrorContext(ctx, "automation failed",
				"automation_id", automation.ID,
				"action_type", automation.ActionType,
				"trigger", trigger,
				"status", status.Slug,
				"entity_type", entity.EntityKind(),
				"entity_id", entity.EntityID(),
				"error", execErr,
			)
		}
	}
	return results
}

func (d *Dispatcher) execute(ctx context.Context, automation domain.Automation, entity domain.Statusable, payload map[string]any) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	actionContext := snapshotContext(entity, payload)

	switch automation.ActionType {
	case domain.ActionNotification:
		templateID, _ := automation.ActionConfig["template_id"].(string)
		return d.notifier.Send(ctx, templateID, entity, actionContext)
	case domain.ActionWebhook:
		url, _ := automation.ActionConfig["url"].(string)
		return d.webhooks.Call(ctx, url, actionContext)
	case domain.ActionCustom:
		action, _ := automation.ActionConfig["action"].(string)
		return d.custom.Execute(ctx, action, entity, actionContext)
	default:
		return fmt.Errorf("unknown action type %q", automation.ActionType)
	}
}

// snapshotContext builds the JSON-serializable view of the entity and
// payload handed to every action.
func snapshotContext(entity domain.Statusable, payload map[string]any) map[string]any {
	return map[string]any{
		"tenant_id":   entity.EntityTenant(),
		"entity_type": string(entity.EntityKind()),
		"entity_id":   entity.EntityID(),
		"status_id":   entity.CurrentStatusID(),
		"payload":     payload,
	}
}
