package domain

import (
	"net/url"
	"time"
)

// Trigger says when an automation fires relative to its status.
type Trigger string

const (
	TriggerOnEnter Trigger = "on_enter"
	TriggerOnExit  Trigger = "on_exit"
)

// Valid reports whether t is a supported trigger.
func (t Trigger) Valid() bool {
	return t == TriggerOnEnter || t == TriggerOnExit
}

// ActionType identifies the kind of side effect an automation performs.
type ActionType string

const (
	ActionNotification ActionType = "notification"
	ActionWebhook      ActionType = "webhook"
	ActionCustom       ActionType = "custom"
)

// Valid reports whether t is a supported action type.
func (t ActionType) Valid() bool {
	return t == ActionNotification || t == ActionWebhook || t == ActionCustom
}

// Automation is a side effect bound to entering or exiting a status.
// Automations are best-effort: their failures are recorded and logged but
// never abort the transition they accompany.
type Automation struct {
	ID         string
	TenantID   string
	StatusID   string
	Trigger    Trigger
	ActionType ActionType

	// ActionConfig holds action-specific settings. Its shape is validated
	// per action type by ValidateActionConfig at creation time.
	ActionConfig map[string]any

	// SortOrder fixes execution order among automations sharing a
	// (status, trigger) pair.
	SortOrder int

	IsEnabled bool
	CreatedAt time.Time
}

// ValidateActionConfig checks that config carries the keys the action type
// requires: notification needs template_id, webhook needs a syntactically
// valid http(s) url, custom needs action.
func ValidateActionConfig(actionType ActionType, config map[string]any) error {
	switch actionType {
	case ActionNotification:
		if s, ok := config["template_id"].(string); !ok || s == "" {
			return &ValidationError{Field: "template_id", Message: "notification automations require a template_id"}
		}
	case ActionWebhook:
		raw, ok := config["url"].(string)
		if !ok || raw == "" {
			return &ValidationError{Field: "url", Message: "webhook automations require a url"}
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ValidationError{Field: "url", Message: "webhook url must be a valid http or https URL"}
		}
	case ActionCustom:
		if s, ok := config["action"].(string); !ok || s == "" {
			return &ValidationError{Field: "action", Message: "custom automations require an action"}
		}
	default:
		return &ValidationError{Field: "action_type", Message: "unknown action type " + string(actionType)}
	}
	return nil
}
