// Package http exposes the status engine over a Huma-described REST API.
// Every operation is tenant-scoped through the X-Tenant-ID header.
package http

import (
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/settatam/statusflow/internal/app"
	"github.com/settatam/statusflow/internal/domain"
)

const timeLayout = "2006-01-02T15:04:05Z"

// Services bundles the application services the API fronts.
type Services struct {
	Statuses    *app.StatusService
	Graph       *app.GraphService
	Automations *app.AutomationService
	Entities    *app.EntityService
	Workflow    *app.WorkflowService
	Actions     *app.Actions
	Seeder      *app.Seeder
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerStatusRoutes(api, svc)
	registerTransitionRoutes(api, svc)
	registerAutomationRoutes(api, svc)
	registerEntityRoutes(api, svc)
	registerActionRoutes(api, svc)
	registerSeedRoute(api, svc)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// toHumaError translates domain errors to Huma HTTP errors. Not-found
// sentinels map to 404, conflicts to 409, and rule violations to 422.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrStatusNotFound):
		return huma.Error404NotFound("status not found")
	case errors.Is(err, domain.ErrTransitionNotFound):
		return huma.Error404NotFound("transition not found")
	case errors.Is(err, domain.ErrAutomationNotFound):
		return huma.Error404NotFound("automation not found")
	case errors.Is(err, domain.ErrEntityNotFound):
		return huma.Error404NotFound("entity not found")
	case errors.Is(err, domain.ErrUnknownEntityType):
		return huma.Error404NotFound("unknown entity type")
	case errors.Is(err, domain.ErrStatusConflict):
		return huma.Error409Conflict("entity status changed concurrently; retry with fresh state")
	}

	var protectedErr *domain.ProtectedResourceError
	if errors.As(err, &protectedErr) {
		return huma.Error409Conflict(protectedErr.Error())
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return huma.Error422UnprocessableEntity(validationErr.Error())
	}

	var noTransitionErr *domain.NoSuchTransitionError
	if errors.As(err, &noTransitionErr) {
		return huma.Error422UnprocessableEntity(noTransitionErr.Error())
	}

	var terminalErr *domain.TerminalStateError
	if errors.As(err, &terminalErr) {
		return huma.Error422UnprocessableEntity(terminalErr.Error())
	}

	var guardErr *domain.GuardFailedError
	if errors.As(err, &guardErr) {
		return huma.Error422UnprocessableEntity(guardErr.Error())
	}

	var missingErr *domain.MissingRequiredFieldError
	if errors.As(err, &missingErr) {
		return huma.Error422UnprocessableEntity(missingErr.Error())
	}

	var actionErr *app.ActionError
	if errors.As(err, &actionErr) {
		return huma.Error422UnprocessableEntity(actionErr.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}

// parseEntityType validates the entity type segment of a path.
func parseEntityType(raw string) (domain.EntityType, error) {
	entityType := domain.EntityType(raw)
	if !entityType.Valid() {
		return "", domain.ErrUnknownEntityType
	}
	return entityType, nil
}
