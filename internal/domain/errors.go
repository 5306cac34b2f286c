package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrStatusNotFound     = errors.New("status not found")
	ErrTransitionNotFound = errors.New("transition not found")
	ErrAutomationNotFound = errors.New("automation not found")
	ErrEntityNotFound     = errors.New("entity not found")

	// ErrStatusConflict is returned when a transition's expected current
	// status no longer matches the stored one: another request won the
	// race and the caller should re-read and retry.
	ErrStatusConflict = errors.New("entity status changed concurrently")

	// ErrUnknownEntityType is returned when no store is registered for a
	// requested entity type tag.
	ErrUnknownEntityType = errors.New("no store registered for entity type")
)

// ValidationError is returned for malformed configuration: a duplicate
// slug, a cross-entity-type edge, a missing automation config key. It is
// surfaced verbatim to the admin caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NoSuchTransitionError is returned when no enabled edge connects the
// entity's current status to the requested target.
type NoSuchTransitionError struct {
	From string
	To   string
}

func (e *NoSuchTransitionError) Error() string {
	return fmt.Sprintf("no transition from %q to %q", e.From, e.To)
}

// TerminalStateError is returned when the entity's current status is final.
// It is distinct from NoSuchTransitionError: the edge may exist in the
// graph, but a final source status rejects execution regardless.
type TerminalStateError struct {
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("status %q is final; no outgoing transition permitted", e.Status)
}

// GuardFailedError is returned when an edge exists but one of its
// conditions does not hold against the entity's data.
type GuardFailedError struct {
	Field string
	Op    Operator
	Value any
}

func (e *GuardFailedError) Error() string {
	return fmt.Sprintf("transition guard failed: %s %s %v", e.Field, e.Op, e.Value)
}

// MissingRequiredFieldError names the required fields absent from a
// transition payload.
type MissingRequiredFieldError struct {
	Fields []string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// ProtectedResourceError is returned for attempts to delete or demote a
// status that is system-owned, currently the default, or still referenced.
type ProtectedResourceError struct {
	Slug   string
	Reason string
}

func (e *ProtectedResourceError) Error() string {
	return fmt.Sprintf("status %q is protected: %s", e.Slug, e.Reason)
}
