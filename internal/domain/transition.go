package domain

import "time"

// Transition is a directed edge between two statuses of the same entity
// type. At most one edge may exist for a given (from, to) pair.
type Transition struct {
	ID           string
	TenantID     string
	EntityType   EntityType
	FromStatusID string
	ToStatusID   string

	// Conditions guard the edge: all must hold against the entity's data
	// and the transition payload for the edge to be taken.
	Conditions []Condition

	// RequiredFields must be present and non-nil in the transition
	// payload for the edge to be taken.
	RequiredFields []string

	IsEnabled bool
	CreatedAt time.Time
}

// NewTransition creates an enabled edge between two statuses. The caller is
// responsible for having verified that both statuses share an entity type.
func NewTransition(id string, from, to Status) Transition {
	return Transition{
		ID:           id,
		TenantID:     from.TenantID,
		EntityType:   from.EntityType,
		FromStatusID: from.ID,
		ToStatusID:   to.ID,
		IsEnabled:    true,
		CreatedAt:    time.Now().UTC(),
	}
}
