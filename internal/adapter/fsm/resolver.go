package fsm

import (
	"context"
	"errors"

	loopfsm "github.com/looplab/fsm"

	"github.com/settatam/statusflow/internal/domain"
)

// Compile-time check: Resolver implements domain.TransitionResolver.
var _ domain.TransitionResolver = (*Resolver)(nil)

// Resolver implements domain.TransitionResolver using looplab/fsm. The
// transition graph is tenant-configured data, so a short-lived FSM is built
// per Resolve call from the supplied edges, initialized with the entity's
// current status. This is necessary twice over: looplab/fsm is stateful
// (it tracks the current state internally), and the edge set differs per
// (tenant, entity type).
type Resolver struct{}

// New creates a new FSM-backed transition resolver.
func New() *Resolver {
	return &Resolver{}
}

// Resolve checks whether one of the supplied edges connects the current
// status to the target and returns it. Returns domain.ErrTransitionNotFound
// when no edge connects them.
func (r *Resolver) Resolve(ctx context.Context, currentStatusID, targetStatusID string, edges []domain.Transition) (domain.Transition, error) {
	machine := loopfsm.NewFSM(currentStatusID, buildEvents(edges), nil)

	if err := machine.Event(ctx, eventName(targetStatusID)); err != nil {
		var invalidEvent loopfsm.InvalidEventError
		var unknownEvent loopfsm.UnknownEventError
		var noTransition loopfsm.NoTransitionError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) || errors.As(err, &noTransition) {
			return domain.Transition{}, domain.ErrTransitionNotFound
		}
		return domain.Transition{}, err
	}

	for _, edge := range edges {
		if edge.FromStatusID == currentStatusID && edge.ToStatusID == targetStatusID {
			return edge, nil
		}
	}
	return domain.Transition{}, domain.ErrTransitionNotFound
}

// buildEvents converts stored edges into looplab/fsm EventDesc format.
// The event for reaching a status consolidates every source that can move
// to it, so parallel edges into one target become a single EventDesc with
// multiple source states.
func buildEvents(edges []domain.Transition) []loopfsm.EventDesc {
	grouped := make(map[string][]string)
	order := make([]string, 0)

	for _, edge := range edges {
		dst := edge.ToStatusID
		if _, exists := grouped[dst]; !exists {
			order = append(order, dst)
		}
		grouped[dst] = append(grouped[dst], edge.FromStatusID)
	}

	out := make([]loopfsm.EventDesc, 0, len(order))
	for _, dst := range order {
		out = append(out, loopfsm.EventDesc{
			Name: eventName(dst),
			Src:  grouped[dst],
			Dst:  dst,
		})
	}
	return out
}

// eventName derives the FSM event that moves an entity into a status.
func eventName(targetStatusID string) string {
	return "goto:" + targetStatusID
}
