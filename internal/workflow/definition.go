package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-onboarding/internal/domain"
)

var (
	// ErrDefinitionStatesRequired indicates the definition does not declare any states.
	ErrDefinitionStatesRequired = errors.New("workflow: definition requires at least one state")
	// ErrStateUnknown indicates a state outside the milestone status enumeration.
	ErrStateUnknown = errors.New("workflow: unknown state")
	// ErrDuplicateState indicates duplicate state names were declared.
	ErrDuplicateState = errors.New("workflow: duplicate state")
	// ErrTransitionNameRequired indicates a transition lacks a name.
	ErrTransitionNameRequired = errors.New("workflow: transition name required")
	// ErrTransitionStateUnknown indicates a transition references a state that was not declared.
	ErrTransitionStateUnknown = errors.New("workflow: transition references unknown state")
	// ErrDuplicateTransition indicates the same transition name is declared multiple times for a state.
	ErrDuplicateTransition = errors.New("workflow: duplicate transition for state")
)

// Transition names understood by the default milestone workflow.
const (
	TransitionUnlock        = "unlock"
	TransitionConfirm       = "confirm"
	TransitionSubmitReview  = "submit_review"
	TransitionApprove       = "approve"
	TransitionReject        = "reject"
	TransitionRelock        = "relock"
	TransitionReopen        = "reopen"
	TransitionPause         = "pause"
	TransitionResume        = "resume"
	TransitionForceComplete = "force_complete"
)

// Transition moves a record from one status to another under a name.
type Transition struct {
	Name        string
	Description string
	From        domain.Status
	To          domain.Status
}

// Definition lists the statuses and transitions a Machine enforces.
type Definition struct {
	States      []domain.Status
	Transitions []Transition
}

// DefaultDefinition returns the milestone status workflow:
//
//	locked -> available -> {waiting_approval, completed}
//	waiting_approval -> {completed, available}
//
// plus the administrative relock, reopen, pause, resume and force_complete moves. Team review
// outcomes leave waiting_approval only through approve and reject.
func DefaultDefinition() Definition {
	var (
		locked    = domain.StatusLocked
		available = domain.StatusAvailable
		waiting   = domain.StatusWaitingApproval
		completed = domain.StatusCompleted
		paused    = domain.StatusPaused
	)

	transitions := []Transition{
		{Name: TransitionUnlock, From: locked, To: available, Description: "Previous milestone finished"},
		{Name: TransitionConfirm, From: available, To: completed, Description: "Creator confirmation"},
		{Name: TransitionSubmitReview, From: available, To: waiting, Description: "Submitted for team review"},
		{Name: TransitionApprove, From: waiting, To: completed, Description: "Team approved the submission"},
		{Name: TransitionReject, From: waiting, To: available, Description: "Team asked for changes"},
		{Name: TransitionResume, From: paused, To: available, Description: "Admin resumed the milestone"},
		{Name: TransitionPause, From: available, To: paused, Description: "Admin paused the milestone"},
		{Name: TransitionPause, From: completed, To: paused, Description: "Admin paused the milestone"},
	}
	for _, from := range []domain.Status{available, waiting, completed, paused} {
		transitions = append(transitions, Transition{Name: TransitionRelock, From: from, To: locked, Description: "Rewound behind a revision or re-lock"})
	}
	for _, from := range []domain.Status{locked, completed, paused} {
		transitions = append(transitions, Transition{Name: TransitionReopen, From: from, To: available, Description: "Revision requested"})
	}
	for _, from := range []domain.Status{locked, available, paused} {
		transitions = append(transitions, Transition{Name: TransitionForceComplete, From: from, To: completed, Description: "Admin completion"})
	}

	return Definition{
		States:      domain.Statuses(),
		Transitions: transitions,
	}
}

// Compile validates the definition and returns a Machine that enforces it.
func Compile(def Definition) (*Machine, error) {
	if len(def.States) == 0 {
		return nil, ErrDefinitionStatesRequired
	}

	states := make(map[domain.Status]struct{}, len(def.States))
	for _, state := range def.States {
		if !state.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrStateUnknown, state)
		}
		if _, exists := states[state]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateState, state)
		}
		states[state] = struct{}{}
	}

	machine := &Machine{transitions: make(map[string]Transition, len(def.Transitions))}
	for idx, transition := range def.Transitions {
		name := strings.ToLower(strings.TrimSpace(transition.Name))
		if name == "" {
			return nil, fmt.Errorf("%w at index %d", ErrTransitionNameRequired, idx)
		}
		if _, ok := states[transition.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.From)
		}
		if _, ok := states[transition.To]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrTransitionStateUnknown, transition.To)
		}
		transition.Name = name
		key := transitionKey(name, transition.From)
		if _, exists := machine.transitions[key]; exists {
			return nil, fmt.Errorf("%w: %s from %s", ErrDuplicateTransition, name, transition.From)
		}
		machine.transitions[key] = transition
	}

	return machine, nil
}

func transitionKey(name string, from domain.Status) string {
	return strings.ToLower(strings.TrimSpace(name)) + "::" + string(from)
}
