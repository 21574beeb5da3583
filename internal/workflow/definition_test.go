package workflow_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/workflow"
)

func TestDefaultMachineCoreTransitions(t *testing.T) {
	machine := workflow.Default()

	cases := []struct {
		from       domain.Status
		transition string
		want       domain.Status
	}{
		{domain.StatusLocked, workflow.TransitionUnlock, domain.StatusAvailable},
		{domain.StatusAvailable, workflow.TransitionConfirm, domain.StatusCompleted},
		{domain.StatusAvailable, workflow.TransitionSubmitReview, domain.StatusWaitingApproval},
		{domain.StatusWaitingApproval, workflow.TransitionApprove, domain.StatusCompleted},
		{domain.StatusWaitingApproval, workflow.TransitionReject, domain.StatusAvailable},
		{domain.StatusCompleted, workflow.TransitionRelock, domain.StatusLocked},
		{domain.StatusCompleted, workflow.TransitionReopen, domain.StatusAvailable},
		{domain.StatusAvailable, workflow.TransitionPause, domain.StatusPaused},
		{domain.StatusPaused, workflow.TransitionResume, domain.StatusAvailable},
		{domain.StatusLocked, workflow.TransitionForceComplete, domain.StatusCompleted},
	}
	for _, tc := range cases {
		got, err := machine.Apply(tc.from, tc.transition)
		if err != nil {
			t.Fatalf("%s from %s: unexpected error %v", tc.transition, tc.from, err)
		}
		if got != tc.want {
			t.Fatalf("%s from %s: expected %s, got %s", tc.transition, tc.from, tc.want, got)
		}
	}
}

func TestDefaultMachineRejectsUndeclaredMoves(t *testing.T) {
	machine := workflow.Default()

	rejected := []struct {
		from       domain.Status
		transition string
	}{
		{domain.StatusLocked, workflow.TransitionConfirm},
		{domain.StatusLocked, workflow.TransitionSubmitReview},
		{domain.StatusCompleted, workflow.TransitionConfirm},
		{domain.StatusWaitingApproval, workflow.TransitionSubmitReview},
		{domain.StatusCompleted, workflow.TransitionUnlock},
		{domain.StatusCompleted, workflow.TransitionForceComplete},
		{domain.StatusLocked, workflow.TransitionPause},
		{domain.StatusWaitingApproval, workflow.TransitionForceComplete},
		{domain.StatusWaitingApproval, workflow.TransitionReopen},
		{domain.StatusAvailable, workflow.TransitionApprove},
	}
	for _, tc := range rejected {
		got, err := machine.Apply(tc.from, tc.transition)
		if !errors.Is(err, workflow.ErrInvalidTransition) {
			t.Fatalf("%s from %s: expected ErrInvalidTransition, got %v", tc.transition, tc.from, err)
		}
		if got != tc.from {
			t.Fatalf("%s from %s: expected status unchanged, got %s", tc.transition, tc.from, got)
		}
	}
}

func TestCompileValidation(t *testing.T) {
	if _, err := workflow.Compile(workflow.Definition{}); !errors.Is(err, workflow.ErrDefinitionStatesRequired) {
		t.Fatalf("expected ErrDefinitionStatesRequired, got %v", err)
	}

	_, err := workflow.Compile(workflow.Definition{
		States: []domain.Status{domain.StatusLocked, domain.StatusLocked},
	})
	if !errors.Is(err, workflow.ErrDuplicateState) {
		t.Fatalf("expected ErrDuplicateState, got %v", err)
	}

	_, err = workflow.Compile(workflow.Definition{
		States:      []domain.Status{domain.StatusLocked},
		Transitions: []workflow.Transition{{Name: "unlock", From: domain.StatusLocked, To: domain.StatusAvailable}},
	})
	if !errors.Is(err, workflow.ErrTransitionStateUnknown) {
		t.Fatalf("expected ErrTransitionStateUnknown, got %v", err)
	}

	_, err = workflow.Compile(workflow.Definition{
		States: []domain.Status{domain.StatusLocked, domain.StatusAvailable},
		Transitions: []workflow.Transition{
			{Name: "unlock", From: domain.StatusLocked, To: domain.StatusAvailable},
			{Name: "UNLOCK", From: domain.StatusLocked, To: domain.StatusAvailable},
		},
	})
	if !errors.Is(err, workflow.ErrDuplicateTransition) {
		t.Fatalf("expected ErrDuplicateTransition, got %v", err)
	}

	_, err = workflow.Compile(workflow.Definition{
		States:      []domain.Status{domain.StatusLocked},
		Transitions: []workflow.Transition{{From: domain.StatusLocked, To: domain.StatusLocked}},
	})
	if !errors.Is(err, workflow.ErrTransitionNameRequired) {
		t.Fatalf("expected ErrTransitionNameRequired, got %v", err)
	}

	if _, err := workflow.Compile(workflow.Definition{States: []domain.Status{"draft"}}); !errors.Is(err, workflow.ErrStateUnknown) {
		t.Fatalf("expected ErrStateUnknown, got %v", err)
	}
}
